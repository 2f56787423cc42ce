/*
Copyright © 2019 the genfleet authors.
This file is part of genfleet.

genfleet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

genfleet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with genfleet.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cmd implements the genfleet command-line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet"
	"github.com/spatialmodel/genfleet/cloud"
	"github.com/spatialmodel/genfleet/internal/dbload"
	"github.com/spf13/cobra"
)

const year = "2019"

// These variables specify configuration flags.
var (
	// configFile specifies the location of the configuration file.
	configFile string

	// verbose turns on debug logging.
	verbose bool
)

// log is the logger used by all commands.
var log = logrus.New()

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(membershipCmd)
	Root.AddCommand(mergeCmd)
	Root.AddCommand(loadCmd)

	// Create the configuration flags.
	Root.PersistentFlags().StringVar(&configFile, "config", "./genfleet.toml", "configuration file location")
	Root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debugging information")
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "genfleet",
	Short: "Build generator fleet tables from EIA survey data.",
	Long: `genfleet reads the EIA-860 and EIA-923 surveys, combines generators into
projects, fills in heat rates and hydro capacity factors, and produces plant
tables for capacity expansion models. Use the subcommands specified below to
access the functionality.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		fmt.Println(`
	------------------------------------------------
	                    genfleet
	      EIA-860/923 generator fleet processing
	                Version ` + genfleet.Version + `
	               Copyright 2019-` + year + `
	              the genfleet authors
	------------------------------------------------`)
	},
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of genfleet.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("genfleet v%s\n", genfleet.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the configured survey years.",
	Long: `run processes each configured survey year, writes the project, statistic,
and plant tables for each year to the output location, and then merges the
plant tables of all years into collapsed_generation_projects.tab.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()
		return Run(context.Background(), cfg)
	},
	DisableAutoGenTag: true,
}

var membershipCmd = &cobra.Command{
	Use:   "membership",
	Short: "Assign counties to the configured region.",
	Long: `membership computes which counties belong to the configured region, or reads
them from the membership cache, and prints them as a tab-separated table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()
		return Membership(context.Background(), cfg, os.Stdout)
	},
	DisableAutoGenTag: true,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge plant tables of previous runs.",
	Long: `merge reads the plant tables of the configured years from the output location
and merges them into collapsed_generation_projects.tab. Each plant is
described by the latest year it appears in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()
		return Merge(context.Background(), cfg)
	},
	DisableAutoGenTag: true,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the merged plant table into a database.",
	Long: `load copies collapsed_generation_projects.tab from the output location into
the configured PostgreSQL database table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()
		if cfg.Database.URL == "" {
			return fmt.Errorf("you need to specify a database in the Database.URL configuration variable")
		}
		ctx := context.Background()
		plants, err := readPlants(ctx, cfg, MergedPlants)
		if err != nil {
			return err
		}
		conn, err := dbload.Connect(ctx, cfg.Database.URL, log)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		n, err := dbload.Load(ctx, conn, cfg.Database.Table, plants)
		if err != nil {
			return err
		}
		log.WithField("rows", n).Info("loaded plants into database")
		return nil
	},
	DisableAutoGenTag: true,
}

// setup reads the configuration file and configures logging.
// The returned function closes the log file.
func setup() (*ConfigData, func(), error) {
	cfg, err := ReadConfigFile(configFile)
	if err != nil {
		return nil, nil, err
	}
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	log.Out = os.Stderr
	if cfg.LogFile == "" {
		return cfg, func() {}, nil
	}
	f, err := os.Create(cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("problem creating log file: %v", err)
	}
	log.Out = io.MultiWriter(os.Stderr, f)
	return cfg, func() {
		log.Out = os.Stderr
		f.Close()
	}, nil
}

// openStore opens the configured output location.
func openStore(ctx context.Context, cfg *ConfigData) (*cloud.Store, error) {
	return cloud.OpenStore(ctx, cfg.Output)
}
