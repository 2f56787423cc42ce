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

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet"
	"github.com/spatialmodel/genfleet/cloud"
	"github.com/spatialmodel/genfleet/extract"
)

// MergedPlants is the name of the plant table merged across years.
const MergedPlants = "collapsed_generation_projects.tab"

func plantsName(year int) string {
	return fmt.Sprintf("collapsed_generation_projects_%d.tab", year)
}

// Run processes every year configured in cfg and merges the results.
func Run(ctx context.Context, cfg *ConfigData) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// The membership cache is shared so that it is only computed once.
	mc := cfg.membershipCache()
	if mc != nil {
		mc.Log = log
	}
	var runs [][]*genfleet.Plant
	for _, year := range cfg.Years {
		ylog := log.WithField("year", year)
		r := &extract.Reader{
			CoreOnly: year != cfg.lastYear(),
			Log:      ylog,
			Report:   genfleet.NewReport(ylog),
		}
		gens, err := r.Read860(ctx, forYear(cfg.EIA860Dir, year), year)
		if err != nil {
			return err
		}
		fuelGen, err := r.Read923(ctx, forYear(cfg.EIA923Dir, year), year)
		if err != nil {
			return err
		}
		r.Report.Summarize()

		p := cfg.pipeline(year)
		p.Log = log
		p.Output = store
		if mc != nil {
			p.Membership = mc
		}
		result, err := p.Run(ctx, &genfleet.Inputs{Generators: gens, FuelGen: fuelGen})
		if err != nil {
			return err
		}
		runs = append(runs, result.Plants)
	}
	return writeMerged(ctx, store, runs)
}

// Membership writes the county membership of the configured region to w.
func Membership(ctx context.Context, cfg *ConfigData, w io.Writer) error {
	mc := cfg.membershipCache()
	if mc == nil {
		return fmt.Errorf("you need to specify the Membership.CountyShapefile and " +
			"Membership.RegionShapefile configuration variables")
	}
	mc.Log = log
	m, err := mc.Get(ctx, cfg.Region)
	if err != nil {
		return err
	}
	return genfleet.WriteMembership(w, m)
}

// Merge merges the plant tables of the configured years, which must
// already be in the output location.
func Merge(ctx context.Context, cfg *ConfigData) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	var runs [][]*genfleet.Plant
	for _, year := range cfg.Years {
		plants, err := readStoredPlants(ctx, store, plantsName(year))
		if err != nil {
			return err
		}
		runs = append(runs, plants)
	}
	return writeMerged(ctx, store, runs)
}

func writeMerged(ctx context.Context, store *cloud.Store, runs [][]*genfleet.Plant) error {
	merged := genfleet.MergeRuns(runs...)
	if err := store.Write(ctx, MergedPlants, func(w io.Writer) error {
		return genfleet.WritePlants(w, merged)
	}); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"runs": len(runs), "plants": len(merged)}).Info("merged plant tables")
	return nil
}

// readPlants reads the plant table called name from the output location.
func readPlants(ctx context.Context, cfg *ConfigData, name string) ([]*genfleet.Plant, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return readStoredPlants(ctx, store, name)
}

func readStoredPlants(ctx context.Context, store *cloud.Store, name string) ([]*genfleet.Plant, error) {
	r, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	plants, err := genfleet.ReadPlants(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	return plants, nil
}
