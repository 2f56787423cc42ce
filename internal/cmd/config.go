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
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/genfleet"
)

// ConfigData holds information about a genfleet configuration.
type ConfigData struct {
	// Years are the survey years to process. Location and operating
	// details that only describe the current fleet are kept for the
	// most recent year.
	Years []int

	// Region is the NERC region to keep, e.g. "WECC".
	Region string

	// EIA860Dir and EIA923Dir are the directories holding the unzipped
	// survey workbooks. [YEAR] is replaced by the survey year. They can
	// include environment variables.
	EIA860Dir, EIA923Dir string

	// Output is the directory or bucket URL ("gs://bucket/prefix",
	// "s3://bucket/prefix") where output tables are stored. It can
	// include environment variables.
	Output string

	// LogFile, if set, receives a copy of the log. It can include
	// environment variables.
	LogFile string

	// HeatRatePlot, if set, is the image file that heat rate histograms
	// are saved to. [YEAR] is replaced by the survey year.
	HeatRatePlot string

	// Membership specifies how counties are assigned to regions.
	Membership struct {
		// CountyShapefile and RegionShapefile are the boundary files.
		CountyShapefile, RegionShapefile string

		// CountyNameField, CountyStateField, and RegionNameField are
		// the shapefile attributes holding the county name, county
		// state, and region name.
		CountyNameField, CountyStateField, RegionNameField string

		// AreaThreshold is the fraction of a county's area that must fall
		// within a region for the county to belong to it. Default 0.5.
		AreaThreshold float64

		// Dir is where membership files are cached, and QADir, if set,
		// is where shapefiles of the selected counties are written.
		Dir, QADir string
	}

	// AggregationKeys are lists of canonical column names used in turn to
	// aggregate generators into projects, e.g.
	// [["Plant Code", "Unit Code"], ["Plant Code", "Prime Mover", "Energy Source", "Operating Year"]].
	AggregationKeys [][]string

	// AmbiguousAs is "new" or "uprate" (the default), the output file
	// for proposed projects matching more than one existing project.
	AmbiguousAs string

	// Enrichment adjusts the heat rate outlier correction.
	Enrichment struct {
		LowerPercentile, UpperPercentile float64
		MinPeers, WindowStep, MaxWindow  int
	}

	// Collapse adjusts how projects are combined into plants.
	Collapse struct {
		// ExcludedEnergySources defaults to purchased steam and storage.
		ExcludedEnergySources []string

		// Baseload, Variable, and Cogen are boolean expressions of
		// EnergySource, FuelCategory, PrimeMover, and Cogen.
		Baseload, Variable, Cogen string
	}

	// Database specifies where the load command stores plants.
	Database struct {
		// URL is a PostgreSQL connection URL. It can include environment
		// variables, which is the recommended way to supply a password.
		URL string

		// Table defaults to "generation_plant".
		Table string
	}

	aggregationKeys [][]genfleet.Field
	ambiguousAs     genfleet.Class
}

// ReadConfigFile reads and parses a TOML configuration file.
func ReadConfigFile(filename string) (config *ConfigData, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("the configuration file you have specified, %v, does not "+
			"appear to exist. Please check the file name and location and "+
			"try again", filename)
	}
	defer file.Close()
	b, err := ioutil.ReadAll(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("problem reading configuration file: %v", err)
	}

	config = new(ConfigData)
	if _, err = toml.Decode(string(b), config); err != nil {
		return nil, fmt.Errorf("there has been an error parsing the configuration file: %v", err)
	}

	for _, s := range []*string{
		&config.EIA860Dir, &config.EIA923Dir, &config.Output, &config.LogFile, &config.HeatRatePlot,
		&config.Membership.CountyShapefile, &config.Membership.RegionShapefile,
		&config.Membership.Dir, &config.Membership.QADir, &config.Database.URL,
	} {
		*s = os.ExpandEnv(*s)
	}

	if len(config.Years) == 0 {
		return nil, fmt.Errorf("you need to specify at least one survey year in the " +
			"'Years' configuration variable")
	}
	sort.Ints(config.Years)
	if config.Region == "" {
		return nil, fmt.Errorf("you need to specify a NERC region in the 'Region' configuration variable")
	}
	if config.Output == "" {
		return nil, fmt.Errorf("you need to specify an output location in the " +
			"configuration file (for example: Output = \"processed_data\")")
	}
	if t := config.Membership.AreaThreshold; t < 0 || t > 1 {
		return nil, fmt.Errorf("the Membership.AreaThreshold configuration variable must be "+
			"between 0 and 1, but is currently set to %g", t)
	}

	lo, hi := config.Enrichment.LowerPercentile, config.Enrichment.UpperPercentile
	for _, p := range []struct {
		name  string
		value float64
	}{{"LowerPercentile", lo}, {"UpperPercentile", hi}} {
		if p.value < 0 || p.value >= 1 {
			return nil, fmt.Errorf("the Enrichment.%s configuration variable must be a fraction "+
				"between 0 and 1 (for example 0.992 rather than 99.2), but is currently set to %g", p.name, p.value)
		}
	}
	if lo != 0 && hi != 0 && lo >= hi {
		return nil, fmt.Errorf("the Enrichment.LowerPercentile configuration variable (%g) must be "+
			"less than Enrichment.UpperPercentile (%g)", lo, hi)
	}
	for _, p := range []struct {
		name  string
		value int
	}{
		{"MinPeers", config.Enrichment.MinPeers},
		{"WindowStep", config.Enrichment.WindowStep},
		{"MaxWindow", config.Enrichment.MaxWindow},
	} {
		if p.value < 0 {
			return nil, fmt.Errorf("the Enrichment.%s configuration variable must not be negative, "+
				"but is currently set to %d", p.name, p.value)
		}
	}

	if config.AggregationKeys != nil {
		if config.aggregationKeys, err = genfleet.ParseFields(config.AggregationKeys); err != nil {
			return nil, fmt.Errorf("the AggregationKeys configuration variable is invalid: %v", err)
		}
	}
	config.ambiguousAs = genfleet.Uprate
	if config.AmbiguousAs != "" {
		if config.ambiguousAs, err = genfleet.ParseClass(config.AmbiguousAs); err != nil {
			return nil, fmt.Errorf("the AmbiguousAs configuration variable needs to be set to "+
				"either new or uprate, but is currently set to `%s`", config.AmbiguousAs)
		}
	}
	return config, nil
}

// forYear replaces the [YEAR] wildcard in path.
func forYear(path string, year int) string {
	return strings.Replace(path, "[YEAR]", strconv.Itoa(year), -1)
}

// lastYear returns the most recent configured year.
func (c *ConfigData) lastYear() int { return c.Years[len(c.Years)-1] }

// membershipCache returns the county membership cache described by c,
// or nil if no boundary files are configured.
func (c *ConfigData) membershipCache() *genfleet.MembershipCache {
	m := c.Membership
	if m.CountyShapefile == "" || m.RegionShapefile == "" {
		return nil
	}
	return &genfleet.MembershipCache{
		CountyShapefile:  m.CountyShapefile,
		CountyNameField:  m.CountyNameField,
		CountyStateField: m.CountyStateField,
		RegionShapefile:  m.RegionShapefile,
		RegionNameField:  m.RegionNameField,
		Threshold:        m.AreaThreshold,
		Dir:              m.Dir,
		QADir:            m.QADir,
	}
}

// pipeline returns the pipeline for year.
func (c *ConfigData) pipeline(year int) *genfleet.Pipeline {
	p := &genfleet.Pipeline{
		Year:            year,
		Region:          c.Region,
		AggregationKeys: c.aggregationKeys,
		AmbiguousAs:     c.ambiguousAs,
		Enricher: genfleet.Enricher{
			LowerPercentile: c.Enrichment.LowerPercentile,
			UpperPercentile: c.Enrichment.UpperPercentile,
			MinPeers:        c.Enrichment.MinPeers,
			WindowStep:      c.Enrichment.WindowStep,
			MaxWindow:       c.Enrichment.MaxWindow,
		},
		Collapse: genfleet.CollapseConfig{
			Exclude: c.Collapse.ExcludedEnergySources,
			Flags: genfleet.Flags{
				Baseload: c.Collapse.Baseload,
				Variable: c.Collapse.Variable,
				Cogen:    c.Collapse.Cogen,
			},
		},
	}
	if c.HeatRatePlot != "" {
		p.HeatRatePlot = forYear(c.HeatRatePlot, year)
	}
	return p
}
