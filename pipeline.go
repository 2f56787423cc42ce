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

package genfleet

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Inputs are the survey data for one year.
type Inputs struct {
	// Generators are the EIA-860 generators, Operable and Proposed.
	Generators []*Generator

	// FuelGen is the EIA-923 generation and fuel data.
	FuelGen []*FuelGen
}

// MembershipSource provides county membership for a region.
// *MembershipCache is a MembershipSource.
type MembershipSource interface {
	Get(ctx context.Context, region string) (Membership, error)
}

// ArtifactWriter stores named output tables.
type ArtifactWriter interface {
	// Write stores the output of write under name.
	Write(ctx context.Context, name string, write func(io.Writer) error) error
}

// Pipeline holds the settings for processing one year of survey data.
// Stages run in order: aggregation, region assignment, enrichment,
// reconciliation, and collapsing.
type Pipeline struct {
	// Year is the filing year.
	Year int

	// Region is the NERC region to keep.
	Region string

	// AggregationKeys are the key sets used to aggregate generators into
	// projects. If nil, DefaultAggregationKeys is used.
	AggregationKeys [][]Field

	// Membership locates generators without a region. It is only
	// consulted if such generators exist. If nil, those generators
	// are dropped.
	Membership MembershipSource

	Enricher Enricher

	// AmbiguousAs is the bucket that proposed projects matching
	// several existing projects are written to. Default Uprate.
	AmbiguousAs Class

	Collapse CollapseConfig

	// Output, if not nil, receives the output tables.
	Output ArtifactWriter

	// HeatRatePlot, if not empty, is the file a histogram of heat
	// rates is saved to.
	HeatRatePlot string

	Log logrus.FieldLogger
}

// Result holds the products of a pipeline run.
type Result struct {
	Year int

	// Projects are the aggregated, region-filtered and enriched projects.
	Projects []*Generator

	// Existing are the Operable projects; New and Uprates are the
	// reconciled Proposed projects.
	Existing, New, Uprates []*Generator

	Reconciliation *Reconciliation
	Enrichment     *Enrichment
	Plants         []*Plant

	// Missing923 and Missing860 are plants reported by only one survey.
	Missing923, Missing860 []Mismatch

	Report *Report
}

func (p *Pipeline) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// Run processes in.
func (p *Pipeline) Run(ctx context.Context, in *Inputs) (*Result, error) {
	log := p.log().WithFields(logrus.Fields{"year": p.Year, "region": p.Region})
	r := &Result{Year: p.Year, Report: NewReport(log)}

	for _, g := range in.Generators {
		if err := g.Validate(p.Year); err != nil {
			return nil, err
		}
	}
	logStage(log, "read generators", in.Generators)

	keys := p.AggregationKeys
	if keys == nil {
		keys = DefaultAggregationKeys
	}
	projects, err := Aggregate(in.Generators, keys)
	if err != nil {
		return nil, err
	}
	logStage(log, "aggregated generators into projects", projects)

	m, err := p.membership(ctx, projects)
	if err != nil {
		return nil, err
	}
	projects = AssignRegion(projects, p.Region, m, r.Report)
	logStage(log, "selected projects in region", projects)

	fuelGen := regionFuelGen(in.FuelGen, projects, p.Region)
	r.Missing923, r.Missing860 = CrossCheck(projects, fuelGen, r.Report)

	e := p.Enricher
	e.Year = p.Year
	e.Log = log
	e.Report = r.Report
	r.Enrichment = e.Enrich(projects, fuelGen)
	r.Projects = r.Enrichment.Projects

	var proposed []*Generator
	for _, g := range r.Projects {
		if g.Status == Operable {
			r.Existing = append(r.Existing, g)
		} else {
			proposed = append(proposed, g)
		}
	}
	r.Reconciliation = Reconcile(r.Existing, proposed, p.AmbiguousAs, r.Report)
	r.New, r.Uprates = r.Reconciliation.Buckets()

	cc := p.Collapse
	cc.Year = p.Year
	cc.Log = log
	if r.Plants, err = Collapse(r.Projects, cc); err != nil {
		return nil, err
	}

	if p.HeatRatePlot != "" {
		if err := PlotHeatRates(p.HeatRatePlot, r.Enrichment.Measured, r.Enrichment.Corrected); err != nil {
			return nil, err
		}
	}
	if p.Output != nil {
		if err := r.write(ctx, p.Output); err != nil {
			return nil, err
		}
	}
	r.Report.Summarize()
	return r, nil
}

// membership returns the county membership of the pipeline region if
// any project lacks a region, and an empty membership otherwise.
func (p *Pipeline) membership(ctx context.Context, projects []*Generator) (Membership, error) {
	needed := false
	for _, g := range projects {
		if g.NercRegion == "" {
			needed = true
			break
		}
	}
	if !needed || p.Membership == nil {
		return Membership{}, nil
	}
	m, err := p.Membership.Get(ctx, p.Region)
	if err != nil {
		return nil, fmt.Errorf("genfleet: getting %s county membership: %v", p.Region, err)
	}
	return m, nil
}

// regionFuelGen returns the generation and fuel rows for plants in
// projects or reported in region.
func regionFuelGen(rows []*FuelGen, projects []*Generator, region string) []*FuelGen {
	plants := make(map[int]bool)
	for _, g := range projects {
		plants[g.PlantCode] = true
	}
	var o []*FuelGen
	for _, f := range rows {
		if plants[f.PlantCode] || f.NercRegion == region {
			o = append(o, f)
		}
	}
	return o
}

// logStage logs the number and capacity of gens.
func logStage(log logrus.FieldLogger, msg string, gens []*Generator) {
	var operable, proposed float64
	var nOperable, nProposed int
	for _, g := range gens {
		if g.Status == Operable {
			operable += g.NameplateCapacity
			nOperable++
		} else {
			proposed += g.NameplateCapacity
			nProposed++
		}
	}
	log.WithFields(logrus.Fields{
		"operable":      nOperable,
		"operable (GW)": fmt.Sprintf("%.2f", operable/1000),
		"proposed":      nProposed,
		"proposed (GW)": fmt.Sprintf("%.2f", proposed/1000),
	}).Info(msg)
}

// ArtifactNames returns the names of the tables written for year.
func ArtifactNames(year int) []string {
	var o []string
	for _, n := range []string{
		"generation_projects", "existing_generation_projects", "new_generation_projects",
		"uprates_to_generation_projects", "gens_wo_heat_rate", "collapsed_generation_projects",
		"historic_heat_rates_WIDE", "historic_heat_rates_NARROW",
		"historic_hydro_capacity_factors_WIDE", "historic_hydro_capacity_factors_NARROW",
	} {
		o = append(o, fmt.Sprintf("%s_%d.tab", n, year))
	}
	return o
}

// write stores the output tables of r in out.
func (r *Result) write(ctx context.Context, out ArtifactWriter) error {
	names := ArtifactNames(r.Year)
	writers := []func(io.Writer) error{
		func(w io.Writer) error { return WriteGenerators(w, r.Projects) },
		func(w io.Writer) error { return WriteGenerators(w, r.Existing) },
		func(w io.Writer) error { return WriteGenerators(w, r.New) },
		func(w io.Writer) error { return WriteGenerators(w, r.Uprates) },
		func(w io.Writer) error { return WriteGenerators(w, r.Enrichment.WithoutHeatRate) },
		func(w io.Writer) error { return WritePlants(w, r.Plants) },
		func(w io.Writer) error { return WriteStatsWide(w, r.Enrichment.HeatRates) },
		func(w io.Writer) error {
			return WriteStatsNarrow(w, r.Enrichment.HeatRates, "Heat Rate (MMBtu/MWh)")
		},
		func(w io.Writer) error { return WriteStatsWide(w, r.Enrichment.HydroCapacityFactors) },
		func(w io.Writer) error {
			return WriteStatsNarrow(w, r.Enrichment.HydroCapacityFactors, "Capacity Factor")
		},
	}
	for i, name := range names {
		if err := out.Write(ctx, name, writers[i]); err != nil {
			return fmt.Errorf("genfleet: writing %s: %v", name, err)
		}
	}
	return nil
}
