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
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Plant is the final record for one plant, prime mover, and energy
// source, combining the existing and proposed projects that share them.
type Plant struct {
	PlantCode    int
	PlantName    string
	PrimeMover   string
	EnergySource string
	FuelCategory string

	// Year is the filing year of the run that produced the record.
	Year int

	// OperatingYear is the latest operating year among the projects.
	OperatingYear int

	County, State, NercRegion string
	Latitude, Longitude       float64

	// Capacity is the nameplate capacity (MW) of the Operable projects.
	Capacity float64

	// CapacityLimit is the nameplate capacity (MW) of all projects,
	// including proposed ones. It caps how much capacity can be built.
	CapacityLimit float64

	// FullLoadHeatRate is the capacity-weighted mean heat rate
	// (MMBtu/MWh) of the projects, or NaN if none have one.
	FullLoadHeatRate float64

	// HydroCapacityFactors are capacity-weighted monthly capacity
	// factors for hydroelectric plants.
	HydroCapacityFactors [12]float64

	IsBaseload, IsVariable, IsCogen bool
}

// Flags holds boolean expressions that classify plants. The expressions
// can use the variables EnergySource, FuelCategory, PrimeMover (strings),
// and Cogen (true if any project is part of a combined heat and power
// system).
type Flags struct {
	Baseload, Variable, Cogen string
}

// DefaultFlags are the plant classifications used when none are configured.
var DefaultFlags = Flags{
	Baseload: "FuelCategory IN ('Nuclear', 'Coal', 'Geothermal')",
	Variable: "FuelCategory IN ('Solar', 'Wind')",
	Cogen:    "Cogen",
}

// DefaultExcludedSources are energy sources that are not generation
// in their own right: purchased steam and stored electricity.
var DefaultExcludedSources = []string{"PUR", "MWH"}

// CollapseConfig holds Collapse settings.
type CollapseConfig struct {
	// Year is the filing year recorded in the output.
	Year int

	// Exclude lists energy source codes to leave out. If nil,
	// DefaultExcludedSources is used.
	Exclude []string

	// Flags classify the plants. Empty expressions are
	// replaced with the corresponding DefaultFlags entry.
	Flags Flags

	Log logrus.FieldLogger
}

type flagExpressions struct {
	baseload, variable, cogen *govaluate.EvaluableExpression
}

func (f Flags) compile() (*flagExpressions, error) {
	o := new(flagExpressions)
	for _, e := range []struct {
		expr, def string
		dst       **govaluate.EvaluableExpression
	}{
		{f.Baseload, DefaultFlags.Baseload, &o.baseload},
		{f.Variable, DefaultFlags.Variable, &o.variable},
		{f.Cogen, DefaultFlags.Cogen, &o.cogen},
	} {
		expr := orDefault(e.expr, e.def)
		ee, err := govaluate.NewEvaluableExpression(expr)
		if err != nil {
			return nil, fmt.Errorf("genfleet: parsing flag expression %q: %v", expr, err)
		}
		*e.dst = ee
	}
	return o, nil
}

func evalBool(e *govaluate.EvaluableExpression, params map[string]interface{}) (bool, error) {
	v, err := e.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("genfleet: evaluating %q: %v", e.String(), err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("genfleet: expression %q gives %T, not bool", e.String(), v)
	}
	return b, nil
}

// Collapse combines projects into one Plant for each plant, prime
// mover, and energy source, leaving out excluded energy sources.
func Collapse(projects []*Generator, c CollapseConfig) ([]*Plant, error) {
	flags, err := c.Flags.compile()
	if err != nil {
		return nil, err
	}
	exclude := make(map[string]bool)
	if c.Exclude == nil {
		c.Exclude = DefaultExcludedSources
	}
	for _, es := range c.Exclude {
		exclude[es] = true
	}

	var keys []StatKey
	groups := make(map[StatKey][]*Generator)
	var excluded int
	for _, g := range projects {
		if exclude[g.EnergySource] {
			excluded++
			continue
		}
		k := KeyOf(g)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], g)
	}

	o := make([]*Plant, len(keys))
	var capacity, limit float64
	for i, k := range keys {
		p, err := collapseGroup(groups[k], c.Year, flags)
		if err != nil {
			return nil, err
		}
		o[i] = p
		capacity += p.Capacity
		limit += p.CapacityLimit
	}
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"plants":              len(o),
		"excluded projects":   excluded,
		"capacity (GW)":       fmt.Sprintf("%.2f", capacity/1000),
		"capacity limit (GW)": fmt.Sprintf("%.2f", limit/1000),
	}).Info("collapsed projects")
	return o, nil
}

func collapseGroup(gens []*Generator, year int, flags *flagExpressions) (*Plant, error) {
	rep := gens[0].Clone()
	var cogen bool
	var capacity float64
	for i, g := range gens {
		if i > 0 {
			combine(rep, g)
		}
		if g.Status == Operable {
			capacity += g.NameplateCapacity
		}
		cogen = cogen || g.Cogen == "Y"
	}
	fuel, _ := FuelCategory(rep.EnergySource)
	p := &Plant{
		PlantCode:            rep.PlantCode,
		PlantName:            rep.PlantName,
		PrimeMover:           rep.PrimeMover,
		EnergySource:         rep.EnergySource,
		FuelCategory:         fuel,
		Year:                 year,
		OperatingYear:        rep.OperatingYear,
		County:               rep.County,
		State:                rep.State,
		NercRegion:           rep.NercRegion,
		Latitude:             rep.Latitude,
		Longitude:            rep.Longitude,
		Capacity:             capacity,
		CapacityLimit:        rep.NameplateCapacity,
		FullLoadHeatRate:     weightedHeatRate(gens),
		HydroCapacityFactors: weightedCapacityFactors(gens),
	}
	params := map[string]interface{}{
		"EnergySource": p.EnergySource,
		"FuelCategory": p.FuelCategory,
		"PrimeMover":   p.PrimeMover,
		"Cogen":        cogen,
	}
	var err error
	if p.IsBaseload, err = evalBool(flags.baseload, params); err != nil {
		return nil, err
	}
	if p.IsVariable, err = evalBool(flags.variable, params); err != nil {
		return nil, err
	}
	if p.IsCogen, err = evalBool(flags.cogen, params); err != nil {
		return nil, err
	}
	return p, nil
}

// weightedHeatRate returns the capacity-weighted mean heat rate of the
// generators that have one. If their total capacity is zero, the
// unweighted mean is returned.
func weightedHeatRate(gens []*Generator) float64 {
	var hr, w []float64
	for _, g := range gens {
		if !math.IsNaN(g.HeatRate) {
			hr = append(hr, g.HeatRate)
			w = append(w, g.NameplateCapacity)
		}
	}
	return weightedMean(hr, w)
}

func weightedMean(x, w []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	var total float64
	for _, v := range w {
		total += v
	}
	if total == 0 {
		return stat.Mean(x, nil)
	}
	return stat.Mean(x, w)
}

// weightedCapacityFactors returns the capacity-weighted monthly
// capacity factors of the generators that have them.
func weightedCapacityFactors(gens []*Generator) [12]float64 {
	var o [12]float64
	for m := range o {
		var cf, w []float64
		for _, g := range gens {
			if v := g.HydroCapacityFactors[m]; !math.IsNaN(v) {
				cf = append(cf, v)
				w = append(w, g.NameplateCapacity)
			}
		}
		o[m] = weightedMean(cf, w)
	}
	return o
}

// MergeRuns merges the plants produced by runs for several years.
// For each plant, prime mover, and energy source the record from the
// latest year is kept. If that record has no heat rate, the heat rate
// from the latest earlier year that has one is used. The output is
// sorted by plant code, prime mover, and energy source.
func MergeRuns(runs ...[]*Plant) []*Plant {
	var all []*Plant
	for _, r := range runs {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Year < all[j].Year })

	latest := make(map[StatKey]*Plant)
	for _, p := range all {
		k := StatKey{PlantCode: p.PlantCode, PrimeMover: p.PrimeMover, EnergySource: p.EnergySource}
		prev, ok := latest[k]
		c := *p
		if ok && math.IsNaN(c.FullLoadHeatRate) {
			c.FullLoadHeatRate = prev.FullLoadHeatRate
		}
		latest[k] = &c
	}
	o := make([]*Plant, 0, len(latest))
	for _, p := range latest {
		o = append(o, p)
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].PlantCode != o[j].PlantCode {
			return o[i].PlantCode < o[j].PlantCode
		}
		if o[i].PrimeMover != o[j].PrimeMover {
			return o[i].PrimeMover < o[j].PrimeMover
		}
		return o[i].EnergySource < o[j].EnergySource
	})
	return o
}
