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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Enricher attaches heat rates and hydroelectric capacity factors
// to generation projects.
//
// Heat rates are measured from the EIA-923 fuel and generation data as
// the lowest positive monthly heat rate of the year, which approximates
// the full-load heat rate. Measured heat rates below a fuel-specific floor
// are treated as missing, the remaining ones are winsorized, and missing
// values are filled with the mean heat rate of peers: projects with the
// same prime mover and fuel that started operating around the same year.
type Enricher struct {
	// Year is the filing year. Proposed projects receive the
	// average heat rate of peers operating in this year.
	Year int

	// LowerPercentile and UpperPercentile bound the winsorization. They
	// are fractions strictly between 0 and 1, and Lower must be less than
	// Upper. Defaults are 0.008 and 0.992.
	LowerPercentile, UpperPercentile float64

	// MinPeers is the number of peers needed before the peer search
	// window stops widening. Default 4.
	MinPeers int

	// WindowStep is both the initial half-width of the operating-year
	// peer window and the amount it widens by. Default 2.
	WindowStep int

	// MaxWindow is the largest window half-width. Default 90.
	// Non-positive MinPeers, WindowStep, and MaxWindow mean the default.
	MaxWindow int

	Log    logrus.FieldLogger
	Report *Report
}

// setDefaults replaces unset or out-of-range options with their defaults.
func (e *Enricher) setDefaults() {
	if e.LowerPercentile <= 0 || e.LowerPercentile >= 1 {
		e.LowerPercentile = 0.008
	}
	if e.UpperPercentile <= 0 || e.UpperPercentile >= 1 {
		e.UpperPercentile = 0.992
	}
	if e.UpperPercentile <= e.LowerPercentile {
		e.LowerPercentile, e.UpperPercentile = 0.008, 0.992
	}
	if e.MinPeers <= 0 {
		e.MinPeers = 4
	}
	if e.WindowStep <= 0 {
		e.WindowStep = 2
	}
	if e.MaxWindow <= 0 {
		e.MaxWindow = 90
	}
	if e.Log == nil {
		e.Log = logrus.StandardLogger()
	}
}

// Enrichment is the result of Enrich.
type Enrichment struct {
	// Projects are copies of the input projects with heat rates and
	// capacity factors filled in.
	Projects []*Generator

	// HeatRates and HydroCapacityFactors are the monthly statistics the
	// projects' values were derived from.
	HeatRates, HydroCapacityFactors []*MonthlyStat

	// WithoutHeatRate holds the Operable thermal projects for which
	// no valid heat rate could be measured, either because there is no
	// fuel and generation data or because the measured value is below
	// the floor for its fuel. Their heat rates are filled from peers.
	WithoutHeatRate []*Generator

	// Measured and Corrected hold the Operable thermal heat rates before
	// and after outlier correction.
	Measured, Corrected []float64
}

// Enrich attaches heat rates and capacity factors calculated from
// fuelGen to copies of projects.
func (e *Enricher) Enrich(projects []*Generator, fuelGen []*FuelGen) *Enrichment {
	e.setDefaults()
	o := &Enrichment{
		HeatRates:            HeatRates(fuelGen),
		HydroCapacityFactors: HydroCapacityFactors(fuelGen, projects),
	}
	e.reportUnmappedFuels(projects, fuelGen)

	minHR := make(map[StatKey]float64, len(o.HeatRates))
	for _, s := range o.HeatRates {
		minHR[s.StatKey] = s.MinPositive()
	}
	cfs := make(map[StatKey][12]float64, len(o.HydroCapacityFactors))
	for _, s := range o.HydroCapacityFactors {
		cfs[s.StatKey] = s.Values
	}

	var existing, proposed []*Generator
	o.Projects = make([]*Generator, len(projects))
	for i, p := range projects {
		g := p.Clone()
		o.Projects[i] = g
		if g.IsHydro() && g.Status == Operable {
			if cf, ok := cfs[KeyOf(g)]; ok {
				g.HydroCapacityFactors = cf
			}
		}
		if _, known := FuelCategory(g.EnergySource); !known || !g.IsThermal() {
			continue
		}
		switch g.Status {
		case Operable:
			g.HeatRate = math.NaN()
			g.HeatRateSource = NoHeatRate
			if hr, ok := minHR[KeyOf(g)]; ok && !math.IsNaN(hr) {
				g.HeatRate = hr
				g.HeatRateSource = Measured
				o.Measured = append(o.Measured, hr)
			}
			existing = append(existing, g)
		case Proposed:
			proposed = append(proposed, g)
		}
	}

	peers, invalid := e.correct(existing)
	o.WithoutHeatRate = invalid
	for _, g := range existing {
		if !math.IsNaN(g.HeatRate) {
			o.Corrected = append(o.Corrected, g.HeatRate)
		}
	}
	for _, g := range proposed {
		g.HeatRate, g.HeatRateSource = peers.mean(g.PrimeMover, g.Fuel(), e.Year)
		if g.HeatRateSource == NoHeatRate {
			e.Report.Add(MissingHeatRate, fmt.Sprintf("proposed project at plant %d (%s %s) has no peers",
				g.PlantCode, g.PrimeMover, g.EnergySource), logrus.Fields{
				"plant": g.PlantCode, "prime mover": g.PrimeMover, "energy source": g.EnergySource,
			})
		}
	}
	e.summarize(o, existing, proposed)
	return o
}

// correct removes implausible heat rates from gens, winsorizes the rest,
// and fills the gaps with peer averages. It returns the peer index built
// from the valid heat rates and the projects that had no valid heat rate.
func (e *Enricher) correct(gens []*Generator) (*peerIndex, []*Generator) {
	var valid, invalid []*Generator
	for _, g := range gens {
		if math.IsNaN(g.HeatRate) || g.HeatRate < heatRateFloor(g.EnergySource) {
			g.HeatRate = math.NaN()
			g.HeatRateSource = NoHeatRate
			invalid = append(invalid, g)
			continue
		}
		valid = append(valid, g)
	}
	values := make([]float64, len(valid))
	for i, g := range valid {
		values[i] = g.HeatRate
	}
	values = Winsorize(values, e.LowerPercentile, e.UpperPercentile)
	for i, g := range valid {
		g.HeatRate = values[i]
	}

	peers := newPeerIndex(valid, e.MinPeers, e.WindowStep, e.MaxWindow)
	for _, g := range gens {
		if g.HeatRateSource != NoHeatRate {
			continue
		}
		g.HeatRate, g.HeatRateSource = peers.mean(g.PrimeMover, g.Fuel(), g.OperatingYear)
		if g.HeatRateSource == NoHeatRate {
			e.Report.Add(MissingHeatRate, fmt.Sprintf("plant %d (%s %s) has no valid heat rate and no peers",
				g.PlantCode, g.PrimeMover, g.EnergySource), logrus.Fields{
				"plant": g.PlantCode, "prime mover": g.PrimeMover, "energy source": g.EnergySource,
			})
		}
	}
	return peers, invalid
}

// Winsorize returns a copy of values where values below the lower
// quantile are set to the lower quantile and values above the upper
// quantile are set to the upper quantile. Quantiles are empirical,
// so applying Winsorize twice gives the same result as applying it once.
func Winsorize(values []float64, lower, upper float64) []float64 {
	o := make([]float64, len(values))
	copy(o, values)
	if len(values) == 0 {
		return o
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	lo := stat.Quantile(lower, stat.Empirical, sorted, nil)
	hi := stat.Quantile(upper, stat.Empirical, sorted, nil)
	for i, v := range o {
		o[i] = math.Max(lo, math.Min(hi, v))
	}
	return o
}

type techKey struct {
	primeMover, fuel string
}

type peer struct {
	year     int
	heatRate float64
}

// peerIndex finds peer-average heat rates.
type peerIndex struct {
	byTech       map[techKey][]peer
	byPrimeMover map[string][]float64

	minPeers, windowStep, maxWindow int
}

func newPeerIndex(valid []*Generator, minPeers, windowStep, maxWindow int) *peerIndex {
	p := &peerIndex{
		byTech:       make(map[techKey][]peer),
		byPrimeMover: make(map[string][]float64),
		minPeers:     minPeers,
		windowStep:   windowStep,
		maxWindow:    maxWindow,
	}
	for _, g := range valid {
		if g.OperatingYear != 0 {
			k := techKey{primeMover: g.PrimeMover, fuel: g.Fuel()}
			p.byTech[k] = append(p.byTech[k], peer{year: g.OperatingYear, heatRate: g.HeatRate})
		}
		p.byPrimeMover[g.PrimeMover] = append(p.byPrimeMover[g.PrimeMover], g.HeatRate)
	}
	return p
}

// mean returns the mean heat rate of the peers of a project with the
// given prime mover, fuel, and operating year. The operating-year window
// widens until it holds enough peers or reaches its maximum width.
// If there are no peers at the maximum width, the mean over all
// projects with the same prime mover is returned instead.
func (p *peerIndex) mean(primeMover, fuel string, year int) (float64, HeatRateSource) {
	if peers := p.byTech[techKey{primeMover: primeMover, fuel: fuel}]; year != 0 && len(peers) > 0 {
		for w := p.windowStep; ; w += p.windowStep {
			var hr []float64
			for _, pp := range peers {
				if absInt(pp.year-year) <= w {
					hr = append(hr, pp.heatRate)
				}
			}
			if len(hr) >= p.minPeers || w >= p.maxWindow {
				if len(hr) > 0 {
					return stat.Mean(hr, nil), PeerAverage
				}
				break
			}
		}
	}
	if hr := p.byPrimeMover[primeMover]; len(hr) > 0 {
		return stat.Mean(hr, nil), TechnologyAverage
	}
	return math.NaN(), NoHeatRate
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// reportUnmappedFuels adds an issue for each energy source code that
// isn't in the fuel taxonomy.
func (e *Enricher) reportUnmappedFuels(projects []*Generator, fuelGen []*FuelGen) {
	counts := make(map[string]int)
	for _, g := range projects {
		if _, ok := FuelCategory(g.EnergySource); !ok {
			counts[g.EnergySource]++
		}
	}
	for _, r := range fuelGen {
		if _, ok := FuelCategory(r.EnergySource); !ok {
			counts[r.EnergySource]++
		}
	}
	for _, code := range countBy(counts) {
		e.Report.Add(UnmappedFuel, fmt.Sprintf("energy source %q has no fuel category (%d rows)", code, counts[code]),
			logrus.Fields{"energy source": code, "rows": counts[code]})
	}
}

// summarize logs statistics about the enrichment.
func (e *Enricher) summarize(o *Enrichment, existing, proposed []*Generator) {
	var hrCap, capacity []float64
	for _, g := range existing {
		if g.HeatRateSource == Measured && g.HeatRate <= 30 {
			hrCap = append(hrCap, g.HeatRate*g.NameplateCapacity)
			capacity = append(capacity, g.NameplateCapacity)
		}
	}
	weighted := math.NaN()
	if s := floats.Sum(capacity); s > 0 {
		weighted = floats.Sum(hrCap) / s
	}
	var missing float64
	if len(existing) > 0 {
		missing = 100 * float64(len(o.WithoutHeatRate)) / float64(len(existing))
	}
	e.Log.WithFields(logrus.Fields{
		"thermal projects":       len(existing),
		"without heat rate (%)":  fmt.Sprintf("%.1f", missing),
		"proposed projects":      len(proposed),
		"weighted heat rate":     fmt.Sprintf("%.3f", weighted),
		"hydro capacity factors": len(o.HydroCapacityFactors),
		"heat rate series":       len(o.HeatRates),
	}).Info("enriched projects")
}
