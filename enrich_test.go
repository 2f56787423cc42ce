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
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

// fuelGenFor returns generation and fuel data that give g the
// specified minimum heat rate.
func fuelGenFor(g *Generator, heatRate float64) *FuelGen {
	f := &FuelGen{PlantCode: g.PlantCode, PrimeMover: g.PrimeMover, EnergySource: g.EnergySource, Year: 2016}
	f.ElecFuel[0], f.NetGen[0] = heatRate*100, 100
	f.ElecFuel[1], f.NetGen[1] = heatRate*150, 100
	return f
}

func TestWinsorize(t *testing.T) {
	rand.Seed(1)
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 10 + rand.NormFloat64()*3
	}
	once := Winsorize(values, 0.008, 0.992)
	twice := Winsorize(once, 0.008, 0.992)
	if !reflect.DeepEqual(once, twice) {
		t.Error("winsorizing twice differs from winsorizing once")
	}
	var clipped int
	for i := range values {
		if values[i] != once[i] {
			clipped++
		}
	}
	if clipped == 0 || clipped > 20 {
		t.Errorf("unexpected number of clipped values: %d", clipped)
	}
	if len(Winsorize(nil, 0.008, 0.992)) != 0 {
		t.Error("empty input should give empty output")
	}
}

// peerTestData returns five gas turbines with valid heat rates around
// 1998 and one much newer one.
func peerTestData() []*Generator {
	var o []*Generator
	for i, p := range []struct {
		year int
		hr   float64
	}{
		{1995, 9.1}, {1997, 9.0}, {1999, 9.4}, {2001, 9.3}, {2002, 9.2}, {2020, 7.0},
	} {
		g := gen(100+i, "1", "GT", "NG", 50, p.year)
		g.HeatRate = p.hr
		g.HeatRateSource = Measured
		o = append(o, g)
	}
	return o
}

func TestEnrichPeerWindow(t *testing.T) {
	peers := peerTestData()
	var fuelGen []*FuelGen
	for _, p := range peers {
		fuelGen = append(fuelGen, fuelGenFor(p, p.HeatRate))
	}
	// Unit x reports an implausibly low heat rate. There are two peers
	// within two years and five within four.
	x := gen(1, "1", "GT", "NG", 50, 1998)
	fuelGen = append(fuelGen, fuelGenFor(x, 5.0))
	// Unit y has no generation data at all.
	y := gen(2, "1", "GT", "NG", 50, 1998)
	// Proposed unit z gets the peer average for the filing year.
	z := gen(3, "1", "GT", "NG", 50, 2018)
	z.Status = Proposed

	e := &Enricher{Year: 2016}
	o := e.Enrich(append(peers, x, y, z), fuelGen)
	byPlant := make(map[int]*Generator)
	for _, g := range o.Projects {
		byPlant[g.PlantCode] = g
	}
	for _, test := range []struct {
		plant  int
		hr     float64
		source HeatRateSource
	}{
		{1, 9.2, PeerAverage},
		{2, 9.2, PeerAverage},
		{3, (7.0 + 9.2 + 9.3 + 9.4) / 4, PeerAverage},
		{100, 9.1, Measured},
		{105, 7.0, Measured},
	} {
		g := byPlant[test.plant]
		if different(test.hr, g.HeatRate, 1e-10) {
			t.Errorf("plant %d: want heat rate %g but have %g", test.plant, test.hr, g.HeatRate)
		}
		if g.HeatRateSource != test.source {
			t.Errorf("plant %d: want source %v but have %v", test.plant, test.source, g.HeatRateSource)
		}
	}
	// x is below the floor and y has no data, so both lack a measured heat rate.
	if len(o.WithoutHeatRate) != 2 || o.WithoutHeatRate[0].PlantCode != 1 || o.WithoutHeatRate[1].PlantCode != 2 {
		t.Errorf("unexpected projects without heat rate: %v", o.WithoutHeatRate)
	}
	if !math.IsNaN(x.HeatRate) {
		t.Error("input was modified")
	}
	if len(o.Measured) != 7 || len(o.Corrected) != 8 {
		t.Errorf("want 7 measured and 8 corrected heat rates but have %d and %d", len(o.Measured), len(o.Corrected))
	}
}

func TestPeerFallback(t *testing.T) {
	peers := newPeerIndex(peerTestData(), 4, 2, 90)
	tests := []struct {
		primeMover, fuel string
		year             int
		hr               float64
		source           HeatRateSource
	}{
		// No peers within 90 years: fall back to the prime mover mean.
		{"GT", "NG", 3000, (9.1 + 9.0 + 9.4 + 9.3 + 9.2 + 7.0) / 6, TechnologyAverage},
		// No peers with the same fuel.
		{"GT", "DFO", 1998, (9.1 + 9.0 + 9.4 + 9.3 + 9.2 + 7.0) / 6, TechnologyAverage},
		// Unknown operating year.
		{"GT", "NG", 0, (9.1 + 9.0 + 9.4 + 9.3 + 9.2 + 7.0) / 6, TechnologyAverage},
		// Fewer than four peers even at 90 years.
		{"GT", "NG", 2100, 7.0, PeerAverage},
		// No valid observations for the technology at all.
		{"ST", "BIT", 1998, math.NaN(), NoHeatRate},
	}
	for _, test := range tests {
		hr, source := peers.mean(test.primeMover, test.fuel, test.year)
		if different(test.hr, hr, 1e-10) || source != test.source {
			t.Errorf("%s %s %d: want %g (%v) but have %g (%v)", test.primeMover, test.fuel, test.year,
				test.hr, test.source, hr, source)
		}
	}
}

func TestEnrichHydroAndFuels(t *testing.T) {
	hydro := gen(10, "1", "HY", "WAT", 10, 1950)
	odd := gen(11, "1", "GT", "XYZ", 10, 1990)
	odd.HeatRate = 3
	coal := gen(12, "1", "ST", "SUB", 500, 1980)
	fg := &FuelGen{PlantCode: 10, PrimeMover: "HY", EnergySource: "WAT", Year: 2015}
	fg.NetGen[0] = 7440

	r := NewReport(nil)
	e := &Enricher{Year: 2015, Report: r}
	o := e.Enrich([]*Generator{hydro, odd, coal}, []*FuelGen{fg, fuelGenFor(coal, 8.0)})

	if have := o.Projects[0].HydroCapacityFactors[0]; different(1, have, 1e-12) {
		t.Errorf("want capacity factor 1 but have %g", have)
	}
	if have := r.Count(UnmappedFuel); have != 1 {
		t.Errorf("want 1 unmapped fuel but have %d", have)
	}
	if o.Projects[1].HeatRate != 3 {
		t.Error("unmapped fuel should be left out of the heat rate calculation")
	}
	// 8.0 is below the coal floor and there are no peers.
	if c := o.Projects[2]; !math.IsNaN(c.HeatRate) || c.HeatRateSource != NoHeatRate {
		t.Errorf("want no coal heat rate but have %g (%v)", c.HeatRate, c.HeatRateSource)
	}
	if have := r.Count(MissingHeatRate); have != 1 {
		t.Errorf("want 1 missing heat rate but have %d", have)
	}
}

func TestEnricherDefaults(t *testing.T) {
	for _, test := range []struct {
		name string
		in   Enricher
	}{
		{"unset", Enricher{}},
		{"negative", Enricher{MinPeers: -1, WindowStep: -2, MaxWindow: -90}},
		{"percent", Enricher{LowerPercentile: 0.8, UpperPercentile: 99.2}},
		{"negative percentile", Enricher{LowerPercentile: -0.1, UpperPercentile: -0.2}},
		{"reversed", Enricher{LowerPercentile: 0.9, UpperPercentile: 0.1}},
	} {
		t.Run(test.name, func(t *testing.T) {
			e := test.in
			e.setDefaults()
			if e.LowerPercentile != 0.008 || e.UpperPercentile != 0.992 ||
				e.MinPeers != 4 || e.WindowStep != 2 || e.MaxWindow != 90 {
				t.Errorf("unexpected options %+v", e)
			}
		})
	}
	e := Enricher{LowerPercentile: 0.05, UpperPercentile: 0.95, MinPeers: 2, WindowStep: 5, MaxWindow: 20}
	e.setDefaults()
	if e.LowerPercentile != 0.05 || e.UpperPercentile != 0.95 || e.MinPeers != 2 || e.WindowStep != 5 || e.MaxWindow != 20 {
		t.Errorf("valid options were changed: %+v", e)
	}
}

func TestEnrichNegativeWindowStep(t *testing.T) {
	p := gen(1, "1", "GT", "NG", 50, 2000)
	x := gen(2, "1", "GT", "NG", 50, 1990)
	done := make(chan *Enrichment)
	go func() {
		e := &Enricher{Year: 2016, WindowStep: -2, UpperPercentile: 99.2}
		done <- e.Enrich([]*Generator{p, x}, []*FuelGen{fuelGenFor(p, 9.0)})
	}()
	select {
	case o := <-done:
		if g := o.Projects[1]; g.HeatRate != 9.0 || g.HeatRateSource != PeerAverage {
			t.Errorf("want peer heat rate 9 but have %g (%v)", g.HeatRate, g.HeatRateSource)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("peer search did not terminate")
	}
}
