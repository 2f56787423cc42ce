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
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

type fakeMembership struct {
	m     Membership
	calls int
}

func (f *fakeMembership) Get(ctx context.Context, region string) (Membership, error) {
	f.calls++
	if region != "WECC" {
		return nil, fmt.Errorf("no region %s", region)
	}
	return f.m, nil
}

type memOutput map[string]*bytes.Buffer

func (m memOutput) Write(ctx context.Context, name string, write func(io.Writer) error) error {
	b := new(bytes.Buffer)
	if err := write(b); err != nil {
		return err
	}
	m[name] = b
	return nil
}

func pipelineTestData() *Inputs {
	located := gen(2, "1", "ST", "NUC", 1000, 1985)
	located.County, located.State = "Kern County", "06"
	unlocated := gen(4, "1", "WT", "WND", 200, 2010)
	unlocated.County, unlocated.State = "Harris", "TX"
	other := gen(3, "1", "ST", "BIT", 500, 1980)
	other.NercRegion = "TRE"
	gens := []*Generator{
		gen(1, "1", "CT", "NG", 100, 2000),
		gen(1, "2", "CT", "NG", 50, 2000),
		located, unlocated, other,
		proposedGen(1, "CT", "NG", 40),
		proposedGen(5, "CC", "NG", 300),
	}
	for _, g := range gens {
		if g.NercRegion == "" && g.County == "" {
			g.NercRegion = "WECC"
		}
	}
	return &Inputs{
		Generators: gens,
		FuelGen: []*FuelGen{
			fuelGenFor(gens[0], 9.5),
			fuelGenFor(located, 10.4),
			fuelGenFor(other, 10),
			{PlantCode: 6, PrimeMover: "GT", EnergySource: "NG", NercRegion: "WECC", NetGen: [12]float64{5}},
		},
	}
}

func TestPipeline(t *testing.T) {
	membership := &fakeMembership{m: Membership{NewCountyState("Kern", "CA"): "WECC"}}
	out := make(memOutput)
	p := &Pipeline{
		Year:       2016,
		Region:     "WECC",
		Membership: membership,
		Output:     out,
	}
	r, err := p.Run(context.Background(), pipelineTestData())
	if err != nil {
		t.Fatal(err)
	}
	if membership.calls != 1 {
		t.Errorf("membership should be requested once but was requested %d times", membership.calls)
	}
	if len(r.Projects) != 4 || len(r.Existing) != 2 || len(r.New) != 1 || len(r.Uprates) != 1 {
		t.Errorf("unexpected project counts: %d projects, %d existing, %d new, %d uprates",
			len(r.Projects), len(r.Existing), len(r.New), len(r.Uprates))
	}
	if r.New[0].PlantCode != 5 || r.Uprates[0].PlantCode != 1 {
		t.Errorf("misclassified proposed projects: new %d, uprate %d", r.New[0].PlantCode, r.Uprates[0].PlantCode)
	}
	for _, g := range r.Existing {
		switch g.PlantCode {
		case 1:
			if g.NameplateCapacity != 150 || different(g.HeatRate, 9.5, 1e-9) {
				t.Errorf("plant 1: unexpected capacity %g or heat rate %g", g.NameplateCapacity, g.HeatRate)
			}
		case 2:
			if g.NercRegion != "WECC" || different(g.HeatRate, 10.4, 1e-9) {
				t.Errorf("plant 2: unexpected region %q or heat rate %g", g.NercRegion, g.HeatRate)
			}
		default:
			t.Errorf("unexpected existing project at plant %d", g.PlantCode)
		}
	}
	if r.Report.Count(UnresolvedRegion) != 1 {
		t.Errorf("want 1 unresolved region but have %d", r.Report.Count(UnresolvedRegion))
	}
	if len(r.Missing923) != 0 || len(r.Missing860) != 1 || r.Missing860[0].PlantCode != 6 {
		t.Errorf("unexpected cross-check results %+v, %+v", r.Missing923, r.Missing860)
	}

	if len(r.Plants) != 3 {
		t.Fatalf("want 3 plants but have %d", len(r.Plants))
	}
	if c := r.Plants[0]; c.PlantCode != 1 || c.Capacity != 150 || c.CapacityLimit != 190 {
		t.Errorf("unexpected collapsed plant %+v", c)
	}

	for _, name := range ArtifactNames(2016) {
		if _, ok := out[name]; !ok {
			t.Errorf("missing output %s", name)
		}
	}
	plants, err := ReadPlants(out["collapsed_generation_projects_2016.tab"])
	if err != nil {
		t.Fatal(err)
	}
	if len(plants) != 3 {
		t.Errorf("want 3 plants in output but have %d", len(plants))
	}
}

func TestPipelineMembershipNotNeeded(t *testing.T) {
	membership := &fakeMembership{}
	p := &Pipeline{Year: 2016, Region: "TRE", Membership: membership}
	in := pipelineTestData()
	var gens []*Generator
	for _, g := range in.Generators {
		if g.NercRegion != "" {
			gens = append(gens, g)
		}
	}
	in.Generators = gens
	r, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if membership.calls != 0 {
		t.Error("membership should not be requested")
	}
	if len(r.Projects) != 1 || r.Projects[0].PlantCode != 3 {
		t.Errorf("unexpected projects %v", r.Projects)
	}
}

func TestPipelineInvalid(t *testing.T) {
	in := pipelineTestData()
	in.Generators[0].OperatingYear = 2030
	p := &Pipeline{Year: 2016, Region: "WECC"}
	if _, err := p.Run(context.Background(), in); err == nil {
		t.Error("expected error for generator operating in the future")
	}
}

func TestPlotHeatRates(t *testing.T) {
	dir, err := ioutil.TempDir("", "genfleet_plot")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "heat_rates.png")
	if err := PlotHeatRates(filename, []float64{2, 7, 9, 10, 45}, []float64{6.7, 7, 9, 10, 15}); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(filename); err != nil || fi.Size() == 0 {
		t.Errorf("plot was not written: %v", err)
	}
}
