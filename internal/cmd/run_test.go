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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/genfleet"
	"github.com/tealeg/xlsx"
)

// addSheet adds a sheet holding rows to f.
func addSheet(t *testing.T, f *xlsx.File, name string, rows [][]interface{}) {
	sh, err := f.AddSheet(name)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		row := sh.AddRow()
		for _, v := range r {
			c := row.AddCell()
			switch v := v.(type) {
			case float64:
				c.SetFloat(v)
			case int:
				c.SetInt(v)
			default:
				c.SetString(fmt.Sprint(v))
			}
		}
	}
}

func saveWorkbook(t *testing.T, path, sheetName string, rows [][]interface{}) {
	f := xlsx.NewFile()
	addSheet(t, f, sheetName, rows)
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}
}

// surveyData writes a small set of 2015 survey workbooks under dir.
func surveyData(t *testing.T, dir string) {
	d860 := filepath.Join(dir, "eia860_2015")
	d923 := filepath.Join(dir, "f923_2015")
	for _, d := range []string{d860, d923} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	title := []interface{}{"Form EIA-860 Data"}
	saveWorkbook(t, filepath.Join(d860, "2___Plant_Y2015.xlsx"), "Plant", [][]interface{}{
		title,
		{"Plant Code", "Plant Name", "State", "County", "NERC Region", "Latitude", "Longitude"},
		{1, "Alpha", "CA", "Kern", "WECC", 35.1, -119.2},
		{2, "Beta", "AZ", "Maricopa", "WECC", 33.4, -112.9},
	})
	f := xlsx.NewFile()
	for _, s := range []struct {
		name string
		rows [][]interface{}
	}{
		{"Operable", [][]interface{}{
			title,
			{"Plant Code", "Generator ID", "Prime Mover", "Energy Source 1", "Nameplate Capacity (MW)", "Operating Year"},
			{1, "1", "CT", "NG", 100.0, 2001},
			{2, "ST1", "ST", "NUC", 1000.0, 1985},
		}},
		{"Proposed", [][]interface{}{
			title,
			{"Plant Code", "Generator ID", "Prime Mover", "Energy Source 1", "Nameplate Capacity (MW)", "Current Year"},
			{1, "3", "CT", "NG", 50.0, 2018},
		}},
	} {
		addSheet(t, f, s.name, s.rows)
	}
	if err := f.Save(filepath.Join(d860, "3_1_Generator_Y2015.xlsx")); err != nil {
		t.Fatal(err)
	}

	months := []string{"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December"}
	header := []interface{}{"Plant Id", "Plant Name", "Plant State", "NERC Region",
		"Reported\nPrime Mover", "Reported\nFuel Type Code"}
	for _, prefix := range []string{"Elec_MMBtu\n", "Netgen\n"} {
		for _, m := range months {
			header = append(header, prefix+m)
		}
	}
	row := func(plant int, name, state, pm, es string, fuel, gen float64) []interface{} {
		r := []interface{}{plant, name, state, "WECC", pm, es}
		for range months {
			r = append(r, fuel)
		}
		for range months {
			r = append(r, gen)
		}
		return r
	}
	saveWorkbook(t, filepath.Join(d923, "EIA923_Schedules_2_3_4_5_2015_Final.xlsx"),
		"Page 1 Generation and Fuel Data", [][]interface{}{
			{"EIA-923 Monthly Generation and Fuel Consumption"},
			{"Source: Form EIA-923"}, {"Released 2016"}, {"Final"}, {"All values in MMBtu or MWh"},
			header,
			row(1, "Alpha", "CA", "CT", "NG", 950, 100),
			row(2, "Beta", "AZ", "ST", "NUC", 10400, 1000),
		})
}

func TestRunAndMerge(t *testing.T) {
	dir, err := ioutil.TempDir("", "genfleet_run")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	surveyData(t, dir)

	out := filepath.Join(dir, "out")
	cfg, err := ReadConfigFile(writeConfig(t, dir, fmt.Sprintf(`Years = [2015]
Region = "WECC"
EIA860Dir = %q
EIA923Dir = %q
Output = %q
`, filepath.Join(dir, "eia860_[YEAR]"), filepath.Join(dir, "f923_[YEAR]"), out)))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := Run(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	for _, name := range append(genfleet.ArtifactNames(2015), MergedPlants) {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	plants, err := readPlants(ctx, cfg, MergedPlants)
	if err != nil {
		t.Fatal(err)
	}
	if len(plants) != 2 {
		t.Fatalf("want 2 plants but have %d", len(plants))
	}
	for _, p := range plants {
		switch p.PlantCode {
		case 1:
			if p.Capacity != 100 || p.CapacityLimit != 150 || p.Year != 2015 {
				t.Errorf("plant 1: unexpected plant %+v", p)
			}
		case 2:
			if p.FuelCategory != "Nuclear" || p.Capacity != 1000 {
				t.Errorf("plant 2: unexpected plant %+v", p)
			}
		default:
			t.Errorf("unexpected plant %d", p.PlantCode)
		}
	}

	if err := os.Remove(filepath.Join(out, MergedPlants)); err != nil {
		t.Fatal(err)
	}
	if err := Merge(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	merged, err := readPlants(ctx, cfg, MergedPlants)
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != len(plants) {
		t.Errorf("want %d merged plants but have %d", len(plants), len(merged))
	}
}

func TestMembershipNotConfigured(t *testing.T) {
	cfg := &ConfigData{Years: []int{2015}, Region: "WECC"}
	if err := Membership(context.Background(), cfg, ioutil.Discard); err == nil {
		t.Error("expected error without boundary files")
	}
}
