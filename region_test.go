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
	"reflect"
	"testing"
)

func TestNormalizeCounty(t *testing.T) {
	for in, want := range map[string]string{
		"KERN":               "Kern",
		"  san   bernardino ": "San Bernardino",
		"St. Louis County":   "St Louis",
		"Claveras":           "Calaveras",
		"De Witt":            "De Witt",
		"Orleans Parish":     "Orleans",
	} {
		if have := NormalizeCounty(in); have != want {
			t.Errorf("%q: want %q but have %q", in, want, have)
		}
	}
}

func TestNormalizeState(t *testing.T) {
	for in, want := range map[string]string{
		"CA":         "CA",
		"ca":         "CA",
		"06":         "CA",
		"6":          "CA",
		"California": "CA",
		"new mexico": "NM",
	} {
		if have := NormalizeState(in); have != want {
			t.Errorf("%q: want %q but have %q", in, want, have)
		}
	}
}

func testMembership() Membership {
	return Membership{
		NewCountyState("Kern", "CA"):      "WECC",
		NewCountyState("Calaveras", "CA"): "WECC",
		NewCountyState("Travis", "TX"):    "TRE",
	}
}

func TestAssignRegion(t *testing.T) {
	explicit := gen(1, "A", "GT", "NG", 100, 2005)
	explicit.NercRegion = "WECC"
	other := gen(2, "A", "GT", "NG", 100, 2005)
	other.NercRegion = "TRE"
	inferred := gen(3, "A", "GT", "NG", 100, 2005)
	inferred.County, inferred.State = "KERN", "CA"
	misspelled := gen(4, "A", "GT", "NG", 100, 2005)
	misspelled.County, misspelled.State = "Claveras", "CA"
	elsewhere := gen(5, "A", "GT", "NG", 100, 2005)
	elsewhere.County, elsewhere.State = "Travis", "TX"
	unknown := gen(6, "A", "GT", "NG", 100, 2005)
	unknown.County, unknown.State = "Nowhere", "CA"

	in := []*Generator{explicit, other, inferred, misspelled, elsewhere, unknown}
	r := NewReport(nil)
	out := AssignRegion(in, "WECC", testMembership(), r)

	var plants []int
	for _, g := range out {
		plants = append(plants, g.PlantCode)
		if g.NercRegion != "WECC" {
			t.Errorf("plant %d: want region WECC but have %q", g.PlantCode, g.NercRegion)
		}
	}
	if want := []int{1, 3, 4}; !reflect.DeepEqual(want, plants) {
		t.Errorf("want plants %v but have %v", want, plants)
	}
	if inferred.NercRegion != "" {
		t.Error("input was modified")
	}
	if have := r.Count(UnresolvedRegion); have != 1 {
		t.Errorf("want 1 unresolved generator but have %d", have)
	}
}

// The output of AssignRegion is always a subset of the input.
func TestAssignRegionSubset(t *testing.T) {
	var in []*Generator
	for i, loc := range [][3]string{
		{"", "Kern", "CA"}, {"WECC", "", ""}, {"", "", ""}, {"SERC", "Kern", "CA"},
		{"", "Travis", "TX"}, {"", "Calaveras", "06"},
	} {
		g := gen(i+1, "A", "ST", "NG", 10, 1990)
		g.NercRegion, g.County, g.State = loc[0], loc[1], loc[2]
		in = append(in, g)
	}
	byPlant := make(map[int]*Generator)
	for _, g := range in {
		byPlant[g.PlantCode] = g
	}
	for _, region := range []string{"WECC", "TRE", "SERC", "NPCC"} {
		out := AssignRegion(in, region, testMembership(), nil)
		if len(out) > len(in) {
			t.Fatalf("%s: more output than input", region)
		}
		for _, o := range out {
			g, ok := byPlant[o.PlantCode]
			if !ok {
				t.Errorf("%s: output plant %d is not in input", region, o.PlantCode)
				continue
			}
			if o != g && g.NercRegion != "" {
				t.Errorf("%s: plant %d with explicit region was copied", region, o.PlantCode)
			}
			if g.County != o.County || o.NercRegion != region {
				t.Errorf("%s: plant %d was changed beyond its region", region, o.PlantCode)
			}
		}
	}
}

func TestMembershipRoundTrip(t *testing.T) {
	m := testMembership()
	b := new(bytes.Buffer)
	if err := WriteMembership(b, m); err != nil {
		t.Fatal(err)
	}
	want := "County\tState\tRegion\nCalaveras\tCA\tWECC\nKern\tCA\tWECC\nTravis\tTX\tTRE\n"
	if b.String() != want {
		t.Errorf("want %q but have %q", want, b.String())
	}
	m2, err := ReadMembership(b)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, m2) {
		t.Errorf("want %v but have %v", m, m2)
	}
	if _, err := ReadMembership(bytes.NewBufferString("a\tb\n")); err == nil {
		t.Error("expected header error")
	}
}
