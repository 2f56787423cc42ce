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

package hash

import (
	"math"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	type params struct {
		File      string
		Threshold float64
	}
	a := Key("WECC counties", params{File: "counties.shp", Threshold: 0.5})
	b := Key("WECC counties", params{File: "counties.shp", Threshold: 0.5})
	c := Key("WECC counties", params{File: "counties.shp", Threshold: 0.6})
	if a != b {
		t.Errorf("keys for identical objects differ: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("keys for different objects are the same: %s", a)
	}
	if !strings.HasPrefix(a, "WECC_counties_") {
		t.Errorf("key %s doesn't have sanitized prefix", a)
	}
	if want, have := len("WECC_counties_")+keyLength, len(a); want != have {
		t.Errorf("key length: want %d but have %d", want, have)
	}
}

func TestHashNaN(t *testing.T) {
	m := map[float64]int{math.NaN(): 1}
	if Hash(m) == "" {
		t.Error("empty hash")
	}
}
