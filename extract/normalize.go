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

package extract

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spatialmodel/genfleet"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// columnRenames maps normalized column names used by some releases to
// the canonical vocabulary.
var columnRenames = map[string]string{
	"Sector":                     "Sector Number",
	"Carboncapture":              "Carbon Capture Technology",
	"Carbon Capture Technology?": "Carbon Capture Technology",
	"Nameplate":                  "Nameplate Capacity (MW)",
	"Proposed Nameplate":         "Nameplate Capacity (MW)",
	"Plant Id":                   "Plant Code",
	"Plntcode":                   "Plant Code",
	"Plntname":                   "Plant Name",
	"Plant State":                "State",
	"Reported Prime Mover":       "Prime Mover",
	"Primemover":                 "Prime Mover",
	"Reported Fuel Type Code":    "Energy Source",
	"Energy Source 1":            "Energy Source",
	"Gencode":                    "Generator Id",
	"Current Year":               "Operating Year",
	"Insvyear":                   "Operating Year",
	"Retireyear":                 "Planned Retirement Year",
	"Utilcode":                   "Utility Id",
	"Nerc":                       "Nerc Region",
	"Cntyname":                   "County",
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeColumn converts a worksheet column header into the canonical
// vocabulary: underscores and line breaks become spaces, words are title
// cased, unit abbreviations are restored, and release-specific names are
// renamed.
func NormalizeColumn(name string) string {
	name = strings.Replace(name, "_", " ", -1)
	name = strings.TrimSpace(spaces.ReplaceAllString(name, " "))
	name = cases.Title(language.English).String(name)
	name = strings.Replace(name, "(Mw)", "(MW)", -1)
	name = strings.Replace(name, "(Kv)", "(kV)", -1)
	if r, ok := columnRenames[name]; ok {
		return r
	}
	return name
}

// isSentinel reports whether s is one of the placeholders the surveys
// use for empty cells.
func isSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "."
}

// NormalizeSummable converts a cell of an additive column (capacity,
// minimum load, monthly fuel or generation) to a number. Placeholder
// cells mean that nothing was reported and become zero. Cells that are
// neither numbers nor placeholders cause genfleet.ErrUncoercedSentinel.
func NormalizeSummable(s string) (float64, error) {
	if isSentinel(s) {
		return 0, nil
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(v) {
		return math.NaN(), fmt.Errorf("%w: %q", genfleet.ErrUncoercedSentinel, s)
	}
	return v, nil
}

// NormalizeNumber converts a cell of a descriptive numeric column to
// a number. Placeholder cells are unknown and become NaN. ok is false
// if the cell holds something else, which is also returned as NaN.
func NormalizeNumber(s string) (v float64, ok bool) {
	if isSentinel(s) {
		return math.NaN(), true
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// NormalizeText trims a text cell; placeholders become "".
func NormalizeText(s string) string {
	if isSentinel(s) {
		return ""
	}
	return strings.TrimSpace(s)
}
