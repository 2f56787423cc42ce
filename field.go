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
	"errors"
	"fmt"
	"math"
	"strings"
)

// Field identifies one of the descriptive attributes of a Generator.
// Fields are used to specify aggregation keys and tabular output columns.
type Field int

// These are the canonical Generator fields.
const (
	PlantCode Field = iota
	PlantName
	UtilityID
	GeneratorID
	UnitCode
	PrimeMover
	EnergySource
	NameplateCapacity
	MinimumLoad
	OperatingYear
	PlannedRetirementYear
	County
	State
	NercRegion
	Latitude
	Longitude
	BalancingAuthority
	GridVoltage
	ColdStartTime
	CarbonCapture
	Cogen
	numFields
)

// fieldNames holds the canonical column names, which follow
// the EIA-860 headers after normalization.
var fieldNames = [numFields]string{
	"Plant Code",
	"Plant Name",
	"Utility Id",
	"Generator Id",
	"Unit Code",
	"Prime Mover",
	"Energy Source",
	"Nameplate Capacity (MW)",
	"Minimum Load (MW)",
	"Operating Year",
	"Planned Retirement Year",
	"County",
	"State",
	"Nerc Region",
	"Latitude",
	"Longitude",
	"Balancing Authority Name",
	"Grid Voltage (kV)",
	"Time From Cold Shutdown To Full Load",
	"Carbon Capture Technology",
	"Associated With Combined Heat And Power System",
}

type fieldKind int

const (
	intKind fieldKind = iota
	floatKind
	stringKind
)

// ErrUnknownField is returned when a column name does not match
// any canonical field.
var ErrUnknownField = errors.New("genfleet: unknown field")

// AllFields returns every canonical field in column order.
func AllFields() []Field {
	o := make([]Field, numFields)
	for i := range o {
		o[i] = Field(i)
	}
	return o
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField returns the field with the given canonical column name.
// Matching ignores case and surrounding whitespace.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for i, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return Field(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ParseFields converts lists of column names to lists of fields.
func ParseFields(names [][]string) ([][]Field, error) {
	o := make([][]Field, len(names))
	for i, set := range names {
		o[i] = make([]Field, len(set))
		for j, n := range set {
			f, err := ParseField(n)
			if err != nil {
				return nil, err
			}
			o[i][j] = f
		}
	}
	return o, nil
}

// Summable reports whether values of f are additive across units.
// Summable fields are summed during aggregation; all other fields
// take the maximum.
func (f Field) Summable() bool {
	return f == NameplateCapacity || f == MinimumLoad
}

// IsNumeric reports whether values of f are numbers.
func (f Field) IsNumeric() bool { return f.kind() != stringKind }

// LastYearFields are only carried for the most recent survey year.
// Earlier surveys lack some of them and they describe the current fleet.
var LastYearFields = []Field{
	MinimumLoad, Latitude, Longitude, BalancingAuthority,
	GridVoltage, ColdStartTime, CarbonCapture,
}

func (f Field) kind() fieldKind {
	switch f {
	case PlantCode, UtilityID, OperatingYear, PlannedRetirementYear:
		return intKind
	case NameplateCapacity, MinimumLoad, Latitude, Longitude, GridVoltage:
		return floatKind
	default:
		return stringKind
	}
}

// cell is a kind-agnostic view of one field value.
type cell struct {
	num  float64
	str  string
	null bool
}

func intCell(v int) cell { return cell{num: float64(v), null: v == 0} }
func floatCell(v float64) cell { return cell{num: v, null: math.IsNaN(v)} }
func stringCell(v string) cell { return cell{str: v, null: v == ""} }
func (c cell) intValue() int {
	if c.null {
		return 0
	}
	return int(c.num)
}
func (c cell) floatValue() float64 {
	if c.null {
		return math.NaN()
	}
	return c.num
}

// format renders the cell for keys and tabular output. Nulls are empty.
func (c cell) format(k fieldKind) string {
	if c.null {
		return ""
	}
	switch k {
	case intKind:
		return fmt.Sprintf("%d", int(c.num))
	case floatKind:
		return formatFloat(c.num)
	default:
		return c.str
	}
}

// maxCell returns the larger of a and b, ignoring nulls. Numbers compare
// numerically and strings lexicographically.
func maxCell(a, b cell, k fieldKind) cell {
	if a.null {
		return b
	}
	if b.null {
		return a
	}
	if k == stringKind {
		if b.str > a.str {
			return b
		}
		return a
	}
	if b.num > a.num {
		return b
	}
	return a
}
