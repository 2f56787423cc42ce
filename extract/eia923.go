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
	"context"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet"
)

// stateFuelIncrement is the plant code EIA-923 uses for state-level
// estimates of generation by plants that do not report monthly.
const stateFuelIncrement = 99999

var (
	elecFuelColumn = regexp.MustCompile(`(?i)^elec mmbtus? `)
	netGenColumn   = regexp.MustCompile(`(?i)^netgen `)
)

// monthColumns returns the indices of the twelve columns of t whose
// names match re, in worksheet order.
func monthColumns(t *table, re *regexp.Regexp) ([]int, error) {
	var o []int
	for j, name := range t.header {
		if re.MatchString(name) {
			o = append(o, j)
		}
	}
	if len(o) != 12 {
		return nil, fmt.Errorf("extract: %s has %d columns matching %q; want 12", t.name, len(o), re)
	}
	return o, nil
}

// Read923 reads the EIA-923 generation and fuel table for year from dir.
// Rows for state-level increments are skipped.
func (r *Reader) Read923(ctx context.Context, dir string, year int) ([]*genfleet.FuelGen, error) {
	l, err := LayoutFor(Layouts923, year)
	if err != nil {
		return nil, err
	}
	t, err := readTable(ctx, dir, GenerationFuel, l)
	if err != nil {
		return nil, err
	}
	for _, f := range []genfleet.Field{genfleet.PlantCode, genfleet.PrimeMover, genfleet.EnergySource} {
		if !t.has(f.String()) {
			return nil, fmt.Errorf("extract: %s has no %q column", t.name, f)
		}
	}
	for _, f := range []genfleet.Field{genfleet.PlantName, genfleet.State, genfleet.NercRegion} {
		if !t.has(f.String()) {
			r.Report.Add(genfleet.SchemaMismatch, fmt.Sprintf("%s has no %q column", t.name, f),
				logrus.Fields{"table": t.name, "column": f.String()})
		}
	}
	fuelCols, err := monthColumns(t, elecFuelColumn)
	if err != nil {
		r.Report.Add(genfleet.SchemaMismatch, err.Error(), logrus.Fields{"table": t.name})
		return nil, err
	}
	genCols, err := monthColumns(t, netGenColumn)
	if err != nil {
		r.Report.Add(genfleet.SchemaMismatch, err.Error(), logrus.Fields{"table": t.name})
		return nil, err
	}

	var o []*genfleet.FuelGen
	var increments int
	for i, row := range t.rows {
		code, ok := plantCode(t, i)
		if !ok {
			continue
		}
		if code == stateFuelIncrement {
			increments++
			continue
		}
		f := &genfleet.FuelGen{
			PlantCode:    code,
			PlantName:    NormalizeText(t.col(i, genfleet.PlantName.String())),
			State:        genfleet.NormalizeState(NormalizeText(t.col(i, genfleet.State.String()))),
			NercRegion:   NormalizeText(t.col(i, genfleet.NercRegion.String())),
			PrimeMover:   NormalizeText(t.col(i, genfleet.PrimeMover.String())),
			EnergySource: NormalizeText(t.col(i, genfleet.EnergySource.String())),
			Year:         year,
		}
		if y, ok := NormalizeNumber(t.col(i, "Year")); ok && y > 0 {
			f.Year = int(y)
		}
		for m := 0; m < 12; m++ {
			if f.ElecFuel[m], err = monthValue(t, row, fuelCols[m], i); err != nil {
				return nil, err
			}
			if f.NetGen[m], err = monthValue(t, row, genCols[m], i); err != nil {
				return nil, err
			}
		}
		o = append(o, f)
	}
	r.log().WithFields(logrus.Fields{
		"year":             year,
		"rows":             len(o),
		"state increments": increments,
	}).Info("read generation and fuel data")
	return o, nil
}

func monthValue(t *table, row []string, j, i int) (float64, error) {
	var s string
	if j < len(row) {
		s = row[j]
	}
	v, err := NormalizeSummable(s)
	if err != nil {
		return 0, fmt.Errorf("extract: %s row %d column %q: %w", t.name, i+1, t.header[j], err)
	}
	return v, nil
}
