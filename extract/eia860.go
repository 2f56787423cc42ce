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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet"
)

// Reader reads survey releases.
type Reader struct {
	// CoreOnly clears genfleet.LastYearFields from the generators read.
	// It is used for every year except the most recent one.
	CoreOnly bool

	Log    logrus.FieldLogger
	Report *genfleet.Report
}

func (r *Reader) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// plantFields are the fields taken from the plant table, where
// they are reported once per plant.
var plantFields = []genfleet.Field{
	genfleet.PlantName, genfleet.UtilityID, genfleet.County, genfleet.State,
	genfleet.NercRegion, genfleet.Latitude, genfleet.Longitude, genfleet.BalancingAuthority,
}

// requiredGeneratorFields must be present in every generator table.
var requiredGeneratorFields = []genfleet.Field{
	genfleet.PlantCode, genfleet.PrimeMover, genfleet.EnergySource, genfleet.NameplateCapacity,
}

// Read860 reads the EIA-860 release for year from dir. Existing
// generators are tagged Operable and proposed generators Proposed.
// Location data from the plant table is merged onto every generator.
func (r *Reader) Read860(ctx context.Context, dir string, year int) ([]*genfleet.Generator, error) {
	l, err := LayoutFor(Layouts860, year)
	if err != nil {
		return nil, err
	}
	plantTable, err := readTable(ctx, dir, Plants, l)
	if err != nil {
		return nil, err
	}
	plants, err := r.plants(plantTable)
	if err != nil {
		return nil, err
	}

	var out []*genfleet.Generator
	for _, s := range []struct {
		tab    Table
		status genfleet.Status
	}{
		{ExistingGenerators, genfleet.Operable},
		{ProposedGenerators, genfleet.Proposed},
	} {
		t, err := readTable(ctx, dir, s.tab, l)
		if err != nil {
			return nil, err
		}
		r.checkColumns(t, plantTable)
		gens, err := r.generators(t, s.status)
		if err != nil {
			return nil, err
		}
		var unmatched int
		for _, g := range gens {
			p, ok := plants[g.PlantCode]
			if !ok {
				unmatched++
				continue
			}
			for _, f := range plantFields {
				if p.Get(f) != "" {
					g.SetFrom(p, f)
				}
			}
		}
		if r.CoreOnly {
			for _, g := range gens {
				for _, f := range genfleet.LastYearFields {
					g.Clear(f)
				}
			}
		}
		r.log().WithFields(logrus.Fields{
			"year":                   year,
			"generators":             len(gens),
			"without plant location": unmatched,
		}).Infof("read %v", s.tab)
		out = append(out, gens...)
	}
	return out, nil
}

// plants reads the plant table into generators keyed by plant code
// that only hold plant-level fields.
func (r *Reader) plants(t *table) (map[int]*genfleet.Generator, error) {
	if !t.has(genfleet.PlantCode.String()) {
		return nil, fmt.Errorf("extract: %s has no %q column", t.name, genfleet.PlantCode)
	}
	o := make(map[int]*genfleet.Generator)
	for i := range t.rows {
		code, ok := plantCode(t, i)
		if !ok {
			continue
		}
		g := genfleet.NewGenerator()
		g.PlantCode = code
		for _, f := range plantFields {
			if err := r.setField(g, t, i, f); err != nil {
				return nil, err
			}
		}
		o[code] = g
	}
	return o, nil
}

// generators reads a generator table.
func (r *Reader) generators(t *table, status genfleet.Status) ([]*genfleet.Generator, error) {
	for _, f := range requiredGeneratorFields {
		if !t.has(f.String()) {
			return nil, fmt.Errorf("extract: %s has no %q column", t.name, f)
		}
	}
	var o []*genfleet.Generator
	for i := range t.rows {
		code, ok := plantCode(t, i)
		if !ok {
			continue
		}
		g := genfleet.NewGenerator()
		g.PlantCode = code
		g.Status = status
		for _, f := range genfleet.AllFields() {
			if f == genfleet.PlantCode || !t.has(f.String()) {
				continue
			}
			if err := r.setField(g, t, i, f); err != nil {
				return nil, err
			}
		}
		o = append(o, g)
	}
	return o, nil
}

// setField sets field f of g from row i of t.
func (r *Reader) setField(g *genfleet.Generator, t *table, i int, f genfleet.Field) error {
	s := t.col(i, f.String())
	switch {
	case f.Summable():
		v, err := NormalizeSummable(s)
		if err != nil {
			return fmt.Errorf("extract: %s row %d column %q: %w", t.name, i+1, f, err)
		}
		g.SetNumber(f, v)
	case f.IsNumeric():
		v, ok := NormalizeNumber(s)
		if !ok {
			r.log().WithFields(logrus.Fields{
				"table": t.name, "row": i + 1, "column": f.String(), "value": s,
			}).Debug("treating non-numeric cell as unknown")
		}
		g.SetNumber(f, v)
	default:
		g.SetString(f, NormalizeText(s))
	}
	return nil
}

// checkColumns reports canonical fields that neither the generator
// table nor the plant table provide.
func (r *Reader) checkColumns(gens, plants *table) {
	skip := make(map[genfleet.Field]bool)
	if r.CoreOnly {
		for _, f := range genfleet.LastYearFields {
			skip[f] = true
		}
	}
	for _, f := range genfleet.AllFields() {
		if skip[f] || gens.has(f.String()) || plants.has(f.String()) {
			continue
		}
		r.Report.Add(genfleet.SchemaMismatch, fmt.Sprintf("%s has no %q column", gens.name, f),
			logrus.Fields{"table": gens.name, "column": f.String()})
	}
}

// plantCode returns the plant code in row i of t. Rows without
// a positive plant code, such as footnotes, are not data rows.
func plantCode(t *table, i int) (int, bool) {
	v, ok := NormalizeNumber(t.col(i, genfleet.PlantCode.String()))
	if !ok || !(v > 0) {
		return 0, false
	}
	return int(v), true
}
