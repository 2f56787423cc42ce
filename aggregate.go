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
	"strconv"
	"strings"
)

// DefaultAggregationKeys first combines generators that belong to the
// same unit, and then combines units at the same plant that share
// a prime mover, energy source, and operating year.
var DefaultAggregationKeys = [][]Field{
	{PlantCode, UnitCode},
	{PlantCode, PrimeMover, EnergySource, OperatingYear},
}

// Aggregate combines generators that share the same values of each
// set of key fields in turn. Within each group, summable fields are
// summed and every other field takes its maximum value.
// A generator with an unknown value in any key field is never grouped
// with any other generator. Generators with different statuses are never
// grouped together. The input generators are not modified.
func Aggregate(gens []*Generator, keySets [][]Field) ([]*Generator, error) {
	out := make([]*Generator, len(gens))
	for i, g := range gens {
		if err := checkSummable(g); err != nil {
			return nil, err
		}
		out[i] = g.Clone()
	}
	for _, keys := range keySets {
		out = aggregate(out, keys)
	}
	return out, nil
}

func checkSummable(g *Generator) error {
	for _, f := range []Field{NameplateCapacity, MinimumLoad} {
		if math.IsNaN(g.value(f).num) {
			return fmt.Errorf("genfleet: aggregating plant %d generator %q %v: %w",
				g.PlantCode, g.GeneratorID, f, ErrUncoercedSentinel)
		}
	}
	return nil
}

// aggregate performs one grouping pass. Groups are output in order
// of first appearance.
func aggregate(gens []*Generator, keys []Field) []*Generator {
	p := newPlaceholders(gens, keys)
	index := make(map[string]int)
	var out []*Generator
	for i, g := range gens {
		k := p.key(i, g)
		j, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, g)
			continue
		}
		combine(out[j], g)
	}
	return out
}

// combine merges src into dst.
func combine(dst, src *Generator) {
	for f := Field(0); f < numFields; f++ {
		if f.Summable() {
			dst.set(f, floatCell(dst.value(f).num+src.value(f).num))
			continue
		}
		dst.set(f, maxCell(dst.value(f), src.value(f), f.kind()))
	}
}

// placeholders substitutes unique values for unknown key values so that
// they never match each other or a known value. Numeric placeholders
// count up from the largest value present in the column; string
// placeholders are derived from the row index. Placeholders only
// exist in grouping keys and are never written to generators.
type placeholders struct {
	keys []Field
	base map[Field]int
}

func newPlaceholders(gens []*Generator, keys []Field) *placeholders {
	p := &placeholders{keys: keys, base: make(map[Field]int)}
	for _, f := range keys {
		if f.kind() == stringKind {
			continue
		}
		max := 0.
		for _, g := range gens {
			if c := g.value(f); !c.null && c.num > max {
				max = c.num
			}
		}
		p.base[f] = int(math.Floor(max)) + 1
	}
	return p
}

// key returns the grouping key of generator g at row i.
func (p *placeholders) key(i int, g *Generator) string {
	parts := make([]string, len(p.keys)+1)
	for j, f := range p.keys {
		c := g.value(f)
		switch {
		case !c.null:
			parts[j] = "v" + c.format(f.kind())
		case f.kind() == stringKind:
			parts[j] = "pNone" + strconv.Itoa(i)
		default:
			parts[j] = "p" + strconv.Itoa(p.base[f]+i)
		}
	}
	parts[len(p.keys)] = g.Status.String()
	return strings.Join(parts, "\x1f")
}
