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
	"sort"

	"github.com/sirupsen/logrus"
)

// Mismatch describes a plant that one survey reports and the other
// does not.
type Mismatch struct {
	PlantCode  int
	PlantName  string
	PrimeMover string

	// Capacity is the Operable nameplate capacity (MW) reported
	// to EIA-860, and Generation is the annual net generation (MWh)
	// reported to EIA-923.
	Capacity, Generation float64
}

// CrossCheck compares the hydroelectric and thermal plants in the
// EIA-860 projects with those in the EIA-923 generation data and returns
// plants with Operable capacity but no generation data (missing923) and
// plants with generation data but no Operable capacity (missing860).
// Each mismatch is added to r.
func CrossCheck(projects []*Generator, fuelGen []*FuelGen, r *Report) (missing923, missing860 []Mismatch) {
	type key struct {
		plant      int
		primeMover string
	}
	relevant := func(pm, es string) bool { return thermalPrimeMovers[pm] || es == "WAT" }

	capacity := make(map[key]*Mismatch)
	for _, g := range projects {
		if g.Status != Operable || !relevant(g.PrimeMover, g.EnergySource) {
			continue
		}
		k := key{g.PlantCode, g.PrimeMover}
		if capacity[k] == nil {
			capacity[k] = &Mismatch{PlantCode: g.PlantCode, PlantName: g.PlantName, PrimeMover: g.PrimeMover}
		}
		capacity[k].Capacity += g.NameplateCapacity
	}
	generation := make(map[key]*Mismatch)
	for _, f := range fuelGen {
		if !relevant(f.PrimeMover, f.EnergySource) {
			continue
		}
		k := key{f.PlantCode, f.PrimeMover}
		if generation[k] == nil {
			generation[k] = &Mismatch{PlantCode: f.PlantCode, PlantName: f.PlantName, PrimeMover: f.PrimeMover}
		}
		for _, v := range f.NetGen {
			generation[k].Generation += v
		}
	}

	for k, m := range capacity {
		if _, ok := generation[k]; !ok {
			missing923 = append(missing923, *m)
		}
	}
	for k, m := range generation {
		if _, ok := capacity[k]; !ok {
			missing860 = append(missing860, *m)
		}
	}
	sortMismatches(missing923)
	sortMismatches(missing860)
	for _, m := range missing923 {
		r.Add(CrossSourceMismatch, fmt.Sprintf("plant %d %s (%s, %.1f MW) has no EIA-923 data",
			m.PlantCode, m.PlantName, m.PrimeMover, m.Capacity),
			logrus.Fields{"plant": m.PlantCode, "prime mover": m.PrimeMover, "capacity": m.Capacity})
	}
	for _, m := range missing860 {
		r.Add(CrossSourceMismatch, fmt.Sprintf("plant %d %s (%s, %.0f MWh) has no Operable EIA-860 capacity",
			m.PlantCode, m.PlantName, m.PrimeMover, m.Generation),
			logrus.Fields{"plant": m.PlantCode, "prime mover": m.PrimeMover, "generation": m.Generation})
	}
	return
}

func sortMismatches(m []Mismatch) {
	sort.Slice(m, func(i, j int) bool {
		if m[i].PlantCode != m[j].PlantCode {
			return m[i].PlantCode < m[j].PlantCode
		}
		return m[i].PrimeMover < m[j].PrimeMover
	})
}
