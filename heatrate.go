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
	"math"
	"time"

	"github.com/ctessum/unit"
	"github.com/ctessum/unit/badunit"
)

// FuelGen is one row of the EIA-923 generation and fuel data: the
// monthly fuel consumed for electricity generation and the monthly net
// generation at a plant for one prime mover and energy source.
type FuelGen struct {
	PlantCode    int
	PlantName    string
	State        string
	NercRegion   string
	PrimeMover   string
	EnergySource string
	Year         int

	ElecFuel [12]float64 // MMBtu
	NetGen   [12]float64 // MWh
}

// StatKey identifies the generators a performance statistic applies to.
type StatKey struct {
	PlantCode    int
	PrimeMover   string
	EnergySource string
}

// KeyOf returns the statistic key of g.
func KeyOf(g *Generator) StatKey {
	return StatKey{PlantCode: g.PlantCode, PrimeMover: g.PrimeMover, EnergySource: g.EnergySource}
}

// MonthlyStat holds one year of monthly values of a performance
// statistic (heat rate or capacity factor) for one key.
// Months without a value are NaN.
type MonthlyStat struct {
	StatKey
	PlantName string
	Year      int
	Values    [12]float64
}

// MinPositive returns the smallest strictly positive monthly value,
// or NaN if there is none.
func (s *MonthlyStat) MinPositive() float64 {
	min := math.NaN()
	for _, v := range s.Values {
		if v > 0 && (math.IsNaN(min) || v < min) {
			min = v
		}
	}
	return min
}

// mmBtuPerMWh converts a dimensionless energy ratio to MMBtu/MWh.
var mmBtuPerMWh = unit.Div(badunit.KiloWattHour(1000), badunit.MmBtu(1)).Value()

// heatRate returns fuel ÷ generation in MMBtu/MWh, or NaN when
// there was no generation.
func heatRate(fuelMMBtu, genMWh float64) float64 {
	if genMWh == 0 {
		return math.NaN()
	}
	hr := unit.Div(badunit.MmBtu(fuelMMBtu), badunit.KiloWattHour(genMWh*1000))
	if err := hr.Check(unit.Dimless); err != nil {
		panic(err)
	}
	return hr.Value() * mmBtuPerMWh
}

// capacityFactor returns the ratio of generation to the generation
// possible when running at capacity for the given number of hours.
func capacityFactor(genMWh, capacityMW, hours float64) float64 {
	if capacityMW == 0 || hours == 0 {
		return math.NaN()
	}
	possible := unit.Mul(unit.New(capacityMW*1.e6, unit.Watt), badunit.Hour(hours))
	cf := unit.Div(badunit.KiloWattHour(genMWh*1000), possible)
	if err := cf.Check(unit.Dimless); err != nil {
		panic(err)
	}
	return cf.Value()
}

// daysIn returns the number of days in the given month (0 = January).
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// sumFuelGen combines rows with the same plant, prime mover, and
// energy source, keeping first-appearance order. Rows for which
// include returns false are skipped.
func sumFuelGen(rows []*FuelGen, include func(*FuelGen) bool) ([]StatKey, map[StatKey]*FuelGen) {
	var keys []StatKey
	sums := make(map[StatKey]*FuelGen)
	for _, r := range rows {
		if !include(r) {
			continue
		}
		k := StatKey{PlantCode: r.PlantCode, PrimeMover: r.PrimeMover, EnergySource: r.EnergySource}
		s, ok := sums[k]
		if !ok {
			c := *r
			sums[k] = &c
			keys = append(keys, k)
			continue
		}
		for m := 0; m < 12; m++ {
			s.ElecFuel[m] += r.ElecFuel[m]
			s.NetGen[m] += r.NetGen[m]
		}
	}
	return keys, sums
}

// HeatRates calculates monthly heat rates (MMBtu/MWh) for every thermal
// plant, prime mover, and energy source in rows. Months with no net
// generation have no heat rate.
func HeatRates(rows []*FuelGen) []*MonthlyStat {
	keys, sums := sumFuelGen(rows, func(r *FuelGen) bool {
		return thermalPrimeMovers[r.PrimeMover]
	})
	o := make([]*MonthlyStat, len(keys))
	for i, k := range keys {
		s := sums[k]
		o[i] = &MonthlyStat{StatKey: k, PlantName: s.PlantName, Year: s.Year}
		for m := 0; m < 12; m++ {
			o[i].Values[m] = heatRate(s.ElecFuel[m], s.NetGen[m])
		}
	}
	return o
}

// HydroCapacityFactors calculates monthly capacity factors for every
// hydroelectric plant and prime mover in rows, relative to the total
// nameplate capacity of the Operable hydroelectric generators in gens.
// Plants without Operable capacity are skipped.
func HydroCapacityFactors(rows []*FuelGen, gens []*Generator) []*MonthlyStat {
	capacity := make(map[StatKey]float64)
	for _, g := range gens {
		if g.Status == Operable && g.IsHydro() {
			capacity[KeyOf(g)] += g.NameplateCapacity
		}
	}
	keys, sums := sumFuelGen(rows, func(r *FuelGen) bool {
		return r.EnergySource == "WAT"
	})
	var o []*MonthlyStat
	for _, k := range keys {
		c := capacity[k]
		if c <= 0 {
			continue
		}
		s := sums[k]
		cf := &MonthlyStat{StatKey: k, PlantName: s.PlantName, Year: s.Year}
		for m := 0; m < 12; m++ {
			cf.Values[m] = capacityFactor(s.NetGen[m], c, float64(daysIn(s.Year, m)*24))
		}
		o = append(o, cf)
	}
	return o
}
