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
)

// Status is the operational status of a generator.
type Status int

// These are the valid statuses. Operable covers existing units
// (operating, standby, or out of service); Proposed covers planned units
// that have not yet been built.
const (
	Operable Status = iota + 1
	Proposed
)

func (s Status) String() string {
	switch s {
	case Operable:
		return "Operable"
	case Proposed:
		return "Proposed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus converts the output of String back into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "Operable":
		return Operable, nil
	case "Proposed":
		return Proposed, nil
	default:
		return 0, fmt.Errorf("genfleet: invalid status %q", s)
	}
}

// HeatRateSource records where a generator's heat rate came from.
type HeatRateSource int

// These are the heat rate sources.
const (
	NoHeatRate HeatRateSource = iota
	Measured                   // computed from the unit's own fuel and generation
	PeerAverage                // mean of peers with similar technology and age
	TechnologyAverage          // mean of all units with the same prime mover
)

func (s HeatRateSource) String() string {
	switch s {
	case Measured:
		return "measured"
	case PeerAverage:
		return "peer"
	case TechnologyAverage:
		return "technology"
	default:
		return "none"
	}
}

// Generator is a single generating unit as reported to EIA-860 or, after
// aggregation, a project made up of several units. Integer fields use 0
// for unknown values, float fields use NaN, and string fields use "".
// Summable fields (NameplateCapacity and MinimumLoad) are never unknown:
// blank survey cells in those columns mean zero.
type Generator struct {
	PlantCode             int
	PlantName             string
	UtilityID             int
	GeneratorID           string
	UnitCode              string
	PrimeMover            string
	EnergySource          string
	NameplateCapacity     float64 // MW
	MinimumLoad           float64 // MW
	OperatingYear         int
	PlannedRetirementYear int
	County                string
	State                 string
	NercRegion            string
	Latitude, Longitude   float64
	BalancingAuthority    string
	GridVoltage           float64 // kV
	ColdStartTime         string
	CarbonCapture         string
	Cogen                 string // "Y" when the unit is part of a combined heat and power system

	Status Status

	// HeatRate is the full-load heat rate in MMBtu/MWh.
	HeatRate       float64
	HeatRateSource HeatRateSource

	// HydroCapacityFactors holds monthly capacity factors for
	// hydroelectric projects, January first.
	HydroCapacityFactors [12]float64
}

// NewGenerator returns a generator with all float fields set to unknown
// except the summable ones, which start at zero.
func NewGenerator() *Generator {
	g := &Generator{
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
		GridVoltage: math.NaN(),
		HeatRate:    math.NaN(),
	}
	for i := range g.HydroCapacityFactors {
		g.HydroCapacityFactors[i] = math.NaN()
	}
	return g
}

// Clone returns a copy of g.
func (g *Generator) Clone() *Generator {
	c := *g
	return &c
}

// IsThermal reports whether g uses a combustion or steam prime mover
// for which a heat rate is meaningful.
func (g *Generator) IsThermal() bool {
	return thermalPrimeMovers[g.PrimeMover]
}

// IsHydro reports whether g is a conventional or pumped-storage
// hydroelectric unit.
func (g *Generator) IsHydro() bool {
	return g.EnergySource == "WAT"
}

// Fuel returns g's energy source with all coal ranks folded into "COAL".
func (g *Generator) Fuel() string {
	return FoldCoal(g.EnergySource)
}

// These errors are returned by Validate.
var (
	ErrInvalidGenerator  = errors.New("genfleet: invalid generator")
	ErrUncoercedSentinel = errors.New("genfleet: uncoerced sentinel in summable column")
)

// Validate checks g against the invariants that hold for every record
// after ingestion. currentYear is the latest plausible operating year.
func (g *Generator) Validate(currentYear int) error {
	if math.IsNaN(g.NameplateCapacity) || math.IsNaN(g.MinimumLoad) {
		return fmt.Errorf("%w: plant %d generator %q", ErrUncoercedSentinel, g.PlantCode, g.GeneratorID)
	}
	if g.NameplateCapacity < 0 {
		return fmt.Errorf("%w: plant %d generator %q has negative capacity %g",
			ErrInvalidGenerator, g.PlantCode, g.GeneratorID, g.NameplateCapacity)
	}
	if g.Status != Operable && g.Status != Proposed {
		return fmt.Errorf("%w: plant %d generator %q has status %v",
			ErrInvalidGenerator, g.PlantCode, g.GeneratorID, g.Status)
	}
	if g.OperatingYear != 0 && g.Status == Operable &&
		(g.OperatingYear < 1900 || g.OperatingYear > currentYear) {
		return fmt.Errorf("%w: plant %d generator %q has operating year %d",
			ErrInvalidGenerator, g.PlantCode, g.GeneratorID, g.OperatingYear)
	}
	return nil
}

// value returns the value of field f.
func (g *Generator) value(f Field) cell {
	switch f {
	case PlantCode:
		return intCell(g.PlantCode)
	case PlantName:
		return stringCell(g.PlantName)
	case UtilityID:
		return intCell(g.UtilityID)
	case GeneratorID:
		return stringCell(g.GeneratorID)
	case UnitCode:
		return stringCell(g.UnitCode)
	case PrimeMover:
		return stringCell(g.PrimeMover)
	case EnergySource:
		return stringCell(g.EnergySource)
	case NameplateCapacity:
		return floatCell(g.NameplateCapacity)
	case MinimumLoad:
		return floatCell(g.MinimumLoad)
	case OperatingYear:
		return intCell(g.OperatingYear)
	case PlannedRetirementYear:
		return intCell(g.PlannedRetirementYear)
	case County:
		return stringCell(g.County)
	case State:
		return stringCell(g.State)
	case NercRegion:
		return stringCell(g.NercRegion)
	case Latitude:
		return floatCell(g.Latitude)
	case Longitude:
		return floatCell(g.Longitude)
	case BalancingAuthority:
		return stringCell(g.BalancingAuthority)
	case GridVoltage:
		return floatCell(g.GridVoltage)
	case ColdStartTime:
		return stringCell(g.ColdStartTime)
	case CarbonCapture:
		return stringCell(g.CarbonCapture)
	case Cogen:
		return stringCell(g.Cogen)
	default:
		panic(fmt.Errorf("genfleet: invalid field %d", int(f)))
	}
}

// set sets field f to c.
func (g *Generator) set(f Field, c cell) {
	switch f {
	case PlantCode:
		g.PlantCode = c.intValue()
	case PlantName:
		g.PlantName = c.str
	case UtilityID:
		g.UtilityID = c.intValue()
	case GeneratorID:
		g.GeneratorID = c.str
	case UnitCode:
		g.UnitCode = c.str
	case PrimeMover:
		g.PrimeMover = c.str
	case EnergySource:
		g.EnergySource = c.str
	case NameplateCapacity:
		g.NameplateCapacity = c.floatValue()
	case MinimumLoad:
		g.MinimumLoad = c.floatValue()
	case OperatingYear:
		g.OperatingYear = c.intValue()
	case PlannedRetirementYear:
		g.PlannedRetirementYear = c.intValue()
	case County:
		g.County = c.str
	case State:
		g.State = c.str
	case NercRegion:
		g.NercRegion = c.str
	case Latitude:
		g.Latitude = c.floatValue()
	case Longitude:
		g.Longitude = c.floatValue()
	case BalancingAuthority:
		g.BalancingAuthority = c.str
	case GridVoltage:
		g.GridVoltage = c.floatValue()
	case ColdStartTime:
		g.ColdStartTime = c.str
	case CarbonCapture:
		g.CarbonCapture = c.str
	case Cogen:
		g.Cogen = c.str
	default:
		panic(fmt.Errorf("genfleet: invalid field %d", int(f)))
	}
}

// SetNumber sets numeric field f to v, where NaN means unknown.
func (g *Generator) SetNumber(f Field, v float64) {
	if f.kind() == intKind && math.IsNaN(v) {
		v = 0
	}
	g.set(f, cell{num: v, null: math.IsNaN(v)})
}

// SetString sets string field f to s.
func (g *Generator) SetString(f Field, s string) {
	g.set(f, stringCell(s))
}

// SetFrom sets field f of g to its value in src.
func (g *Generator) SetFrom(src *Generator, f Field) {
	g.set(f, src.value(f))
}

// Clear sets field f to unknown, or to zero for summable fields.
func (g *Generator) Clear(f Field) {
	if f.Summable() {
		g.set(f, floatCell(0))
		return
	}
	g.set(f, cell{null: true, num: math.NaN()})
}

// Get returns the value of field f formatted as it appears
// in tabular output. Unknown values are returned as "".
func (g *Generator) Get(f Field) string {
	return g.value(f).format(f.kind())
}
