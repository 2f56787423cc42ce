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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Tab-delimited output uses empty cells for unknown values.

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func newTabWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func newTabReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	return cr
}

var monthNames = func() [12]string {
	var o [12]string
	for m := range o {
		o[m] = time.Month(m + 1).String()[0:3]
	}
	return o
}()

// generatorColumns are the columns written after the canonical fields.
var generatorColumns = []string{"Operational Status", "Full Load Heat Rate (MMBtu/MWh)", "Heat Rate Source"}

// WriteGenerators writes gens to w as a tab-delimited table with
// one column per canonical field followed by the status and heat rate.
func WriteGenerators(w io.Writer, gens []*Generator) error {
	cw := newTabWriter(w)
	header := make([]string, 0, int(numFields)+len(generatorColumns))
	for f := Field(0); f < numFields; f++ {
		header = append(header, f.String())
	}
	if err := cw.Write(append(header, generatorColumns...)); err != nil {
		return err
	}
	for _, g := range gens {
		row := make([]string, 0, len(header)+len(generatorColumns))
		for f := Field(0); f < numFields; f++ {
			row = append(row, g.Get(f))
		}
		row = append(row, g.Status.String(), formatFloat(g.HeatRate), g.HeatRateSource.String())
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var plantHeader = func() []string {
	h := []string{
		"Plant Code", "Plant Name", "Prime Mover", "Energy Source", "Fuel Category",
		"Year", "Operating Year", "County", "State", "Nerc Region", "Latitude", "Longitude",
		"Capacity (MW)", "Capacity Limit (MW)", "Full Load Heat Rate (MMBtu/MWh)",
		"Is Baseload", "Is Variable", "Is Cogen",
	}
	for _, m := range monthNames {
		h = append(h, "Capacity Factor "+m)
	}
	return h
}()

// WritePlants writes plants to w as a tab-delimited table.
func WritePlants(w io.Writer, plants []*Plant) error {
	cw := newTabWriter(w)
	if err := cw.Write(plantHeader); err != nil {
		return err
	}
	for _, p := range plants {
		row := []string{
			strconv.Itoa(p.PlantCode), p.PlantName, p.PrimeMover, p.EnergySource, p.FuelCategory,
			strconv.Itoa(p.Year), strconv.Itoa(p.OperatingYear), p.County, p.State, p.NercRegion,
			formatFloat(p.Latitude), formatFloat(p.Longitude),
			formatFloat(p.Capacity), formatFloat(p.CapacityLimit), formatFloat(p.FullLoadHeatRate),
			strconv.FormatBool(p.IsBaseload), strconv.FormatBool(p.IsVariable), strconv.FormatBool(p.IsCogen),
		}
		for _, cf := range p.HydroCapacityFactors {
			row = append(row, formatFloat(cf))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPlants reads a table written by WritePlants.
func ReadPlants(r io.Reader) ([]*Plant, error) {
	cr := newTabReader(r)
	cr.FieldsPerRecord = len(plantHeader)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("genfleet: reading plants: %v", err)
	}
	for i, h := range plantHeader {
		if header[i] != h {
			return nil, fmt.Errorf("genfleet: reading plants: column %d is %q, not %q", i, header[i], h)
		}
	}
	var o []*Plant
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("genfleet: reading plants: %v", err)
		}
		p, err := parsePlant(rec)
		if err != nil {
			return nil, fmt.Errorf("genfleet: reading plants line %d: %v", line, err)
		}
		o = append(o, p)
	}
	return o, nil
}

func parsePlant(rec []string) (*Plant, error) {
	p := &Plant{
		PlantName:    rec[1],
		PrimeMover:   rec[2],
		EnergySource: rec[3],
		FuelCategory: rec[4],
		County:       rec[7],
		State:        rec[8],
		NercRegion:   rec[9],
	}
	var err error
	ints := []struct {
		i   int
		dst *int
	}{{0, &p.PlantCode}, {5, &p.Year}, {6, &p.OperatingYear}}
	for _, v := range ints {
		if *v.dst, err = parseInt(rec[v.i]); err != nil {
			return nil, err
		}
	}
	floats := []struct {
		i   int
		dst *float64
	}{{10, &p.Latitude}, {11, &p.Longitude}, {12, &p.Capacity}, {13, &p.CapacityLimit}, {14, &p.FullLoadHeatRate}}
	for m := range p.HydroCapacityFactors {
		floats = append(floats, struct {
			i   int
			dst *float64
		}{18 + m, &p.HydroCapacityFactors[m]})
	}
	for _, v := range floats {
		if *v.dst, err = parseFloat(rec[v.i]); err != nil {
			return nil, err
		}
	}
	bools := []struct {
		i   int
		dst *bool
	}{{15, &p.IsBaseload}, {16, &p.IsVariable}, {17, &p.IsCogen}}
	for _, v := range bools {
		if *v.dst, err = strconv.ParseBool(rec[v.i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var statKeyHeader = []string{"Plant Code", "Plant Name", "Prime Mover", "Energy Source", "Year"}

func statKeyRow(s *MonthlyStat) []string {
	return []string{strconv.Itoa(s.PlantCode), s.PlantName, s.PrimeMover, s.EnergySource, strconv.Itoa(s.Year)}
}

// WriteStatsWide writes stats with one row per key and year and
// one column per month.
func WriteStatsWide(w io.Writer, stats []*MonthlyStat) error {
	cw := newTabWriter(w)
	header := append(append([]string{}, statKeyHeader...), monthNames[:]...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range stats {
		row := statKeyRow(s)
		for _, v := range s.Values {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatsNarrow writes stats with one row per key, year, and month,
// skipping months without a value. valueName is the header of the
// value column.
func WriteStatsNarrow(w io.Writer, stats []*MonthlyStat, valueName string) error {
	cw := newTabWriter(w)
	header := append(append([]string{}, statKeyHeader...), "Month", valueName)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range stats {
		for m, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			row := append(statKeyRow(s), strconv.Itoa(m+1), formatFloat(v))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
