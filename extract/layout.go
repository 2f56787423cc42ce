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

// Package extract reads the annual EIA-860 and EIA-923 survey workbooks
// into genfleet records. Workbooks must be unzipped and in .xlsx format;
// older .xls releases need to be converted first.
package extract

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
)

// Table identifies one of the tables read from the survey workbooks.
type Table int

// These are the survey tables.
const (
	Plants Table = iota
	ExistingGenerators
	ProposedGenerators
	GenerationFuel
)

func (t Table) String() string {
	switch t {
	case Plants:
		return "plants"
	case ExistingGenerators:
		return "existing generators"
	case ProposedGenerators:
		return "proposed generators"
	case GenerationFuel:
		return "generation and fuel"
	default:
		return fmt.Sprintf("Table(%d)", int(t))
	}
}

// Source locates a table within the directory holding one year's
// workbooks. Exactly one of Prefix, Contains, or Largest selects the file.
type Source struct {
	// Prefix matches files whose names start with it.
	Prefix string

	// Contains matches files whose names contain it.
	Contains string

	// Largest selects the largest workbook in the directory.
	// EIA-923 releases name the main workbook inconsistently.
	Largest bool

	// SheetName is the worksheet holding the table. If empty,
	// the worksheet with index SheetIndex is used.
	SheetName  string
	SheetIndex int
}

// Layout describes one revision of a survey release.
type Layout struct {
	// FirstYear and LastYear bound the survey years the layout applies to.
	// Zero means unbounded.
	FirstYear, LastYear int

	// SkipRows is the number of title rows above the column header.
	SkipRows int

	Sources map[Table]Source
}

func (l Layout) covers(year int) bool {
	return (l.FirstYear == 0 || year >= l.FirstYear) && (l.LastYear == 0 || year <= l.LastYear)
}

var eia860Sources = map[Table]Source{
	Plants:             {Contains: "Plant"},
	ExistingGenerators: {Contains: "Generator", SheetIndex: 0},
	ProposedGenerators: {Contains: "Generator", SheetIndex: 1},
}

// Layouts860 are the known EIA-860 release layouts.
var Layouts860 = []Layout{
	{
		LastYear: 2008,
		Sources: map[Table]Source{
			Plants:             {Contains: "Plant"},
			ExistingGenerators: {Prefix: "GenY"},
			ProposedGenerators: {Prefix: "PRGenY"},
		},
	},
	{FirstYear: 2009, LastYear: 2010, Sources: eia860Sources},
	{FirstYear: 2011, SkipRows: 1, Sources: eia860Sources},
}

const generationFuelSheet = "Page 1 Generation and Fuel Data"

// Layouts923 are the known EIA-923 (and EIA-906/920) release layouts.
var Layouts923 = []Layout{
	{
		LastYear: 2010,
		SkipRows: 7,
		Sources:  map[Table]Source{GenerationFuel: {Largest: true, SheetName: generationFuelSheet}},
	},
	{
		FirstYear: 2011,
		SkipRows:  5,
		Sources:   map[Table]Source{GenerationFuel: {Largest: true, SheetName: generationFuelSheet}},
	},
}

// LayoutFor returns the first of layouts that covers year.
func LayoutFor(layouts []Layout, year int) (Layout, error) {
	for _, l := range layouts {
		if l.covers(year) {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("extract: no workbook layout for year %d", year)
}

// find returns the path of the workbook in dir that s selects.
func (s Source) find(dir string) (string, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("extract: %v", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	var match string
	var size int64 = -1
	for _, f := range files {
		name := f.Name()
		// Skip lock files left by open spreadsheet programs.
		if f.IsDir() || strings.HasPrefix(name, "~") || strings.ToLower(filepath.Ext(name)) != ".xlsx" {
			continue
		}
		switch {
		case s.Largest:
			if f.Size() > size {
				match, size = name, f.Size()
			}
		case s.Prefix != "" && strings.HasPrefix(name, s.Prefix),
			s.Contains != "" && strings.Contains(name, s.Contains):
			return filepath.Join(dir, name), nil
		}
	}
	if match == "" {
		return "", fmt.Errorf("extract: no workbook in %s matches %+v", dir, s)
	}
	return filepath.Join(dir, match), nil
}
