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
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// workbookCache holds opened workbooks so that the EIA-860 generator
// workbook, which holds two tables, is only parsed once.
var (
	workbookCache     *requestcache.Cache
	loadWorkbooksOnce sync.Once
)

func openWorkbook(ctx context.Context, path string) (*xlsx.File, error) {
	loadWorkbooksOnce.Do(func() {
		workbookCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			f, err := xlsx.OpenFile(req.(string))
			if err != nil {
				return nil, fmt.Errorf("extract: opening workbook: %v", err)
			}
			return f, nil
		}, 1, requestcache.Deduplicate(), requestcache.Memory(4))
	})
	r := workbookCache.NewRequest(ctx, path, path)
	f, err := r.Result()
	if err != nil {
		return nil, err
	}
	return f.(*xlsx.File), nil
}

// table is a worksheet below its title rows, with normalized
// column names.
type table struct {
	name    string
	columns map[string]int
	header  []string
	rows    [][]string
}

// col returns the value of column name in row i, or "" if
// the column or cell does not exist.
func (t *table) col(i int, name string) string {
	j, ok := t.columns[name]
	if !ok || j >= len(t.rows[i]) {
		return ""
	}
	return t.rows[i][j]
}

func (t *table) has(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// readTable reads table tab of the release in dir.
func readTable(ctx context.Context, dir string, tab Table, l Layout) (*table, error) {
	src, ok := l.Sources[tab]
	if !ok {
		return nil, fmt.Errorf("extract: layout has no %v table", tab)
	}
	path, err := src.find(dir)
	if err != nil {
		return nil, err
	}
	f, err := openWorkbook(ctx, path)
	if err != nil {
		return nil, err
	}
	var sheet *xlsx.Sheet
	if src.SheetName != "" {
		sheet = f.Sheet[src.SheetName]
	} else if src.SheetIndex < len(f.Sheets) {
		sheet = f.Sheets[src.SheetIndex]
	}
	if sheet == nil {
		return nil, fmt.Errorf("extract: %s has no worksheet %q (index %d)", path, src.SheetName, src.SheetIndex)
	}
	if len(sheet.Rows) <= l.SkipRows {
		return nil, fmt.Errorf("extract: worksheet %s in %s has no header row", sheet.Name, path)
	}

	t := &table{name: fmt.Sprintf("%s (%s)", tab, path), columns: make(map[string]int)}
	for j, c := range rowValues(sheet.Rows[l.SkipRows]) {
		name := NormalizeColumn(c)
		t.header = append(t.header, name)
		if _, dup := t.columns[name]; !dup && name != "" {
			t.columns[name] = j
		}
	}
	for _, r := range sheet.Rows[l.SkipRows+1:] {
		t.rows = append(t.rows, rowValues(r))
	}
	return t, nil
}

func rowValues(r *xlsx.Row) []string {
	if r == nil {
		return nil
	}
	o := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		if c != nil {
			o[i] = c.Value
		}
	}
	return o
}
