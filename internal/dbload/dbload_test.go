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

package dbload

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/spatialmodel/genfleet"
)

type execCall struct {
	sql  string
	args []interface{}
}

// fakeConn records the statements and rows it receives. Statements
// only become visible in execs and rows when the transaction commits.
type fakeConn struct {
	execs   []execCall
	table   pgx.Identifier
	columns []string
	rows    [][]interface{}

	copyErr, commitErr error
	begun, rolledBack  bool
}

func (f *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	f.begun = true
	return &fakeTx{conn: f}, nil
}

// fakeTx implements the pgx.Tx methods used by Load. Calling any
// other method panics.
type fakeTx struct {
	pgx.Tx
	conn   *fakeConn
	execs  []execCall
	rows   [][]interface{}
	table  pgx.Identifier
	cols   []string
	closed bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return nil, nil
}

func (f *fakeTx) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.conn.copyErr != nil {
		return 0, f.conn.copyErr
	}
	f.table, f.cols = table, columns
	for src.Next() {
		v, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, v)
	}
	return int64(len(f.rows)), src.Err()
}

func (f *fakeTx) Commit(ctx context.Context) error {
	if f.closed {
		return pgx.ErrTxClosed
	}
	f.closed = true
	if f.conn.commitErr != nil {
		return f.conn.commitErr
	}
	c := f.conn
	c.execs = append(c.execs, f.execs...)
	c.rows = append(c.rows, f.rows...)
	c.table, c.columns = f.table, f.cols
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.closed {
		return pgx.ErrTxClosed
	}
	f.closed = true
	f.conn.rolledBack = true
	return nil
}

func testPlants() []*genfleet.Plant {
	p1 := &genfleet.Plant{
		PlantCode: 1, PlantName: "Alpha", PrimeMover: "CT", EnergySource: "NG", FuelCategory: genfleet.Gas,
		Year: 2016, OperatingYear: 2001, State: "CA", NercRegion: "WECC", Latitude: 35.1, Longitude: -119.2,
		Capacity: 150, CapacityLimit: 190, FullLoadHeatRate: 9.5,
	}
	p2 := &genfleet.Plant{
		PlantCode: 2, PlantName: "Dam", PrimeMover: "HY", EnergySource: "WAT", FuelCategory: genfleet.Hydro,
		Year: 2015, Latitude: math.NaN(), Longitude: math.NaN(), Capacity: 20, CapacityLimit: 20,
		FullLoadHeatRate: math.NaN(),
	}
	for m := range p1.HydroCapacityFactors {
		p1.HydroCapacityFactors[m] = math.NaN()
		p2.HydroCapacityFactors[m] = 0.5
	}
	return []*genfleet.Plant{p1, p2}
}

func TestLoad(t *testing.T) {
	c := new(fakeConn)
	n, err := Load(context.Background(), c, "", testPlants())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("want 2 rows copied but have %d", n)
	}
	if c.rolledBack {
		t.Error("successful load was rolled back")
	}
	if len(c.execs) != 2 {
		t.Fatalf("want 2 statements but have %d", len(c.execs))
	}
	if create := c.execs[0].sql; !strings.HasPrefix(create, `CREATE TABLE IF NOT EXISTS "generation_plant"`) ||
		!strings.Contains(create, "full_load_heat_rate double precision") {
		t.Errorf("unexpected create statement %s", create)
	}
	if del := c.execs[1]; !strings.HasPrefix(del.sql, `DELETE FROM "generation_plant"`) ||
		!reflect.DeepEqual(del.args, []interface{}{[]int32{2016, 2015}}) {
		t.Errorf("unexpected delete statement %s %v", del.sql, del.args)
	}
	if !reflect.DeepEqual(c.table, pgx.Identifier{DefaultTable}) || len(c.columns) != 30 {
		t.Errorf("unexpected copy target %v %v", c.table, c.columns)
	}

	row := c.rows[0]
	want := map[string]interface{}{
		"plant_code":          int32(1),
		"operating_year":      int32(2001),
		"capacity_limit_mw":   190.,
		"full_load_heat_rate": 9.5,
		"is_baseload":         false,
		"capacity_factor_jan": nil,
	}
	for i, name := range c.columns {
		if w, ok := want[name]; ok && !reflect.DeepEqual(row[i], w) {
			t.Errorf("plant 1 %s: want %v but have %v", name, w, row[i])
		}
	}
	row = c.rows[1]
	for i, name := range c.columns {
		switch name {
		case "operating_year", "latitude", "full_load_heat_rate":
			if row[i] != nil {
				t.Errorf("plant 2 %s: want NULL but have %v", name, row[i])
			}
		case "capacity_factor_dec":
			if row[i] != 0.5 {
				t.Errorf("plant 2 %s: want 0.5 but have %v", name, row[i])
			}
		}
	}
}

func TestLoadError(t *testing.T) {
	for _, c := range []*fakeConn{
		{copyErr: errors.New("connection reset")},
		{commitErr: errors.New("serialization failure")},
	} {
		if _, err := Load(context.Background(), c, "plants_test", testPlants()); err == nil ||
			!strings.Contains(err.Error(), "plants_test") {
			t.Errorf("unexpected error %v", err)
		}
		if !c.begun || len(c.execs) != 0 || len(c.rows) != 0 {
			t.Errorf("failed load committed %d statements and %d rows", len(c.execs), len(c.rows))
		}
		if c.copyErr != nil && !c.rolledBack {
			t.Error("failed copy was not rolled back")
		}
	}
}

func TestConnectBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://user@host:notaport/db", nil); err == nil {
		t.Error("expected error for invalid URL")
	}
}
