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

// Package dbload loads collapsed plant tables into a PostgreSQL database.
package dbload

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/log/logrusadapter"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet"
)

// DefaultTable is the table plants are loaded into if none is specified.
const DefaultTable = "generation_plant"

// column is one database column and how to get its value from a plant.
type column struct {
	name, sqlType string
	value         func(p *genfleet.Plant) interface{}
}

var columns = func() []column {
	c := []column{
		{"plant_code", "integer NOT NULL", func(p *genfleet.Plant) interface{} { return int32(p.PlantCode) }},
		{"plant_name", "text", func(p *genfleet.Plant) interface{} { return p.PlantName }},
		{"prime_mover", "text NOT NULL", func(p *genfleet.Plant) interface{} { return p.PrimeMover }},
		{"energy_source", "text NOT NULL", func(p *genfleet.Plant) interface{} { return p.EnergySource }},
		{"fuel_category", "text", func(p *genfleet.Plant) interface{} { return p.FuelCategory }},
		{"year", "integer NOT NULL", func(p *genfleet.Plant) interface{} { return int32(p.Year) }},
		{"operating_year", "integer", func(p *genfleet.Plant) interface{} { return nullInt(p.OperatingYear) }},
		{"county", "text", func(p *genfleet.Plant) interface{} { return p.County }},
		{"state", "text", func(p *genfleet.Plant) interface{} { return p.State }},
		{"nerc_region", "text", func(p *genfleet.Plant) interface{} { return p.NercRegion }},
		{"latitude", "double precision", func(p *genfleet.Plant) interface{} { return nullFloat(p.Latitude) }},
		{"longitude", "double precision", func(p *genfleet.Plant) interface{} { return nullFloat(p.Longitude) }},
		{"capacity_mw", "double precision NOT NULL", func(p *genfleet.Plant) interface{} { return p.Capacity }},
		{"capacity_limit_mw", "double precision NOT NULL", func(p *genfleet.Plant) interface{} { return p.CapacityLimit }},
		{"full_load_heat_rate", "double precision", func(p *genfleet.Plant) interface{} { return nullFloat(p.FullLoadHeatRate) }},
		{"is_baseload", "boolean NOT NULL", func(p *genfleet.Plant) interface{} { return p.IsBaseload }},
		{"is_variable", "boolean NOT NULL", func(p *genfleet.Plant) interface{} { return p.IsVariable }},
		{"is_cogen", "boolean NOT NULL", func(p *genfleet.Plant) interface{} { return p.IsCogen }},
	}
	for m, name := range []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"} {
		m := m
		c = append(c, column{"capacity_factor_" + name, "double precision",
			func(p *genfleet.Plant) interface{} { return nullFloat(p.HydroCapacityFactors[m]) }})
	}
	return c
}()

func nullFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nullInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return int32(v)
}

// Connect connects to the database at url, retrying with exponential
// backoff while the server is unavailable. Database messages at warning
// level and above are sent to log.
func Connect(ctx context.Context, url string, log logrus.FieldLogger) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("dbload: parsing database URL: %v", err)
	}
	if log != nil {
		cfg.Logger = logrusadapter.NewLogger(log)
		cfg.LogLevel = pgx.LogLevelWarn
	}
	var conn *pgx.Conn
	err = backoff.Retry(func() error {
		conn, err = pgx.ConnectConfig(ctx, cfg)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
	if err != nil {
		return nil, fmt.Errorf("dbload: connecting to database: %v", err)
	}
	return conn, nil
}

// copier is the part of pgx.Tx used by Load.
type copier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// beginner is the part of *pgx.Conn used by Load.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Load creates table if it does not exist and copies plants into it.
// Rows already in the table for the years of plants are deleted first,
// so loading the same run twice does not duplicate it. All statements run
// in one transaction, so a failed load leaves the table unchanged.
// conn is usually a *pgx.Conn.
func Load(ctx context.Context, conn beginner, table string, plants []*genfleet.Plant) (int64, error) {
	if table == "" {
		table = DefaultTable
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("dbload: starting transaction: %v", err)
	}
	// Rollback does nothing once the transaction is committed.
	defer tx.Rollback(ctx)

	n, err := load(ctx, tx, table, plants)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("dbload: committing plants into %s: %v", table, err)
	}
	return n, nil
}

func load(ctx context.Context, conn copier, table string, plants []*genfleet.Plant) (int64, error) {
	ident := pgx.Identifier{table}
	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c.name + " " + c.sqlType
		names[i] = c.name
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s, PRIMARY KEY (plant_code, prime_mover, energy_source, year))",
		ident.Sanitize(), strings.Join(defs, ", "))
	if _, err := conn.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("dbload: creating table %s: %v", table, err)
	}

	yearSet := make(map[int32]bool)
	var years []int32
	rows := make([][]interface{}, len(plants))
	for i, p := range plants {
		if y := int32(p.Year); !yearSet[y] {
			yearSet[y] = true
			years = append(years, y)
		}
		rows[i] = make([]interface{}, len(columns))
		for j, c := range columns {
			rows[i][j] = c.value(p)
		}
	}
	if len(years) > 0 {
		del := fmt.Sprintf("DELETE FROM %s WHERE year = ANY($1)", ident.Sanitize())
		if _, err := conn.Exec(ctx, del, years); err != nil {
			return 0, fmt.Errorf("dbload: deleting previous rows from %s: %v", table, err)
		}
	}
	n, err := conn.CopyFrom(ctx, ident, names, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("dbload: copying plants into %s: %v", table, err)
	}
	return n, nil
}
