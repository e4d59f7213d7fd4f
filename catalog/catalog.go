/*
 * catalog.go, part of gopahdb.
 *
 *
 * Copyright 2021 Raul Mera rauldotmeraatusachdotcl
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 *
 */

//Package catalog keeps a record of spectral fits in an SQLite file: which
//observation was fitted, against which database, and the resulting weights
//and breakdown.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	pahdb "github.com/rmera/gopahdb"
)

//go:embed migrations/*.sql
var migrations embed.FS

//Run is one fit stored in the catalog.
type Run struct {
	ID          int64
	UUID        string
	Observation string
	DBType      string
	DBVersion   string
	Method      string
	Err         float64
	Created     time.Time
}

//Catalog is an open catalog.
type Catalog struct {
	db *sql.DB
}

//Open opens, or creates, the catalog in path, and brings its schema up to date.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening %s: %w", path, err)
	}
	//PRAGMAs are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: enabling foreign keys: %w", err)
	}
	C := &Catalog{db: db}
	if err := C.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return C, nil
}

func (C *Catalog) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("catalog: reading migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(C.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("catalog: creating sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("catalog: creating migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	//m is not closed, as that would close the database.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("catalog: migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

//Close closes the catalog.
func (C *Catalog) Close() error {
	return C.db.Close()
}

//SaveFit stores the fit f as a new run and returns its ID. The fields of run
//that f determines (method, database, error) are taken from f. An empty UUID
//is replaced by a new one, and a zero creation time by the current time.
func (C *Catalog) SaveFit(ctx context.Context, run Run, f *pahdb.Fitted) (int64, error) {
	if run.UUID == "" {
		run.UUID = uuid.NewString()
	}
	if run.Created.IsZero() {
		run.Created = time.Now()
	}
	run.Method = f.Method
	run.DBType, run.DBVersion = f.Type, f.Version
	breakdown := f.GetBreakdown(pahdb.DefaultSmall, false)
	run.Err = breakdown["err"]
	tx, err := C.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("catalog: %w", err)
	}
	defer tx.Rollback() //no-op after Commit
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (uuid, observation, db_type, db_version, method, fit_error, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.UUID, run.Observation, run.DBType, run.DBVersion, run.Method, run.Err, run.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("catalog: inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("catalog: %w", err)
	}
	for _, uid := range f.UIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO weights (run_id, uid, weight) VALUES (?, ?, ?)`, id, uid, f.Weights[uid]); err != nil {
			return 0, fmt.Errorf("catalog: inserting weight for UID %d: %w", uid, err)
		}
	}
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `INSERT INTO breakdown (run_id, param, value) VALUES (?, ?, ?)`, id, k, breakdown[k]); err != nil {
			return 0, fmt.Errorf("catalog: inserting breakdown %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("catalog: %w", err)
	}
	return id, nil
}

//Runs returns all the runs, oldest first.
func (C *Catalog) Runs(ctx context.Context) ([]Run, error) {
	rows, err := C.db.QueryContext(ctx,
		`SELECT run_id, uuid, observation, db_type, db_version, method, fit_error, created FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer rows.Close()
	var r []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &run.UUID, &run.Observation, &run.DBType, &run.DBVersion, &run.Method, &run.Err, &created); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if run.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("catalog: run %d: %w", run.ID, err)
		}
		r = append(r, run)
	}
	return r, rows.Err()
}

//Weights returns the weights stored for the run with the given ID.
func (C *Catalog) Weights(ctx context.Context, runID int64) (map[int]float64, error) {
	return queryMap[int](ctx, C.db, `SELECT uid, weight FROM weights WHERE run_id = ?`, runID)
}

//Breakdown returns the breakdown stored for the run with the given ID.
func (C *Catalog) Breakdown(ctx context.Context, runID int64) (map[string]float64, error) {
	return queryMap[string](ctx, C.db, `SELECT param, value FROM breakdown WHERE run_id = ?`, runID)
}

func queryMap[K comparable](ctx context.Context, db *sql.DB, query string, args ...interface{}) (map[K]float64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer rows.Close()
	r := make(map[K]float64)
	for rows.Next() {
		var k K
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		r[k] = v
	}
	return r, rows.Err()
}
