// Copyright 2026 The Oakflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlite implements process.Service over a local SQLite
// database. Variable values are stored JSON-encoded, so numeric values
// round-trip as float64.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

// Store is a SQLite-backed process data service.
//
// Features:
//   - WAL mode for better concurrency
//   - Foreign key constraints enabled
//   - Automatic schema migration on open
type Store struct {
	db *sql.DB
}

// Config contains configuration for the SQLite store.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	Path string
}

// Open opens (creating if necessary) the database and runs migrations.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// WAL mode allows concurrent readers alongside one writer.
	connStr := cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=ON"

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS instances (
			id INTEGER PRIMARY KEY,
			parent_id INTEGER NOT NULL DEFAULT 0,
			name TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'running',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS variables (
			instance_id INTEGER NOT NULL REFERENCES instances(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (instance_id, key)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_instances_parent
			ON instances(parent_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveInstance inserts or replaces a process instance.
func (s *Store) SaveInstance(ctx context.Context, inst *process.Instance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instances (id, parent_id, name, state) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET parent_id = excluded.parent_id,
			name = excluded.name, state = excluded.state`,
		inst.ID, inst.ParentID, inst.Name, inst.State)
	if err != nil {
		return fmt.Errorf("saving instance %d: %w", inst.ID, err)
	}
	return nil
}

// SetVariable persists one variable for an instance, overwriting any
// previous value for the key.
func (s *Store) SetVariable(ctx context.Context, instanceID int64, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding variable %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO variables (instance_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(instance_id, key) DO UPDATE SET value = excluded.value`,
		instanceID, key, string(encoded))
	if err != nil {
		return fmt.Errorf("saving variable %q for instance %d: %w", key, instanceID, err)
	}
	return nil
}

// DeleteVariable removes one persisted variable.
func (s *Store) DeleteVariable(ctx context.Context, instanceID int64, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM variables WHERE instance_id = ? AND key = ?`, instanceID, key)
	if err != nil {
		return fmt.Errorf("deleting variable %q for instance %d: %w", key, instanceID, err)
	}
	return nil
}

// InstanceByID implements process.Service.
func (s *Store) InstanceByID(ctx context.Context, id int64) (*process.Instance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, name, state FROM instances WHERE id = ?`, id)

	var inst process.Instance
	if err := row.Scan(&inst.ID, &inst.ParentID, &inst.Name, &inst.State); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, &errors.NotFoundError{Resource: "process instance", ID: id}
		}
		return nil, fmt.Errorf("querying instance %d: %w", id, err)
	}
	return &inst, nil
}

// Variables implements process.Service. Variables are returned in
// insertion order.
func (s *Store) Variables(ctx context.Context, id int64) ([]process.Variable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM variables WHERE instance_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying variables for instance %d: %w", id, err)
	}
	defer rows.Close()

	var out []process.Variable
	for rows.Next() {
		var (
			key     string
			encoded string
		)
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("scanning variable: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return nil, fmt.Errorf("decoding variable %q: %w", key, err)
		}
		out = append(out, process.Variable{Key: key, Value: value})
	}
	return out, rows.Err()
}

// Query implements process.Service.
func (s *Store) Query() process.InstanceQuery {
	return &query{store: s}
}

type query struct {
	store    *Store
	parentID *int64
}

// ParentID implements process.InstanceQuery.
func (q *query) ParentID(id int64) process.InstanceQuery {
	q.parentID = &id
	return q
}

// List implements process.InstanceQuery.
func (q *query) List(ctx context.Context) ([]*process.Instance, error) {
	stmt := `SELECT id, parent_id, name, state FROM instances ORDER BY id`
	args := []any{}
	if q.parentID != nil {
		stmt = `SELECT id, parent_id, name, state FROM instances WHERE parent_id = ? ORDER BY id`
		args = append(args, *q.parentID)
	}

	rows, err := q.store.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []*process.Instance
	for rows.Next() {
		var inst process.Instance
		if err := rows.Scan(&inst.ID, &inst.ParentID, &inst.Name, &inst.State); err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		out = append(out, &inst)
	}
	return out, rows.Err()
}
