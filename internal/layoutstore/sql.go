/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	applog "gomanuscript/internal/log"
	"gomanuscript/internal/version"
)

// schemaVersion tracks the pane_geometry schema. Bump it together with a new
// step in migrate.
const schemaVersion = 1

// dialect differs only in bind placeholders.
type dialect struct {
	name        string
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// bind rewrites the ? placeholders of q for the dialect.
func (d dialect) bind(q string) string {
	if d.name == sqliteDialect.name {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore is a Store over database/sql, shared by the SQLite and PostgreSQL
// backends.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// DB exposes the underlying handle, mainly for tests.
func (s *SQLStore) DB() *sql.DB { return s.db }

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d, log: applog.WithComponent("layoutstore").With(slog.String("driver", d.name))}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	num := "REAL"
	if s.dialect.name == postgresDialect.name {
		num = "DOUBLE PRECISION"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS layout_version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pane_geometry (
			pane_id     TEXT PRIMARY KEY,
			x           %[1]s NOT NULL,
			y           %[1]s NOT NULL,
			width       %[1]s NOT NULL,
			height      %[1]s NOT NULL,
			updated_at  TEXT NOT NULL
		)`, num),
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM layout_version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		q := s.dialect.bind(`INSERT INTO layout_version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`)
		if _, err := s.db.ExecContext(ctx, q, schemaVersion, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if cur > schemaVersion {
			s.log.Warn("layout schema is newer than this build", slog.Int("schema", cur), slog.Int("want", schemaVersion))
		}
		q := s.dialect.bind(`UPDATE layout_version SET app=?, updated_at=? WHERE id=1`)
		if _, err := s.db.ExecContext(ctx, q, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the stored schema number.
func (s *SQLStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT schema FROM layout_version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (s *SQLStore) Load(ctx context.Context, paneID string) (Record, error) {
	q := s.dialect.bind(`SELECT pane_id, x, y, width, height, updated_at FROM pane_geometry WHERE pane_id=?`)
	r, err := scanRecord(s.db.QueryRowContext(ctx, q, paneID))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("load %q: %w", paneID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %q: %w", paneID, err)
	}
	return r, nil
}

func (s *SQLStore) Save(ctx context.Context, r Record) error {
	if !r.Valid() {
		return fmt.Errorf("save %q: invalid geometry %+v", r.PaneID, r)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	q := s.dialect.bind(`INSERT INTO pane_geometry (pane_id, x, y, width, height, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(pane_id) DO UPDATE SET
			x=excluded.x, y=excluded.y, width=excluded.width, height=excluded.height,
			updated_at=excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, q, r.PaneID, r.Position.X, r.Position.Y, r.Size.W, r.Size.H,
		r.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.log.Error("save pane geometry failed", slog.String("pane", r.PaneID), slog.Any("err", err))
		return fmt.Errorf("save %q: %w", r.PaneID, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pane_id, x, y, width, height, updated_at FROM pane_geometry ORDER BY pane_id`)
	if err != nil {
		return nil, fmt.Errorf("list panes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pane: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list panes: %w", err)
	}
	return out, nil
}

// Delete removes a pane's record; deleting a missing pane is not an error.
func (s *SQLStore) Delete(ctx context.Context, paneID string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.bind(`DELETE FROM pane_geometry WHERE pane_id=?`), paneID); err != nil {
		return fmt.Errorf("delete %q: %w", paneID, err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

type scanner interface{ Scan(dest ...any) error }

func scanRecord(row scanner) (Record, error) {
	var r Record
	var ts string
	if err := row.Scan(&r.PaneID, &r.Position.X, &r.Position.Y, &r.Size.W, &r.Size.H, &ts); err != nil {
		return Record{}, err
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		r.UpdatedAt = t
	}
	return r, nil
}
