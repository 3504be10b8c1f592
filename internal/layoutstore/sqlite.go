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
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "gomanuscript/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// FileName is the default database name inside the user config directory.
const FileName = "layout.sqlite"

// DefaultPath returns <user config dir>/gomanuscript/layout.sqlite.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "gomanuscript", FileName), nil
}

// OpenSQLite opens (creating if needed) the layout database at path, enables
// WAL mode and ensures the schema.
func OpenSQLite(path string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("layoutstore"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create layout dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	s, err := newSQLStore(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		l.Error("ensure layout schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("layout store ready")
	return s, nil
}
