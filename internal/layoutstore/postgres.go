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
	"fmt"
	"log/slog"

	applog "gomanuscript/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres connects through the pgx database/sql driver and ensures the
// schema. It is used when several machines share one workspace layout.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("layoutstore"), "postgres_open")
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		l.Warn("postgres not reachable", slog.Any("err", err))
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := newSQLStore(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
