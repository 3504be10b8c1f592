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
	"fmt"
	"strings"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the store for driver. For sqlite an empty path selects
// DefaultPath; postgres needs a DSN.
func Open(ctx context.Context, driver, path, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		if strings.TrimSpace(path) == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "pg", "pgx":
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("postgres layout store needs a DSN")
		}
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemStore(), nil
	}
	return nil, fmt.Errorf("unknown layout store driver %q", driver)
}
