/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layoutstore persists pane geometry between sessions. The geometry
// engine itself keeps no state on disk; hosts bind a Store to each pane
// controller and save through a Saver when a gesture ends.
package layoutstore

import (
	"context"
	"errors"
	"time"

	"gomanuscript/internal/geom"
)

// ErrNotFound is returned by Load when nothing is saved for a pane.
var ErrNotFound = errors.New("layoutstore: no saved geometry")

// Record is one pane's saved geometry. Position is logical: the zoom in
// effect when it was saved is divided out.
type Record struct {
	PaneID    string
	Position  geom.Pt
	Size      geom.Size
	UpdatedAt time.Time
}

// Store is implemented by the SQLite, PostgreSQL and in-memory backends.
type Store interface {
	Load(ctx context.Context, paneID string) (Record, error)
	Save(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, paneID string) error
	Close() error
}

// Valid reports a record worth restoring: a pane id and finite, positive geometry.
func (r Record) Valid() bool {
	return r.PaneID != "" && r.Position.Finite() && r.Size.Finite() && r.Size.W > 0 && r.Size.H > 0
}
