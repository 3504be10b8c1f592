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
	"errors"
	"log/slog"
	"sync"
	"time"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/schedule"
)

// Scaler converts pane positions between display and logical space.
type Scaler interface {
	ToLogical(display geom.Pt) geom.Pt
	ToDisplay(logical geom.Pt) geom.Pt
}

// Seeder is the part of a pane controller Bind drives.
type Seeder interface {
	Scaler
	Initialize(pos geom.Pt, size geom.Size, spec constraint.Spec) bool
	Spec() constraint.Spec
}

// Bind restores the saved geometry of paneID into c, keeping c's constraints.
// The saved logical position is re-expanded by c's current scale. It reports
// whether a record was applied; a missing record is not an error.
func Bind(ctx context.Context, s Store, paneID string, c Seeder) (bool, error) {
	r, err := s.Load(ctx, paneID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !r.Valid() {
		return false, nil
	}
	return c.Initialize(c.ToDisplay(r.Position), r.Size, c.Spec()), nil
}

// DefaultSaveDelay batches saves of rapid keyboard nudges.
const DefaultSaveDelay = 250 * time.Millisecond

// Saver persists pane geometry after gestures settle. Hosts call Track from a
// controller's OnChange; geometry captured mid-gesture is skipped.
type Saver struct {
	store Store
	deb   *schedule.Debouncer
	log   *slog.Logger

	mu      sync.Mutex
	pending map[string]Record
}

// NewSaver returns a Saver flushing delay after the last tracked change.
func NewSaver(s Store, delay time.Duration) *Saver {
	l := applog.WithComponent("layoutstore")
	return &Saver{
		store:   s,
		deb:     schedule.NewDebouncer(delay, schedule.WithLogger(l)),
		log:     l,
		pending: map[string]Record{},
	}
}

// Track queues g for paneID. g.Position must already be logical. It returns
// false for geometry of a running gesture.
func (s *Saver) Track(paneID string, g panel.Geometry) bool {
	if g.Active() {
		return false
	}
	s.mu.Lock()
	s.pending[paneID] = Record{PaneID: paneID, Position: g.Position, Size: g.Size, UpdatedAt: time.Now()}
	s.mu.Unlock()
	s.deb.Trigger(func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Warn("saving pane geometry failed", slog.Any("err", err))
		}
	})
	return true
}

// OnChange returns a callback for panel.Callbacks.OnChange. Positions are
// converted to logical space through sc before they are queued.
func (s *Saver) OnChange(paneID string, sc Scaler) func(panel.Geometry) {
	return func(g panel.Geometry) {
		g.Position = sc.ToLogical(g.Position)
		s.Track(paneID, g)
	}
}

// Flush writes every pending record now. Records that fail stay pending.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = map[string]Record{}
	s.mu.Unlock()

	var errs []error
	for id, r := range batch {
		if err := s.store.Save(ctx, r); err != nil {
			errs = append(errs, err)
			s.mu.Lock()
			if _, newer := s.pending[id]; !newer {
				s.pending[id] = r
			}
			s.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// Close cancels the pending timer and flushes synchronously.
func (s *Saver) Close(ctx context.Context) error {
	s.deb.Cancel()
	return s.Flush(ctx)
}
