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
	"sort"
	"sync"
	"time"
)

// MemStore keeps records in memory. It backs the "memory" store driver and
// tests.
type MemStore struct {
	mu   sync.Mutex
	recs map[string]Record
}

func NewMemStore() *MemStore { return &MemStore{recs: map[string]Record{}} }

func (m *MemStore) Load(_ context.Context, paneID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[paneID]
	if !ok {
		return Record{}, fmt.Errorf("load %q: %w", paneID, ErrNotFound)
	}
	return r, nil
}

func (m *MemStore) Save(_ context.Context, r Record) error {
	if !r.Valid() {
		return fmt.Errorf("save %q: invalid geometry %+v", r.PaneID, r)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[r.PaneID] = r
	return nil
}

func (m *MemStore) List(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaneID < out[j].PaneID })
	return out, nil
}

func (m *MemStore) Delete(_ context.Context, paneID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, paneID)
	return nil
}

func (m *MemStore) Close() error { return nil }
