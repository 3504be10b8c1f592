/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"sync"

	"gomanuscript/internal/pointer"
)

// Body is a pointer.Body for hosts that poll the cursor when they draw.
type Body struct {
	mu        sync.Mutex
	cursor    pointer.Cursor
	selection bool
}

func NewBody() *Body { return &Body{cursor: pointer.CursorDefault, selection: true} }

func (b *Body) Cursor() pointer.Cursor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

func (b *Body) SetCursor(c pointer.Cursor) {
	b.mu.Lock()
	b.cursor = c
	b.mu.Unlock()
}

func (b *Body) SelectionEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

func (b *Body) SetSelectionEnabled(on bool) {
	b.mu.Lock()
	b.selection = on
	b.mu.Unlock()
}
