/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pointer

import "sync"

// Cursor is a host-neutral cursor name.
type Cursor string

const (
	CursorDefault    Cursor = "default"
	CursorGrabbing   Cursor = "grabbing"
	CursorResizeNS   Cursor = "ns-resize"
	CursorResizeEW   Cursor = "ew-resize"
	CursorResizeNWSE Cursor = "nwse-resize"
	CursorResizeNESW Cursor = "nesw-resize"
)

// Lock is the process-wide UI state a gesture holds while it runs: the pointer
// cursor and whether text selection is suppressed. Every Acquire is paired with
// exactly one Release, on every exit path of the gesture.
type Lock interface {
	Acquire(c Cursor)
	Release()
}

// NopLock ignores both calls.
type NopLock struct{}

func (NopLock) Acquire(Cursor) {}
func (NopLock) Release()       {}

// Body is the host surface a BodyLock drives.
type Body interface {
	Cursor() Cursor
	SetCursor(Cursor)
	SelectionEnabled() bool
	SetSelectionEnabled(bool)
}

// BodyLock is a reference-counted Lock over a Body. The first Acquire saves the
// body's cursor and selection state; the last Release restores them. Several
// panes may share one BodyLock.
type BodyLock struct {
	mu          sync.Mutex
	body        Body
	holders     int
	savedCursor Cursor
	savedSelect bool
}

func NewBodyLock(b Body) *BodyLock { return &BodyLock{body: b} }

func (l *BodyLock) Acquire(c Cursor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holders == 0 {
		l.savedCursor = l.body.Cursor()
		l.savedSelect = l.body.SelectionEnabled()
	}
	l.holders++
	l.body.SetCursor(c)
	l.body.SetSelectionEnabled(false)
}

// Release is a no-op when nothing is held.
func (l *BodyLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holders == 0 {
		return
	}
	l.holders--
	if l.holders == 0 {
		l.body.SetCursor(l.savedCursor)
		l.body.SetSelectionEnabled(l.savedSelect)
	}
}

// Held reports the number of outstanding acquisitions.
func (l *BodyLock) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holders
}
