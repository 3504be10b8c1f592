/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pointer

import (
	"slices"
	"time"

	"gomanuscript/internal/geom"
)

// DefaultTouchDebounce drops touch moves arriving this soon after the touch
// started.
const DefaultTouchDebounce = 50 * time.Millisecond

// Kind is the gesture a session performs.
type Kind int

const (
	Drag Kind = iota + 1
	Resize
)

func (k Kind) String() string {
	switch k {
	case Drag:
		return "drag"
	case Resize:
		return "resize"
	}
	return "none"
}

// State is the tracker state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Session describes one running gesture. StartPointer is the normalized pointer
// position at start.
type Session struct {
	Kind         Kind
	Direction    Direction // resize only
	StartPointer geom.Pt
	TouchID      int
	HasTouch     bool
	StartedAt    time.Time
}

// Tracker owns at most one Session. It is not safe for concurrent use; the
// owning controller serializes calls.
type Tracker struct {
	lock     Lock
	now      func() time.Time
	debounce time.Duration

	active  bool
	session Session
}

// NewTracker returns an idle tracker. A nil lock becomes NopLock, a nil clock
// becomes time.Now and a negative debounce becomes DefaultTouchDebounce.
func NewTracker(lock Lock, now func() time.Time, debounce time.Duration) *Tracker {
	if lock == nil {
		lock = NopLock{}
	}
	if now == nil {
		now = time.Now
	}
	if debounce < 0 {
		debounce = DefaultTouchDebounce
	}
	return &Tracker{lock: lock, now: now, debounce: debounce}
}

// Start opens a session for in. start is the pointer position already
// normalized by the caller. It returns false without side effects when a
// session is already running or kind is unknown.
func (t *Tracker) Start(in Input, kind Kind, dir Direction, start geom.Pt) bool {
	if t.active || in == nil {
		return false
	}
	if kind != Drag && kind != Resize {
		return false
	}
	s := Session{Kind: kind, StartPointer: start, StartedAt: t.now()}
	if kind == Resize {
		if !dir.Valid() {
			return false
		}
		s.Direction = dir
	}
	if id, ok := touchID(in); ok {
		s.TouchID, s.HasTouch = id, true
	}
	t.session, t.active = s, true

	cur := CursorGrabbing
	if kind == Resize {
		cur = dir.Cursor()
	}
	t.lock.Acquire(cur)
	return true
}

// Accept reports whether a move input belongs to the running session. Touch
// moves must carry the active identifier and arrive after the debounce window;
// a mouse move never matches a touch session or the other way round.
func (t *Tracker) Accept(in Input) bool {
	if !t.active || in == nil {
		return false
	}
	id, isTouch := touchID(in)
	if isTouch != t.session.HasTouch {
		return false
	}
	if !isTouch {
		return true
	}
	if id != t.session.TouchID {
		return false
	}
	return t.now().Sub(t.session.StartedAt) >= t.debounce
}

// End closes the session when in is the pointer that owns it. A touch end with
// a foreign identifier is ignored. The ended session is returned.
func (t *Tracker) End(in Input) (Session, bool) {
	if !t.active || in == nil {
		return Session{}, false
	}
	id, isTouch := touchID(in)
	if isTouch != t.session.HasTouch || (isTouch && id != t.session.TouchID) {
		return Session{}, false
	}
	return t.finish(), true
}

// Finish closes the session regardless of the owning pointer. Controllers use
// it for programmatic end calls.
func (t *Tracker) Finish() (Session, bool) {
	if !t.active {
		return Session{}, false
	}
	return t.finish(), true
}

// Cancel aborts the session (touchcancel). It behaves like Finish; the caller
// skips any commit.
func (t *Tracker) Cancel() (Session, bool) { return t.Finish() }

// Sync receives the identifiers of the touches currently down. When the
// session's touch is missing the session is cancelled and returned.
func (t *Tracker) Sync(ids []int) (Session, bool) {
	if !t.active || !t.session.HasTouch {
		return Session{}, false
	}
	if slices.Contains(ids, t.session.TouchID) {
		return Session{}, false
	}
	return t.finish(), true
}

func (t *Tracker) finish() Session {
	s := t.session
	t.session, t.active = Session{}, false
	t.lock.Release()
	return s
}

// State reports Idle, Dragging or Resizing.
func (t *Tracker) State() State {
	if !t.active {
		return Idle
	}
	if t.session.Kind == Resize {
		return Resizing
	}
	return Dragging
}

// Session returns the running session.
func (t *Tracker) Session() (Session, bool) { return t.session, t.active }
