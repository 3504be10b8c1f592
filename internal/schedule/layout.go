/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultFrame is the coalescing window for layout requests (one 60 fps frame).
const DefaultFrame = 16 * time.Millisecond

// Layouter is a surface that can recompute its layout, such as the text
// editing widget hosted inside a pane.
type Layouter interface {
	Layout() error
}

// LayoutFunc adapts a function to Layouter.
type LayoutFunc func() error

func (f LayoutFunc) Layout() error { return f() }

// LayoutScheduler coalesces layout requests into at most one run per frame.
// While a run is scheduled further requests are dropped. Immediate cancels the
// scheduled run and lays out synchronously.
type LayoutScheduler struct {
	frame time.Duration
	post  func(func())
	log   *slog.Logger

	mu        sync.Mutex
	target    Layouter
	timer     *time.Timer
	seq       uint64
	scheduled bool
}

// NewLayoutScheduler returns a scheduler for target (nil until Attach). A
// non-positive frame selects DefaultFrame.
func NewLayoutScheduler(target Layouter, frame time.Duration, opts ...Option) *LayoutScheduler {
	if frame <= 0 {
		frame = DefaultFrame
	}
	s := apply(opts)
	return &LayoutScheduler{frame: frame, post: s.post, log: s.log, target: target}
}

// Request schedules a layout unless one is already pending. It reports whether
// a new run was scheduled.
func (s *LayoutScheduler) Request() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil || s.scheduled {
		return false
	}
	s.scheduled = true
	s.seq++
	seq := s.seq
	s.timer = time.AfterFunc(s.frame, func() {
		target := s.claim(seq)
		if target == nil {
			return
		}
		s.post(func() { s.run(target, "layout") })
	})
	return true
}

func (s *LayoutScheduler) claim(seq uint64) Layouter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || !s.scheduled {
		return nil
	}
	s.scheduled = false
	s.timer = nil
	return s.target
}

// Immediate cancels any pending run and lays out now on the calling goroutine.
// Callers use it before measuring, for example right before a drag starts.
func (s *LayoutScheduler) Immediate() error {
	s.mu.Lock()
	s.cancelLocked()
	target := s.target
	s.mu.Unlock()
	if target == nil {
		return nil
	}
	return s.run(target, "layout.immediate")
}

func (s *LayoutScheduler) run(target Layouter, op string) error {
	err := target.Layout()
	if err != nil {
		s.log.Warn("layout update failed", slog.String("op", op), slog.Any("err", err))
	}
	return err
}

// Attach swaps the layout target. A run pending for the old target is dropped.
func (s *LayoutScheduler) Attach(target Layouter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.target = target
}

// Detach clears the target and drops any pending run.
func (s *LayoutScheduler) Detach() { s.Attach(nil) }

// Stop drops any pending run; the target stays attached.
func (s *LayoutScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Pending reports whether a coalesced run is scheduled.
func (s *LayoutScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

func (s *LayoutScheduler) cancelLocked() {
	s.seq++
	s.scheduled = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
