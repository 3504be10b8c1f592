/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schedule holds the deferred work around pane geometry: a settle
// debounce for resize observations and a frame-budget layout coalescer.
// Callbacks run on timer goroutines unless a Post dispatcher is supplied.
package schedule

import (
	"log/slog"
	"sync"
	"time"

	applog "gomanuscript/internal/log"
)

// Option configures a Debouncer, a ResizeWatch or a LayoutScheduler.
type Option func(*settings)

type settings struct {
	post func(func())
	log  *slog.Logger
}

// WithPost routes every callback through post, e.g. fyne.Do, so it runs on the
// host's UI goroutine.
func WithPost(post func(func())) Option {
	return func(s *settings) { s.post = post }
}

// WithLogger sets the logger for layout failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

func apply(opts []Option) settings {
	var s settings
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	if s.post == nil {
		s.post = func(f func()) { f() }
	}
	s.log = applog.OrComponent(s.log, "schedule")
	return s
}

// Debouncer runs only the most recently triggered callback once its delay has
// elapsed. A zero delay defers the callback until the current caller returns
// and the runtime schedules the timer.
type Debouncer struct {
	delay time.Duration
	post  func(func())

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer returns a Debouncer. Negative delays are treated as zero.
func NewDebouncer(delay time.Duration, opts ...Option) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	s := apply(opts)
	return &Debouncer{delay: delay, post: s.post}
}

// Trigger (re)schedules fn, superseding any callback still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if !d.claim(seq) {
			return
		}
		d.post(fn)
	})
}

// claim reports whether seq is still the latest trigger; a timer that fired
// while being replaced loses here.
func (d *Debouncer) claim(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return false
	}
	d.timer = nil
	return true
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) Delay() time.Duration { return d.delay }
