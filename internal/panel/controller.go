/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package panel owns the geometry of one floating pane: its committed position
// and size, and the drag and resize gestures that change them.
//
// Position is stored in display space (the parent's coordinate space, already
// magnified by ancestor transforms). Gesture math runs in logical space and is
// re-expanded by the current ancestor scale before each commit. Hosts deliver
// pointer coordinates in the viewport's local, untransformed space.
package panel

import (
	"log/slog"
	"sync"
	"time"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/scale"
)

// DefaultThreshold is the relative scale change that triggers re-normalization.
const DefaultThreshold = 0.01

// Element is the live pane a controller drives.
type Element interface {
	scale.Node
	// Bounds is the pane's border box in viewport coordinates.
	Bounds() geom.Rect
	// ParentFrame describes the parent box; ok is false for a detached root.
	ParentFrame() (f Frame, ok bool)
}

// Frame is the parent box of an Element. Bounds is in display space, the same
// space as Element.Bounds. Metrics is in logical space: the ancestor scale is
// divided out, matching the positions ClampPosition receives.
type Frame struct {
	Bounds  geom.Rect // display coordinates
	Metrics constraint.ParentMetrics
}

// Geometry is the committed pane state.
type Geometry struct {
	Position geom.Pt
	Size     geom.Size
	Dragging bool
	Resizing bool
}

// Active reports a running gesture.
func (g Geometry) Active() bool { return g.Dragging || g.Resizing }

// Options configure a Controller. Zero values select the defaults.
type Options struct {
	Position geom.Pt
	Size     geom.Size
	Spec     constraint.Spec

	Callbacks Callbacks
	Lock      pointer.Lock
	Logger    *slog.Logger
	Now       func() time.Time

	// TouchDebounce of 0 selects pointer.DefaultTouchDebounce; negative disables it.
	TouchDebounce time.Duration
	Threshold     float64
	Step          float64 // keyboard step, default 1
	ShiftStep     float64 // keyboard step with Shift, default 10
}

// Controller is safe for concurrent use. Callbacks run after the internal lock
// is released, in the order the changes happened.
type Controller struct {
	mu sync.Mutex

	el       Element
	vp       scale.Viewport
	cb       Callbacks
	log      *slog.Logger
	resolver *scale.Resolver
	solver   *constraint.Solver
	tracker  *pointer.Tracker

	threshold       float64
	step, shiftStep float64

	spec constraint.Spec
	geo  Geometry

	seeded   bool
	seedPos  geom.Pt
	seedSize geom.Size
	seedSpec constraint.Spec

	// initial is sampled once, when the first element mounts.
	initial, last scale.Snapshot
	mounted       bool

	startElem geom.Pt
	startSize geom.Size
}

// New builds a controller for el (which may be nil until Attach) painted into vp.
func New(el Element, vp scale.Viewport, opts Options) *Controller {
	l := applog.OrComponent(opts.Logger, "panel")
	debounce := opts.TouchDebounce
	switch {
	case debounce == 0:
		debounce = pointer.DefaultTouchDebounce
	case debounce < 0:
		debounce = 0
	}
	c := &Controller{
		el:        el,
		vp:        vp,
		cb:        opts.Callbacks,
		log:       l,
		resolver:  scale.NewResolver(l),
		solver:    constraint.NewSolver(l),
		tracker:   pointer.NewTracker(opts.Lock, opts.Now, debounce),
		threshold: orDefault(opts.Threshold, DefaultThreshold),
		step:      orDefault(opts.Step, 1),
		shiftStep: orDefault(opts.ShiftStep, 10),
	}
	c.seedLocked(opts.Position, opts.Size, opts.Spec)
	c.sampleLocked()
	return c
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func (c *Controller) seedLocked(pos geom.Pt, size geom.Size, spec constraint.Spec) {
	c.seeded = true
	c.seedPos, c.seedSize, c.seedSpec = pos, size, spec
	c.spec = spec
	c.geo.Position = pos
	c.geo.Size = c.solver.ClampSize(size, spec)
}

// sampleLocked captures the initial and last scale snapshots.
func (c *Controller) sampleLocked() {
	snap := c.resolver.Resolve(c.el, c.vp)
	c.initial, c.last = snap, snap
	c.mounted = c.el != nil
}

// Attach swaps the live element. A gesture bound to the previous element is
// cancelled first. The initial scale stays the one sampled at the first
// mount; a scale change since the last observation re-expands the position.
func (c *Controller) Attach(el Element) {
	c.mu.Lock()
	var q queue
	c.cancelLocked(&q)
	c.el = el
	if el != nil {
		if !c.mounted {
			c.initial = c.resolver.Resolve(el, c.vp)
			c.mounted = true
		}
		c.rescaleLocked(&q)
	}
	c.mu.Unlock()
	q.run()
}

// Detach drops the element. A running gesture ends as if cancelled.
func (c *Controller) Detach() {
	c.mu.Lock()
	var q queue
	c.cancelLocked(&q)
	c.el = nil
	c.mu.Unlock()
	q.run()
}

// Initialize re-seeds position, size and constraints. It is ignored while a
// gesture runs, or when the values equal the previous seed, so repeated seeds
// never undo user-driven changes. It reports whether the seed was applied.
func (c *Controller) Initialize(pos geom.Pt, size geom.Size, spec constraint.Spec) bool {
	c.mu.Lock()
	if c.geo.Active() {
		c.mu.Unlock()
		return false
	}
	if c.seeded && pos == c.seedPos && size == c.seedSize && spec == c.seedSpec {
		c.mu.Unlock()
		return false
	}
	c.seedLocked(pos, size, spec)
	var q queue
	c.changedLocked(&q)
	c.mu.Unlock()
	q.run()
	return true
}

// State returns the committed geometry.
func (c *Controller) State() Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geo
}

// InitialScale returns the snapshot sampled when the element first mounted.
func (c *Controller) InitialScale() scale.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initial
}

// Spec returns the active constraints.
func (c *Controller) Spec() constraint.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// Session returns the running gesture, if any.
func (c *Controller) Session() (pointer.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Session()
}
