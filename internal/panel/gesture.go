/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import (
	"log/slog"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/scale"
)

// StartDrag begins a drag owned by in. It returns false when a gesture is
// already running or no element is attached.
func (c *Controller) StartDrag(in pointer.Input) bool {
	return c.start(in, pointer.Drag, "")
}

// StartResize begins a resize from the dir handle.
func (c *Controller) StartResize(in pointer.Input, dir pointer.Direction) bool {
	return c.start(in, pointer.Resize, dir)
}

func (c *Controller) start(in pointer.Input, kind pointer.Kind, dir pointer.Direction) bool {
	c.mu.Lock()
	if c.el == nil || in == nil || c.tracker.State() != pointer.Idle {
		c.mu.Unlock()
		return false
	}
	var q queue
	c.rescaleLocked(&q)

	at := scale.Normalize(in.Pos(), c.vp, c.initial)
	if !c.tracker.Start(in, kind, dir, at) {
		c.mu.Unlock()
		q.run()
		return false
	}
	switch kind {
	case pointer.Drag:
		c.startElem = c.elementPositionLocked()
		c.geo.Dragging = true
		q.add(c.cb.OnDragStart)
	case pointer.Resize:
		c.startSize = c.geo.Size
		c.geo.Resizing = true
		q.add(c.cb.OnResizeStart)
	}
	c.changedLocked(&q)
	c.log.Debug("gesture start", slog.String("op", kind.String()+".start"),
		slog.String("dir", string(dir)), slog.Float64("x", at.X), slog.Float64("y", at.Y))
	c.mu.Unlock()
	q.run()
	return true
}

// elementPositionLocked reads the pane's live position relative to the
// parent's content box, undoes the parent transform and divides out the
// ancestor scale. Without a parent the committed position is used.
func (c *Controller) elementPositionLocked() geom.Pt {
	frame, ok := c.el.ParentFrame()
	if !ok {
		return c.geo.Position
	}
	rel := c.el.Bounds().Min().Sub(frame.Bounds.Min()).Sub(frame.Metrics.Offset())
	if t := frame.Metrics.Transform; t != nil && !t.IsIdentity() {
		inv, err := t.Invert()
		if err != nil {
			c.log.Warn("parent transform not invertible; using raw offset", slog.Any("err", err))
		} else {
			rel = inv.Apply(rel)
		}
	}
	snap := c.resolver.Resolve(c.el, c.vp)
	return rel.Div(snap.Ancestor())
}

// Move feeds a pointer move. Inputs that do not belong to the running gesture
// are ignored. It reports whether the geometry changed.
func (c *Controller) Move(in pointer.Input) bool {
	c.mu.Lock()
	if c.el == nil || !c.tracker.Accept(in) {
		c.mu.Unlock()
		return false
	}
	s, _ := c.tracker.Session()
	delta := scale.Normalize(in.Pos(), c.vp, c.initial).Sub(s.StartPointer)

	var q queue
	switch s.Kind {
	case pointer.Drag:
		cand := c.startElem.Add(delta)
		if c.spec.ConstrainToParent {
			if frame, ok := c.el.ParentFrame(); ok {
				cand = c.solver.ClampPosition(cand, c.geo.Size, c.spec, frame.Metrics)
			}
		}
		snap := c.resolver.Resolve(c.el, c.vp)
		c.geo.Position = cand.Mul(snap.Ancestor())
		c.draggedLocked(&q)
	case pointer.Resize:
		c.geo.Size = c.solver.ClampSize(constraint.ResizeCandidate(c.startSize, delta, s.Direction), c.spec)
		c.resizedLocked(&q)
	}
	c.mu.Unlock()
	q.run()
	return true
}

// End finishes the gesture owned by in (mouse up, touch end).
func (c *Controller) End(in pointer.Input) bool {
	c.mu.Lock()
	s, ok := c.tracker.End(in)
	var q queue
	if ok {
		c.finishLocked(&q, s, "end")
	}
	c.mu.Unlock()
	q.run()
	return ok
}

// EndDrag finishes a running drag regardless of the owning pointer.
func (c *Controller) EndDrag() bool { return c.endKind(pointer.Drag) }

// EndResize finishes a running resize regardless of the owning pointer.
func (c *Controller) EndResize() bool { return c.endKind(pointer.Resize) }

func (c *Controller) endKind(kind pointer.Kind) bool {
	c.mu.Lock()
	var q queue
	cur, active := c.tracker.Session()
	ok := active && cur.Kind == kind
	if ok {
		s, _ := c.tracker.Finish()
		c.finishLocked(&q, s, "end")
	}
	c.mu.Unlock()
	q.run()
	return ok
}

// Cancel aborts the running gesture (touchcancel). The last committed geometry
// stays; the UI lock is released and the end callback fires once.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	var q queue
	ok := c.cancelLocked(&q)
	c.mu.Unlock()
	q.run()
	return ok
}

// TouchesChanged reports the touch identifiers currently down. A running touch
// gesture whose identifier vanished is cancelled.
func (c *Controller) TouchesChanged(ids []int) bool {
	c.mu.Lock()
	s, ok := c.tracker.Sync(ids)
	var q queue
	if ok {
		c.finishLocked(&q, s, "lost")
	}
	c.mu.Unlock()
	q.run()
	return ok
}

func (c *Controller) cancelLocked(q *queue) bool {
	s, ok := c.tracker.Cancel()
	if ok {
		c.finishLocked(q, s, "cancel")
	}
	return ok
}

func (c *Controller) finishLocked(q *queue, s pointer.Session, how string) {
	c.geo.Dragging, c.geo.Resizing = false, false
	switch s.Kind {
	case pointer.Drag:
		q.add(c.cb.OnDragEnd)
	case pointer.Resize:
		q.add(c.cb.OnResizeEnd)
	}
	c.changedLocked(q)
	c.log.Debug("gesture finished", slog.String("op", s.Kind.String()+"."+how),
		slog.Float64("x", c.geo.Position.X), slog.Float64("y", c.geo.Position.Y),
		slog.Float64("w", c.geo.Size.W), slog.Float64("h", c.geo.Size.H))
}
