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

	"gomanuscript/internal/geom"
	"gomanuscript/internal/scale"
)

// HandleScaleChange re-normalizes the committed position when the effective
// scale moved by more than the threshold since the last observation. It does
// nothing while a gesture runs or without an element, and reports whether the
// position changed.
func (c *Controller) HandleScaleChange() bool {
	c.mu.Lock()
	if c.el == nil || c.geo.Active() {
		c.mu.Unlock()
		return false
	}
	var q queue
	changed := c.rescaleLocked(&q)
	c.mu.Unlock()
	q.run()
	return changed
}

// UpdatePositionForScaleChange is HandleScaleChange for hosts that change the
// zoom themselves and do not want to wait for a resize observation.
func (c *Controller) UpdatePositionForScaleChange() bool { return c.HandleScaleChange() }

func (c *Controller) rescaleLocked(q *queue) bool {
	cur := c.resolver.Resolve(c.el, c.vp)
	if !cur.Changed(c.last, c.threshold) {
		return false
	}
	ratio := cur.Ratio(c.last)
	c.geo.Position = c.geo.Position.Mul(ratio)
	c.log.Debug("scale changed", slog.String("op", "rescale"),
		slog.Float64("from", c.last.Effective()), slog.Float64("to", cur.Effective()))
	c.last = cur
	c.changedLocked(q)
	return true
}

func (c *Controller) currentLocked() scale.Snapshot {
	return c.resolver.Resolve(c.el, c.vp)
}

// LogicalPosition is the committed position with the ancestor scale divided out.
func (c *Controller) LogicalPosition() geom.Pt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geo.Position.Div(c.currentLocked().Ancestor())
}

// ToLogical divides the current ancestor scale out of a display position.
// Without an element the scale is 1.
func (c *Controller) ToLogical(display geom.Pt) geom.Pt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return display.Div(c.currentLocked().Ancestor())
}

// ToDisplay is the inverse of ToLogical.
func (c *Controller) ToDisplay(logical geom.Pt) geom.Pt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return logical.Mul(c.currentLocked().Ancestor())
}

// CorrectPoint maps a raw viewport coordinate to logical space at the current
// scale. Overlays such as the caret follower use it; it never mutates state.
func (c *Controller) CorrectPoint(raw geom.Pt) geom.Pt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return scale.ToLogical(raw, c.vp, c.currentLocked())
}

// PositionWithoutScale returns the committed position divided by the current
// effective scale. ok is false without an element.
func (c *Controller) PositionWithoutScale() (pos geom.Pt, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.el == nil {
		return geom.Pt{}, false
	}
	return c.geo.Position.Div(c.currentLocked().Factor()), true
}

// UpdatePositionAfterPinch commits PositionWithoutScale and records the
// current scale as the last observation.
func (c *Controller) UpdatePositionAfterPinch() (pos geom.Pt, ok bool) {
	c.mu.Lock()
	if c.el == nil || c.geo.Active() {
		c.mu.Unlock()
		return geom.Pt{}, false
	}
	cur := c.currentLocked()
	c.geo.Position = c.geo.Position.Div(cur.Factor())
	c.last = cur
	pos = c.geo.Position
	var q queue
	c.changedLocked(&q)
	c.mu.Unlock()
	q.run()
	return pos, true
}

// PositionWithInitialScale returns the committed position expressed at the
// scale sampled when the element was attached.
func (c *Controller) PositionWithInitialScale() (pos geom.Pt, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.el == nil {
		return geom.Pt{}, false
	}
	return c.geo.Position.Mul(c.initial.Ratio(c.currentLocked())), true
}
