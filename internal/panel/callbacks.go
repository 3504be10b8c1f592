/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import "gomanuscript/internal/geom"

// Callbacks are optional hooks fired after a change is committed. OnChange
// fires after every commit with the new geometry.
type Callbacks struct {
	OnDrag        func(pos geom.Pt)
	OnResize      func(size geom.Size)
	OnDragStart   func()
	OnDragEnd     func()
	OnResizeStart func()
	OnResizeEnd   func()
	OnChange      func(g Geometry)
}

// queue collects callbacks while the controller lock is held.
type queue []func()

func (q *queue) add(f func()) {
	if f != nil {
		*q = append(*q, f)
	}
}

func (q queue) run() {
	for _, f := range q {
		f()
	}
}

func (c *Controller) changedLocked(q *queue) {
	if c.cb.OnChange == nil {
		return
	}
	g, fn := c.geo, c.cb.OnChange
	q.add(func() { fn(g) })
}

func (c *Controller) draggedLocked(q *queue) {
	if fn := c.cb.OnDrag; fn != nil {
		pos := c.geo.Position
		q.add(func() { fn(pos) })
	}
	c.changedLocked(q)
}

func (c *Controller) resizedLocked(q *queue) {
	if fn := c.cb.OnResize; fn != nil {
		size := c.geo.Size
		q.add(func() { fn(size) })
	}
	c.changedLocked(q)
}
