/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import "math"

// Arrow is an arrow key.
type Arrow int

const (
	NoArrow Arrow = iota
	Left
	Right
	Up
	Down
)

// Key is a host key press reduced to what the nudge path reads.
type Key struct {
	Arrow Arrow
	Ctrl  bool
	Shift bool
	Alt   bool
}

// HandleKey applies keyboard nudges: Ctrl+Arrow moves the pane, Ctrl+Alt+Arrow
// resizes it, Shift selects the larger step. Moves never take x or y below 0;
// resizes go through the size clamp. Keys are ignored while a gesture runs. It
// reports whether the key was consumed.
func (c *Controller) HandleKey(k Key) bool {
	if !k.Ctrl || k.Arrow == NoArrow {
		return false
	}
	c.mu.Lock()
	if c.geo.Active() {
		c.mu.Unlock()
		return false
	}
	step := c.step
	if k.Shift {
		step = c.shiftStep
	}
	var q queue
	if c.el != nil {
		c.rescaleLocked(&q)
	}
	if k.Alt {
		size := c.geo.Size
		switch k.Arrow {
		case Left:
			size.W -= step
		case Right:
			size.W += step
		case Up:
			size.H -= step
		case Down:
			size.H += step
		}
		c.geo.Size = c.solver.ClampSize(size, c.spec)
		c.resizedLocked(&q)
	} else {
		pos := c.geo.Position
		switch k.Arrow {
		case Left:
			pos.X = math.Max(0, pos.X-step)
		case Right:
			pos.X += step
		case Up:
			pos.Y = math.Max(0, pos.Y-step)
		case Down:
			pos.Y += step
		}
		c.geo.Position = pos
		c.draggedLocked(&q)
	}
	c.mu.Unlock()
	q.run()
	return true
}
