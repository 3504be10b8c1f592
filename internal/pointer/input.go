/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pointer turns mouse and touch input into a single drag or resize
// gesture lifecycle. Hosts convert their toolkit events into Input values once,
// at the boundary; everything downstream works on Mouse or Touch.
package pointer

import "gomanuscript/internal/geom"

// Input is a pointer event resolved at the host boundary. It is either Mouse or
// Touch.
type Input interface {
	Pos() geom.Pt
	input()
}

// Mouse is a mouse (or pen) pointer position in raw viewport coordinates.
type Mouse struct{ X, Y float64 }

// Touch is one touch point. ID is the platform touch identifier.
type Touch struct {
	ID   int
	X, Y float64
}

func (m Mouse) Pos() geom.Pt { return geom.P(m.X, m.Y) }
func (t Touch) Pos() geom.Pt { return geom.P(t.X, t.Y) }

func (Mouse) input() {}
func (Touch) input() {}

// touchID returns the identifier of a touch input.
func touchID(in Input) (int, bool) {
	t, ok := in.(Touch)
	return t.ID, ok
}
