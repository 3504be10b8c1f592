/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the 2D value types shared by the pane geometry engine:
// points, sizes, rectangles, box edges and a 2x3 affine matrix.
// Values use float64; hosts convert at their boundary (fyne uses float32).
package geom

import "math"

// Pt is a 2D point or offset.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// Edges are per-side box metrics such as padding or border widths.
type Edges struct{ Top, Right, Bottom, Left float64 }

func P(x, y float64) Pt         { return Pt{X: x, Y: y} }
func S(w, h float64) Size       { return Size{W: w, H: h} }
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (p Pt) Add(o Pt) Pt { return Pt{p.X + o.X, p.Y + o.Y} }
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// Mul multiplies component-wise, so a per-axis scale pair can be applied.
func (p Pt) Mul(f Pt) Pt { return Pt{p.X * f.X, p.Y * f.Y} }

// Div divides component-wise. A zero divisor component leaves that axis untouched.
func (p Pt) Div(f Pt) Pt {
	out := p
	if f.X != 0 {
		out.X = p.X / f.X
	}
	if f.Y != 0 {
		out.Y = p.Y / f.Y
	}
	return out
}

func (p Pt) Scale(s float64) Pt { return Pt{p.X * s, p.Y * s} }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Pt) Finite() bool { return finite(p.X) && finite(p.Y) }

func (s Size) Finite() bool { return finite(s.W) && finite(s.H) }

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// ContainsRect reports whether o lies fully inside r, within eps.
func (r Rect) ContainsRect(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps && o.X+o.W <= r.X+r.W+eps && o.Y+o.H <= r.Y+r.H+eps
}

// Inset shrinks r by the given edges (negative values grow it).
func (r Rect) Inset(e Edges) Rect {
	return Rect{X: r.X + e.Left, Y: r.Y + e.Top, W: r.W - e.Left - e.Right, H: r.H - e.Top - e.Bottom}
}

// Horizontal and Vertical sum opposite sides.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// TopLeft is the offset of the inner box origin.
func (e Edges) TopLeft() Pt { return Pt{e.Left, e.Top} }

func (e Edges) Add(o Edges) Edges {
	return Edges{Top: e.Top + o.Top, Right: e.Right + o.Right, Bottom: e.Bottom + o.Bottom, Left: e.Left + o.Left}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Round rounds v to n decimal places deterministically.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
