/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package constraint clamps proposed pane geometry to size bounds and, when
// asked, to the parent's content box.
package constraint

import (
	"log/slog"
	"math"

	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/pointer"
)

// Spec holds the per-pane bounds. A MaxSize axis of 0 is unbounded.
type Spec struct {
	MinSize           geom.Size
	MaxSize           geom.Size
	ConstrainToParent bool
}

// ParentMetrics describes the parent a pane is positioned in. Width and Height
// are the border-box dimensions. Transform is nil when the parent carries none.
type ParentMetrics struct {
	Width, Height float64
	Padding       geom.Edges
	Border        geom.Edges
	Transform     *geom.Affine2D
}

// Offset is the top-left of the content box relative to the border box.
func (m ParentMetrics) Offset() geom.Pt {
	return m.Padding.TopLeft().Add(m.Border.TopLeft())
}

// ContentBox is the padded content area in the parent's own coordinates.
func (m ParentMetrics) ContentBox() geom.Rect {
	o := m.Offset()
	w := m.Width - m.Padding.Horizontal() - m.Border.Horizontal()
	h := m.Height - m.Padding.Vertical() - m.Border.Vertical()
	return geom.R(o.X, o.Y, math.Max(0, w), math.Max(0, h))
}

// Solver applies a Spec. The zero value logs through the package logger.
type Solver struct {
	log *slog.Logger
}

func NewSolver(l *slog.Logger) *Solver {
	return &Solver{log: applog.OrComponent(l, "constraint")}
}

func (s *Solver) logger() *slog.Logger {
	if s == nil || s.log == nil {
		return applog.WithComponent("constraint")
	}
	return s.log
}

// ClampSize clamps each axis of size into [min, max] independently.
func (s *Solver) ClampSize(size geom.Size, spec Spec) geom.Size {
	return geom.S(
		clampAxis(size.W, spec.MinSize.W, spec.MaxSize.W),
		clampAxis(size.H, spec.MinSize.H, spec.MaxSize.H),
	)
}

func clampAxis(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if hi <= 0 || math.IsInf(hi, 1) {
		if math.IsInf(v, 1) {
			return lo
		}
		return math.Max(lo, v)
	}
	return math.Max(lo, math.Min(hi, v))
}

// ClampPosition keeps a pane of the given size inside the parent's content box
// when spec.ConstrainToParent is set; otherwise pos is returned unchanged. When
// the parent is transformed, the inverse transform is applied to the clamped
// point. A non-invertible transform is logged and the plain clamp returned.
func (s *Solver) ClampPosition(pos geom.Pt, size geom.Size, spec Spec, parent ParentMetrics) geom.Pt {
	if !spec.ConstrainToParent {
		return pos
	}
	box := parent.ContentBox()
	maxX := math.Max(0, box.W-size.W)
	maxY := math.Max(0, box.H-size.H)
	out := geom.P(
		clampRange(pos.X, box.X, maxX+box.X),
		clampRange(pos.Y, box.Y, maxY+box.Y),
	)
	if parent.Transform == nil || parent.Transform.IsIdentity() {
		return out
	}
	inv, err := parent.Transform.Invert()
	if err != nil {
		s.logger().Warn("parent transform not invertible; using unadjusted clamp", slog.Any("err", err))
		return out
	}
	return inv.Apply(out)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// Clamp clamps size first and then the position for the clamped size.
func (s *Solver) Clamp(pos geom.Pt, size geom.Size, spec Spec, parent ParentMetrics) (geom.Pt, geom.Size) {
	size = s.ClampSize(size, spec)
	return s.ClampPosition(pos, size, spec, parent), size
}

// ResizeCandidate applies a pointer delta to start for one handle: e/w change
// only the width, n/s only the height, corners both. The result is unclamped.
func ResizeCandidate(start geom.Size, delta geom.Pt, dir pointer.Direction) geom.Size {
	out := start
	if dir.HasE() {
		out.W += delta.X
	}
	if dir.HasW() {
		out.W -= delta.X
	}
	if dir.HasS() {
		out.H += delta.Y
	}
	if dir.HasN() {
		out.H -= delta.Y
	}
	return out
}
