/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scale resolves how much a pane is magnified on screen and converts
// pointer coordinates between physical and logical space.
//
// A Snapshot separates the ancestor-chain scale (transforms on the pane and the
// containers above it) from the viewport scale (pinch or toolkit zoom). Callers
// multiply the two for the effective factor.
package scale

import (
	"log/slog"
	"math"

	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
)

// Node is one element of a pane's ancestor chain. Transform returns the 2D
// transform the node applies to its content; hosts without transforms return
// geom.Identity().
type Node interface {
	Parent() Node
	Transform() (geom.Affine2D, error)
}

// Viewport is the platform surface the chain is painted into.
type Viewport interface {
	// Scale is the visual zoom factor (pinch, toolkit zoom). Values <= 0 mean 1.
	Scale() float64
	// Scroll is the current scroll offset of the viewport.
	Scroll() geom.Pt
}

// Snapshot is the scale state of a pane sampled at one point in time.
type Snapshot struct {
	ScaleX, ScaleY float64 // ancestor chain, per axis
	ViewportScale  float64
	Matrix         geom.Affine2D // composite ancestor transform, outermost first
}

// Unit is the snapshot of an untransformed pane in an unzoomed viewport.
func Unit() Snapshot {
	return Snapshot{ScaleX: 1, ScaleY: 1, ViewportScale: 1, Matrix: geom.Identity()}
}

// TotalScale is the ancestor-chain scale as one number. For non-uniform scale it
// is the geometric mean of the two axes.
func (s Snapshot) TotalScale() float64 { return math.Sqrt(s.ScaleX * s.ScaleY) }

// Effective is TotalScale × ViewportScale.
func (s Snapshot) Effective() float64 { return s.TotalScale() * s.ViewportScale }

// Ancestor returns the per-axis ancestor-chain scale.
func (s Snapshot) Ancestor() geom.Pt { return geom.P(s.ScaleX, s.ScaleY) }

// Factor returns the per-axis effective scale.
func (s Snapshot) Factor() geom.Pt {
	return geom.P(s.ScaleX*s.ViewportScale, s.ScaleY*s.ViewportScale)
}

// Changed reports whether the effective factor of s differs from o by more than
// threshold (relative) on either axis.
func (s Snapshot) Changed(o Snapshot, threshold float64) bool {
	a, b := s.Factor(), o.Factor()
	return relDiff(a.X, b.X) > threshold || relDiff(a.Y, b.Y) > threshold
}

// Ratio returns the per-axis effective factor of s divided by that of o.
func (s Snapshot) Ratio(o Snapshot) geom.Pt {
	return s.Factor().Div(o.Factor())
}

func relDiff(a, b float64) float64 {
	if b == 0 {
		if a == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Abs(b)
}

// Resolver walks ancestor chains. It never fails: a node whose transform can not
// be read or is degenerate contributes identity and a warning is logged.
type Resolver struct {
	log *slog.Logger
}

// NewResolver returns a Resolver logging through l (the package logger when nil).
func NewResolver(l *slog.Logger) *Resolver {
	return &Resolver{log: applog.OrComponent(l, "scale")}
}

// Resolve samples the scale of n inside vp. A nil node yields the viewport scale
// over an identity chain.
func (r *Resolver) Resolve(n Node, vp Viewport) Snapshot {
	snap := Unit()
	snap.ViewportScale = ViewportScale(vp)

	// Collect innermost first, compose outermost first.
	var chain []geom.Affine2D
	depth := 0
	for cur := n; cur != nil && depth < maxDepth; cur = cur.Parent() {
		chain = append(chain, r.nodeTransform(cur, depth))
		depth++
	}
	m := geom.Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mul(chain[i])
	}
	snap.Matrix = m
	snap.ScaleX, snap.ScaleY = m.ScaleFactors()
	if !positive(snap.ScaleX) || !positive(snap.ScaleY) {
		r.log.Warn("degenerate ancestor scale; using identity",
			slog.Float64("sx", snap.ScaleX), slog.Float64("sy", snap.ScaleY))
		snap.ScaleX, snap.ScaleY, snap.Matrix = 1, 1, geom.Identity()
	}
	return snap
}

// maxDepth bounds the walk in case a host hands over a cyclic chain.
const maxDepth = 256

func (r *Resolver) nodeTransform(n Node, depth int) geom.Affine2D {
	m, err := n.Transform()
	if err != nil {
		r.log.Warn("ancestor transform unreadable; treating as identity",
			slog.Int("depth", depth), slog.Any("err", err))
		return geom.Identity()
	}
	if !m.Valid() {
		r.log.Warn("ancestor transform not invertible; treating as identity",
			slog.Int("depth", depth))
		return geom.Identity()
	}
	return m
}

// ViewportScale returns vp.Scale(), or 1 when vp is nil or the value is not a
// positive finite number.
func ViewportScale(vp Viewport) float64 {
	if vp == nil {
		return 1
	}
	if s := vp.Scale(); positive(s) {
		return s
	}
	return 1
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
