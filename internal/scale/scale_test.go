/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scale

import (
	"errors"
	"math"
	"testing"

	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
)

type node struct {
	parent *node
	m      geom.Affine2D
	err    error
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Transform() (geom.Affine2D, error) { return n.m, n.err }

type viewport struct {
	scale  float64
	scroll geom.Pt
}

func (v viewport) Scale() float64  { return v.scale }
func (v viewport) Scroll() geom.Pt { return v.scroll }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolveComposesAncestors(t *testing.T) {
	root := &node{m: geom.Scale(2, 2)}
	mid := &node{parent: root, m: geom.Translate(30, 10).Mul(geom.Scale(1.5, 1.5))}
	leaf := &node{parent: mid, m: geom.Identity()}

	snap := NewResolver(applog.Nop()).Resolve(leaf, viewport{scale: 1.25})
	if !near(snap.ScaleX, 3) || !near(snap.ScaleY, 3) {
		t.Fatalf("ancestor scale = %v,%v want 3,3", snap.ScaleX, snap.ScaleY)
	}
	if !near(snap.TotalScale(), 3) || !near(snap.Effective(), 3.75) {
		t.Fatalf("total=%v effective=%v", snap.TotalScale(), snap.Effective())
	}
	// Outermost applies last: the translation is magnified by the root scale.
	if tr := snap.Matrix.Translation(); !near(tr.X, 60) || !near(tr.Y, 20) {
		t.Fatalf("composite translation = %+v", tr)
	}
}

func TestResolveNonUniform(t *testing.T) {
	snap := NewResolver(applog.Nop()).Resolve(&node{m: geom.Scale(2, 0.5)}, nil)
	if !near(snap.ScaleX, 2) || !near(snap.ScaleY, 0.5) {
		t.Fatalf("per-axis scale = %v,%v", snap.ScaleX, snap.ScaleY)
	}
	if !near(snap.TotalScale(), 1) {
		t.Fatalf("geometric mean = %v", snap.TotalScale())
	}
	if snap.ViewportScale != 1 {
		t.Fatalf("nil viewport should default to 1, got %v", snap.ViewportScale)
	}
}

func TestResolveFailsOpen(t *testing.T) {
	root := &node{m: geom.Scale(2, 2)}
	bad := &node{parent: root, err: errors.New("unparseable")}
	singular := &node{parent: bad, m: geom.Scale(0, 3)}

	snap := NewResolver(applog.Nop()).Resolve(singular, viewport{scale: math.NaN()})
	if !near(snap.ScaleX, 2) || !near(snap.ScaleY, 2) {
		t.Fatalf("broken nodes must contribute identity, got %v,%v", snap.ScaleX, snap.ScaleY)
	}
	if snap.ViewportScale != 1 {
		t.Fatalf("NaN viewport scale should default to 1, got %v", snap.ViewportScale)
	}
}

func TestResolveNilNode(t *testing.T) {
	snap := NewResolver(nil).Resolve(nil, viewport{scale: 2})
	if snap.ScaleX != 1 || snap.ScaleY != 1 || snap.ViewportScale != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSnapshotChanged(t *testing.T) {
	a := Unit()
	b := Unit()
	b.ScaleX = 1.009
	if b.Changed(a, 0.01) {
		t.Fatalf("0.9%% change must stay below the threshold")
	}
	b.ScaleY = 1.02
	if !b.Changed(a, 0.01) {
		t.Fatalf("2%% change on y must count")
	}
	if r := b.Ratio(a); !near(r.Y, 1.02) {
		t.Fatalf("ratio = %+v", r)
	}
}

func TestToLogicalAndBack(t *testing.T) {
	vp := viewport{scale: 2, scroll: geom.P(10, 20)}
	cur := Unit()
	cur.ScaleX, cur.ScaleY, cur.ViewportScale = 1.5, 1.5, 2
	l := ToLogical(geom.P(290, 280), vp, cur)
	if !near(l.X, 100) || !near(l.Y, 100) {
		t.Fatalf("ToLogical = %+v", l)
	}
	p := ToPhysical(l, vp, cur)
	if !near(p.X, 290) || !near(p.Y, 280) {
		t.Fatalf("ToPhysical = %+v", p)
	}
}

func TestNormalizeUsesInitialFactor(t *testing.T) {
	initial := Unit()
	initial.ViewportScale = 2
	vp := viewport{scale: 4, scroll: geom.P(10, 0)}
	got := Normalize(geom.P(90, 100), vp, initial)
	// (90+10, 100+0) × (2 / 4)
	if !near(got.X, 50) || !near(got.Y, 50) {
		t.Fatalf("Normalize = %+v", got)
	}
	if z := Normalize(geom.P(5, 5), nil, Unit()); z != geom.P(5, 5) {
		t.Fatalf("nil viewport with unit snapshot must be identity, got %+v", z)
	}
}
