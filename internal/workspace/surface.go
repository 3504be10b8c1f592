/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"math"
	"sync"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/scale"
)

// Zoom limits for SetZoom.
const (
	MinZoom = 0.25
	MaxZoom = 4
)

// Surface is the zoomable canvas the panes float on. Its zoom is the ancestor
// transform of every pane; the host viewport itself is never scaled, so the
// controllers see the zoom through the scale chain only.
type Surface struct {
	mu     sync.RWMutex
	zoom   float64
	size   geom.Size // viewport size in display units
	scroll geom.Pt
}

func NewSurface(size geom.Size) *Surface {
	return &Surface{zoom: 1, size: size}
}

func (s *Surface) Parent() scale.Node { return nil }

func (s *Surface) Transform() (geom.Affine2D, error) {
	z := s.Zoom()
	return geom.Scale(z, z), nil
}

// Scale is the viewport scale seen by the pane controllers. Always 1.
func (s *Surface) Scale() float64 { return 1 }

func (s *Surface) Scroll() geom.Pt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scroll
}

func (s *Surface) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// SetZoom clamps z into [MinZoom, MaxZoom] and reports whether it changed.
func (s *Surface) SetZoom(z float64) bool {
	if math.IsNaN(z) {
		return false
	}
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	s.mu.Lock()
	defer s.mu.Unlock()
	if z == s.zoom {
		return false
	}
	s.zoom = z
	return true
}

func (s *Surface) Size() geom.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *Surface) SetSize(size geom.Size) {
	s.mu.Lock()
	s.size = size
	s.mu.Unlock()
}

func (s *Surface) SetScroll(p geom.Pt) {
	s.mu.Lock()
	s.scroll = p
	s.mu.Unlock()
}

// frame is the parent box handed to the controllers. Metrics are in logical
// units since gesture math runs unscaled.
func (s *Surface) frame() panel.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return panel.Frame{
		Bounds:  geom.R(0, 0, s.size.W, s.size.H),
		Metrics: constraint.ParentMetrics{Width: s.size.W / s.zoom, Height: s.size.H / s.zoom},
	}
}

// paneElement is the live box of one pane as last placed on the surface.
type paneElement struct {
	surface *Surface

	mu   sync.Mutex
	rect geom.Rect
}

func (e *paneElement) Parent() scale.Node { return e.surface }

func (e *paneElement) Transform() (geom.Affine2D, error) { return geom.Identity(), nil }

func (e *paneElement) Bounds() geom.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

func (e *paneElement) ParentFrame() (panel.Frame, bool) { return e.surface.frame(), true }

// place moves the box to g. Position is already display space; size is
// logical and is magnified here.
func (e *paneElement) place(g panel.Geometry) {
	z := e.surface.Zoom()
	e.mu.Lock()
	e.rect = geom.R(g.Position.X, g.Position.Y, g.Size.W*z, g.Size.H*z)
	e.mu.Unlock()
}
