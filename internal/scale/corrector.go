/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scale

import "gomanuscript/internal/geom"

// Scroll returns the viewport scroll offset, or zero for a nil viewport.
func Scroll(vp Viewport) geom.Pt {
	if vp == nil {
		return geom.Pt{}
	}
	s := vp.Scroll()
	if !s.Finite() {
		return geom.Pt{}
	}
	return s
}

// ToLogical maps a raw pointer coordinate to logical space using the current
// effective scale: (raw + scroll) / factor.
func ToLogical(raw geom.Pt, vp Viewport, cur Snapshot) geom.Pt {
	return raw.Add(Scroll(vp)).Div(cur.Factor())
}

// ToPhysical is the inverse of ToLogical.
func ToPhysical(logical geom.Pt, vp Viewport, cur Snapshot) geom.Pt {
	return logical.Mul(cur.Factor()).Sub(Scroll(vp))
}

// Normalize maps a raw pointer coordinate into the space that was valid when
// initial was sampled: (raw + scroll) × (initial factor / current viewport
// scale). Deltas between two normalized points do not change when the viewport
// zoom changes between them.
func Normalize(raw geom.Pt, vp Viewport, initial Snapshot) geom.Pt {
	vs := ViewportScale(vp)
	ratio := initial.Factor().Scale(1 / vs)
	return raw.Add(Scroll(vp)).Mul(ratio)
}
