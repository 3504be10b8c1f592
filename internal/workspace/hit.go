/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"gomanuscript/internal/geom"
	"gomanuscript/internal/paneconfig"
	"gomanuscript/internal/pointer"
)

// Hit chrome sizes in logical units; they scale with the zoom.
const (
	TitleHeight = 24
	HandleSize  = 6
)

// Region is the part of a pane a point falls on.
type Region int

const (
	RegionOutside Region = iota
	RegionBody
	RegionTitle
	RegionHandle
)

// Hit is the result of a hit test.
type Hit struct {
	Pane   paneconfig.PaneID
	Region Region
	Dir    pointer.Direction // set for RegionHandle
}

// hitRect classifies p against one pane box. Edges win over the title bar so
// the top corners stay resizable.
func hitRect(r geom.Rect, p geom.Pt, zoom float64) (Region, pointer.Direction) {
	if !r.Contains(p) {
		return RegionOutside, ""
	}
	hs := HandleSize * zoom
	var ns, ew string
	switch {
	case p.Y <= r.Y+hs:
		ns = "n"
	case p.Y >= r.Y+r.H-hs:
		ns = "s"
	}
	switch {
	case p.X <= r.X+hs:
		ew = "w"
	case p.X >= r.X+r.W-hs:
		ew = "e"
	}
	if ns != "" || ew != "" {
		return RegionHandle, pointer.Direction(ns + ew)
	}
	if p.Y <= r.Y+TitleHeight*zoom {
		return RegionTitle, ""
	}
	return RegionBody, ""
}
