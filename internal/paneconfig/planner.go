/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package paneconfig plans the editor and preview panes: which layout the
// workspace uses, the size bounds for standard and maximized panes, and the
// pane titles.
package paneconfig

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
)

// PaneID names a pane; it is also the persistence key.
type PaneID string

const (
	EditorPane  PaneID = "editor"
	PreviewPane PaneID = "preview"
)

// DisplayMode selects which panes are shown.
type DisplayMode int

const (
	Both DisplayMode = iota
	EditorOnly
	PreviewOnly
)

func (m DisplayMode) String() string {
	switch m {
	case EditorOnly:
		return "editor"
	case PreviewOnly:
		return "preview"
	}
	return "both"
}

// ParseDisplayMode accepts "both", "editor" or "preview".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return Both, nil
	case "editor":
		return EditorOnly, nil
	case "preview":
		return PreviewOnly, nil
	}
	return Both, fmt.Errorf("paneconfig: unknown display mode %q", s)
}

// Next cycles both → editor → preview → both.
func (m DisplayMode) Next() DisplayMode { return (m + 1) % 3 }

// LayoutType is the workspace arrangement.
type LayoutType string

const (
	Fixed            LayoutType = "fixed"
	DraggableDual    LayoutType = "draggable-dual"
	DraggableEditor  LayoutType = "draggable-editor"
	DraggablePreview LayoutType = "draggable-preview"
)

// LayoutTypeFor maps the draggable switch and display mode to a layout.
func LayoutTypeFor(draggable bool, mode DisplayMode) LayoutType {
	if !draggable {
		return Fixed
	}
	switch mode {
	case Both:
		return DraggableDual
	case EditorOnly:
		return DraggableEditor
	case PreviewOnly:
		return DraggablePreview
	}
	return Fixed
}

// Bounds are the size limits and the suggested initial size of a pane.
type Bounds struct {
	Min, Max geom.Size
	Initial  geom.Size
}

// SizeSet holds the bounds for standard and maximized panes at one viewport size.
type SizeSet struct {
	Standard  Bounds
	Maximized Bounds
}

var (
	StandardMin     = geom.S(120, 90)
	MaximizedMin    = geom.S(1600, 1200)
	StandardInitial = geom.S(400, 300)
	MaximizedOrigin = geom.P(20, 100)
)

// SizesFor computes both bound sets for a viewport. The maximized minimum is
// capped at the viewport so that min <= max always holds.
func SizesFor(viewport geom.Size) SizeSet {
	vp := geom.S(math.Max(0, viewport.W), math.Max(0, viewport.H))
	maxMin := geom.S(math.Min(MaximizedMin.W, vp.W), math.Min(MaximizedMin.H, vp.H))
	stdMin := geom.S(math.Min(StandardMin.W, vp.W), math.Min(StandardMin.H, vp.H))
	return SizeSet{
		Standard: Bounds{Min: stdMin, Max: vp, Initial: StandardInitial},
		Maximized: Bounds{
			Min:     maxMin,
			Max:     vp,
			Initial: geom.S(math.Max(800, vp.W-200), math.Max(600, vp.H-100)),
		},
	}
}

// PaneState is a pane's last known geometry as kept by the caller.
type PaneState struct {
	Position geom.Pt
	Size     geom.Size
}

// Stock defaults for a fresh workspace. A pane still at its stock size takes
// the layout's suggested size when maximized.
var (
	DefaultEditor  = PaneState{Position: geom.P(20, 200), Size: geom.S(800, 600)}
	DefaultPreview = PaneState{Position: geom.P(620, 200), Size: geom.S(600, 400)}
)

// ContainerConfig is everything a host needs to mount one pane.
type ContainerConfig struct {
	Pane      PaneID
	Title     string
	Position  geom.Pt
	Size      geom.Size
	Spec      constraint.Spec
	Maximized bool
	ZIndex    int
}

// Selection describes the editor selection. Chars counts selected characters.
type Selection struct {
	Text  string
	Chars int
}

// Pages is the preview pagination.
type Pages struct{ Current, Total int }

// Planner produces ContainerConfigs from the workspace state.
type Planner struct {
	Viewport  geom.Size
	Mode      DisplayMode
	Draggable bool
	Constrain bool

	Editor  PaneState
	Preview PaneState

	FilePath  string
	Chars     int
	Selection Selection
	Pages     Pages
}

// Layout returns the workspace layout type.
func (p Planner) Layout() LayoutType { return LayoutTypeFor(p.Draggable, p.Mode) }

// EditorConfig plans the editor pane. It is maximized when asked or when only
// the editor is shown.
func (p Planner) EditorConfig(maximized bool, z int) ContainerConfig {
	maximized = maximized || p.Mode == EditorOnly
	return p.config(EditorPane, EditorTitle(p.FilePath, maximized, p.Chars, p.Selection), p.Editor, DefaultEditor.Size, maximized, z)
}

// PreviewConfig plans the preview pane. It is maximized when asked or when
// only the preview is shown.
func (p Planner) PreviewConfig(maximized bool, z int) ContainerConfig {
	maximized = maximized || p.Mode == PreviewOnly
	return p.config(PreviewPane, PreviewTitle(maximized, p.Pages), p.Preview, DefaultPreview.Size, maximized, z)
}

func (p Planner) config(id PaneID, title string, st PaneState, stock geom.Size, maximized bool, z int) ContainerConfig {
	sizes := SizesFor(p.Viewport)
	b := sizes.Standard
	if maximized {
		b = sizes.Maximized
	}
	size := st.Size
	if size == stock && maximized {
		size = b.Initial
	}
	pos := st.Position
	if maximized {
		pos = MaximizedOrigin
	}
	return ContainerConfig{
		Pane:      id,
		Title:     title,
		Position:  pos,
		Size:      size,
		Spec:      constraint.Spec{MinSize: b.Min, MaxSize: b.Max, ConstrainToParent: p.Constrain},
		Maximized: maximized,
		ZIndex:    z,
	}
}

// FileName returns the last path element of path (either separator), or
// "untitled" when path is empty.
func FileName(path string) string {
	if path == "" {
		return "untitled"
	}
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		if name := path[i+1:]; name != "" {
			return name
		}
	}
	return path
}

// EditorTitle builds "name (maximized) - Selected: N chars / Total: M chars".
func EditorTitle(path string, maximized bool, chars int, sel Selection) string {
	title := FileName(path)
	if maximized {
		title += " (maximized)"
	}
	if sel.Text != "" {
		return fmt.Sprintf("%s - Selected: %s chars / Total: %s chars", title, humanize.Comma(int64(sel.Chars)), humanize.Comma(int64(chars)))
	}
	return fmt.Sprintf("%s - %s chars", title, humanize.Comma(int64(chars)))
}

// PreviewTitle builds "Preview (maximized) - page c / t"; the page part only
// appears for more than one page.
func PreviewTitle(maximized bool, pages Pages) string {
	title := "Preview"
	if maximized {
		title += " (maximized)"
	}
	if pages.Total > 1 {
		title += fmt.Sprintf(" - page %d / %d", pages.Current, pages.Total)
	}
	return title
}
