/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paneconfig

import (
	"testing"

	"gomanuscript/internal/geom"
)

func TestLayoutTypeFor(t *testing.T) {
	cases := []struct {
		draggable bool
		mode      DisplayMode
		want      LayoutType
	}{
		{false, Both, Fixed},
		{false, EditorOnly, Fixed},
		{true, Both, DraggableDual},
		{true, EditorOnly, DraggableEditor},
		{true, PreviewOnly, DraggablePreview},
	}
	for _, c := range cases {
		if got := LayoutTypeFor(c.draggable, c.mode); got != c.want {
			t.Fatalf("LayoutTypeFor(%v, %v) = %q, want %q", c.draggable, c.mode, got, c.want)
		}
	}
}

func TestSizesFor(t *testing.T) {
	s := SizesFor(geom.S(1920, 1080))
	if s.Standard.Min != geom.S(120, 90) || s.Standard.Max != geom.S(1920, 1080) || s.Standard.Initial != geom.S(400, 300) {
		t.Fatalf("standard = %+v", s.Standard)
	}
	if s.Maximized.Min != geom.S(1600, 1080) {
		t.Fatalf("maximized min must be capped at the viewport, got %+v", s.Maximized.Min)
	}
	if s.Maximized.Initial != geom.S(1720, 980) {
		t.Fatalf("maximized initial = %+v", s.Maximized.Initial)
	}
	small := SizesFor(geom.S(640, 480))
	if small.Maximized.Initial != geom.S(800, 600) {
		t.Fatalf("small viewport initial = %+v", small.Maximized.Initial)
	}
}

func TestEditorConfig(t *testing.T) {
	p := Planner{
		Viewport: geom.S(1920, 1080),
		Mode:     Both,
		Editor:   DefaultEditor,
		FilePath: `C:\novels\chapter-1.txt`,
		Chars:    12345,
	}
	c := p.EditorConfig(false, 3)
	if c.Title != "chapter-1.txt - 12,345 chars" {
		t.Fatalf("title = %q", c.Title)
	}
	if c.Position != DefaultEditor.Position || c.Size != DefaultEditor.Size || c.Maximized || c.ZIndex != 3 {
		t.Fatalf("standard config = %+v", c)
	}

	p.Mode = EditorOnly
	c = p.EditorConfig(false, 0)
	if !c.Maximized || c.Position != geom.P(20, 100) || c.Size != geom.S(1720, 980) {
		t.Fatalf("editor-only config = %+v", c)
	}

	p.Editor.Size = geom.S(900, 700)
	if c = p.EditorConfig(true, 0); c.Size != geom.S(900, 700) {
		t.Fatalf("user size must win over the suggested size, got %+v", c.Size)
	}
}

func TestEditorTitleSelection(t *testing.T) {
	got := EditorTitle("", true, 1500, Selection{Text: "abc", Chars: 3})
	if got != "untitled (maximized) - Selected: 3 chars / Total: 1,500 chars" {
		t.Fatalf("title = %q", got)
	}
}

func TestPreviewConfig(t *testing.T) {
	p := Planner{Viewport: geom.S(1280, 800), Mode: PreviewOnly, Preview: DefaultPreview, Pages: Pages{Current: 2, Total: 5}}
	c := p.PreviewConfig(false, 1)
	if c.Title != "Preview (maximized) - page 2 / 5" || c.Pane != PreviewPane {
		t.Fatalf("config = %+v", c)
	}
	if c.Spec.MinSize != geom.S(1280, 800) || c.Spec.MaxSize != geom.S(1280, 800) {
		t.Fatalf("spec = %+v", c.Spec)
	}
	if PreviewTitle(false, Pages{Current: 1, Total: 1}) != "Preview" {
		t.Fatalf("single page must not show page info")
	}
}

func TestParseDisplayMode(t *testing.T) {
	for in, want := range map[string]DisplayMode{"both": Both, "Editor": EditorOnly, " preview ": PreviewOnly, "": Both} {
		got, err := ParseDisplayMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseDisplayMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDisplayMode("split"); err == nil {
		t.Fatalf("expected error")
	}
	if PreviewOnly.Next() != Both {
		t.Fatalf("Next does not wrap")
	}
}
