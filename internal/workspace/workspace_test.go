/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"gomanuscript/internal/config"
	"gomanuscript/internal/geom"
	"gomanuscript/internal/layoutstore"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/paneconfig"
	"gomanuscript/internal/pointer"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func near(a, b geom.Pt) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func newWorkspace(t *testing.T, mut func(*Options)) *Workspace {
	t.Helper()
	opts := Options{
		Viewport:      geom.S(1280, 800),
		Draggable:     true,
		TouchDebounce: -1,
	}
	if mut != nil {
		mut(&opts)
	}
	w := New(opts)
	t.Cleanup(func() { _ = w.Close(context.Background()) })
	return w
}

func TestHitRect(t *testing.T) {
	r := geom.R(0, 0, 100, 100)
	cases := []struct {
		p      geom.Pt
		region Region
		dir    pointer.Direction
	}{
		{geom.P(50, 3), RegionHandle, pointer.N},
		{geom.P(3, 50), RegionHandle, pointer.W},
		{geom.P(97, 97), RegionHandle, pointer.SE},
		{geom.P(2, 2), RegionHandle, pointer.NW},
		{geom.P(50, 15), RegionTitle, ""},
		{geom.P(50, 50), RegionBody, ""},
		{geom.P(150, 0), RegionOutside, ""},
	}
	for _, c := range cases {
		region, dir := hitRect(r, c.p, 1)
		if region != c.region || dir != c.dir {
			t.Fatalf("hitRect(%v) = %v %q, want %v %q", c.p, region, dir, c.region, c.dir)
		}
	}
	// chrome grows with the zoom
	if region, _ := hitRect(geom.R(0, 0, 200, 200), geom.P(100, 10), 2); region != RegionHandle {
		t.Fatalf("expected handle at zoom 2, got %v", region)
	}
}

func TestDragTitleMovesEditor(t *testing.T) {
	var renders atomic.Int32
	w := newWorkspace(t, func(o *Options) { o.OnRender = func() { renders.Add(1) } })

	if !w.Press(pointer.Mouse{X: 120, Y: 210}) {
		t.Fatalf("press on editor title did not start a drag")
	}
	if s, ok := w.Pane(paneconfig.EditorPane).Controller().Session(); !ok || s.Kind != pointer.Drag {
		t.Fatalf("session = %+v, %v", s, ok)
	}
	w.Motion(pointer.Mouse{X: 170, Y: 260})
	if !w.Release(pointer.Mouse{X: 170, Y: 260}) {
		t.Fatalf("release did not end the drag")
	}
	g := w.Pane(paneconfig.EditorPane).Geometry()
	if !near(g.Position, geom.P(70, 250)) || g.Dragging {
		t.Fatalf("geometry = %+v", g)
	}
	if r := w.Pane(paneconfig.EditorPane).Rect(); !near(r.Min(), geom.P(70, 250)) {
		t.Fatalf("rect not placed: %+v", r)
	}
	if renders.Load() == 0 {
		t.Fatalf("render never called")
	}
	// a second release is not owned by anything
	if w.Release(pointer.Mouse{X: 170, Y: 260}) {
		t.Fatalf("stray release reported a gesture")
	}
}

func TestResizeFromEdge(t *testing.T) {
	w := newWorkspace(t, nil)
	// bottom-right corner of the editor at (820, 800); press just inside
	if !w.Press(pointer.Mouse{X: 818, Y: 798}) {
		t.Fatalf("press on corner did not start a resize")
	}
	w.Motion(pointer.Mouse{X: 718, Y: 748})
	w.Release(pointer.Mouse{X: 718, Y: 748})
	if got := w.Pane(paneconfig.EditorPane).Geometry().Size; got != geom.S(700, 550) {
		t.Fatalf("size = %v, want 700x550", got)
	}
}

func TestPressFocusesTopmost(t *testing.T) {
	w := newWorkspace(t, nil)
	if w.Focused() != paneconfig.EditorPane {
		t.Fatalf("initial focus = %q", w.Focused())
	}
	// only the preview covers x=1000
	w.Press(pointer.Mouse{X: 1000, Y: 400})
	if w.Focused() != paneconfig.PreviewPane {
		t.Fatalf("focus = %q, want preview", w.Focused())
	}
	views := w.Views()
	if len(views) != 2 || views[len(views)-1].ID != paneconfig.PreviewPane || !views[len(views)-1].Focus {
		t.Fatalf("preview not raised: %+v", views)
	}
	// body presses focus but never start a gesture
	if _, ok := w.Pane(paneconfig.PreviewPane).Controller().Session(); ok {
		t.Fatalf("body press started a gesture")
	}
}

func TestNotDraggable(t *testing.T) {
	w := newWorkspace(t, func(o *Options) { o.Draggable = false })
	if w.Press(pointer.Mouse{X: 120, Y: 210}) {
		t.Fatalf("drag started in a fixed layout")
	}
	if w.Layout() != paneconfig.LayoutTypeFor(false, paneconfig.Both) {
		t.Fatalf("layout = %q", w.Layout())
	}
}

func TestZoomRenormalizesAndKeepsDragSpeed(t *testing.T) {
	w := newWorkspace(t, nil)
	ed := w.Pane(paneconfig.EditorPane)
	if !w.SetZoom(2) {
		t.Fatalf("SetZoom(2) reported no change")
	}
	waitFor(t, func() bool { return near(ed.Geometry().Position, geom.P(40, 400)) })
	if r := ed.Rect(); r.W != 1600 || r.H != 1200 {
		t.Fatalf("rect at zoom 2 = %+v", r)
	}

	if !w.Press(pointer.Mouse{X: 140, Y: 420}) {
		t.Fatalf("press at zoom 2 did not start a drag")
	}
	w.Motion(pointer.Mouse{X: 190, Y: 470})
	w.Release(pointer.Mouse{X: 190, Y: 470})
	if got := ed.Geometry().Position; !near(got, geom.P(90, 450)) {
		t.Fatalf("position after zoomed drag = %v, want (90,450)", got)
	}
	if w.SetZoom(100) && w.Surface().Zoom() != MaxZoom {
		t.Fatalf("zoom not clamped: %v", w.Surface().Zoom())
	}
}

func TestZoomedDragAfterModeRoundTrip(t *testing.T) {
	w := newWorkspace(t, nil)
	ed := w.Pane(paneconfig.EditorPane)
	w.SetZoom(2)
	waitFor(t, func() bool { return near(ed.Geometry().Position, geom.P(40, 400)) })

	w.SetMode(paneconfig.PreviewOnly)
	w.SetMode(paneconfig.Both)
	if err := w.LayoutNow(); err != nil {
		t.Fatalf("LayoutNow: %v", err)
	}
	if got := ed.Geometry().Position; !near(got, geom.P(40, 400)) {
		t.Fatalf("position after mode round trip = %v", got)
	}
	if !w.Press(pointer.Mouse{X: 140, Y: 420}) {
		t.Fatalf("press after re-attach did not start a drag")
	}
	w.Motion(pointer.Mouse{X: 190, Y: 470})
	w.Release(pointer.Mouse{X: 190, Y: 470})
	if got := ed.Geometry().Position; !near(got, geom.P(90, 450)) {
		t.Fatalf("position after drag = %v, want (90,450)", got)
	}
}

func TestFirstAttachAtZoomFollowsPointer(t *testing.T) {
	w := newWorkspace(t, func(o *Options) { o.Mode = paneconfig.PreviewOnly })
	ed := w.Pane(paneconfig.EditorPane)
	w.SetZoom(2)
	w.SetMode(paneconfig.Both)
	if err := w.LayoutNow(); err != nil {
		t.Fatalf("LayoutNow: %v", err)
	}
	waitFor(t, func() bool { return near(ed.Geometry().Position, geom.P(40, 400)) })

	if !w.Press(pointer.Mouse{X: 140, Y: 420}) {
		t.Fatalf("press did not start a drag")
	}
	w.Motion(pointer.Mouse{X: 190, Y: 470})
	w.Release(pointer.Mouse{X: 190, Y: 470})
	if got := ed.Geometry().Position; !near(got, geom.P(90, 450)) {
		t.Fatalf("position after drag = %v, want (90,450)", got)
	}
}

func TestConstrainKeepsEditorOnSurface(t *testing.T) {
	w := newWorkspace(t, func(o *Options) { o.Constrain = true })
	w.Press(pointer.Mouse{X: 120, Y: 210})
	w.Motion(pointer.Mouse{X: 2000, Y: -500})
	w.Release(pointer.Mouse{X: 2000, Y: -500})
	if got := w.Pane(paneconfig.EditorPane).Geometry().Position; !near(got, geom.P(480, 0)) {
		t.Fatalf("position = %v, want (480,0)", got)
	}
}

func TestModeSwitchMaximizesAndRestores(t *testing.T) {
	w := newWorkspace(t, nil)
	w.SetMode(paneconfig.EditorOnly)
	if err := w.LayoutNow(); err != nil {
		t.Fatalf("LayoutNow: %v", err)
	}
	views := w.Views()
	if len(views) != 1 || views[0].ID != paneconfig.EditorPane {
		t.Fatalf("views = %+v", views)
	}
	// the maximized minimum is capped at the viewport, so the pane fills it
	g := w.Pane(paneconfig.EditorPane).Geometry()
	if g.Position != paneconfig.MaximizedOrigin || g.Size != geom.S(1280, 800) {
		t.Fatalf("maximized geometry = %+v", g)
	}
	if cfg := w.Config(paneconfig.EditorPane); !cfg.Maximized {
		t.Fatalf("config not maximized: %+v", cfg)
	}
	// hidden preview is detached
	if w.Pane(paneconfig.PreviewPane).Controller().StartDrag(pointer.Mouse{}) {
		t.Fatalf("detached preview accepted a drag")
	}

	w.SetMode(paneconfig.Both)
	if err := w.LayoutNow(); err != nil {
		t.Fatalf("LayoutNow: %v", err)
	}
	g = w.Pane(paneconfig.EditorPane).Geometry()
	if g.Position != geom.P(20, 200) || g.Size != geom.S(800, 600) {
		t.Fatalf("restored geometry = %+v", g)
	}
	if m := w.CycleMode(); m != paneconfig.EditorOnly {
		t.Fatalf("CycleMode = %v", m)
	}
}

func TestModeSwitchEndsHiddenGesture(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Press(pointer.Mouse{X: 120, Y: 210})
	w.SetMode(paneconfig.PreviewOnly)
	if w.Motion(pointer.Mouse{X: 300, Y: 300}) {
		t.Fatalf("motion reached a hidden pane")
	}
	if w.Focused() != paneconfig.PreviewPane {
		t.Fatalf("focus did not move to the visible pane")
	}
	// a new gesture can start on the preview title
	w.SetMode(paneconfig.Both)
	if err := w.LayoutNow(); err != nil {
		t.Fatal(err)
	}
	if !w.Press(pointer.Mouse{X: 1000, Y: 210}) {
		t.Fatalf("gesture stuck after mode switch")
	}
}

func TestKeyNudgesFocusedPane(t *testing.T) {
	w := newWorkspace(t, nil)
	if !w.Key(panel.Key{Arrow: panel.Right, Ctrl: true, Shift: true}) {
		t.Fatalf("key not consumed")
	}
	if got := w.Pane(paneconfig.EditorPane).Geometry().Position; got != geom.P(30, 200) {
		t.Fatalf("position = %v", got)
	}
	// the planned position follows the nudge
	if err := w.LayoutNow(); err != nil {
		t.Fatal(err)
	}
	if got := w.Config(paneconfig.EditorPane).Position; got != geom.P(30, 200) {
		t.Fatalf("planned position = %v", got)
	}
}

func TestTitlesFollowDocument(t *testing.T) {
	w := newWorkspace(t, nil)
	w.SetDocument("/tmp/novel/chapter1.md", 12345)
	w.SetPages(paneconfig.Pages{Current: 2, Total: 9})
	if err := w.LayoutNow(); err != nil {
		t.Fatal(err)
	}
	if got := w.Config(paneconfig.EditorPane).Title; got != "chapter1.md - 12,345 chars" {
		t.Fatalf("editor title = %q", got)
	}
	if got := w.Config(paneconfig.PreviewPane).Title; got != "Preview - page 2 / 9" {
		t.Fatalf("preview title = %q", got)
	}
}

func TestPersistAndRestore(t *testing.T) {
	store := layoutstore.NewMemStore()
	ctx := context.Background()
	w := newWorkspace(t, func(o *Options) { o.Store = store; o.SaveDelay = time.Hour })
	w.Press(pointer.Mouse{X: 120, Y: 210})
	w.Motion(pointer.Mouse{X: 170, Y: 260})
	w.Release(pointer.Mouse{X: 170, Y: 260})
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	r, err := store.Load(ctx, string(paneconfig.EditorPane))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !near(r.Position, geom.P(70, 250)) {
		t.Fatalf("saved position = %v", r.Position)
	}

	next := newWorkspace(t, func(o *Options) { o.Store = store })
	n, err := next.Restore(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Restore = %d, %v", n, err)
	}
	if err := next.LayoutNow(); err != nil {
		t.Fatal(err)
	}
	if got := next.Pane(paneconfig.EditorPane).Geometry().Position; !near(got, geom.P(70, 250)) {
		t.Fatalf("restored position = %v", got)
	}
}

func TestPersistAtZoomRestoresLogicalPosition(t *testing.T) {
	store := layoutstore.NewMemStore()
	ctx := context.Background()
	w := newWorkspace(t, func(o *Options) { o.Store = store; o.SaveDelay = time.Hour })
	ed := w.Pane(paneconfig.EditorPane)
	w.SetZoom(2)
	waitFor(t, func() bool { return near(ed.Geometry().Position, geom.P(40, 400)) })
	w.Press(pointer.Mouse{X: 140, Y: 420})
	w.Motion(pointer.Mouse{X: 190, Y: 470})
	w.Release(pointer.Mouse{X: 190, Y: 470})
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	r, err := store.Load(ctx, string(paneconfig.EditorPane))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !near(r.Position, geom.P(45, 225)) {
		t.Fatalf("saved position = %v, want logical (45,225)", r.Position)
	}

	next := newWorkspace(t, func(o *Options) { o.Store = store })
	if n, err := next.Restore(ctx); err != nil || n != 1 {
		t.Fatalf("Restore = %d, %v", n, err)
	}
	if err := next.LayoutNow(); err != nil {
		t.Fatal(err)
	}
	if got := next.Pane(paneconfig.EditorPane).Geometry().Position; !near(got, geom.P(45, 225)) {
		t.Fatalf("restored at zoom 1 = %v, want (45,225)", got)
	}
}

func TestCancelKeepsCommittedGeometry(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Press(pointer.Mouse{X: 120, Y: 210})
	w.Motion(pointer.Mouse{X: 140, Y: 230})
	if !w.Cancel() {
		t.Fatalf("Cancel reported no gesture")
	}
	if got := w.Pane(paneconfig.EditorPane).Geometry(); got.Active() || !near(got.Position, geom.P(40, 220)) {
		t.Fatalf("geometry after cancel = %+v", got)
	}
}

func TestBodyLockDuringGesture(t *testing.T) {
	body := NewBody()
	lock := pointer.NewBodyLock(body)
	w := newWorkspace(t, func(o *Options) { o.Lock = lock })
	w.Press(pointer.Mouse{X: 818, Y: 798})
	if body.Cursor() != pointer.CursorResizeNWSE || body.SelectionEnabled() {
		t.Fatalf("body during resize: cursor %q selection %v", body.Cursor(), body.SelectionEnabled())
	}
	w.Release(pointer.Mouse{X: 818, Y: 798})
	if body.Cursor() != pointer.CursorDefault || !body.SelectionEnabled() || lock.Held() != 0 {
		t.Fatalf("body not restored: cursor %q selection %v held %d", body.Cursor(), body.SelectionEnabled(), lock.Held())
	}
}

func TestOptionsFromConfigAndApply(t *testing.T) {
	cfg := config.Defaults()
	o := OptionsFromConfig(cfg)
	if o.Mode != paneconfig.Both || !o.Draggable || o.TouchDebounce != 50*time.Millisecond || o.Step != 1 || o.ShiftStep != 10 {
		t.Fatalf("options = %+v", o)
	}
	w := newWorkspace(t, nil)
	cfg.Panes.Mode = "editor"
	cfg.Panes.Draggable = false
	w.Apply(cfg)
	if w.Mode() != paneconfig.EditorOnly {
		t.Fatalf("mode = %v", w.Mode())
	}
	if w.Press(pointer.Mouse{X: 120, Y: 210}) {
		t.Fatalf("drag started after disabling dragging")
	}
}

func TestSurfaceFrameSpaces(t *testing.T) {
	w := newWorkspace(t, nil)
	w.SetZoom(2)
	f := w.Surface().frame()
	if f.Bounds != geom.R(0, 0, 1280, 800) {
		t.Fatalf("frame bounds = %+v, want display size", f.Bounds)
	}
	if f.Metrics.Width != 640 || f.Metrics.Height != 400 {
		t.Fatalf("frame metrics = %+v, want logical size", f.Metrics)
	}
}
