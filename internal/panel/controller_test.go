/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package panel

import (
	"testing"
	"time"

	"gomanuscript/internal/constraint"
	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/scale"
)

type fakeParent struct {
	rect    geom.Rect
	metrics constraint.ParentMetrics
}

func (p *fakeParent) Parent() scale.Node                { return nil }
func (p *fakeParent) Transform() (geom.Affine2D, error) { return geom.Identity(), nil }

type fakeEl struct {
	rect   geom.Rect
	m      geom.Affine2D
	parent *fakeParent
}

func (e *fakeEl) Parent() scale.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *fakeEl) Transform() (geom.Affine2D, error) { return e.m, nil }
func (e *fakeEl) Bounds() geom.Rect                 { return e.rect }

func (e *fakeEl) ParentFrame() (Frame, bool) {
	if e.parent == nil {
		return Frame{}, false
	}
	return Frame{Bounds: e.parent.rect, Metrics: e.parent.metrics}, true
}

type fakeViewport struct {
	scale  float64
	scroll geom.Pt
}

func (v *fakeViewport) Scale() float64  { return v.scale }
func (v *fakeViewport) Scroll() geom.Pt { return v.scroll }

type fakeBody struct {
	cursor pointer.Cursor
	sel    bool
}

func (b *fakeBody) Cursor() pointer.Cursor      { return b.cursor }
func (b *fakeBody) SetCursor(c pointer.Cursor)  { b.cursor = c }
func (b *fakeBody) SelectionEnabled() bool      { return b.sel }
func (b *fakeBody) SetSelectionEnabled(on bool) { b.sel = on }

type counts struct {
	drag, resize           int
	dragStart, dragEnd     int
	resizeStart, resizeEnd int
	change                 int
}

func (n *counts) callbacks() Callbacks {
	return Callbacks{
		OnDrag:        func(geom.Pt) { n.drag++ },
		OnResize:      func(geom.Size) { n.resize++ },
		OnDragStart:   func() { n.dragStart++ },
		OnDragEnd:     func() { n.dragEnd++ },
		OnResizeStart: func() { n.resizeStart++ },
		OnResizeEnd:   func() { n.resizeEnd++ },
		OnChange:      func(Geometry) { n.change++ },
	}
}

var stdSpec = constraint.Spec{MinSize: geom.S(200, 150), MaxSize: geom.S(1200, 1000)}

func newPanel(t *testing.T, el Element, n *counts, mutate func(*Options)) *Controller {
	t.Helper()
	opts := Options{
		Position:      geom.P(20, 100),
		Size:          geom.S(400, 300),
		Spec:          stdSpec,
		Logger:        applog.Nop(),
		TouchDebounce: -1,
	}
	if n != nil {
		opts.Callbacks = n.callbacks()
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(el, &fakeViewport{scale: 1}, opts)
}

func TestDragEndToEnd(t *testing.T) {
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, nil)

	if !c.StartDrag(pointer.Mouse{X: 220, Y: 250}) {
		t.Fatalf("StartDrag refused")
	}
	if !c.State().Dragging {
		t.Fatalf("expected dragging after start")
	}
	c.Move(pointer.Mouse{X: 270, Y: 300})
	c.End(pointer.Mouse{X: 270, Y: 300})

	g := c.State()
	if g.Position != geom.P(70, 150) {
		t.Fatalf("position = %+v, want (70,150)", g.Position)
	}
	if g.Dragging || g.Resizing {
		t.Fatalf("gesture flags still set: %+v", g)
	}
	if n.dragEnd != 1 || n.dragStart != 1 || n.drag != 1 {
		t.Fatalf("callback counts = %+v", n)
	}
	if c.End(pointer.Mouse{}) || c.EndDrag() || n.dragEnd != 1 {
		t.Fatalf("second end must be a no-op, dragEnd=%d", n.dragEnd)
	}
}

func TestDragReadsLiveElementBounds(t *testing.T) {
	parent := &fakeParent{
		rect: geom.R(5, 5, 1000, 800),
		metrics: constraint.ParentMetrics{
			Width: 1000, Height: 800,
			Padding: geom.Edges{Top: 8, Right: 8, Bottom: 8, Left: 8},
			Border:  geom.Edges{Top: 2, Right: 2, Bottom: 2, Left: 2},
		},
	}
	el := &fakeEl{m: geom.Identity(), parent: parent}
	place := func(g Geometry) {
		el.rect = geom.R(5+10+g.Position.X, 5+10+g.Position.Y, g.Size.W, g.Size.H)
	}
	c := newPanel(t, el, nil, func(o *Options) { o.Callbacks.OnChange = place })
	place(c.State())

	c.StartDrag(pointer.Mouse{X: 235, Y: 265})
	c.Move(pointer.Mouse{X: 285, Y: 315})
	c.EndDrag()
	if got := c.State().Position; got != geom.P(70, 150) {
		t.Fatalf("position = %+v, want (70,150)", got)
	}
}

func TestResizeSouthEast(t *testing.T) {
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, nil)
	if !c.StartResize(pointer.Mouse{X: 420, Y: 400}, pointer.SE) {
		t.Fatalf("StartResize refused")
	}
	c.Move(pointer.Mouse{X: 520, Y: 450})
	if got := c.State().Size; got != geom.S(500, 350) {
		t.Fatalf("size = %+v, want (500,350)", got)
	}
	c.Move(pointer.Mouse{X: 5000, Y: 5000})
	if got := c.State().Size; got != geom.S(1200, 1000) {
		t.Fatalf("size = %+v, want clamp to max", got)
	}
	c.End(pointer.Mouse{})
	if n.resizeStart != 1 || n.resizeEnd != 1 || n.resize != 2 {
		t.Fatalf("callback counts = %+v", n)
	}
	if c.State().Position != geom.P(20, 100) {
		t.Fatalf("resize moved the pane: %+v", c.State().Position)
	}
}

func TestDragDeltaIgnoresScaleChangeMidGesture(t *testing.T) {
	run := func(zoomMidGesture bool) geom.Pt {
		el := &fakeEl{m: geom.Identity()}
		c := newPanel(t, el, nil, func(o *Options) { o.Position = geom.P(100, 100) })
		c.StartDrag(pointer.Mouse{X: 150, Y: 150})
		if zoomMidGesture {
			el.m = geom.Scale(2, 2)
		}
		c.Move(pointer.Mouse{X: 170, Y: 170})
		lp := c.LogicalPosition()
		c.EndDrag()
		return lp
	}
	steady, zoomed := run(false), run(true)
	if steady != geom.P(120, 120) {
		t.Fatalf("steady logical position = %+v", steady)
	}
	if zoomed != steady {
		t.Fatalf("zoom mid-gesture changed the logical delta: %+v vs %+v", zoomed, steady)
	}
}

func TestSingleActiveGesture(t *testing.T) {
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, nil)
	c.StartResize(pointer.Mouse{X: 420, Y: 400}, pointer.SE)
	before := c.State()
	if c.StartDrag(pointer.Mouse{X: 100, Y: 100}) {
		t.Fatalf("StartDrag accepted during resize")
	}
	if c.State() != before || n.dragStart != 0 {
		t.Fatalf("state changed: %+v -> %+v", before, c.State())
	}
	c.EndResize()

	c.StartDrag(pointer.Mouse{X: 100, Y: 100})
	before = c.State()
	if c.StartResize(pointer.Mouse{X: 100, Y: 100}, pointer.E) {
		t.Fatalf("StartResize accepted during drag")
	}
	if c.State() != before {
		t.Fatalf("state changed during drag: %+v", c.State())
	}
}

func TestTouchIsolation(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := newPanel(t, &fakeEl{m: geom.Identity()}, nil, func(o *Options) {
		o.Now = clock
		o.TouchDebounce = 0 // default 50ms
	})
	c.StartDrag(pointer.Touch{ID: 1, X: 220, Y: 250})

	now = now.Add(10 * time.Millisecond)
	if c.Move(pointer.Touch{ID: 1, X: 230, Y: 260}) {
		t.Fatalf("move inside debounce window applied")
	}
	now = now.Add(100 * time.Millisecond)
	if c.Move(pointer.Touch{ID: 2, X: 400, Y: 400}) || c.State().Position != geom.P(20, 100) {
		t.Fatalf("foreign touch moved the pane: %+v", c.State().Position)
	}
	if !c.Move(pointer.Touch{ID: 1, X: 270, Y: 300}) || c.State().Position != geom.P(70, 150) {
		t.Fatalf("owning touch did not move the pane: %+v", c.State().Position)
	}
	if c.End(pointer.Touch{ID: 2}) || !c.State().Dragging {
		t.Fatalf("foreign touch end stopped the drag")
	}
	if !c.End(pointer.Touch{ID: 1}) {
		t.Fatalf("owning touch end ignored")
	}
}

func TestKeyboardNudge(t *testing.T) {
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, func(o *Options) { o.Position = geom.P(500, 500) })

	c.HandleKey(Key{Arrow: Left, Ctrl: true})
	if x := c.State().Position.X; x != 499 {
		t.Fatalf("ctrl+left x = %v, want 499", x)
	}
	c.HandleKey(Key{Arrow: Left, Ctrl: true, Shift: true})
	if x := c.State().Position.X; x != 489 {
		t.Fatalf("ctrl+shift+left x = %v, want 489", x)
	}
	for i := 0; i < 100; i++ {
		c.HandleKey(Key{Arrow: Left, Ctrl: true, Shift: true})
		if x := c.State().Position.X; x < 0 {
			t.Fatalf("x went below zero: %v", x)
		}
	}
	if x := c.State().Position.X; x != 0 {
		t.Fatalf("x = %v, want floor at 0", x)
	}
	if n.drag != 102 {
		t.Fatalf("OnDrag fired %d times", n.drag)
	}
	if c.HandleKey(Key{Arrow: Left}) {
		t.Fatalf("plain arrow must not be consumed")
	}
}

func TestKeyboardResizeClamps(t *testing.T) {
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, nil)
	c.HandleKey(Key{Arrow: Right, Ctrl: true, Alt: true})
	if w := c.State().Size.W; w != 401 {
		t.Fatalf("ctrl+alt+right w = %v", w)
	}
	for i := 0; i < 50; i++ {
		c.HandleKey(Key{Arrow: Up, Ctrl: true, Alt: true, Shift: true})
	}
	if h := c.State().Size.H; h != 150 {
		t.Fatalf("height = %v, want min 150", h)
	}
	if n.resize != 51 || n.drag != 0 {
		t.Fatalf("callback counts = %+v", n)
	}
}

func TestKeyboardIgnoredDuringGesture(t *testing.T) {
	c := newPanel(t, &fakeEl{m: geom.Identity()}, nil, nil)
	c.StartDrag(pointer.Mouse{X: 1, Y: 1})
	if c.HandleKey(Key{Arrow: Right, Ctrl: true}) {
		t.Fatalf("nudge applied during drag")
	}
}

func TestInitializePrecedence(t *testing.T) {
	c := newPanel(t, &fakeEl{m: geom.Identity()}, nil, nil)
	c.HandleKey(Key{Arrow: Right, Ctrl: true, Shift: true})

	if c.Initialize(geom.P(20, 100), geom.S(400, 300), stdSpec) {
		t.Fatalf("repeating the seed must not reset user state")
	}
	if c.State().Position != geom.P(30, 100) {
		t.Fatalf("position = %+v", c.State().Position)
	}

	c.StartDrag(pointer.Mouse{})
	if c.Initialize(geom.P(0, 0), geom.S(300, 200), stdSpec) {
		t.Fatalf("Initialize applied during a gesture")
	}
	c.EndDrag()

	if !c.Initialize(geom.P(5, 5), geom.S(50, 5000), stdSpec) {
		t.Fatalf("new seed ignored")
	}
	g := c.State()
	if g.Position != geom.P(5, 5) || g.Size != geom.S(200, 1000) {
		t.Fatalf("seed not applied with clamp: %+v", g)
	}
}

func TestHandleScaleChange(t *testing.T) {
	el := &fakeEl{m: geom.Identity()}
	c := newPanel(t, el, nil, func(o *Options) { o.Position = geom.P(100, 50) })

	el.m = geom.Scale(1.005, 1.005)
	if c.HandleScaleChange() {
		t.Fatalf("change below threshold re-normalized")
	}
	el.m = geom.Scale(2, 2)
	if !c.UpdatePositionForScaleChange() {
		t.Fatalf("2x change ignored")
	}
	if got := c.State().Position; got != geom.P(200, 100) {
		t.Fatalf("position = %+v, want (200,100)", got)
	}
	if c.HandleScaleChange() {
		t.Fatalf("same scale re-applied")
	}

	c.StartDrag(pointer.Mouse{})
	el.m = geom.Scale(4, 4)
	if c.HandleScaleChange() {
		t.Fatalf("scale change applied during a gesture")
	}
}

func TestCancelPathsReleaseLock(t *testing.T) {
	body := &fakeBody{cursor: pointer.CursorDefault, sel: true}
	lock := pointer.NewBodyLock(body)
	var n counts
	c := newPanel(t, &fakeEl{m: geom.Identity()}, &n, func(o *Options) { o.Lock = lock })

	c.StartDrag(pointer.Mouse{X: 220, Y: 250})
	if body.cursor != pointer.CursorGrabbing || body.sel {
		t.Fatalf("lock not applied: %+v", body)
	}
	c.Move(pointer.Mouse{X: 230, Y: 250})
	c.Cancel()
	if lock.Held() != 0 || body.cursor != pointer.CursorDefault || !body.sel {
		t.Fatalf("cancel leaked the lock: %+v", body)
	}
	if c.State().Position != geom.P(30, 100) {
		t.Fatalf("cancel must keep the last committed position, got %+v", c.State().Position)
	}

	c.StartResize(pointer.Touch{ID: 4}, pointer.S)
	c.TouchesChanged([]int{9})
	if lock.Held() != 0 || c.State().Resizing {
		t.Fatalf("lost touch did not end the resize")
	}

	c.StartDrag(pointer.Mouse{})
	c.Detach()
	if lock.Held() != 0 || c.State().Dragging {
		t.Fatalf("detach did not end the drag")
	}
	if n.dragEnd != 2 || n.resizeEnd != 1 {
		t.Fatalf("end callbacks = %+v", n)
	}
	if c.StartDrag(pointer.Mouse{}) {
		t.Fatalf("drag started without an element")
	}
}

func TestMissingElement(t *testing.T) {
	c := newPanel(t, nil, nil, nil)
	if c.StartDrag(pointer.Mouse{}) || c.StartResize(pointer.Mouse{}, pointer.E) {
		t.Fatalf("gesture started without element")
	}
	if c.HandleScaleChange() {
		t.Fatalf("scale change without element")
	}
	if _, ok := c.PositionWithoutScale(); ok {
		t.Fatalf("PositionWithoutScale without element")
	}
	// Keyboard still works against committed state.
	if !c.HandleKey(Key{Arrow: Down, Ctrl: true}) || c.State().Position != geom.P(20, 101) {
		t.Fatalf("keyboard nudge without element: %+v", c.State().Position)
	}
	c.Attach(&fakeEl{m: geom.Identity()})
	if !c.StartDrag(pointer.Mouse{}) {
		t.Fatalf("drag refused after Attach")
	}
}

func TestContainmentDuringDrag(t *testing.T) {
	parent := &fakeParent{rect: geom.R(0, 0, 800, 600), metrics: constraint.ParentMetrics{Width: 800, Height: 600}}
	el := &fakeEl{m: geom.Identity(), parent: parent}
	spec := stdSpec
	spec.ConstrainToParent = true
	c := newPanel(t, el, nil, func(o *Options) {
		o.Spec = spec
		o.Callbacks.OnChange = func(g Geometry) {
			el.rect = geom.R(g.Position.X, g.Position.Y, g.Size.W, g.Size.H)
		}
	})
	el.rect = geom.R(20, 100, 400, 300)

	c.StartDrag(pointer.Mouse{X: 100, Y: 100})
	c.Move(pointer.Mouse{X: 5000, Y: -5000})
	c.EndDrag()
	if got := c.State().Position; got != geom.P(400, 0) {
		t.Fatalf("position = %+v, want (400,0)", got)
	}
}

func TestCallbacksRunOutsideLock(t *testing.T) {
	var c *Controller
	seen := 0
	c = newPanel(t, &fakeEl{m: geom.Identity()}, nil, func(o *Options) {
		o.Callbacks.OnDrag = func(geom.Pt) { seen++; _ = c.State() }
		o.Callbacks.OnDragEnd = func() { _ = c.LogicalPosition() }
	})
	c.StartDrag(pointer.Mouse{})
	c.Move(pointer.Mouse{X: 3, Y: 3})
	c.EndDrag()
	if seen != 1 {
		t.Fatalf("OnDrag fired %d times", seen)
	}
}

func TestPinchHelpers(t *testing.T) {
	el := &fakeEl{m: geom.Identity()}
	vp := &fakeViewport{scale: 1}
	c := New(el, vp, Options{Position: geom.P(200, 100), Size: geom.S(400, 300), Spec: stdSpec, Logger: applog.Nop()})

	vp.scale = 2
	if p, ok := c.PositionWithoutScale(); !ok || p != geom.P(100, 50) {
		t.Fatalf("PositionWithoutScale = %+v %v", p, ok)
	}
	if p, ok := c.PositionWithInitialScale(); !ok || p != geom.P(100, 50) {
		t.Fatalf("PositionWithInitialScale = %+v %v", p, ok)
	}
	if p := c.CorrectPoint(geom.P(40, 60)); p != geom.P(20, 30) {
		t.Fatalf("CorrectPoint = %+v", p)
	}
	if p, ok := c.UpdatePositionAfterPinch(); !ok || p != geom.P(100, 50) {
		t.Fatalf("UpdatePositionAfterPinch = %+v %v", p, ok)
	}
	if c.HandleScaleChange() {
		t.Fatalf("pinch update should record the scale as observed")
	}
}

func TestReattachKeepsInitialScale(t *testing.T) {
	c := newPanel(t, &fakeEl{m: geom.Identity()}, nil, nil)
	c.Attach(&fakeEl{m: geom.Scale(2, 2)})
	if f := c.InitialScale().Factor(); f != geom.P(1, 1) {
		t.Fatalf("initial factor after re-attach = %+v, want (1,1)", f)
	}
	if got := c.State().Position; got != geom.P(40, 200) {
		t.Fatalf("position after re-attach at scale 2 = %+v, want (40,200)", got)
	}
	if got := c.ToLogical(c.State().Position); got != geom.P(20, 100) {
		t.Fatalf("logical position = %+v", got)
	}
	if got := c.ToDisplay(geom.P(5, 5)); got != geom.P(10, 10) {
		t.Fatalf("ToDisplay = %+v", got)
	}
}

func TestFirstAttachSamplesInitialScale(t *testing.T) {
	c := newPanel(t, nil, nil, nil)
	c.Attach(&fakeEl{m: geom.Scale(2, 2)})
	if f := c.InitialScale().Factor(); f != geom.P(2, 2) {
		t.Fatalf("initial factor = %+v, want (2,2)", f)
	}
	if got := c.State().Position; got != geom.P(40, 200) {
		t.Fatalf("seed not expanded on first mount: %+v", got)
	}
}

func TestKeyboardAppliesPendingScaleChange(t *testing.T) {
	el := &fakeEl{m: geom.Identity()}
	c := newPanel(t, el, nil, nil)
	el.m = geom.Scale(2, 2)
	if !c.HandleKey(Key{Arrow: Right, Ctrl: true}) {
		t.Fatalf("nudge refused")
	}
	if got := c.State().Position; got != geom.P(41, 200) {
		t.Fatalf("nudge at new scale = %+v, want (41,200)", got)
	}
}
