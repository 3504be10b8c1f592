/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package workspace hosts the editor and preview panes on a zoomable surface.
// It owns one geometry controller per pane, plans their containers, schedules
// layout and persists settled geometry. Front ends feed it pointer and key
// input in screen coordinates and redraw from Panes.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"gomanuscript/internal/geom"
	"gomanuscript/internal/layoutstore"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/paneconfig"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/schedule"
)

// DefaultViewport is used until the host reports its size.
var DefaultViewport = geom.S(1280, 800)

// Options configure a Workspace. Zero values select the defaults.
type Options struct {
	Viewport  geom.Size
	Mode      paneconfig.DisplayMode
	Draggable bool
	Constrain bool
	FilePath  string

	// Store persists settled geometry; nil keeps it in memory only.
	Store     layoutstore.Store
	SaveDelay time.Duration

	Frame         time.Duration // layout coalescing window
	Settle        time.Duration // resize observation settle delay
	TouchDebounce time.Duration
	Threshold     float64
	Step          float64
	ShiftStep     float64

	Lock pointer.Lock
	// Post runs deferred work on the host's UI goroutine.
	Post   func(func())
	Logger *slog.Logger
	// OnRender is called whenever pane geometry or titles changed.
	OnRender func()
}

// Pane is one floating container.
type Pane struct {
	ID   paneconfig.PaneID
	ctrl *panel.Controller
	el   *paneElement

	attached bool // guarded by Workspace.mu
}

// Controller exposes the pane's geometry controller.
func (p *Pane) Controller() *panel.Controller { return p.ctrl }

// Geometry is the committed pane geometry.
func (p *Pane) Geometry() panel.Geometry { return p.ctrl.State() }

// Rect is the pane box in screen coordinates.
func (p *Pane) Rect() geom.Rect { return p.el.Bounds() }

// View is what a front end needs to draw one pane.
type View struct {
	ID     paneconfig.PaneID
	Title  string
	Rect   geom.Rect
	Active bool // a gesture runs on this pane
	Focus  bool
	Max    bool
}

// Workspace is safe for concurrent use.
type Workspace struct {
	log     *slog.Logger
	surface *Surface
	layout  *schedule.LayoutScheduler
	resize  *schedule.ResizeWatch
	store   layoutstore.Store
	saver   *layoutstore.Saver
	render  func()

	mu        sync.Mutex
	planner   paneconfig.Planner
	panes     map[paneconfig.PaneID]*Pane
	order     []paneconfig.PaneID // back to front
	maximized map[paneconfig.PaneID]bool
	configs   map[paneconfig.PaneID]paneconfig.ContainerConfig
	focus     paneconfig.PaneID
	active    paneconfig.PaneID // owner of the running gesture
}

// New builds a workspace with both panes attached according to opts.Mode.
func New(opts Options) *Workspace {
	l := applog.OrComponent(opts.Logger, "workspace")
	vp := opts.Viewport
	if vp.W <= 0 || vp.H <= 0 {
		vp = DefaultViewport
	}
	render := opts.OnRender
	if render == nil {
		render = func() {}
	}
	w := &Workspace{
		log:     l,
		surface: NewSurface(vp),
		store:   opts.Store,
		render:  render,
		planner: paneconfig.Planner{
			Viewport:  vp,
			Mode:      opts.Mode,
			Draggable: opts.Draggable,
			Constrain: opts.Constrain,
			Editor:    paneconfig.DefaultEditor,
			Preview:   paneconfig.DefaultPreview,
			FilePath:  opts.FilePath,
		},
		panes:     map[paneconfig.PaneID]*Pane{},
		order:     []paneconfig.PaneID{paneconfig.PreviewPane, paneconfig.EditorPane},
		maximized: map[paneconfig.PaneID]bool{},
		configs:   map[paneconfig.PaneID]paneconfig.ContainerConfig{},
		focus:     paneconfig.EditorPane,
	}
	var schedOpts []schedule.Option
	if opts.Post != nil {
		schedOpts = append(schedOpts, schedule.WithPost(opts.Post))
	}
	schedOpts = append(schedOpts, schedule.WithLogger(l))
	w.layout = schedule.NewLayoutScheduler(schedule.LayoutFunc(w.relayout), opts.Frame, schedOpts...)
	w.resize = schedule.NewResizeWatch(w.scaleChanged, opts.Settle, schedOpts...)
	if opts.Store != nil {
		delay := opts.SaveDelay
		if delay <= 0 {
			delay = layoutstore.DefaultSaveDelay
		}
		w.saver = layoutstore.NewSaver(opts.Store, delay)
	}

	w.mu.Lock()
	for _, id := range []paneconfig.PaneID{paneconfig.EditorPane, paneconfig.PreviewPane} {
		cfg := w.configLocked(id)
		w.configs[id] = cfg
		el := &paneElement{surface: w.surface}
		p := &Pane{ID: id, el: el}
		p.ctrl = panel.New(nil, w.surface, panel.Options{
			Position:      cfg.Position,
			Size:          cfg.Size,
			Spec:          cfg.Spec,
			Callbacks:     panel.Callbacks{OnChange: func(g panel.Geometry) { w.changed(id, g) }},
			Lock:          opts.Lock,
			Logger:        l.With(slog.String("pane", string(id))),
			TouchDebounce: opts.TouchDebounce,
			Threshold:     opts.Threshold,
			Step:          opts.Step,
			ShiftStep:     opts.ShiftStep,
		})
		el.place(p.ctrl.State())
		w.panes[id] = p
	}
	attach := w.visibilityLocked()
	w.mu.Unlock()
	w.applyVisibility(attach)
	return w
}

// Surface returns the zoomable canvas.
func (w *Workspace) Surface() *Surface { return w.surface }

// Pane returns the pane with id, or nil.
func (w *Workspace) Pane(id paneconfig.PaneID) *Pane {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.panes[id]
}

func (w *Workspace) visibleLocked(id paneconfig.PaneID) bool {
	switch w.planner.Mode {
	case paneconfig.EditorOnly:
		return id == paneconfig.EditorPane
	case paneconfig.PreviewOnly:
		return id == paneconfig.PreviewPane
	}
	return true
}

func (w *Workspace) configLocked(id paneconfig.PaneID) paneconfig.ContainerConfig {
	z := slices.Index(w.order, id)
	if id == paneconfig.EditorPane {
		return w.planner.EditorConfig(w.maximized[id], z)
	}
	return w.planner.PreviewConfig(w.maximized[id], z)
}

// visibilityLocked returns the attach state each pane should have and records it.
func (w *Workspace) visibilityLocked() map[*Pane]bool {
	out := map[*Pane]bool{}
	for id, p := range w.panes {
		want := w.visibleLocked(id)
		if want != p.attached {
			out[p] = want
			p.attached = want
		}
	}
	if w.active != "" && !w.visibleLocked(w.active) {
		w.active = ""
	}
	if !w.visibleLocked(w.focus) {
		for _, id := range w.order {
			if w.visibleLocked(id) {
				w.focus = id
			}
		}
	}
	return out
}

func (w *Workspace) applyVisibility(m map[*Pane]bool) {
	for p, attach := range m {
		if attach {
			p.ctrl.Attach(p.el)
		} else {
			p.ctrl.Detach()
		}
	}
}

// Views returns the visible panes back to front.
func (w *Workspace) Views() []View {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]View, 0, len(w.order))
	for _, id := range w.order {
		if !w.visibleLocked(id) {
			continue
		}
		p := w.panes[id]
		out = append(out, View{
			ID:     id,
			Title:  w.configs[id].Title,
			Rect:   p.Rect(),
			Active: p.ctrl.State().Active(),
			Focus:  id == w.focus,
			Max:    w.maximized[id],
		})
	}
	return out
}

// Config returns the last planned container for id.
func (w *Workspace) Config(id paneconfig.PaneID) paneconfig.ContainerConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.configs[id]
}

// Mode returns the display mode.
func (w *Workspace) Mode() paneconfig.DisplayMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.planner.Mode
}

// Layout returns the workspace layout type.
func (w *Workspace) Layout() paneconfig.LayoutType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.planner.Layout()
}

// Focused returns the pane receiving keyboard nudges.
func (w *Workspace) Focused() paneconfig.PaneID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focus
}

// SetMode switches the display mode. Hidden panes are detached, which ends
// any gesture running on them.
func (w *Workspace) SetMode(m paneconfig.DisplayMode) {
	w.mu.Lock()
	w.planner.Mode = m
	attach := w.visibilityLocked()
	w.mu.Unlock()
	w.applyVisibility(attach)
	w.RequestLayout()
}

// CycleMode advances to the next display mode and returns it.
func (w *Workspace) CycleMode() paneconfig.DisplayMode {
	m := w.Mode().Next()
	w.SetMode(m)
	return m
}

// ToggleMaximized flips the maximized state of id and reports the new state.
func (w *Workspace) ToggleMaximized(id paneconfig.PaneID) bool {
	w.mu.Lock()
	w.maximized[id] = !w.maximized[id]
	on := w.maximized[id]
	w.mu.Unlock()
	w.RequestLayout()
	return on
}

// SetDraggable switches between floating and fixed panes.
func (w *Workspace) SetDraggable(on bool) {
	w.mu.Lock()
	w.planner.Draggable = on
	w.mu.Unlock()
	w.RequestLayout()
}

// SetConstrain toggles containment of panes inside the surface.
func (w *Workspace) SetConstrain(on bool) {
	w.mu.Lock()
	w.planner.Constrain = on
	w.mu.Unlock()
	w.RequestLayout()
}

// SetDocument updates the file shown in the editor title.
func (w *Workspace) SetDocument(path string, chars int) {
	w.mu.Lock()
	w.planner.FilePath, w.planner.Chars = path, chars
	w.mu.Unlock()
	w.RequestLayout()
}

// SetSelection updates the selection shown in the editor title.
func (w *Workspace) SetSelection(sel paneconfig.Selection) {
	w.mu.Lock()
	w.planner.Selection = sel
	w.mu.Unlock()
	w.RequestLayout()
}

// SetPages updates the preview pagination.
func (w *Workspace) SetPages(p paneconfig.Pages) {
	w.mu.Lock()
	w.planner.Pages = p
	w.mu.Unlock()
	w.RequestLayout()
}

// Focus raises id to the front and routes keys to it.
func (w *Workspace) Focus(id paneconfig.PaneID) {
	w.mu.Lock()
	if i := slices.Index(w.order, id); i >= 0 && w.visibleLocked(id) {
		w.order = append(append(w.order[:i:i], w.order[i+1:]...), id)
		w.focus = id
	}
	w.mu.Unlock()
}

// SetViewport reports a new host size.
func (w *Workspace) SetViewport(size geom.Size) {
	if size.W <= 0 || size.H <= 0 {
		return
	}
	w.surface.SetSize(size)
	w.mu.Lock()
	w.planner.Viewport = size
	w.mu.Unlock()
	w.resize.Notify()
	w.RequestLayout()
}

// SetZoom changes the surface zoom. Panes are re-normalized once the resize
// observation settles.
func (w *Workspace) SetZoom(z float64) bool {
	if !w.surface.SetZoom(z) {
		return false
	}
	w.resize.Notify()
	return true
}

// ZoomBy multiplies the zoom by f.
func (w *Workspace) ZoomBy(f float64) bool { return w.SetZoom(w.surface.Zoom() * f) }

func (w *Workspace) scaleChanged() {
	w.mu.Lock()
	panes := make([]*Pane, 0, len(w.panes))
	for _, p := range w.panes {
		if p.attached {
			panes = append(panes, p)
		}
	}
	w.mu.Unlock()
	for _, p := range panes {
		p.ctrl.HandleScaleChange()
		p.el.place(p.ctrl.State())
	}
	w.render()
}

// RequestLayout schedules a coalesced layout pass.
func (w *Workspace) RequestLayout() bool { return w.layout.Request() }

// LayoutNow runs a layout pass synchronously.
func (w *Workspace) LayoutNow() error { return w.layout.Immediate() }

func (w *Workspace) relayout() error {
	type plan struct {
		p   *Pane
		cfg paneconfig.ContainerConfig
	}
	w.mu.Lock()
	var plans []plan
	for id, p := range w.panes {
		cfg := w.configLocked(id)
		w.configs[id] = cfg
		if p.attached {
			plans = append(plans, plan{p, cfg})
		}
	}
	w.mu.Unlock()
	for _, pl := range plans {
		g := pl.p.ctrl.State()
		if g.Position != pl.cfg.Position || g.Size != pl.cfg.Size || pl.p.ctrl.Spec() != pl.cfg.Spec {
			pl.p.ctrl.Initialize(pl.cfg.Position, pl.cfg.Size, pl.cfg.Spec)
		}
		pl.p.el.place(pl.p.ctrl.State())
	}
	w.render()
	return nil
}

// changed is every controller's OnChange.
func (w *Workspace) changed(id paneconfig.PaneID, g panel.Geometry) {
	w.mu.Lock()
	p := w.panes[id]
	maximized := w.configs[id].Maximized
	if !maximized && !g.Active() {
		st := paneconfig.PaneState{Position: g.Position, Size: g.Size}
		if id == paneconfig.EditorPane {
			w.planner.Editor = st
		} else {
			w.planner.Preview = st
		}
	}
	w.mu.Unlock()
	if p != nil {
		p.el.place(g)
	}
	if w.saver != nil && !maximized && p != nil {
		saved := g
		saved.Position = p.ctrl.ToLogical(g.Position)
		w.saver.Track(string(id), saved)
	}
	w.render()
}

// Restore applies saved geometry for every pane from the store.
func (w *Workspace) Restore(ctx context.Context) (int, error) {
	if w.store == nil {
		return 0, nil
	}
	n := 0
	var errs []error
	for _, id := range []paneconfig.PaneID{paneconfig.EditorPane, paneconfig.PreviewPane} {
		ok, err := layoutstore.Bind(ctx, w.store, string(id), w.Pane(id).ctrl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			n++
		}
	}
	w.RequestLayout()
	return n, errors.Join(errs...)
}

// local maps a screen input for ctrl. The zoom is divided out, and so is the
// controller's initial scale, which the controller multiplies back in.
func (w *Workspace) local(ctrl *panel.Controller, in pointer.Input) pointer.Input {
	f := ctrl.InitialScale().Factor().Scale(w.surface.Zoom())
	switch v := in.(type) {
	case pointer.Mouse:
		p := v.Pos().Div(f)
		return pointer.Mouse{X: p.X, Y: p.Y}
	case pointer.Touch:
		p := v.Pos().Div(f)
		return pointer.Touch{ID: v.ID, X: p.X, Y: p.Y}
	}
	return in
}

// HitTest finds the topmost visible pane under screen point p.
func (w *Workspace) HitTest(p geom.Pt) Hit {
	z := w.surface.Zoom()
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.order) - 1; i >= 0; i-- {
		id := w.order[i]
		if !w.visibleLocked(id) {
			continue
		}
		if r, dir := hitRect(w.panes[id].Rect(), p, z); r != RegionOutside {
			return Hit{Pane: id, Region: r, Dir: dir}
		}
	}
	return Hit{}
}

// Press starts a drag on a title bar or a resize on an edge. It focuses the
// pane under the pointer either way and reports whether a gesture started.
func (w *Workspace) Press(in pointer.Input) bool {
	if in == nil {
		return false
	}
	hit := w.HitTest(in.Pos())
	if hit.Region == RegionOutside {
		return false
	}
	w.Focus(hit.Pane)
	w.mu.Lock()
	if w.active != "" || !w.planner.Draggable {
		w.mu.Unlock()
		w.render()
		return false
	}
	p := w.panes[hit.Pane]
	w.mu.Unlock()

	var ok bool
	switch hit.Region {
	case RegionTitle:
		ok = p.ctrl.StartDrag(w.local(p.ctrl, in))
	case RegionHandle:
		ok = p.ctrl.StartResize(w.local(p.ctrl, in), hit.Dir)
	}
	if ok {
		w.mu.Lock()
		w.active = hit.Pane
		w.mu.Unlock()
	}
	w.render()
	return ok
}

func (w *Workspace) activePane() *Pane {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == "" {
		return nil
	}
	return w.panes[w.active]
}

// Motion feeds a pointer move to the running gesture.
func (w *Workspace) Motion(in pointer.Input) bool {
	p := w.activePane()
	if p == nil || in == nil {
		return false
	}
	return p.ctrl.Move(w.local(p.ctrl, in))
}

// Release ends the running gesture owned by in.
func (w *Workspace) Release(in pointer.Input) bool {
	p := w.activePane()
	if p == nil || in == nil {
		return false
	}
	if !p.ctrl.End(w.local(p.ctrl, in)) {
		return false
	}
	w.clearActive()
	return true
}

// Cancel aborts the running gesture, keeping the last committed geometry.
func (w *Workspace) Cancel() bool {
	p := w.activePane()
	if p == nil {
		return false
	}
	ok := p.ctrl.Cancel()
	w.clearActive()
	return ok
}

// TouchesChanged reports the touch identifiers still down.
func (w *Workspace) TouchesChanged(ids []int) bool {
	p := w.activePane()
	if p == nil {
		return false
	}
	if !p.ctrl.TouchesChanged(ids) {
		return false
	}
	w.clearActive()
	return true
}

func (w *Workspace) clearActive() {
	w.mu.Lock()
	w.active = ""
	w.mu.Unlock()
}

// Key routes a keyboard nudge to the focused pane.
func (w *Workspace) Key(k panel.Key) bool {
	w.mu.Lock()
	p := w.panes[w.focus]
	w.mu.Unlock()
	if p == nil {
		return false
	}
	return p.ctrl.HandleKey(k)
}

// Flush writes pending geometry to the store now.
func (w *Workspace) Flush(ctx context.Context) error {
	if w.saver == nil {
		return nil
	}
	return w.saver.Flush(ctx)
}

// Close stops the schedulers and flushes pending geometry. The store itself
// stays open; its owner closes it.
func (w *Workspace) Close(ctx context.Context) error {
	w.layout.Stop()
	w.resize.Stop()
	for _, p := range w.panes {
		p.ctrl.Detach()
	}
	if w.saver == nil {
		return nil
	}
	return w.saver.Close(ctx)
}
