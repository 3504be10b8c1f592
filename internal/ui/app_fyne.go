//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gomanuscript/internal/config"
	"gomanuscript/internal/crash"
	"gomanuscript/internal/geom"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/paneconfig"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/version"
	"gomanuscript/internal/workspace"
)

// Run starts the Fyne desktop shell: the editor and preview panes floating on
// a zoomable surface.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	var ws *workspace.Workspace
	defer crash.Recover(func() error {
		if ws == nil {
			return nil
		}
		return ws.Flush(context.Background())
	})

	fyneApp := app.NewWithID("gomanuscript")
	w := fyneApp.NewWindow("GoManuscript")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	body := workspace.NewBody()
	var wc *WorkspaceCanvas

	ws = workspace.New(workspaceOptions(opts, geom.S(float64(winW), float64(winH)), pointer.NewBodyLock(body), fyne.Do, func() {
		if wc != nil {
			wc.Refresh()
			status.SetText(statusLine(ws))
		}
	}))
	wc = NewWorkspaceCanvas(ws, body)

	if n, err := ws.Restore(context.Background()); err != nil {
		l.Warn("restore pane layout failed", slog.Any("err", err))
	} else if n > 0 {
		l.Info("pane layout restored", slog.Int("panes", n))
	}
	status.SetText(statusLine(ws))

	if opts.ConfigPath != "" {
		watcher, err := config.Watch(opts.ConfigPath, config.DefaultReloadDelay, func(cfg config.AppConfig, err error) {
			if err != nil {
				return
			}
			fyne.Do(func() { ws.Apply(cfg) })
		})
		if err != nil {
			l.Warn("config watch disabled", slog.Any("err", err))
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	addShortcuts(w.Canvas(), ws, status)

	w.SetContent(container.NewBorder(nil, status, nil, nil, wc))
	w.SetOnClosed(func() {
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ws.Close(ctx); err != nil {
			l.Error("saving pane layout failed", slog.Any("err", err))
		}
	})
	w.ShowAndRun()
	return nil
}

var arrowKeys = map[fyne.KeyName]panel.Arrow{
	fyne.KeyLeft:  panel.Left,
	fyne.KeyRight: panel.Right,
	fyne.KeyUp:    panel.Up,
	fyne.KeyDown:  panel.Down,
}

// addShortcuts wires Ctrl+Arrow nudges (Shift for the large step, Alt to
// resize), Ctrl+M for the display mode, Ctrl+Shift+M to maximize the focused
// pane and Ctrl+= / Ctrl+- for the zoom.
func addShortcuts(c fyne.Canvas, ws *workspace.Workspace, status *widget.Label) {
	mods := []fyne.KeyModifier{
		fyne.KeyModifierControl,
		fyne.KeyModifierControl | fyne.KeyModifierShift,
		fyne.KeyModifierControl | fyne.KeyModifierAlt,
		fyne.KeyModifierControl | fyne.KeyModifierAlt | fyne.KeyModifierShift,
	}
	for name, arrow := range arrowKeys {
		for _, mod := range mods {
			k := panel.Key{
				Arrow: arrow,
				Ctrl:  true,
				Shift: mod&fyne.KeyModifierShift != 0,
				Alt:   mod&fyne.KeyModifierAlt != 0,
			}
			c.AddShortcut(&desktop.CustomShortcut{KeyName: name, Modifier: mod}, func(fyne.Shortcut) { ws.Key(k) })
		}
	}
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyM, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		ws.CycleMode()
		status.SetText(statusLine(ws))
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyM, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}, func(fyne.Shortcut) {
		ws.ToggleMaximized(ws.Focused())
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyEqual, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { ws.ZoomBy(1.1) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyMinus, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { ws.ZoomBy(1 / 1.1) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { ws.SetZoom(1) })
}

func statusLine(ws *workspace.Workspace) string {
	g := ws.Pane(ws.Focused()).Geometry()
	return fmt.Sprintf("%s | %s | zoom %.0f%% | %s at %.0f,%.0f %.0fx%.0f",
		ws.Mode(), ws.Layout(), ws.Surface().Zoom()*100, ws.Focused(),
		g.Position.X, g.Position.Y, g.Size.W, g.Size.H)
}

// WorkspaceCanvas draws the panes and turns Fyne pointer events into
// workspace gestures.
type WorkspaceCanvas struct {
	widget.BaseWidget

	ws   *workspace.Workspace
	body *workspace.Body

	pressed bool
	last    fyne.Position
	size    fyne.Size
}

func NewWorkspaceCanvas(ws *workspace.Workspace, body *workspace.Body) *WorkspaceCanvas {
	wc := &WorkspaceCanvas{ws: ws, body: body}
	wc.ExtendBaseWidget(wc)
	return wc
}

func toInput(p fyne.Position) pointer.Input {
	return pointer.Mouse{X: float64(p.X), Y: float64(p.Y)}
}

func (wc *WorkspaceCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	wc.pressed = true
	wc.last = e.Position
	wc.ws.Press(toInput(e.Position))
}

func (wc *WorkspaceCanvas) MouseUp(e *desktop.MouseEvent) {
	if !wc.pressed {
		return
	}
	wc.pressed = false
	wc.ws.Release(toInput(e.Position))
}

func (wc *WorkspaceCanvas) Dragged(e *fyne.DragEvent) {
	wc.last = e.Position
	wc.ws.Motion(toInput(e.Position))
}

func (wc *WorkspaceCanvas) DragEnd() {
	wc.pressed = false
	wc.ws.Release(toInput(wc.last))
}

// Scrolled zooms the surface. Fyne v2.6 does not expose modifiers on scroll
// events, so the wheel always zooms.
func (wc *WorkspaceCanvas) Scrolled(e *fyne.ScrollEvent) {
	wc.ws.SetZoom(wc.ws.Surface().Zoom() + float64(e.Scrolled.DY)*0.005)
}

// Cursor follows the UI lock held by a running gesture.
func (wc *WorkspaceCanvas) Cursor() desktop.Cursor {
	switch wc.body.Cursor() {
	case pointer.CursorGrabbing:
		return desktop.PointerCursor
	case pointer.CursorResizeNS:
		return desktop.VResizeCursor
	case pointer.CursorResizeEW:
		return desktop.HResizeCursor
	case pointer.CursorResizeNWSE, pointer.CursorResizeNESW:
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

func (wc *WorkspaceCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (wc *WorkspaceCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	r := &workspaceRenderer{wc: wc, bg: bg, panes: map[paneconfig.PaneID]*paneVisual{}}
	for _, id := range []paneconfig.PaneID{paneconfig.EditorPane, paneconfig.PreviewPane} {
		r.panes[id] = newPaneVisual()
	}
	r.rebuild()
	return r
}

// paneVisual is the chrome of one pane.
type paneVisual struct {
	frame *canvas.Rectangle
	bar   *canvas.Rectangle
	title *canvas.Text
}

func newPaneVisual() *paneVisual {
	frame := canvas.NewRectangle(color.White)
	frame.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	frame.StrokeWidth = 1
	bar := canvas.NewRectangle(color.RGBA{R: 60, G: 64, B: 72, A: 255})
	title := canvas.NewText("", color.White)
	title.TextSize = 12
	return &paneVisual{frame: frame, bar: bar, title: title}
}

func (v *paneVisual) objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{v.frame, v.bar, v.title}
}

func (v *paneVisual) hide() {
	for _, o := range v.objects() {
		o.Hide()
	}
}

func (v *paneVisual) show(view workspace.View, zoom float64) {
	rect := view.Rect
	v.frame.Move(fyne.NewPos(float32(rect.X), float32(rect.Y)))
	v.frame.Resize(fyne.NewSize(float32(rect.W), float32(rect.H)))
	bar := float32(workspace.TitleHeight * zoom)
	v.bar.Move(fyne.NewPos(float32(rect.X), float32(rect.Y)))
	v.bar.Resize(fyne.NewSize(float32(rect.W), bar))
	switch {
	case view.Active:
		v.bar.FillColor = color.RGBA{R: 0, G: 120, B: 215, A: 255}
	case view.Focus:
		v.bar.FillColor = color.RGBA{R: 70, G: 90, B: 120, A: 255}
	default:
		v.bar.FillColor = color.RGBA{R: 60, G: 64, B: 72, A: 255}
	}
	v.title.Text = view.Title
	v.title.TextSize = float32(12 * zoom)
	v.title.Move(fyne.NewPos(float32(rect.X)+float32(6*zoom), float32(rect.Y)+float32(4*zoom)))
	for _, o := range v.objects() {
		o.Show()
		o.Refresh()
	}
}

// workspaceRenderer positions the pane chrome from the workspace views. The
// object order follows the pane stacking order.
type workspaceRenderer struct {
	wc      *WorkspaceCanvas
	bg      *canvas.Rectangle
	panes   map[paneconfig.PaneID]*paneVisual
	objects []fyne.CanvasObject
}

func (r *workspaceRenderer) Destroy()                     {}
func (r *workspaceRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *workspaceRenderer) MinSize() fyne.Size           { return r.wc.MinSize() }

func (r *workspaceRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.wc)
}

func (r *workspaceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if size != r.wc.size && size.Width > 0 && size.Height > 0 {
		r.wc.size = size
		r.wc.ws.SetViewport(geom.S(float64(size.Width), float64(size.Height)))
	}
	r.rebuild()
}

func (r *workspaceRenderer) rebuild() {
	ws := r.wc.ws
	zoom := ws.Surface().Zoom()
	objs := []fyne.CanvasObject{r.bg}
	shown := map[paneconfig.PaneID]bool{}
	for _, v := range ws.Views() {
		pv := r.panes[v.ID]
		pv.show(v, zoom)
		objs = append(objs, pv.objects()...)
		shown[v.ID] = true
	}
	for id, pv := range r.panes {
		if !shown[id] {
			pv.hide()
			objs = append(objs, pv.objects()...)
		}
	}
	r.objects = objs
}
