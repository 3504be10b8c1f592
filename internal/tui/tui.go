/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tui is a terminal front end for the pane workspace. Terminal cells
// map to a fixed pixel size so the panes keep the same geometry as in the
// desktop shell.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gomanuscript/internal/config"
	"gomanuscript/internal/geom"
	"gomanuscript/internal/layoutstore"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/panel"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/workspace"
)

// Cell size in surface pixels.
const (
	CellW = 8
	CellH = 16
)

// Options configure a terminal run.
type Options struct {
	Config     config.AppConfig
	Store      layoutstore.Store
	FilePath   string
	ConfigPath string
}

type postMsg func()

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
)

// Model is the bubbletea model driving a workspace.
type Model struct {
	ws    *workspace.Workspace
	body  *workspace.Body
	posts chan func()

	width, height int
	ready         bool
	status        string
}

// NewModel wraps ws. posts carries work the workspace schedules off the
// update loop; it may be nil when nothing is scheduled asynchronously.
func NewModel(ws *workspace.Workspace, body *workspace.Body, posts chan func()) Model {
	return Model{ws: ws, body: body, posts: posts}
}

func waitPost(ch chan func()) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return postMsg(f)
	}
}

func (m Model) Init() tea.Cmd { return waitPost(m.posts) }

// toPixels maps a cell to the surface pixel at its centre.
func toPixels(x, y int) pointer.Input {
	return pointer.Mouse{X: float64(x*CellW + CellW/2), Y: float64(y*CellH + CellH/2)}
}

var arrowTypes = map[tea.KeyType]panel.Key{
	tea.KeyCtrlLeft:       {Arrow: panel.Left, Ctrl: true},
	tea.KeyCtrlRight:      {Arrow: panel.Right, Ctrl: true},
	tea.KeyCtrlUp:         {Arrow: panel.Up, Ctrl: true},
	tea.KeyCtrlDown:       {Arrow: panel.Down, Ctrl: true},
	tea.KeyCtrlShiftLeft:  {Arrow: panel.Left, Ctrl: true, Shift: true},
	tea.KeyCtrlShiftRight: {Arrow: panel.Right, Ctrl: true, Shift: true},
	tea.KeyCtrlShiftUp:    {Arrow: panel.Up, Ctrl: true, Shift: true},
	tea.KeyCtrlShiftDown:  {Arrow: panel.Down, Ctrl: true, Shift: true},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg()
		return m, waitPost(m.posts)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ws.SetViewport(geom.S(float64(msg.Width*CellW), float64(max(1, msg.Height-2)*CellH)))
		if !m.ready {
			m.ready = true
			_ = m.ws.LayoutNow()
		}
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	in := toPixels(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.ws.Press(in)
		case tea.MouseButtonWheelUp:
			m.ws.ZoomBy(1.1)
		case tea.MouseButtonWheelDown:
			m.ws.ZoomBy(1 / 1.1)
		}
	case tea.MouseActionMotion:
		m.ws.Motion(in)
	case tea.MouseActionRelease:
		m.ws.Release(in)
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k, ok := arrowTypes[msg.Type]; ok {
		k.Alt = msg.Alt
		if m.ws.Key(k) {
			m.status = ""
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.ws.Cancel()
	case "tab":
		for _, v := range m.ws.Views() {
			if v.ID != m.ws.Focused() {
				m.ws.Focus(v.ID)
				break
			}
		}
	case "m":
		m.status = "mode: " + m.ws.CycleMode().String()
	case "M":
		if m.ws.ToggleMaximized(m.ws.Focused()) {
			m.status = "maximized " + string(m.ws.Focused())
		} else {
			m.status = "restored " + string(m.ws.Focused())
		}
	case "z", "+":
		m.ws.ZoomBy(1.1)
	case "Z", "-":
		m.ws.ZoomBy(1 / 1.1)
	case "0":
		m.ws.SetZoom(1)
	}
	return m, nil
}

// cellRect maps a surface rectangle to inclusive cell bounds.
func cellRect(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(r.X / CellW))
	y0 = int(math.Floor(r.Y / CellH))
	x1 = int(math.Ceil((r.X+r.W)/CellW)) - 1
	y1 = int(math.Ceil((r.Y+r.H)/CellH)) - 1
	return
}

type grid [][]rune

func newGrid(w, h int) grid {
	g := make(grid, h)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", w))
	}
	return g
}

func (g grid) set(x, y int, r rune) {
	if y >= 0 && y < len(g) && x >= 0 && x < len(g[y]) {
		g[y][x] = r
	}
}

// box draws one pane. Focused panes get a double border.
func (g grid) box(v workspace.View) {
	x0, y0, x1, y1 := cellRect(v.Rect)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	h, vert, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if v.Focus {
		h, vert, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var r rune = ' '
			switch {
			case y == y0 && x == x0:
				r = tl
			case y == y0 && x == x1:
				r = tr
			case y == y1 && x == x0:
				r = bl
			case y == y1 && x == x1:
				r = br
			case y == y0 || y == y1:
				r = h
			case x == x0 || x == x1:
				r = vert
			}
			g.set(x, y, r)
		}
	}
	title := " " + v.Title + " "
	if v.Active {
		title = "[" + v.Title + "]"
	}
	for i, r := range []rune(title) {
		if x := x0 + 2 + i; x < x1-1 {
			g.set(x, y0, r)
		}
	}
}

func (g grid) String() string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	g := newGrid(m.width, max(1, m.height-2))
	for _, v := range m.ws.Views() {
		g.box(v)
	}
	return lipgloss.JoinVertical(lipgloss.Left, g.String(), m.statusLine(), helpStyle.Render("drag titles/edges · ctrl+arrows nudge (shift ×10, alt resize) · m mode · M maximize · z/Z zoom · tab focus · q quit"))
}

func (m Model) statusLine() string {
	id := m.ws.Focused()
	geo := m.ws.Pane(id).Geometry()
	line := fmt.Sprintf("%s | %s | zoom %.0f%% | %s %.0f,%.0f %.0fx%.0f",
		m.ws.Mode(), m.ws.Layout(), m.ws.Surface().Zoom()*100, id,
		geo.Position.X, geo.Position.Y, geo.Size.W, geo.Size.H)
	if c := m.body.Cursor(); c != pointer.CursorDefault {
		line += " | " + activeStyle.Render(string(c))
	}
	if m.status != "" {
		line += " | " + m.status
	}
	return statusStyle.Width(m.width).Render(line)
}

// Run starts the terminal front end and blocks until the user quits.
func Run(opts Options) error {
	l := applog.WithComponent("tui")
	posts := make(chan func(), 64)
	done := make(chan struct{})
	post := func(f func()) {
		select {
		case posts <- f:
		case <-done:
		}
	}
	body := workspace.NewBody()
	wo := workspace.OptionsFromConfig(opts.Config)
	wo.Store = opts.Store
	wo.FilePath = opts.FilePath
	wo.Lock = pointer.NewBodyLock(body)
	wo.Post = post
	wo.Logger = applog.WithComponent("workspace")
	ws := workspace.New(wo)

	if n, err := ws.Restore(context.Background()); err != nil {
		l.Warn("restore pane layout failed", slog.Any("err", err))
	} else if n > 0 {
		l.Info("pane layout restored", slog.Int("panes", n))
	}

	if opts.ConfigPath != "" {
		watcher, err := config.Watch(opts.ConfigPath, config.DefaultReloadDelay, func(cfg config.AppConfig, err error) {
			if err == nil {
				post(func() { ws.Apply(cfg) })
			}
		})
		if err != nil {
			l.Warn("config watch disabled", slog.Any("err", err))
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	p := tea.NewProgram(NewModel(ws, body, posts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	close(done)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Close(ctx); err != nil {
		l.Error("saving pane layout failed", slog.Any("err", err))
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
