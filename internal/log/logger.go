/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides centralized slog-based logging for gomanuscript.
// A console (pretty) or JSON handler writes to stderr; an optional rotating
// JSON file sink is added when a log file is configured. Loggers carry the
// component and op attributes used across the geometry engine and hosts.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"gomanuscript/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "GMS_LOG_LEVEL"  // debug|info|warn|error
	EnvFormat = "GMS_LOG_FORMAT" // console|json
	EnvSource = "GMS_LOG_SOURCE" // true|false
	EnvFile   = "GMS_LOG_FILE"   // path, enables rotated file logging
)

// Options controls logger initialization.
// Defaults: INFO level, console format, no source, no file.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	// Writer replaces stderr for the console sink. Used by tests.
	Writer io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the process logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init configures the process logger and installs it as slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var sinks []slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		sinks = append(sinks, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	default:
		sinks = append(sinks, &prettyTextHandler{level: lvl, addSource: opts.AddSource, w: out, mu: &sync.Mutex{}})
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 5, MaxBackups: 3, MaxAge: 14, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = sinks[0]
	if len(sinks) > 1 {
		h = fanout(sinks)
	}
	logger := slog.New(h).With(
		slog.String("app", "gomanuscript"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	current = logger
	mu.Unlock()
	slog.SetDefault(logger)
}

// FromEnv builds Options from GMS_LOG_* environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv(EnvLevel, "info"),
		Format:    getenv(EnvFormat, "console"),
		AddSource: strings.EqualFold(getenv(EnvSource, "false"), "true"),
		File:      os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// OrComponent returns l when non-nil, otherwise the process logger for component.
func OrComponent(l *slog.Logger, component string) *slog.Logger {
	if l != nil {
		return l
	}
	return WithComponent(component)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger { return slog.New(slog.DiscardHandler) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends each record to every sink that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// prettyTextHandler prints one line per record:
//
//	2025-01-02T15:04:05Z WRN msg key=val grp.key=val
//
// Attributes keep the group prefix that was active when they were added.
type prettyTextHandler struct {
	level     slog.Leveler
	addSource bool
	w         io.Writer
	mu        *sync.Mutex
	prefix    string
	attrs     []string
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	if r.Message != "" {
		b.WriteByte(' ')
		b.WriteString(r.Message)
	}
	for _, a := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(formatAttr(h.prefix, a))
		return true
	})
	if h.addSource {
		if r.PC != 0 {
			frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
			b.WriteString(" src=")
			b.WriteString(frame.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(frame.Line))
		}
	}
	b.WriteByte('\n')

	mu := h.mu
	if mu == nil {
		mu = &sync.Mutex{}
	}
	mu.Lock()
	defer mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, formatAttr(h.prefix, a))
	}
	return &next
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	next.prefix = h.prefix + name + "."
	return &next
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERR"
	case l >= slog.LevelWarn:
		return "WRN"
	case l >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

func formatAttr(prefix string, a slog.Attr) string {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		parts := make([]string, 0, len(v.Group()))
		for _, ga := range v.Group() {
			parts = append(parts, formatAttr(prefix+a.Key+".", ga))
		}
		return strings.Join(parts, " ")
	}
	return prefix + a.Key + "=" + valueString(v)
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}
