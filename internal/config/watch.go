/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "gomanuscript/internal/log"
	"gomanuscript/internal/schedule"
)

// DefaultReloadDelay collapses the write/rename bursts editors produce on save.
const DefaultReloadDelay = 200 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands the result
// to a callback. The parent directory is watched so atomic replace-by-rename
// saves are seen.
type Watcher struct {
	path    string
	fw      *fsnotify.Watcher
	deb     *schedule.Debouncer
	onLoad  func(AppConfig, error)
	log     *slog.Logger
	done    chan struct{}
	closeMu sync.Once
}

// Watch starts watching path. onLoad runs once per settled burst of changes.
func Watch(path string, delay time.Duration, onLoad func(AppConfig, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	l := applog.WithComponent("config")
	w := &Watcher{
		path:   filepath.Clean(path),
		fw:     fw,
		deb:    schedule.NewDebouncer(delay, schedule.WithLogger(l)),
		onLoad: onLoad,
		log:    l,
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.deb.Trigger(w.reload)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", slog.Any("err", err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("config reload failed", slog.String("path", w.path), slog.Any("err", err))
	} else {
		w.log.Info("config reloaded", slog.String("path", w.path))
	}
	if w.onLoad != nil {
		w.onLoad(cfg, err)
	}
}

// Close stops watching and drops any pending reload.
func (w *Watcher) Close() error {
	var err error
	w.closeMu.Do(func() {
		w.deb.Cancel()
		err = w.fw.Close()
		<-w.done
	})
	return err
}
