/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"log/slog"

	"gomanuscript/internal/config"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/paneconfig"
)

// OptionsFromConfig maps the geometry and pane sections of cfg onto Options.
// Hosts fill in the viewport, store, lock and scheduling hooks.
func OptionsFromConfig(cfg config.AppConfig) Options {
	mode, err := paneconfig.ParseDisplayMode(cfg.Panes.Mode)
	if err != nil {
		applog.WithComponent("workspace").Warn("unknown display mode; showing both panes", slog.String("mode", cfg.Panes.Mode))
		mode = paneconfig.Both
	}
	g := cfg.Geometry
	return Options{
		Mode:          mode,
		Draggable:     cfg.Panes.Draggable,
		Constrain:     g.ConstrainToParent,
		SaveDelay:     cfg.Store.SaveDelay(),
		Frame:         g.Frame(),
		Settle:        g.Settle(),
		TouchDebounce: g.TouchDebounce(),
		Threshold:     g.ScaleThreshold,
		Step:          g.NudgeStep,
		ShiftStep:     g.NudgeShiftStep,
	}
}

// Apply pushes a reloaded config into a running workspace.
func (w *Workspace) Apply(cfg config.AppConfig) {
	o := OptionsFromConfig(cfg)
	if o.Mode != w.Mode() {
		w.SetMode(o.Mode)
	}
	w.SetDraggable(o.Draggable)
	w.SetConstrain(o.Constrain)
}
