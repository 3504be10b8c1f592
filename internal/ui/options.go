/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"strings"

	"gomanuscript/internal/config"
	"gomanuscript/internal/geom"
	"gomanuscript/internal/layoutstore"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/pointer"
	"gomanuscript/internal/workspace"
)

// Options configure a front end run.
type Options struct {
	Config config.AppConfig
	// Store persists pane geometry; nil keeps it in memory.
	Store layoutstore.Store
	// FilePath is the manuscript shown in the editor title.
	FilePath string
	// ConfigPath is watched for live reloads when set.
	ConfigPath string
}

// workspaceOptions adds the host pieces to the configured workspace options.
// post runs deferred work on the host's UI goroutine.
func workspaceOptions(opts Options, vp geom.Size, lock pointer.Lock, post func(func()), render func()) workspace.Options {
	wo := workspace.OptionsFromConfig(opts.Config)
	wo.Viewport = vp
	wo.FilePath = strings.TrimSpace(opts.FilePath)
	wo.Store = opts.Store
	wo.Lock = lock
	wo.Post = post
	wo.Logger = applog.WithComponent("workspace")
	wo.OnRender = render
	return wo
}
