/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"gomanuscript/internal/config"
	"gomanuscript/internal/crash"
	"gomanuscript/internal/layoutstore"
	applog "gomanuscript/internal/log"
	"gomanuscript/internal/paneconfig"
	"gomanuscript/internal/tui"
	"gomanuscript/internal/ui"
	"gomanuscript/internal/version"
)

func usage() {
	fmt.Println("GoManuscript - manuscript editor workspace")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gomanuscript version|-v|--version          Show version")
	fmt.Println("  gomanuscript ui [<file>]                     Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  gomanuscript tui [<file>]                    Launch terminal UI")
	fmt.Println("  gomanuscript layout list                     List saved pane geometry")
	fmt.Println("  gomanuscript layout reset [<pane>]           Forget saved geometry (all panes by default)")
	fmt.Println("  gomanuscript layout import <preset.json>     Load a layout preset into the store")
	fmt.Println("  gomanuscript config path|show                Print the config file path or the effective config")
	fmt.Println("  gomanuscript config forget-password          Remove the store password from the OS keychain")
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	defer crash.Recover(nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("GoManuscript")
		fmt.Println(version.String())
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	cfg, password, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	applog.Init(cfg.LogOptions())
	l = applog.WithComponent("cli")
	cfgPath, _ := config.ConfigPath()

	if args[1] == "config" {
		runConfig(l, cfg, cfgPath, args[2:])
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := layoutstore.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.PostgresDSN(password))
	cancel()
	if err != nil {
		fail(l, "open layout store failed", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Warn("close layout store failed", slog.Any("err", err))
		}
	}()
	l.Debug("layout store open", slog.String("driver", cfg.Store.Driver))

	switch args[1] {
	case "ui", "tui":
		var file string
		if len(args) >= 3 {
			file, _ = filepath.Abs(args[2])
		}
		if args[1] == "ui" {
			err = ui.Run(ui.Options{Config: cfg, Store: store, FilePath: file, ConfigPath: cfgPath})
		} else {
			err = tui.Run(tui.Options{Config: cfg, Store: store, FilePath: file, ConfigPath: cfgPath})
		}
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "layout":
		runLayout(l, store, args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func runConfig(l *slog.Logger, cfg config.AppConfig, path string, args []string) {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "path":
		fmt.Println(path)
	case "show":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fail(l, "encode config failed", err)
		}
		fmt.Print(string(out))
		for _, key := range []string{"store.driver", "store.path", "store.dsn", "panes.mode", "logging.level"} {
			if env, ok := config.EnvOverrideFor(key); ok {
				fmt.Printf("# %s overridden by %s\n", key, env)
			}
		}
	case "forget-password":
		if err := config.ClearPassword(); err != nil {
			fail(l, "clear store password failed", err)
		}
		fmt.Println("Store password removed from keychain")
	default:
		usage()
		os.Exit(2)
	}
}

func runLayout(l *slog.Logger, store layoutstore.Store, args []string) {
	if len(args) == 0 {
		fmt.Println("layout requires list, reset or import")
		usage()
		os.Exit(2)
	}
	ctx := context.Background()
	switch args[0] {
	case "list":
		recs, err := store.List(ctx)
		if err != nil {
			fail(l, "list layout failed", err)
		}
		if len(recs) == 0 {
			fmt.Println("No saved pane geometry.")
			return
		}
		for _, r := range recs {
			fmt.Printf("%-8s x=%-6.0f y=%-6.0f %4.0fx%-4.0f saved %s\n",
				r.PaneID, r.Position.X, r.Position.Y, r.Size.W, r.Size.H, humanize.Time(r.UpdatedAt))
		}
	case "reset":
		panes := []string{string(paneconfig.EditorPane), string(paneconfig.PreviewPane)}
		if len(args) > 1 {
			panes = args[1:]
		}
		for _, id := range panes {
			if err := store.Delete(ctx, id); err != nil {
				fail(l, "reset layout failed", err)
			}
		}
		l.Info("layout reset", slog.Int("panes", len(panes)))
		fmt.Println("Reset", len(panes), "pane(s).")
	case "import":
		if len(args) < 2 {
			fmt.Println("import requires <preset.json>")
			usage()
			os.Exit(2)
		}
		f, err := os.Open(args[1])
		if err != nil {
			fail(l, "open preset failed", err)
		}
		defer func() { _ = f.Close() }()
		p, err := layoutstore.LoadPreset(f)
		if err != nil {
			fail(l, "invalid preset", err)
		}
		n, err := layoutstore.Import(ctx, store, p)
		if err != nil {
			fail(l, "import preset failed", err)
		}
		fmt.Printf("Imported preset %q (%d panes).\n", p.Name, n)
	default:
		usage()
		os.Exit(2)
	}
}
