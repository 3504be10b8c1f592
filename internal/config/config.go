/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "gomanuscript/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

// GeometryConfig tunes the pane geometry engine.
type GeometryConfig struct {
	TouchDebounceMs   int     `yaml:"touch_debounce_ms"`
	ScaleThreshold    float64 `yaml:"scale_threshold"` // relative, 0.01 = 1%
	NudgeStep         float64 `yaml:"nudge_step"`
	NudgeShiftStep    float64 `yaml:"nudge_shift_step"`
	FrameMs           int     `yaml:"frame_ms"`  // layout coalescing window
	SettleMs          int     `yaml:"settle_ms"` // resize observation settle delay, 0 = next tick
	ConstrainToParent bool    `yaml:"constrain_to_parent"`
}

type PanesConfig struct {
	Draggable bool   `yaml:"draggable"`
	Mode      string `yaml:"mode"` // "both" | "editor" | "preview"
}

type StoreConfig struct {
	Driver      string `yaml:"driver"` // "sqlite" | "postgres" | "memory"
	Path        string `yaml:"path"`   // sqlite file; empty selects the user config dir
	DSN         string `yaml:"dsn"`    // postgres; the password lives in the OS keychain
	SaveDelayMs int    `yaml:"save_delay_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Geometry      GeometryConfig `yaml:"geometry"`
	Panes         PanesConfig    `yaml:"panes"`
	Store         StoreConfig    `yaml:"store"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Geometry: GeometryConfig{
			TouchDebounceMs: 50,
			ScaleThreshold:  0.01,
			NudgeStep:       1,
			NudgeShiftStep:  10,
			FrameMs:         16,
			SettleMs:        0,
		},
		Panes:   PanesConfig{Draggable: true, Mode: "both"},
		Store:   StoreConfig{Driver: "sqlite", SaveDelayMs: 250},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "GMS_CONFIG"
	EnvTouchDebounce  = "GMS_TOUCH_DEBOUNCE_MS"
	EnvScaleThreshold = "GMS_SCALE_THRESHOLD"
	EnvConstrain      = "GMS_CONSTRAIN_TO_PARENT"
	EnvDraggable      = "GMS_DRAGGABLE"
	EnvDisplayMode    = "GMS_DISPLAY_MODE"
	EnvStoreDriver    = "GMS_STORE_DRIVER"
	EnvStorePath      = "GMS_STORE_PATH"
	EnvPGDSN          = "GMS_PG_DSN"
	// Logging envs are shared with internal/log.
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// ConfigPath returns the per-user config file path. GMS_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoManuscript")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoManuscript")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gomanuscript")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. The store password is read from the keychain and
// returned separately; it is never kept inside the struct.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, "", err
	}
	pw, _ := tokenStore.Get(keyringService, keyringStorePassword)
	return cfg, pw, nil
}

// LoadFile is Load for an explicit path without the keychain lookup. A missing
// file yields the defaults; a malformed file is an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		// start from defaults so keys absent from the file keep their default
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML and persists the store password into the
// OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := SaveFile(path, cfg); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringStorePassword, password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	return nil
}

// SaveFile writes cfg as YAML to path.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// geometry: zero means "not set" for the numeric knobs
	g, sg := &dst.Geometry, src.Geometry
	if sg.TouchDebounceMs != 0 {
		g.TouchDebounceMs = sg.TouchDebounceMs
	}
	if sg.ScaleThreshold > 0 {
		g.ScaleThreshold = sg.ScaleThreshold
	}
	if sg.NudgeStep > 0 {
		g.NudgeStep = sg.NudgeStep
	}
	if sg.NudgeShiftStep > 0 {
		g.NudgeShiftStep = sg.NudgeShiftStep
	}
	if sg.FrameMs > 0 {
		g.FrameMs = sg.FrameMs
	}
	if sg.SettleMs > 0 {
		g.SettleMs = sg.SettleMs
	}
	g.ConstrainToParent = sg.ConstrainToParent
	// booleans: copy directly from src (file) so user preferences persist
	dst.Panes.Draggable = src.Panes.Draggable
	if m := strings.TrimSpace(src.Panes.Mode); m != "" {
		dst.Panes.Mode = strings.ToLower(m)
	}
	if d := strings.TrimSpace(src.Store.Driver); d != "" {
		dst.Store.Driver = strings.ToLower(d)
	}
	if p := strings.TrimSpace(src.Store.Path); p != "" {
		dst.Store.Path = p
	}
	if d := strings.TrimSpace(src.Store.DSN); d != "" {
		dst.Store.DSN = d
	}
	if src.Store.SaveDelayMs > 0 {
		dst.Store.SaveDelayMs = src.Store.SaveDelayMs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTouchDebounce)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Geometry.TouchDebounceMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvScaleThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Geometry.ScaleThreshold = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvConstrain)); v != "" {
		cfg.Geometry.ConstrainToParent = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDraggable)); v != "" {
		cfg.Panes.Draggable = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDisplayMode)); v != "" {
		cfg.Panes.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPGDSN)); v != "" {
		cfg.Store.DSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"geometry.touch_debounce_ms":   EnvTouchDebounce,
		"geometry.scale_threshold":     EnvScaleThreshold,
		"geometry.constrain_to_parent": EnvConstrain,
		"panes.draggable":              EnvDraggable,
		"panes.mode":                   EnvDisplayMode,
		"store.driver":                 EnvStoreDriver,
		"store.path":                   EnvStorePath,
		"store.dsn":                    EnvPGDSN,
		"logging.level":                EnvLogLevel,
		"logging.format":               EnvLogFormat,
		"logging.source":               EnvLogSource,
		"logging.file":                 EnvLogFile,
	}[key]
	if env != "" && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// TouchDebounce is the touch move debounce; a negative setting disables it.
func (g GeometryConfig) TouchDebounce() time.Duration { return ms(g.TouchDebounceMs) }
func (g GeometryConfig) Frame() time.Duration         { return ms(g.FrameMs) }
func (g GeometryConfig) Settle() time.Duration        { return ms(g.SettleMs) }
func (s StoreConfig) SaveDelay() time.Duration        { return ms(s.SaveDelayMs) }

// LogOptions maps the logging section onto internal/log.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// PostgresDSN returns the DSN with password filled in when the DSN is a URL
// without one.
func (s StoreConfig) PostgresDSN(password string) string {
	if password == "" || s.DSN == "" {
		return s.DSN
	}
	u, err := url.Parse(s.DSN)
	if err != nil || u.User == nil || u.Scheme == "" {
		return s.DSN
	}
	if _, has := u.User.Password(); has {
		return s.DSN
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String()
}
