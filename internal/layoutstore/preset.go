/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layoutstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gomanuscript/internal/geom"
)

//go:embed preset.schema.json
var presetSchema []byte

// ErrInvalidPreset wraps schema violations reported by LoadPreset.
var ErrInvalidPreset = errors.New("layoutstore: invalid preset")

// Preset is a named set of pane geometries that can be imported into a store.
type Preset struct {
	Name  string       `json:"name"`
	Panes []PanePreset `json:"panes"`
}

type PanePreset struct {
	Pane   string  `json:"pane"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LoadPreset reads a JSON preset and validates it against the embedded schema.
func LoadPreset(r io.Reader) (Preset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(presetSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Preset{}, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Preset{}, fmt.Errorf("%w: %s", ErrInvalidPreset, strings.Join(msgs, "; "))
	}
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("decode preset: %w", err)
	}
	return p, nil
}

// Records converts the preset into store records stamped with now.
func (p Preset) Records(now time.Time) []Record {
	out := make([]Record, 0, len(p.Panes))
	for _, pp := range p.Panes {
		out = append(out, Record{
			PaneID:    pp.Pane,
			Position:  geom.P(pp.X, pp.Y),
			Size:      geom.S(pp.Width, pp.Height),
			UpdatedAt: now,
		})
	}
	return out
}

// Import saves every pane of p into s and returns the count written.
func Import(ctx context.Context, s Store, p Preset) (int, error) {
	n := 0
	for _, r := range p.Records(time.Now()) {
		if err := s.Save(ctx, r); err != nil {
			return n, fmt.Errorf("import preset %q: %w", p.Name, err)
		}
		n++
	}
	return n, nil
}
