/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pointer

import (
	"fmt"
	"strings"
)

// Direction names the edge or corner a resize handle sits on.
type Direction string

const (
	N  Direction = "n"
	S  Direction = "s"
	E  Direction = "e"
	W  Direction = "w"
	NE Direction = "ne"
	NW Direction = "nw"
	SE Direction = "se"
	SW Direction = "sw"
)

// Directions lists every handle, edges first.
var Directions = []Direction{N, S, E, W, NE, NW, SE, SW}

// ParseDirection accepts the lower- or upper-case handle name.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d, nil
	}
	return "", fmt.Errorf("pointer: unknown resize direction %q", s)
}

func (d Direction) Valid() bool {
	switch d {
	case N, S, E, W, NE, NW, SE, SW:
		return true
	}
	return false
}

func (d Direction) HasN() bool { return strings.ContainsRune(string(d), 'n') }
func (d Direction) HasS() bool { return strings.ContainsRune(string(d), 's') }
func (d Direction) HasE() bool { return strings.ContainsRune(string(d), 'e') }
func (d Direction) HasW() bool { return strings.ContainsRune(string(d), 'w') }

// Cursor is the pointer cursor shown while a gesture holds the UI lock.
func (d Direction) Cursor() Cursor {
	switch d {
	case N, S:
		return CursorResizeNS
	case E, W:
		return CursorResizeEW
	case NW, SE:
		return CursorResizeNWSE
	case NE, SW:
		return CursorResizeNESW
	}
	return CursorDefault
}
