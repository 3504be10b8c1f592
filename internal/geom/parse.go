/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedTransform wraps every ParseTransform failure.
var ErrMalformedTransform = errors.New("geom: malformed transform")

// ParseTransform parses a CSS-style 2D transform list such as
// "translate(10px, 4px) scale(1.5)" or the computed "matrix(a, b, c, d, e, f)".
// Functions compose left to right like CSS. "none" and "" yield Identity().
func ParseTransform(s string) (Affine2D, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Identity(), nil
	}
	m := Identity()
	rest := s
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return Identity(), fmt.Errorf("%w: %q", ErrMalformedTransform, s)
		}
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		args, err := parseArgs(rest[open+1 : closing])
		if err != nil {
			return Identity(), fmt.Errorf("%w: %s in %q", ErrMalformedTransform, err.Error(), s)
		}
		fn, err := transformFunc(name, args)
		if err != nil {
			return Identity(), fmt.Errorf("%w: %s in %q", ErrMalformedTransform, err.Error(), s)
		}
		m = m.Mul(fn)
		rest = rest[closing+1:]
	}
	return m, nil
}

type arg struct {
	v    float64
	unit string
}

func parseArgs(raw string) ([]arg, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	out := make([]arg, 0, len(fields))
	for _, f := range fields {
		i := len(f)
		for i > 0 && (f[i-1] >= 'a' && f[i-1] <= 'z' || f[i-1] == '%') {
			i--
		}
		v, err := strconv.ParseFloat(f[:i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, arg{v: v, unit: f[i:]})
	}
	return out, nil
}

func transformFunc(name string, args []arg) (Affine2D, error) {
	want := func(lo, hi int) error {
		if len(args) < lo || len(args) > hi {
			return fmt.Errorf("%s takes %d..%d args, got %d", name, lo, hi, len(args))
		}
		return nil
	}
	switch name {
	case "matrix":
		if len(args) != 6 {
			return Identity(), fmt.Errorf("matrix takes 6 args, got %d", len(args))
		}
		return Matrix(args[0].v, args[1].v, args[2].v, args[3].v, args[4].v, args[5].v), nil
	case "translate":
		if err := want(1, 2); err != nil {
			return Identity(), err
		}
		ty := 0.0
		if len(args) == 2 {
			ty = args[1].v
		}
		return Translate(args[0].v, ty), nil
	case "translatex":
		if err := want(1, 1); err != nil {
			return Identity(), err
		}
		return Translate(args[0].v, 0), nil
	case "translatey":
		if err := want(1, 1); err != nil {
			return Identity(), err
		}
		return Translate(0, args[0].v), nil
	case "scale":
		if err := want(1, 2); err != nil {
			return Identity(), err
		}
		sy := args[0].v
		if len(args) == 2 {
			sy = args[1].v
		}
		return Scale(args[0].v, sy), nil
	case "scalex":
		if err := want(1, 1); err != nil {
			return Identity(), err
		}
		return Scale(args[0].v, 1), nil
	case "scaley":
		if err := want(1, 1); err != nil {
			return Identity(), err
		}
		return Scale(1, args[0].v), nil
	case "rotate":
		if err := want(1, 1); err != nil {
			return Identity(), err
		}
		rad, err := angle(args[0])
		if err != nil {
			return Identity(), err
		}
		return Rotate(rad), nil
	default:
		return Identity(), fmt.Errorf("unsupported function %q", name)
	}
}

func angle(a arg) (float64, error) {
	switch a.unit {
	case "deg":
		return a.v * math.Pi / 180, nil
	case "rad", "":
		return a.v, nil
	case "turn":
		return a.v * 2 * math.Pi, nil
	case "grad":
		return a.v * math.Pi / 200, nil
	default:
		return 0, fmt.Errorf("bad angle unit %q", a.unit)
	}
}
