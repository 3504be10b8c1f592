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
	"math"

	"golang.org/x/image/math/f64"
)

// ErrSingular is returned when a matrix has no inverse.
var ErrSingular = errors.New("geom: matrix is not invertible")

// Affine2D is a 2D affine transform stored row-major as f64.Aff3:
//
//	| a c e |
//	| b d f |
//	| 0 0 1 |
//
// The zero value is degenerate; start from Identity().
type Affine2D f64.Aff3

// Identity returns the identity transform.
func Identity() Affine2D { return Affine2D{1, 0, 0, 0, 1, 0} }

// Matrix builds a transform from CSS matrix(a, b, c, d, e, f) order.
func Matrix(a, b, c, d, e, f float64) Affine2D { return Affine2D{a, c, e, b, d, f} }

func Translate(tx, ty float64) Affine2D { return Matrix(1, 0, 0, 1, tx, ty) }
func Scale(sx, sy float64) Affine2D     { return Matrix(sx, 0, 0, sy, 0, 0) }
func Rotate(rad float64) Affine2D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix(c, s, -s, c, 0, 0)
}

// Components returns the CSS-order coefficients a, b, c, d, e, f.
func (m Affine2D) Components() (a, b, c, d, e, f float64) {
	return m[0], m[3], m[1], m[4], m[2], m[5]
}

// Mul returns m×n: n is applied first, then m.
func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		m[0]*n[0] + m[1]*n[3],
		m[0]*n[1] + m[1]*n[4],
		m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3],
		m[3]*n[1] + m[4]*n[4],
		m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

// Apply maps p through the transform.
func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Det is the determinant of the linear part.
func (m Affine2D) Det() float64 { return m[0]*m[4] - m[1]*m[3] }

// Invert returns the inverse transform, or ErrSingular when the determinant is
// zero or not finite.
func (m Affine2D) Invert() (Affine2D, error) {
	det := m.Det()
	if det == 0 || !finite(det) {
		return Identity(), ErrSingular
	}
	inv := 1 / det
	a, c := m[4]*inv, -m[1]*inv
	b, d := -m[3]*inv, m[0]*inv
	e := -(a*m[2] + c*m[5])
	f := -(b*m[2] + d*m[5])
	return Affine2D{a, c, e, b, d, f}, nil
}

// ScaleFactors extracts the x and y scale as the lengths of the transformed unit
// vectors: hypot(a, b) and hypot(c, d).
func (m Affine2D) ScaleFactors() (sx, sy float64) {
	return math.Hypot(m[0], m[3]), math.Hypot(m[1], m[4])
}

// Translation returns the e, f offset.
func (m Affine2D) Translation() Pt { return Pt{m[2], m[5]} }

// IsIdentity reports whether m equals the identity within 1e-12.
func (m Affine2D) IsIdentity() bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > 1e-12 {
			return false
		}
	}
	return true
}

// Valid reports a finite, invertible transform.
func (m Affine2D) Valid() bool {
	for _, v := range m {
		if !finite(v) {
			return false
		}
	}
	return m.Det() != 0
}
