// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package color

import (
	"errors"
	"math"
)

// SpaceCalGray is a PDF CalGray colour space, PDF 32000-1:2008 8.6.5.2.
type SpaceCalGray struct {
	WhitePoint [3]float64
	BlackPoint []float64
	Gamma      float64
}

// CalGray constructs a CalGray colour space. blackPoint may be nil (the
// PDF default [0 0 0]); gamma defaults to 1 when zero.
func CalGray(whitePoint [3]float64, blackPoint []float64, gamma float64) (*SpaceCalGray, error) {
	if whitePoint[1] <= 0 {
		return nil, errors.New("color: white point Y must be positive")
	}
	if gamma == 0 {
		gamma = 1
	}
	return &SpaceCalGray{WhitePoint: whitePoint, BlackPoint: blackPoint, Gamma: gamma}, nil
}

// New returns the colour for the given gray value (0 black to 1 white).
func (s *SpaceCalGray) New(value float64) Color {
	return colorCalGray{Value: value, space: s}
}

// FromXYZ implements the colour space's inverse transform, recovering the
// gray value that produced the given D50-relative XYZ triple.
func (s *SpaceCalGray) FromXYZ(X, Y, Z float64) Color {
	_, y, _ := bradfordAdapt(X, Y, Z, WhitePointD50, s.WhitePoint)
	v := y / s.WhitePoint[1]
	if v < 0 {
		v = 0
	}
	value := math.Pow(v, 1/s.Gamma)
	return colorCalGray{Value: value, space: s}
}

// Family implements [Space].
func (s *SpaceCalGray) Family() string { return "CalGray" }

// NumComponents implements [Space].
func (s *SpaceCalGray) NumComponents() int { return 1 }

type colorCalGray struct {
	Value float64
	space *SpaceCalGray
}

func (c colorCalGray) ToXYZ() (X, Y, Z float64) {
	w := c.space.WhitePoint
	y := math.Pow(c.Value, c.space.Gamma)
	x65, y65, z65 := y*w[0], y*w[1], y*w[2]
	return bradfordAdapt(x65, y65, z65, w, WhitePointD50)
}

func (c colorCalGray) RGBA() (r, g, b, a uint32) {
	return xyzToRGBA(c.ToXYZ())
}

// SpaceCalRGB is a PDF CalRGB colour space, PDF 32000-1:2008 8.6.5.3.
type SpaceCalRGB struct {
	WhitePoint [3]float64
	BlackPoint []float64
	Gamma      [3]float64
	Matrix     [3][3]float64 // row i holds the coefficients for XYZ component i
}

// CalRGB constructs a CalRGB colour space. blackPoint, gamma and matrix may
// be nil, defaulting to [0 0 0], [1 1 1] and the identity respectively.
func CalRGB(whitePoint [3]float64, blackPoint, gamma, matrix []float64) (*SpaceCalRGB, error) {
	if whitePoint[1] <= 0 {
		return nil, errors.New("color: white point Y must be positive")
	}
	g := [3]float64{1, 1, 1}
	if gamma != nil {
		if len(gamma) != 3 {
			return nil, errors.New("color: CalRGB gamma must have 3 entries")
		}
		copy(g[:], gamma)
	}
	var m [3][3]float64
	if matrix == nil {
		m = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	} else {
		if len(matrix) != 9 {
			return nil, errors.New("color: CalRGB matrix must have 9 entries")
		}
		m = [3][3]float64{
			{matrix[0], matrix[3], matrix[6]},
			{matrix[1], matrix[4], matrix[7]},
			{matrix[2], matrix[5], matrix[8]},
		}
	}
	return &SpaceCalRGB{WhitePoint: whitePoint, BlackPoint: blackPoint, Gamma: g, Matrix: m}, nil
}

// New returns the colour for the given (A, B, C) gamma-corrected components.
func (s *SpaceCalRGB) New(a, b, c float64) Color {
	return colorCalRGB{Values: [3]float64{a, b, c}, space: s}
}

// FromXYZ implements the colour space's inverse transform.
func (s *SpaceCalRGB) FromXYZ(X, Y, Z float64) Color {
	x, y, z := bradfordAdapt(X, Y, Z, WhitePointD50, s.WhitePoint)
	abc := matVec(invert3(s.Matrix), [3]float64{x, y, z})
	values := [3]float64{}
	for i := 0; i < 3; i++ {
		v := abc[i]
		if v < 0 {
			v = 0
		}
		values[i] = math.Pow(v, 1/s.Gamma[i])
	}
	return colorCalRGB{Values: values, space: s}
}

// Family implements [Space].
func (s *SpaceCalRGB) Family() string { return "CalRGB" }

// NumComponents implements [Space].
func (s *SpaceCalRGB) NumComponents() int { return 3 }

type colorCalRGB struct {
	Values [3]float64
	space  *SpaceCalRGB
}

func (c colorCalRGB) ToXYZ() (X, Y, Z float64) {
	s := c.space
	abc := [3]float64{
		math.Pow(c.Values[0], s.Gamma[0]),
		math.Pow(c.Values[1], s.Gamma[1]),
		math.Pow(c.Values[2], s.Gamma[2]),
	}
	raw := matVec(s.Matrix, abc)
	return bradfordAdapt(raw[0], raw[1], raw[2], s.WhitePoint, WhitePointD50)
}

func (c colorCalRGB) RGBA() (r, g, b, a uint32) {
	return xyzToRGBA(c.ToXYZ())
}

func invert3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	inv := 1 / det
	return [3][3]float64{
		{
			(m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv,
			(m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv,
			(m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv,
		},
		{
			(m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv,
			(m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv,
			(m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv,
		},
		{
			(m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv,
			(m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv,
			(m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv,
		},
	}
}

// SpaceLab is a PDF Lab colour space, PDF 32000-1:2008 8.6.5.4.
type SpaceLab struct {
	WhitePoint [3]float64
	BlackPoint []float64
	Range      []float64 // [aMin aMax bMin bMax], defaults to [-100 100 -100 100]
}

// Lab constructs a Lab colour space.
func Lab(whitePoint [3]float64, blackPoint, rng []float64) (*SpaceLab, error) {
	if whitePoint[1] <= 0 {
		return nil, errors.New("color: white point Y must be positive")
	}
	if rng == nil {
		rng = []float64{-100, 100, -100, 100}
	} else if len(rng) != 4 {
		return nil, errors.New("color: Lab range must have 4 entries")
	}
	return &SpaceLab{WhitePoint: whitePoint, BlackPoint: blackPoint, Range: rng}, nil
}

// New returns the colour for the given (L, a, b) components, or an error if
// a or b fall outside the space's Range.
func (s *SpaceLab) New(l, a, b float64) (Color, error) {
	if l < 0 || l > 100 {
		return nil, errors.New("color: Lab L out of range")
	}
	if a < s.Range[0] || a > s.Range[1] || b < s.Range[2] || b > s.Range[3] {
		return nil, errors.New("color: Lab a/b out of range")
	}
	return colorLab{Values: [3]float64{l, a, b}, space: s}, nil
}

// FromXYZ implements the colour space's inverse transform.
func (s *SpaceLab) FromXYZ(X, Y, Z float64) Color {
	x, y, z := bradfordAdapt(X, Y, Z, WhitePointD50, s.WhitePoint)
	w := s.WhitePoint
	fx, fy, fz := labF(x/w[0]), labF(y/w[1]), labF(z/w[2])
	l := 116*fy - 16
	a := 500 * (fx - fy)
	b := 200 * (fy - fz)
	return colorLab{Values: [3]float64{l, a, b}, space: s}
}

// Family implements [Space].
func (s *SpaceLab) Family() string { return "Lab" }

// NumComponents implements [Space].
func (s *SpaceLab) NumComponents() int { return 3 }

const labDelta = 6.0 / 29.0

func labF(t float64) float64 {
	if t > labDelta*labDelta*labDelta {
		return math.Cbrt(t)
	}
	return t/(3*labDelta*labDelta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	if t > labDelta {
		return t * t * t
	}
	return 3 * labDelta * labDelta * (t - 4.0/29.0)
}

type colorLab struct {
	Values [3]float64
	space  *SpaceLab
}

func (c colorLab) ToXYZ() (X, Y, Z float64) {
	s := c.space
	l, a, b := c.Values[0], c.Values[1], c.Values[2]
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200
	w := s.WhitePoint
	x65 := w[0] * labFInv(fx)
	y65 := w[1] * labFInv(fy)
	z65 := w[2] * labFInv(fz)
	return bradfordAdapt(x65, y65, z65, w, WhitePointD50)
}

func (c colorLab) RGBA() (r, g, b, a uint32) {
	return xyzToRGBA(c.ToXYZ())
}
