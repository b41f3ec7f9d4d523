// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
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

package function

import (
	"errors"
	"math"
)

// Type2 is a PDF function type 2 (exponential interpolation), PDF
// 32000-1:2008 7.10.3.
type Type2 struct {
	XMin, XMax float64
	C0, C1     []float64
	N          float64
	Range      []float64
}

func (f *Type2) repair() {
	if f.C0 == nil {
		f.C0 = []float64{0}
	}
	if f.C1 == nil {
		f.C1 = []float64{1}
	}
}

// FunctionType implements [pdf.Function].
func (f *Type2) FunctionType() int { return 2 }

// Shape implements [pdf.Function].
func (f *Type2) Shape() (int, int) {
	f.repair()
	return 1, len(f.C0)
}

// GetDomain implements [pdf.Function].
func (f *Type2) GetDomain() []float64 { return []float64{f.XMin, f.XMax} }

// validate reports whether f's fields describe a well-formed exponential
// interpolation function: C0 and C1 must agree in length, and a negative
// domain only makes sense for an integer exponent.
func (f *Type2) validate() error {
	f.repair()
	if !isRange(f.XMin, f.XMax) {
		return errors.New("function: invalid domain")
	}
	if len(f.C0) != len(f.C1) {
		return errors.New("function: C0 and C1 length mismatch")
	}
	if f.XMin < 0 && f.N != math.Trunc(f.N) {
		return errors.New("function: negative domain requires an integer exponent")
	}
	return nil
}

// Apply implements [pdf.Function].
func (f *Type2) Apply(out []float64, in ...float64) {
	f.repair()
	x := clip(in[0], f.XMin, f.XMax)
	xn := math.Pow(x, f.N)
	for j := range out {
		out[j] = f.C0[j] + xn*(f.C1[j]-f.C0[j])
		if len(f.Range) >= 2*j+2 {
			out[j] = clip(out[j], f.Range[2*j], f.Range[2*j+1])
		}
	}
}
