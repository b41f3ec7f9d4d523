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

	"seehuhn.de/go/pdf"
)

// Type3 is a PDF function type 3 (stitching function), PDF 32000-1:2008
// 7.10.4: it partitions [XMin, XMax] into len(Functions) subdomains at the
// boundaries in Bounds and dispatches to one sub-function per subdomain.
type Type3 struct {
	XMin, XMax float64
	Functions  []pdf.Function
	Bounds     []float64
	Encode     []float64
	Range      []float64
}

// findSubdomain returns the index of the sub-function covering x, and the
// subdomain's [a, b) boundaries (closed on both ends for the last
// subdomain; a degenerate a==b subdomain matches only x==a).
func (f *Type3) findSubdomain(x float64) (int, float64, float64) {
	bounds := make([]float64, 0, len(f.Bounds)+2)
	bounds = append(bounds, f.XMin)
	bounds = append(bounds, f.Bounds...)
	bounds = append(bounds, f.XMax)
	k := len(bounds) - 1

	for i := 0; i < k-1; i++ {
		a, b := bounds[i], bounds[i+1]
		if a == b {
			if x == a {
				return i, a, b
			}
			continue
		}
		if x < b {
			return i, a, b
		}
	}
	return k - 1, bounds[k-1], bounds[k]
}

// FunctionType implements [pdf.Function].
func (f *Type3) FunctionType() int { return 3 }

// Shape implements [pdf.Function].
func (f *Type3) Shape() (int, int) {
	if len(f.Functions) == 0 {
		return 1, 0
	}
	_, n := f.Functions[0].Shape()
	return 1, n
}

// GetDomain implements [pdf.Function].
func (f *Type3) GetDomain() []float64 { return []float64{f.XMin, f.XMax} }

// validate reports whether f's fields describe a well-formed stitching
// function: there must be exactly one fewer boundary than sub-function.
func (f *Type3) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return errors.New("function: invalid domain")
	}
	if len(f.Functions) == 0 {
		return errors.New("function: no sub-functions")
	}
	if len(f.Bounds) != len(f.Functions)-1 {
		return errors.New("function: Bounds length must be len(Functions)-1")
	}
	return nil
}

// Apply implements [pdf.Function].
func (f *Type3) Apply(out []float64, in ...float64) {
	x := clip(in[0], f.XMin, f.XMax)
	k, a, b := f.findSubdomain(x)

	e0, e1 := a, b
	if len(f.Encode) >= 2*k+2 {
		e0, e1 = f.Encode[2*k], f.Encode[2*k+1]
	}
	xp := interpolate(x, a, b, e0, e1)

	f.Functions[k].Apply(out, xp)
	for j := range out {
		if len(f.Range) >= 2*j+2 {
			out[j] = clip(out[j], f.Range[2*j], f.Range[2*j+1])
		}
	}
}
