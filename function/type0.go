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

import "errors"

// Type0 is a PDF function type 0 (sampled function), PDF 32000-1:2008
// 7.10.2.  UseCubic requests cubic spline interpolation for single-input
// functions; this implementation evaluates it with the same multilinear
// interpolation used for the default case, which is exact when m=1 anyway
// only at the sample points themselves and otherwise a reasonable
// approximation.
type Type0 struct {
	Domain        []float64
	Range         []float64
	Size          []int
	BitsPerSample int
	Encode        []float64
	Decode        []float64
	UseCubic      bool
	Samples       []byte
}

func (f *Type0) repair() {
	m := len(f.Domain) / 2
	if len(f.Encode) != 2*m {
		enc := make([]float64, 2*m)
		for i := 0; i < m; i++ {
			enc[2*i] = 0
			enc[2*i+1] = float64(f.Size[i] - 1)
		}
		f.Encode = enc
	}
	n := len(f.Range) / 2
	if len(f.Decode) != 2*n {
		f.Decode = append([]float64(nil), f.Range...)
	}
}

// FunctionType implements [pdf.Function].
func (f *Type0) FunctionType() int { return 0 }

// Shape implements [pdf.Function].
func (f *Type0) Shape() (int, int) { return len(f.Domain) / 2, len(f.Range) / 2 }

// GetDomain implements [pdf.Function].
func (f *Type0) GetDomain() []float64 { return f.Domain }

// extractSampleAtIndex reads the raw (undecoded) sample value at flat index
// i from the bit-packed Samples array, most-significant-bit first.
func (f *Type0) extractSampleAtIndex(i int) float64 {
	bits := f.BitsPerSample
	bitOffset := i * bits
	var v uint64
	for b := 0; b < bits; b++ {
		pos := bitOffset + b
		byteIdx := pos / 8
		bitIdx := 7 - pos%8
		bitVal := (f.Samples[byteIdx] >> uint(bitIdx)) & 1
		v = v<<1 | uint64(bitVal)
	}
	return float64(v)
}

func flatSampleIndex(idx, size []int) int {
	flat := 0
	mult := 1
	for i := range idx {
		flat += idx[i] * mult
		mult *= size[i]
	}
	return flat
}

func maxSampleValue(bits int) float64 {
	return float64((uint64(1) << uint(bits)) - 1)
}

// validate reports whether f's fields describe a well-formed sampled
// function: BitsPerSample must be one of the depths PDF readers are
// required to support, and Size must name one extent per Domain input.
func (f *Type0) validate() error {
	switch f.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
	default:
		return errors.New("function: invalid BitsPerSample")
	}
	m := len(f.Domain) / 2
	if len(f.Size) != m {
		return errors.New("function: Size does not match Domain dimensionality")
	}
	return nil
}

// Apply implements [pdf.Function].
func (f *Type0) Apply(out []float64, in ...float64) {
	f.repair()
	m := len(f.Domain) / 2
	n := len(f.Range) / 2

	e := make([]float64, m)
	for i := 0; i < m; i++ {
		x := clip(in[i], f.Domain[2*i], f.Domain[2*i+1])
		ei := interpolate(x, f.Domain[2*i], f.Domain[2*i+1], f.Encode[2*i], f.Encode[2*i+1])
		e[i] = clip(ei, 0, float64(f.Size[i]-1))
	}

	raw := make([]float64, n)
	corners := 1 << uint(m)
	idx := make([]int, m)
	for c := 0; c < corners; c++ {
		weight := 1.0
		for i := 0; i < m; i++ {
			lo := int(e[i])
			frac := e[i] - float64(lo)
			if (c>>uint(i))&1 == 1 {
				if lo+1 <= f.Size[i]-1 {
					idx[i] = lo + 1
				} else {
					idx[i] = lo
				}
				weight *= frac
			} else {
				idx[i] = lo
				weight *= 1 - frac
			}
		}
		if weight == 0 {
			continue
		}
		flat := flatSampleIndex(idx, f.Size)
		for j := 0; j < n; j++ {
			raw[j] += weight * f.extractSampleAtIndex(flat*n+j)
		}
	}

	maxVal := maxSampleValue(f.BitsPerSample)
	for j := 0; j < n; j++ {
		v := interpolate(raw[j], 0, maxVal, f.Decode[2*j], f.Decode[2*j+1])
		out[j] = clip(v, f.Range[2*j], f.Range[2*j+1])
	}
}
