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
	"io"

	"seehuhn.de/go/pdf"
)

// Extract reads a PDF function object (a dictionary for types 0, 3, 4 or a
// stream for type 0/4, PDF 32000-1:2008 7.10) and returns the matching
// [pdf.Function] implementation. obj may also be an Array of one-output
// functions, the convention PDF uses for colour tint transforms with
// multiple output components; in that case the results are concatenated.
func Extract(r pdf.Getter, obj pdf.Object) (pdf.Function, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	if arr, ok := resolved.(pdf.Array); ok {
		fns := make([]pdf.Function, len(arr))
		for i, elem := range arr {
			fn, err := Extract(r, elem)
			if err != nil {
				return nil, pdf.Wrap(err, "function array")
			}
			fns[i] = fn
		}
		return &multiFunction{Functions: fns}, nil
	}

	var dict pdf.Dict
	var streamData []byte
	switch x := resolved.(type) {
	case pdf.Dict:
		dict = x
	case *pdf.Stream:
		dict = x.Dict
		rd, err := pdf.DecodeStream(r, x, 0)
		if err != nil {
			return nil, pdf.Wrap(err, "function stream")
		}
		data, err := io.ReadAll(rd)
		if err != nil {
			return nil, pdf.Wrap(err, "function stream")
		}
		streamData = data
	default:
		return nil, pdf.Errorf("function: expected dict or stream, got %T", resolved)
	}

	ft, err := pdf.GetInteger(r, dict["FunctionType"])
	if err != nil {
		return nil, err
	}
	domain, err := pdf.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}
	rang, err := pdf.GetFloatArray(r, dict["Range"])
	if err != nil {
		return nil, err
	}

	switch ft {
	case 0:
		size, err := getIntArray(r, dict["Size"])
		if err != nil {
			return nil, err
		}
		bps, err := pdf.GetInteger(r, dict["BitsPerSample"])
		if err != nil {
			return nil, err
		}
		encode, err := pdf.GetFloatArray(r, dict["Encode"])
		if err != nil {
			return nil, err
		}
		decode, err := pdf.GetFloatArray(r, dict["Decode"])
		if err != nil {
			return nil, err
		}
		return &Type0{
			Domain:        domain,
			Range:         rang,
			Size:          size,
			BitsPerSample: int(bps),
			Encode:        encode,
			Decode:        decode,
			Samples:       streamData,
		}, nil

	case 2:
		c0, err := pdf.GetFloatArray(r, dict["C0"])
		if err != nil {
			return nil, err
		}
		c1, err := pdf.GetFloatArray(r, dict["C1"])
		if err != nil {
			return nil, err
		}
		n, err := pdf.GetNumber(r, dict["N"])
		if err != nil {
			return nil, err
		}
		if len(domain) < 2 {
			domain = []float64{0, 1}
		}
		return &Type2{
			XMin: domain[0], XMax: domain[1],
			C0: c0, C1: c1, N: float64(n), Range: rang,
		}, nil

	case 3:
		funcsObj, err := pdf.GetArray(r, dict["Functions"])
		if err != nil {
			return nil, err
		}
		subs := make([]pdf.Function, len(funcsObj))
		for i, f := range funcsObj {
			sub, err := Extract(r, f)
			if err != nil {
				return nil, pdf.Wrap(err, "Functions")
			}
			subs[i] = sub
		}
		bounds, err := pdf.GetFloatArray(r, dict["Bounds"])
		if err != nil {
			return nil, err
		}
		encode, err := pdf.GetFloatArray(r, dict["Encode"])
		if err != nil {
			return nil, err
		}
		if len(domain) < 2 {
			domain = []float64{0, 1}
		}
		return &Type3{
			XMin: domain[0], XMax: domain[1],
			Functions: subs, Bounds: bounds, Encode: encode, Range: rang,
		}, nil

	case 4:
		return &Type4{
			Domain:  domain,
			Range:   rang,
			Program: string(streamData),
		}, nil

	default:
		return nil, pdf.Errorf("function: unsupported FunctionType %d", ft)
	}
}

func getIntArray(r pdf.Getter, obj pdf.Object) ([]int, error) {
	arr, err := pdf.GetArray(r, obj)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([]int, len(arr))
	for i, elem := range arr {
		n, err := pdf.GetInteger(r, elem)
		if err != nil {
			return nil, err
		}
		out[i] = int(n)
	}
	return out, nil
}

// multiFunction concatenates the single output of each element function,
// the read-side counterpart of an Array-of-Functions object.
type multiFunction struct {
	Functions []pdf.Function
}

func (f *multiFunction) FunctionType() int { return -1 }

func (f *multiFunction) Shape() (int, int) {
	if len(f.Functions) == 0 {
		return 0, 0
	}
	m, _ := f.Functions[0].Shape()
	return m, len(f.Functions)
}

func (f *multiFunction) GetDomain() []float64 {
	if len(f.Functions) == 0 {
		return nil
	}
	return f.Functions[0].GetDomain()
}

func (f *multiFunction) Apply(out []float64, in ...float64) {
	tmp := make([]float64, 1)
	for i, sub := range f.Functions {
		if i >= len(out) {
			break
		}
		sub.Apply(tmp, in...)
		out[i] = tmp[0]
	}
}
