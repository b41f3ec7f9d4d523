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
	"io"
	"reflect"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/function"
)

// ExtractSpace reads a PDF colour space object (PDF 32000-1:2008 8.6) and
// returns the matching [Space] implementation. obj may be a Name (one of
// the device families, or Pattern with no base) or an Array (CalGray,
// CalRGB, Lab, ICCBased, Indexed, Separation, DeviceN, Pattern with a base).
func ExtractSpace(r pdf.Getter, obj pdf.Object) (Space, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	if name, ok := resolved.(pdf.Name); ok {
		switch name {
		case "DeviceGray", "CalGray", "G":
			return SpaceDeviceGray, nil
		case "DeviceRGB", "RGB":
			return SpaceDeviceRGB, nil
		case "DeviceCMYK", "CMYK":
			return SpaceDeviceCMYK, nil
		case "Pattern":
			return PatternColoredSpace, nil
		default:
			return nil, pdf.Errorf("color: unknown colour space name %q", name)
		}
	}

	arr, ok := resolved.(pdf.Array)
	if !ok || len(arr) == 0 {
		return nil, pdf.Errorf("color: malformed colour space object")
	}
	family, _ := pdf.GetName(r, arr[0])

	switch family {
	case "CalGray":
		dict, err := pdf.GetDict(r, arr[1])
		if err != nil {
			return nil, err
		}
		return extractCalGray(r, dict)
	case "CalRGB":
		dict, err := pdf.GetDict(r, arr[1])
		if err != nil {
			return nil, err
		}
		return extractCalRGB(r, dict)
	case "Lab":
		dict, err := pdf.GetDict(r, arr[1])
		if err != nil {
			return nil, err
		}
		return extractLab(r, dict)
	case "ICCBased":
		stream, err := pdf.GetStream(r, arr[1])
		if err != nil {
			return nil, err
		}
		body, err := pdf.DecodeStream(r, stream, 0)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		var alt Space
		if altObj, ok := stream.Dict["Alternate"]; ok {
			alt, err = ExtractSpace(r, altObj)
			if err != nil {
				return nil, err
			}
		}
		return ICCBased(data, alt)
	case "Indexed":
		base, err := ExtractSpace(r, arr[1])
		if err != nil {
			return nil, err
		}
		hival, _ := pdf.GetInteger(r, arr[2])
		var lookup []byte
		switch l := arr[3].(type) {
		case pdf.String:
			lookup = []byte(l)
		default:
			if stream, err := pdf.GetStream(r, arr[3]); err == nil {
				body, err := pdf.DecodeStream(r, stream, 0)
				if err != nil {
					return nil, err
				}
				lookup, err = io.ReadAll(body)
				if err != nil {
					return nil, err
				}
			}
		}
		n := base.NumComponents()
		palette := make([]Color, 0, int(hival)+1)
		for i := 0; i <= int(hival) && (i+1)*n <= len(lookup); i++ {
			values := make([]float64, n)
			for j := 0; j < n; j++ {
				values[j] = float64(lookup[i*n+j]) / 255
			}
			c, err := base.NewColor(values)
			if err != nil {
				return nil, err
			}
			palette = append(palette, c)
		}
		return Indexed(palette)
	case "Separation":
		name, _ := pdf.GetName(r, arr[1])
		alt, err := ExtractSpace(r, arr[2])
		if err != nil {
			return nil, err
		}
		fn, err := function.Extract(r, arr[3])
		if err != nil {
			return nil, err
		}
		return Separation(name, alt, fn)
	case "DeviceN":
		names, err := pdf.GetArray(r, arr[1])
		if err != nil {
			return nil, err
		}
		pdfNames := make([]pdf.Name, len(names))
		for i, n := range names {
			pdfNames[i], _ = pdf.GetName(r, n)
		}
		alt, err := ExtractSpace(r, arr[2])
		if err != nil {
			return nil, err
		}
		fn, err := function.Extract(r, arr[3])
		if err != nil {
			return nil, err
		}
		var attrs pdf.Dict
		if len(arr) > 4 {
			attrs, _ = pdf.GetDict(r, arr[4])
		}
		return DeviceN(pdfNames, alt, fn, attrs)
	case "Pattern":
		if len(arr) < 2 {
			return PatternColoredSpace, nil
		}
		base, err := ExtractSpace(r, arr[1])
		if err != nil {
			return nil, err
		}
		return PatternUncoloredSpace(base), nil
	default:
		return nil, pdf.Errorf("color: unsupported colour space family %q", family)
	}
}

func extractCalGray(r pdf.Getter, dict pdf.Dict) (Space, error) {
	wp, err := pdf.GetFloatArray(r, dict["WhitePoint"])
	if err != nil || len(wp) != 3 {
		return nil, pdf.Errorf("color: malformed CalGray WhitePoint")
	}
	bp, _ := pdf.GetFloatArray(r, dict["BlackPoint"])
	gamma, _ := pdf.GetNumber(r, dict["Gamma"])
	return CalGray([3]float64{wp[0], wp[1], wp[2]}, bp, float64(gamma))
}

func extractCalRGB(r pdf.Getter, dict pdf.Dict) (Space, error) {
	wp, err := pdf.GetFloatArray(r, dict["WhitePoint"])
	if err != nil || len(wp) != 3 {
		return nil, pdf.Errorf("color: malformed CalRGB WhitePoint")
	}
	bp, _ := pdf.GetFloatArray(r, dict["BlackPoint"])
	gamma, _ := pdf.GetFloatArray(r, dict["Gamma"])
	matrix, _ := pdf.GetFloatArray(r, dict["Matrix"])
	return CalRGB([3]float64{wp[0], wp[1], wp[2]}, bp, gamma, matrix)
}

func extractLab(r pdf.Getter, dict pdf.Dict) (Space, error) {
	wp, err := pdf.GetFloatArray(r, dict["WhitePoint"])
	if err != nil || len(wp) != 3 {
		return nil, pdf.Errorf("color: malformed Lab WhitePoint")
	}
	bp, _ := pdf.GetFloatArray(r, dict["BlackPoint"])
	rng, _ := pdf.GetFloatArray(r, dict["Range"])
	return Lab([3]float64{wp[0], wp[1], wp[2]}, bp, rng)
}

// SpacesEqual reports whether two colour spaces describe the same
// conversion to device colour. Function-valued fields (Separation and
// DeviceN tint transforms) compare by deep equality of their underlying
// function, not by identity.
func SpacesEqual(a, b Space) bool {
	return reflect.DeepEqual(a, b)
}
