// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
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

// Package color implements the PDF colour spaces (DeviceGray/RGB/CMYK,
// CalGray, CalRGB, Lab, ICCBased, Indexed, Separation, DeviceN and Pattern)
// needed to turn a content stream's colour operands into pixels.
package color

import stdcolor "image/color"

// Color is a colour in one of the colour spaces a PDF content stream can
// select. It extends [image/color.Color] so painter code can hand a Color
// straight to the standard library, and adds ToXYZ for colour-managed
// conversions (Lab, ICCBased, gamut mapping).
type Color interface {
	stdcolor.Color

	// ToXYZ returns the colour's CIE 1931 XYZ coordinates relative to the
	// D50 reference white, the white point PDF's CIE-based colour spaces
	// use internally.
	ToXYZ() (X, Y, Z float64)
}

// DeviceGray is a grey level in the device-dependent DeviceGray space,
// 0 (black) to 1 (white).
type DeviceGray float64

// RGBA implements [image/color.Color] by treating the gray level as an
// sRGB-gamma-encoded value.
func (c DeviceGray) RGBA() (r, g, b, a uint32) {
	v := toUint32(float64(c))
	return v, v, v, 0xffff
}

// ToXYZ implements [Color].
func (c DeviceGray) ToXYZ() (X, Y, Z float64) {
	return srgbToXYZD50(float64(c), float64(c), float64(c))
}

// DeviceRGB is a colour in the device-dependent, additive DeviceRGB space.
type DeviceRGB struct{ R, G, B float64 }

// RGBA implements [image/color.Color].
func (c DeviceRGB) RGBA() (r, g, b, a uint32) {
	return toUint32(c.R), toUint32(c.G), toUint32(c.B), 0xffff
}

// ToXYZ implements [Color].
func (c DeviceRGB) ToXYZ() (X, Y, Z float64) {
	return srgbToXYZD50(c.R, c.G, c.B)
}

// DeviceCMYK is a colour in the device-dependent, subtractive DeviceCMYK
// space.
type DeviceCMYK struct{ C, M, Y, K float64 }

// cmykToRGB applies the naive conversion PDF 32000-1:2008 10.4.2 uses as a
// substitution transform for an undefined device.
func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	r = 1 - minF(1, c+k)
	g = 1 - minF(1, m+k)
	b = 1 - minF(1, y+k)
	return
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// RGBA implements [image/color.Color].
func (c DeviceCMYK) RGBA() (r, g, b, a uint32) {
	rf, gf, bf := cmykToRGB(c.C, c.M, c.Y, c.K)
	return toUint32(rf), toUint32(gf), toUint32(bf), 0xffff
}

// ToXYZ implements [Color].
func (c DeviceCMYK) ToXYZ() (X, Y, Z float64) {
	rf, gf, bf := cmykToRGB(c.C, c.M, c.Y, c.K)
	return srgbToXYZD50(rf, gf, bf)
}

// SRGB builds a [Color] directly from sRGB-gamma-encoded components,
// equivalent to an ICCBased colour using the built-in sRGB profile.
func SRGB(r, g, b float64) Color {
	return DeviceRGB{r, g, b}
}
