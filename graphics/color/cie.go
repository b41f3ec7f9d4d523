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

import "math"

// WhitePointD65 is the CIE 1931 XYZ coordinates of the D65 standard
// illuminant, the reference white of sRGB and most monitors.
var WhitePointD65 = [3]float64{0.95047, 1.00000, 1.08883}

// WhitePointD50 is the CIE 1931 XYZ coordinates of the D50 standard
// illuminant, the reference white PDF's CIE-based colour spaces and ICC
// profile connection space use.
var WhitePointD50 = [3]float64{0.9642, 1.0000, 0.8249}

// bradfordAdapt chromatically adapts an XYZ colour from one reference
// white to another using the Bradford cone-response transform, the method
// ICC profiles use for the profile connection space.
var bradfordM = [3][3]float64{
	{0.8951, 0.2664, -0.1614},
	{-0.7502, 1.7135, 0.0367},
	{0.0389, -0.0685, 1.0296},
}

var bradfordMInv = [3][3]float64{
	{0.9869929, -0.1470543, 0.1599627},
	{0.4323053, 0.5183603, 0.0492912},
	{-0.0085287, 0.0400428, 0.9684867},
}

func matVec(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func bradfordAdapt(X, Y, Z float64, srcWhite, dstWhite [3]float64) (float64, float64, float64) {
	src := matVec(bradfordM, srcWhite)
	dst := matVec(bradfordM, dstWhite)

	cone := matVec(bradfordM, [3]float64{X, Y, Z})
	cone[0] *= dst[0] / src[0]
	cone[1] *= dst[1] / src[1]
	cone[2] *= dst[2] / src[2]

	out := matVec(bradfordMInv, cone)
	return out[0], out[1], out[2]
}

// sRGB primaries, D65-relative linear RGB <-> XYZ matrices (IEC 61966-2-1).
var linearRGBtoXYZ65 = [3][3]float64{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

var xyz65toLinearRGB = [3][3]float64{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

func srgbCompand(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func srgbDecompand(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// srgbToXYZD50 converts sRGB-gamma-encoded components to D50-relative XYZ,
// the convention PDF's CIE-based colour spaces use for the profile
// connection space.
func srgbToXYZD50(r, g, b float64) (X, Y, Z float64) {
	lin := [3]float64{srgbDecompand(r), srgbDecompand(g), srgbDecompand(b)}
	xyz65 := matVec(linearRGBtoXYZ65, lin)
	return bradfordAdapt(xyz65[0], xyz65[1], xyz65[2], WhitePointD65, WhitePointD50)
}

// xyzToSRGB converts D50-relative XYZ to sRGB-gamma-encoded components,
// the exact inverse of srgbToXYZD50 (up to clamping to the sRGB gamut).
func xyzToSRGB(X, Y, Z float64) (r, g, b float64) {
	x65, y65, z65 := bradfordAdapt(X, Y, Z, WhitePointD50, WhitePointD65)
	lin := matVec(xyz65toLinearRGB, [3]float64{x65, y65, z65})
	return srgbCompand(clip01(lin[0])), srgbCompand(clip01(lin[1])), srgbCompand(clip01(lin[2]))
}

// toUint32 converts a [0,1] sample to the 16-bit range [image/color.Color]
// uses, clamping out-of-gamut values.
func toUint32(v float64) uint32 {
	v = clip01(v)
	return uint32(math.Round(v * 65535))
}

// xyzToRGBA is the [Color.RGBA] implementation shared by every CIE-based
// colour (CalGray, CalRGB, Lab, ICCBased): go through sRGB once, rather
// than reimplementing gamut mapping per colour space.
func xyzToRGBA(X, Y, Z float64) (r, g, b, a uint32) {
	rf, gf, bf := xyzToSRGB(X, Y, Z)
	return toUint32(rf), toUint32(gf), toUint32(bf), 0xffff
}
