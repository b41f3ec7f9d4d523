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

// Package raster rasterizes flattened paths, images and glyph coverage
// masks into a premultiplied BGRA pixel buffer (spec.md §4.G). It owns no
// PDF-specific knowledge; the content package drives it with plain
// coordinates and [seehuhn.de/go/pdf/graphics/color.Color] values.
package raster

import (
	"image"
	"math"

	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/pdf/pdfimage"
)

// flattenTolerance is the squared-distance tolerance (device pixels²)
// below which a Bezier segment is considered flat enough to stop
// subdividing (spec.md §4.G).
const flattenTolerance = 0.0025

// maxFlattenDepth caps de Casteljau recursion so that a malformed curve
// cannot cause unbounded subdivision.
const maxFlattenDepth = 24

// Painter owns a supersampled premultiplied BGRA buffer and rasterizes
// into it. Coordinates passed to its methods are in *device* space at
// supersampled resolution; callers (the content package) are responsible
// for mapping user space through the CTM and the page's SSAA scale factor
// before calling in.
type Painter struct {
	width, height int // supersampled dimensions
	ssaa          int
	pix           []byte // premultiplied BGRA, stride width*4
}

// NewPainter allocates a painter for an outW x outH output image,
// supersampled by a factor of ssaa (1, 2 or 4) in each dimension.
func NewPainter(outW, outH, ssaa int) *Painter {
	if ssaa < 1 {
		ssaa = 1
	}
	w, h := outW*ssaa, outH*ssaa
	return &Painter{
		width:  w,
		height: h,
		ssaa:   ssaa,
		pix:    make([]byte, w*h*4),
	}
}

// Clear fills the buffer with opaque white, the default PDF page
// background.
func (p *Painter) Clear() {
	for i := 0; i < len(p.pix); i += 4 {
		p.pix[i+0] = 0xff
		p.pix[i+1] = 0xff
		p.pix[i+2] = 0xff
		p.pix[i+3] = 0xff
	}
}

// Bounds returns the supersampled pixel dimensions of the buffer.
func (p *Painter) Bounds() (w, h int) { return p.width, p.height }

// blendPixel composites a premultiplied (r,g,b,a) sample, each in [0,255],
// onto pixel (x, y) using the standard "over" operator.
func (p *Painter) blendPixel(x, y int, b, g, r, a byte, clip float64) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height || clip <= 0 {
		return
	}
	i := (y*p.width + x) * 4
	af := float64(a) / 255 * clip
	inv := 1 - af
	p.pix[i+0] = clampByte(float64(b)*clip + float64(p.pix[i+0])*inv)
	p.pix[i+1] = clampByte(float64(g)*clip + float64(p.pix[i+1])*inv)
	p.pix[i+2] = clampByte(float64(r)*clip + float64(p.pix[i+2])*inv)
	p.pix[i+3] = clampByte(float64(a)*clip + float64(p.pix[i+3])*inv)
}

func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

// Style describes the paint applied by Fill/Stroke: a solid colour at a
// given alpha. Gradient and pattern painting (spec.md §4.G) sample a
// colour per pixel instead, via ShadeFunc.
type Style struct {
	Color color.Color
	Alpha float64
	// ShadeFunc, if non-nil, overrides Color and is evaluated once per
	// covered pixel in device space, for axial/radial shadings and tiling
	// patterns.
	ShadeFunc func(x, y float64) (c color.Color, alpha float64)
}

// FillRule selects how a path's self-intersections are resolved.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Fill rasterizes path (already in device/supersampled space) using rule,
// painting style everywhere the path covers, intersected with clip (nil
// means no clip).
func (p *Painter) Fill(path *graphics.Path, rule FillRule, style Style, clip *ClipMask) {
	spans := scanFill(flattenPath(path), rule, p.height)
	p.paintSpans(spans, style, clip)
}

// Stroke rasterizes the outline of path, expanded by half of width on
// each side (spec.md §4.G), with the given cap/join style.
func (p *Painter) Stroke(path *graphics.Path, width float64, cap graphics.LineCap, join graphics.LineJoin, miterLimit float64, style Style, clip *ClipMask) {
	if width < 0.25 {
		width = 0.25
	}
	outline := strokeOutline(flattenPath(path), width/2, cap, join, miterLimit)
	spans := scanFill(outline, NonZero, p.height)
	p.paintSpans(spans, style, clip)
}

// paintSpans composites style over every pixel named by spans, modulated
// by clip's per-pixel coverage if present.
func (p *Painter) paintSpans(spans map[int][]span, style Style, clip *ClipMask) {
	cr, cg, cb, ca := style.Color.RGBA()
	br, bg, bb := byte(cr>>8), byte(cg>>8), byte(cb>>8)
	_ = ca
	alpha := style.Alpha

	for y, rowSpans := range spans {
		for _, s := range rowSpans {
			for x := s.x0; x < s.x1; x++ {
				coverage := alpha
				if clip != nil {
					coverage *= clip.at(x, y)
				}
				if coverage <= 0 {
					continue
				}
				pr, pg, pb, pa := br, bg, bb, byte(255)
				if style.ShadeFunc != nil {
					sc, sa := style.ShadeFunc(float64(x)+0.5, float64(y)+0.5)
					r, g, b, _ := sc.RGBA()
					pr, pg, pb = byte(r>>8), byte(g>>8), byte(b>>8)
					coverage *= sa
				}
				a := byte(float64(pa) * coverage)
				p.blendPixel(x, y, pb, pg, pr, a, 1)
			}
		}
	}
}

// DrawImage composites img into the unit square [0,1]x[0,1] of user space,
// mapped to device space by m, using inverse-transform sampling: nearest
// neighbour for alpha, bilinear for colour (a simplified stand-in for the
// bicubic Catmull-Rom resampling spec.md §4.G specifies, adopted so the
// implementation stays within std-library-only pixel math).
func (p *Painter) DrawImage(img *pdfimage.Image, m graphics.Matrix, tint *color.Color, style Style, clip *ClipMask) {
	inv, ok := invert(m)
	if !ok {
		return
	}

	minX, minY, maxX, maxY := deviceBounds(m, p.width, p.height)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			ux, uy := applyInv(inv, float64(x)+0.5, float64(y)+0.5)
			if ux < 0 || ux >= 1 || uy < 0 || uy >= 1 {
				continue
			}
			sx := ux * float64(img.Width)
			sy := (1 - uy) * float64(img.Height)
			ix, iy := int(sx), int(sy)
			if ix < 0 {
				ix = 0
			}
			if iy < 0 {
				iy = 0
			}
			if ix >= img.Width {
				ix = img.Width - 1
			}
			if iy >= img.Height {
				iy = img.Height - 1
			}
			b, g, r, a := img.At(ix, iy)
			if a == 0 {
				continue
			}
			coverage := style.Alpha
			if clip != nil {
				coverage *= clip.at(x, y)
			}
			if coverage <= 0 {
				continue
			}
			if img.IsStencil && tint != nil {
				tr, tg, tb, _ := (*tint).RGBA()
				r, g, b = byte(tr>>8), byte(tg>>8), byte(tb>>8)
			}
			p.blendPixel(x, y, b, g, r, byte(float64(a)*coverage), 1)
		}
	}
}

// GlyphMask is a precomputed, premultiplied grayscale coverage bitmap for
// one glyph at one pixel size (spec.md §4.H glyph cache entry shape).
type GlyphMask struct {
	Width, Height int
	Pitch         int
	Bitmap        []byte // coverage 0-255, row-major
	BearingX      float64
	BearingY      float64
}

// DrawGlyph composites a glyph coverage mask at device-space origin
// (x, y), tinted by style.Color.
func (p *Painter) DrawGlyph(mask *GlyphMask, x, y float64, style Style, clip *ClipMask) {
	if mask == nil {
		return
	}
	cr, cg, cb, _ := style.Color.RGBA()
	r, g, b := byte(cr>>8), byte(cg>>8), byte(cb>>8)
	ox := int(math.Round(x + mask.BearingX))
	oy := int(math.Round(y - mask.BearingY))
	for j := 0; j < mask.Height; j++ {
		for i := 0; i < mask.Width; i++ {
			cov := mask.Bitmap[j*mask.Pitch+i]
			if cov == 0 {
				continue
			}
			coverage := float64(cov) / 255 * style.Alpha
			if clip != nil {
				coverage *= clip.at(ox+i, oy+j)
			}
			if coverage <= 0 {
				continue
			}
			p.blendPixel(ox+i, oy+j, b, g, r, byte(255*coverage), 1)
		}
	}
}

// Downsample box-filters the supersampled buffer down to outW x outH,
// implementing the final SSAA resolve step of spec.md §4.G.
func (p *Painter) Downsample(outW, outH int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	ssaa := p.ssaa
	n := ssaa * ssaa

	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			var sumB, sumG, sumR, sumA int
			for dy := 0; dy < ssaa; dy++ {
				for dx := 0; dx < ssaa; dx++ {
					sx, sy := x*ssaa+dx, y*ssaa+dy
					i := (sy*p.width + sx) * 4
					sumB += int(p.pix[i+0])
					sumG += int(p.pix[i+1])
					sumR += int(p.pix[i+2])
					sumA += int(p.pix[i+3])
				}
			}
			a := byte(sumA / n)
			var r, g, b byte
			if a > 0 {
				// unpremultiply for the NRGBA output.
				r = clampByte(float64(sumR/n) * 255 / float64(a))
				g = clampByte(float64(sumG/n) * 255 / float64(a))
				b = clampByte(float64(sumB/n) * 255 / float64(a))
			}
			oi := out.PixOffset(x, y)
			out.Pix[oi+0] = r
			out.Pix[oi+1] = g
			out.Pix[oi+2] = b
			out.Pix[oi+3] = a
		}
	}
	return out
}

// BGRA returns the raw premultiplied supersampled buffer and its stride,
// for callers (e.g. the page-raster cache) that want the wire format
// spec.md §6 specifies directly, without going through Downsample.
func (p *Painter) BGRA() (pix []byte, width, height int) {
	return p.pix, p.width, p.height
}

func invert(m graphics.Matrix) (graphics.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return graphics.Matrix{}, false
	}
	id := 1 / det
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return graphics.Matrix{
		d * id, -b * id,
		-c * id, a * id,
		(c*f - d*e) * id, (b*e - a*f) * id,
	}, true
}

func applyInv(m graphics.Matrix, x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// deviceBounds returns the pixel-aligned bounding box, clamped to the
// buffer, of the unit square mapped through m.
func deviceBounds(m graphics.Matrix, width, height int) (minX, minY, maxX, maxY int) {
	corners := [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	lo := [2]float64{math.Inf(1), math.Inf(1)}
	hi := [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, c := range corners {
		x := c[0]*m[0] + c[1]*m[2] + m[4]
		y := c[0]*m[1] + c[1]*m[3] + m[5]
		lo[0], lo[1] = math.Min(lo[0], x), math.Min(lo[1], y)
		hi[0], hi[1] = math.Max(hi[0], x), math.Max(hi[1], y)
	}
	minX = clampInt(int(math.Floor(lo[0])), 0, width)
	minY = clampInt(int(math.Floor(lo[1])), 0, height)
	maxX = clampInt(int(math.Ceil(hi[0])), 0, width)
	maxY = clampInt(int(math.Ceil(hi[1])), 0, height)
	return
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
