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

// Package engine is the rendering façade (spec.md §4.I): it opens a
// document, walks its page tree, and drives the content and raster
// packages to produce a page bitmap, sharing font-face, glyph and
// page-raster caches across every document opened in the process.
package engine

import (
	"errors"
	"image"
	"reflect"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/cache"
	"seehuhn.de/go/pdf/content"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/raster"
)

// Engine owns the caches shared by every document it opens: one font-face
// cache, one glyph cache, and one page-raster cache, matching spec.md
// §4.H's "process-wide, not per-document" cache scope.
type Engine struct {
	Faces  *cache.FontFaceCache
	Glyphs *cache.GlyphCache
	Pages  *cache.PageRasterCache
}

// New returns an Engine with freshly allocated caches.
func New() *Engine {
	return &Engine{
		Faces:  cache.NewFontFaceCache(100),
		Glyphs: cache.NewGlyphCache(),
		Pages:  cache.NewPageRasterCache(),
	}
}

// Handle is one opened document, ready to have its pages rendered.
type Handle struct {
	engine *Engine
	doc    *pdf.Document
	docID  uintptr
}

// Open parses data as a PDF file and returns a Handle for rendering its
// pages. opts follows pdf.Open's conventions directly (ReadPassword for
// encrypted files, DebugLog for recovered-parse-error reporting).
func (e *Engine) Open(data []byte, opts *pdf.Options) (*Handle, error) {
	doc, err := pdf.Open(data, opts)
	if err != nil {
		return nil, err
	}
	return &Handle{engine: e, doc: doc, docID: reflect.ValueOf(doc).Pointer()}, nil
}

// PageCount returns the number of pages in the document.
func (h *Handle) PageCount() (int, error) {
	return h.doc.PageCount()
}

// PageSize returns the rotation-aware visible size, in points, of the
// index'th page (0-based).
func (h *Handle) PageSize(index int) (width, height float64, err error) {
	pageDict, err := h.doc.PageDictionary(index)
	if err != nil {
		return 0, 0, err
	}
	w, hgt, _, err := h.doc.PageSize(pageDict)
	return w, hgt, err
}

// Render rasterizes the index'th page at the given supersampling factor
// (1 for no SSAA, 2 or 4 for smoother anti-aliasing) and returns the
// resolved, box-filtered RGBA image (spec.md §4.G/§4.I).
//
// A hit in the engine's page-raster cache is served without touching the
// content or raster packages at all, at the cost of only ever returning
// the bitmap that was cached for this exact (page, pixel size) pair — a
// later re-render at a different size always misses and rasterizes fresh.
func (h *Handle) Render(index int, ssaa int) (*image.NRGBA, error) {
	if ssaa < 1 {
		ssaa = 1
	}

	pageDict, err := h.doc.PageDictionary(index)
	if err != nil {
		return nil, err
	}
	box, rotate, err := h.doc.PageBox(pageDict)
	if err != nil {
		return nil, err
	}
	outW, outH := pageOutputSize(box, rotate)
	if outW <= 0 || outH <= 0 {
		return nil, errors.New("engine: degenerate page size")
	}

	key := cache.PageKey{DocID: h.docID, PageIndex: index, Width: outW, Height: outH}
	if bmp, ok := h.engine.Pages.Get(key); ok {
		return bgraToNRGBA(bmp.BGRA, outW, outH), nil
	}

	resources, err := h.doc.PageResources(pageDict)
	if err != nil {
		return nil, err
	}
	contentBytes, err := h.doc.PageContents(pageDict)
	if err != nil {
		return nil, err
	}

	painter := raster.NewPainter(outW, outH, ssaa)
	painter.Clear()

	base := pageDeviceMatrix(box, rotate, outW, outH, ssaa)
	proc := content.NewProcessor(h.doc, resources, painter, base)
	if err := proc.Run(contentBytes); err != nil {
		return nil, &pdf.RenderError{Op: "content stream", Err: err}
	}

	img := painter.Downsample(outW, outH)
	h.engine.Pages.Put(key, &cache.PageBitmap{BGRA: nrgbaToBGRA(img), Zoom: 1})

	return img, nil
}

// pageOutputSize returns the 1x (non-supersampled) pixel dimensions of a
// rendered page, one pixel per point, with width/height swapped for a
// sideways /Rotate.
func pageOutputSize(box *pdf.Rectangle, rotate int) (w, h int) {
	bw, bh := box.Dx(), box.Dy()
	if rotate == 90 || rotate == 270 {
		bw, bh = bh, bw
	}
	return int(bw + 0.5), int(bh + 0.5)
}

// pageDeviceMatrix builds the transform from the page's default user space
// to device pixels at outW x outH x ssaa resolution, folding together the
// box origin, the /Rotate-mandated clockwise rotation (PDF 32000-1:2008
// 7.7.3.3), the PDF-to-image Y flip, and the supersampling scale.
func pageDeviceMatrix(box *pdf.Rectangle, rotate, outW, outH, ssaa int) graphics.Matrix {
	bw, bh := box.Dx(), box.Dy()

	toOrigin := graphics.Matrix{1, 0, 0, 1, -box.LLx, -box.LLy}

	var rot graphics.Matrix
	var shiftE, shiftF float64
	switch rotate {
	case 90:
		rot = graphics.Matrix{0, -1, 1, 0, 0, 0}
		shiftF = bw
	case 180:
		rot = graphics.Matrix{-1, 0, 0, -1, 0, 0}
		shiftE, shiftF = bw, bh
	case 270:
		rot = graphics.Matrix{0, 1, -1, 0, 0, 0}
		shiftE = bh
	default:
		rot = graphics.Matrix{1, 0, 0, 1, 0, 0}
	}
	shift := graphics.Matrix{1, 0, 0, 1, shiftE, shiftF}

	flip := graphics.Matrix{1, 0, 0, -1, 0, float64(outH)}
	scale := graphics.Matrix{float64(ssaa), 0, 0, float64(ssaa), 0, 0}

	m := concat(toOrigin, rot)
	m = concat(m, shift)
	m = concat(m, flip)
	m = concat(m, scale)
	return m
}

func concat(a, b graphics.Matrix) graphics.Matrix {
	return graphics.Matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// bgraToNRGBA unpremultiplies a cached premultiplied BGRA buffer into a
// straight-alpha image.NRGBA for the caller.
func bgraToNRGBA(pix []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pix) && i/4 < w*h; i += 4 {
		b, g, r, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		oi := i
		if a > 0 {
			out.Pix[oi+0] = byte(uint32(r) * 255 / uint32(a))
			out.Pix[oi+1] = byte(uint32(g) * 255 / uint32(a))
			out.Pix[oi+2] = byte(uint32(b) * 255 / uint32(a))
		}
		out.Pix[oi+3] = a
	}
	return out
}

// nrgbaToBGRA premultiplies a straight-alpha image.NRGBA into the BGRA
// layout the page-raster cache stores (spec.md §6's external wire format).
func nrgbaToBGRA(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r, g, b, a := img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
			oi := (y*w + x) * 4
			out[oi+0] = byte(uint32(b) * uint32(a) / 255)
			out[oi+1] = byte(uint32(g) * uint32(a) / 255)
			out[oi+2] = byte(uint32(r) * uint32(a) / 255)
			out[oi+3] = a
		}
	}
	return out
}
