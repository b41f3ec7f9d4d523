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

// Package pdfimage decodes Image XObjects (PDF 32000-1:2008 8.9.5) into
// premultiplied BGRA pixel buffers, the form the raster package composites
// directly.
package pdfimage

import (
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics/color"
)

// Image is a decoded raster image, ready for sampling: premultiplied BGRA,
// row-major, stride Width*4, matching spec.md's external pixel format.
type Image struct {
	Width, Height int
	Pix           []byte

	// IsStencil marks an /ImageMask image: Pix holds only the alpha
	// channel (BGR left at zero) and the caller is expected to paint the
	// current non-stroking colour through it rather than use Pix's own
	// colour.
	IsStencil bool
}

// At returns the premultiplied BGRA pixel at (x, y).
func (img *Image) At(x, y int) (b, g, r, a byte) {
	i := (y*img.Width + x) * 4
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

// Decode reads an Image XObject stream and its resolved colour space,
// implementing spec.md §4.B: it reads the image's dimensions and sample
// format, runs its filter chain (JPX/DCT streams are decoded by their own
// filter and handed through unchanged at the byte level, since this module
// carries no JPEG/JPEG2000 decoder), unpacks samples according to
// /BitsPerComponent, maps them through /Decode and the colour space to
// 8-bit RGB, and applies any /SMask or colour-key /Mask before
// premultiplying alpha exactly once.
func Decode(r pdf.Getter, stream *pdf.Stream, resources pdf.Dict) (*Image, error) {
	dict := stream.Dict

	width, err := pdf.GetInteger(r, dict["Width"])
	if err != nil || width <= 0 {
		return nil, pdf.Errorf("pdfimage: missing or invalid /Width")
	}
	height, err := pdf.GetInteger(r, dict["Height"])
	if err != nil || height <= 0 {
		return nil, pdf.Errorf("pdfimage: missing or invalid /Height")
	}
	w, h := int(width), int(height)

	isMask, _ := pdf.GetBoolean(r, dict["ImageMask"])

	body, err := pdf.DecodeStream(r, stream, 0)
	if err != nil {
		return nil, &pdf.FilterError{Err: err}
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &pdf.FilterError{Err: err}
	}

	if bool(isMask) {
		return decodeStencilMask(raw, w, h, dict, r)
	}

	bpc, err := pdf.GetInteger(r, dict["BitsPerComponent"])
	if err != nil || bpc == 0 {
		bpc = 8
	}

	var space color.Space
	if csObj, ok := dict["ColorSpace"]; ok {
		space, err = resolveImageSpace(r, csObj, resources)
		if err != nil || space == nil {
			space = color.SpaceDeviceGray
		}
	} else {
		space = color.SpaceDeviceGray
	}
	n := space.NumComponents()

	decodeArr, _ := pdf.GetFloatArray(r, dict["Decode"])

	out := &Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}

	rowBits := w * n * int(bpc)
	rowBytes := (rowBits + 7) / 8
	br := &bitReader{}

	for y := 0; y < h; y++ {
		rowStart := y * rowBytes
		if rowStart+rowBytes > len(raw) {
			break
		}
		br.reset(raw[rowStart : rowStart+rowBytes])
		for x := 0; x < w; x++ {
			values := make([]float64, n)
			for c := 0; c < n; c++ {
				sample := br.read(int(bpc))
				maxVal := float64((uint32(1) << uint(bpc)) - 1)
				v := float64(sample) / maxVal
				if len(decodeArr) >= 2*(c+1) {
					lo, hi := decodeArr[2*c], decodeArr[2*c+1]
					v = lo + v*(hi-lo)
				} else if _, isIndexed := space.(*color.SpaceIndexed); isIndexed {
					v = float64(sample)
				}
				values[c] = v
			}
			col, err := space.NewColor(values)
			if err != nil {
				continue
			}
			cr, cg, cb, _ := col.RGBA()
			i := (y*w + x) * 4
			out.Pix[i+0] = byte(cb >> 8)
			out.Pix[i+1] = byte(cg >> 8)
			out.Pix[i+2] = byte(cr >> 8)
			out.Pix[i+3] = 0xff
		}
	}

	if smaskObj, ok := dict["SMask"]; ok {
		if smStream, err := pdf.GetStream(r, smaskObj); err == nil && smStream != nil {
			applySMask(r, out, smStream)
		}
	} else if maskObj, ok := dict["Mask"]; ok {
		if arr, err := pdf.GetArray(r, maskObj); err == nil && arr != nil {
			applyColorKeyMask(r, out, raw, rowBytes, int(bpc), n, arr)
		} else if mkStream, err := pdf.GetStream(r, maskObj); err == nil && mkStream != nil {
			applyStencilAsMask(r, out, mkStream)
		}
	}

	premultiply(out)

	return out, nil
}

// resolveImageSpace looks up a colour space that may be named directly or
// via the page's /Resources /ColorSpace dictionary.
func resolveImageSpace(r pdf.Getter, obj pdf.Object, resources pdf.Dict) (color.Space, error) {
	if name, ok := obj.(pdf.Name); ok {
		switch name {
		case "DeviceGray", "DeviceRGB", "DeviceCMYK", "Pattern":
			// fall through to ExtractSpace, which already handles the
			// device names directly.
		default:
			if resources != nil {
				if csDict, err := pdf.GetDict(r, resources["ColorSpace"]); err == nil && csDict != nil {
					if entry, ok := csDict[name]; ok {
						return color.ExtractSpace(r, entry)
					}
				}
			}
		}
	}
	return color.ExtractSpace(r, obj)
}

// decodeStencilMask handles /ImageMask true images: a 1-bit stencil where
// set bits (or clear, if /Decode is [1 0]) mark painted pixels. The
// current non-stroking colour is supplied by the caller at composite time,
// so here we only record coverage as the alpha channel.
func decodeStencilMask(raw []byte, w, h int, dict pdf.Dict, r pdf.Getter) (*Image, error) {
	decodeArr, _ := pdf.GetFloatArray(r, dict["Decode"])
	invert := len(decodeArr) >= 2 && decodeArr[0] == 1

	rowBytes := (w + 7) / 8
	out := &Image{Width: w, Height: h, Pix: make([]byte, w*h*4), IsStencil: true}

	for y := 0; y < h; y++ {
		rowStart := y * rowBytes
		if rowStart+rowBytes > len(raw) {
			break
		}
		for x := 0; x < w; x++ {
			byteIdx := rowStart + x/8
			bit := (raw[byteIdx] >> (7 - uint(x%8))) & 1
			painted := bit == 0
			if invert {
				painted = !painted
			}
			if painted {
				out.Pix[(y*w+x)*4+3] = 0xff
			}
		}
	}
	return out, nil
}

// applySMask blends a grayscale soft mask into the alpha channel of img,
// resampling by nearest neighbour if the mask's resolution differs from
// img's (PDF 32000-1:2008 11.6.5.3).
func applySMask(r pdf.Getter, img *Image, smStream *pdf.Stream) {
	mask, err := Decode(r, smStream, nil)
	if err != nil {
		return
	}
	for y := 0; y < img.Height; y++ {
		my := y * mask.Height / img.Height
		for x := 0; x < img.Width; x++ {
			mx := x * mask.Width / img.Width
			_, _, _, a := mask.At(mx, my)
			// the soft mask is decoded as a grayscale colour image; its
			// blue channel (== red == green, since DeviceGray) carries the
			// luminosity used as alpha.
			b, _, _, _ := mask.At(mx, my)
			_ = a
			i := (y*img.Width + x) * 4
			img.Pix[i+3] = b
		}
	}
}

// applyStencilAsMask uses a 1-bit /Mask stream the same way an SMask's
// alpha channel is used, but without interpolation (PDF 32000-1:2008
// 8.9.6.2): masked-out pixels become fully transparent.
func applyStencilAsMask(r pdf.Getter, img *Image, mkStream *pdf.Stream) {
	mask, err := Decode(r, mkStream, nil)
	if err != nil {
		return
	}
	for y := 0; y < img.Height; y++ {
		my := y * mask.Height / img.Height
		for x := 0; x < img.Width; x++ {
			mx := x * mask.Width / img.Width
			_, _, _, a := mask.At(mx, my)
			i := (y*img.Width + x) * 4
			if a != 0 {
				img.Pix[i+3] = 0
			}
		}
	}
}

// applyColorKeyMask implements the /Mask array form: ranges of raw sample
// values (before colour-space conversion) that are treated as transparent
// (PDF 32000-1:2008 8.9.6.4).
func applyColorKeyMask(r pdf.Getter, img *Image, raw []byte, rowBytes, bpc, n int, ranges []pdf.Object) {
	if len(ranges) < 2*n {
		return
	}
	lo := make([]int, n)
	hi := make([]int, n)
	for c := 0; c < n; c++ {
		loV, _ := pdf.GetInteger(r, ranges[2*c])
		hiV, _ := pdf.GetInteger(r, ranges[2*c+1])
		lo[c], hi[c] = int(loV), int(hiV)
	}

	br := &bitReader{}
	for y := 0; y < img.Height; y++ {
		rowStart := y * rowBytes
		if rowStart+rowBytes > len(raw) {
			break
		}
		br.reset(raw[rowStart : rowStart+rowBytes])
		for x := 0; x < img.Width; x++ {
			masked := true
			for c := 0; c < n; c++ {
				sample := int(br.read(bpc))
				if sample < lo[c] || sample > hi[c] {
					masked = false
				}
			}
			if masked {
				img.Pix[(y*img.Width+x)*4+3] = 0
			}
		}
	}
}

// premultiply converts img.Pix from straight to premultiplied alpha,
// exactly once, as the final step of decoding.
func premultiply(img *Image) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 0xff || a == 0 {
			if a == 0 {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0, 0, 0
			}
			continue
		}
		for c := 0; c < 3; c++ {
			v := uint32(img.Pix[i+c])
			img.Pix[i+c] = byte(v * a / 0xff)
		}
	}
}

// bitReader reads fixed-width big-endian bitfields from a byte slice, as
// required for unpacking 1/2/4-bit sample image rows.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func (br *bitReader) reset(data []byte) {
	br.data = data
	br.pos = 0
}

func (br *bitReader) read(bits int) uint32 {
	var v uint32
	for i := 0; i < bits; i++ {
		byteIdx := br.pos / 8
		if byteIdx >= len(br.data) {
			v <<= uint(bits - i)
			break
		}
		bitIdx := 7 - uint(br.pos%8)
		bit := (br.data[byteIdx] >> bitIdx) & 1
		v = v<<1 | uint32(bit)
		br.pos++
	}
	return v
}
