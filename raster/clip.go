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

package raster

import "seehuhn.de/go/pdf/graphics"

// ClipMask is a per-pixel coverage mask in device space, used to restrict
// painting to the intersection of the current clip path(s) per PDF
// 32000-1:2008 8.5.4. It is built once when the W/W* operator's path is
// terminated by a painting operator, then consulted on every subsequent
// Fill/Stroke/DrawImage/DrawGlyph until the next q/Q restores the previous
// clip.
type ClipMask struct {
	width, height int
	cover         []float64 // row-major, one coverage value in [0,1] per pixel
}

// NewClipMask rasterizes path (already in device space) at 1x resolution
// using rule, producing a binary (0 or 1) coverage mask. Painter always
// builds clip masks at its SSAA working resolution, so the "binary" mask
// still anti-aliases once Downsample runs its box filter.
func NewClipMask(path *graphics.Path, rule FillRule, width, height int) *ClipMask {
	m := &ClipMask{width: width, height: height, cover: make([]float64, width*height)}
	lines := flattenPath(path)
	spans := scanFill(lines, rule, height)
	for y, rowSpans := range spans {
		for _, sp := range rowSpans {
			x0, x1 := clampInt(sp.x0, 0, width), clampInt(sp.x1, 0, width)
			for x := x0; x < x1; x++ {
				m.cover[y*width+x] = 1
			}
		}
	}
	return m
}

// at returns the clip coverage at device pixel (x, y): 1 inside the clip
// region, 0 outside, with no value outside the mask's own bounds.
func (m *ClipMask) at(x, y int) float64 {
	if m == nil {
		return 1
	}
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.cover[y*m.width+x]
}

// Intersect returns a new mask equal to the pixelwise minimum of m and
// other, implementing the PDF rule that nested clips intersect rather than
// replace (PDF 32000-1:2008 8.5.4: "the new clipping path ... shall be the
// intersection of the current clipping path with the newly constructed
// path").
func (m *ClipMask) Intersect(other *ClipMask) *ClipMask {
	if m == nil {
		return other
	}
	if other == nil {
		return m
	}
	out := &ClipMask{width: m.width, height: m.height, cover: make([]float64, len(m.cover))}
	for i := range out.cover {
		a, b := m.cover[i], other.cover[i]
		if a < b {
			out.cover[i] = a
		} else {
			out.cover[i] = b
		}
	}
	return out
}
