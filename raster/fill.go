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

import (
	"math"
	"sort"

	"seehuhn.de/go/pdf/graphics"
)

// polyline is one flattened, closed-or-open subpath: straight-line
// vertices only, Beziers already subdivided.
type polyline struct {
	points []graphics.Point
	closed bool
}

// flattenPath converts a Path's curves to polylines via recursive de
// Casteljau subdivision (spec.md §4.G), stopping each subdivision once the
// squared deviation from a straight chord falls below flattenTolerance or
// maxFlattenDepth is reached.
func flattenPath(path *graphics.Path) []polyline {
	if path.IsEmpty() {
		return nil
	}

	var result []polyline
	var cur *polyline
	var start, pos graphics.Point

	flush := func() {
		if cur != nil && len(cur.points) > 1 {
			result = append(result, *cur)
		}
		cur = nil
	}

	for _, seg := range path.Segments {
		switch seg.Op {
		case graphics.MoveTo:
			flush()
			cur = &polyline{points: []graphics.Point{seg.Points[0]}}
			start = seg.Points[0]
			pos = seg.Points[0]
		case graphics.LineTo:
			if cur == nil {
				cur = &polyline{points: []graphics.Point{pos}}
				start = pos
			}
			cur.points = append(cur.points, seg.Points[0])
			pos = seg.Points[0]
		case graphics.CurveTo:
			if cur == nil {
				cur = &polyline{points: []graphics.Point{pos}}
				start = pos
			}
			flattenCubic(pos, seg.Points[0], seg.Points[1], seg.Points[2], 0, func(p graphics.Point) {
				cur.points = append(cur.points, p)
			})
			pos = seg.Points[2]
		case graphics.Close:
			if cur != nil {
				cur.points = append(cur.points, start)
				cur.closed = true
				pos = start
			}
		}
	}
	flush()
	return result
}

func flattenCubic(p0, p1, p2, p3 graphics.Point, depth int, emit func(graphics.Point)) {
	if depth >= maxFlattenDepth || flatEnough(p0, p1, p2, p3) {
		emit(p3)
		return
	}
	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p23 := mid(p2, p3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	p0123 := mid(p012, p123)
	flattenCubic(p0, p01, p012, p0123, depth+1, emit)
	flattenCubic(p0123, p123, p23, p3, depth+1, emit)
}

func mid(a, b graphics.Point) graphics.Point {
	return graphics.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// flatEnough measures the squared distance of the two control points from
// the chord p0-p3.
func flatEnough(p0, p1, p2, p3 graphics.Point) bool {
	d1 := pointLineDistSq(p1, p0, p3)
	d2 := pointLineDistSq(p2, p0, p3)
	return d1 <= flattenTolerance && d2 <= flattenTolerance
}

func pointLineDistSq(p, a, b graphics.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		ex, ey := p.X-a.X, p.Y-a.Y
		return ex*ex + ey*ey
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	projX, projY := a.X+t*dx, a.Y+t*dy
	ex, ey := p.X-projX, p.Y-projY
	return ex*ex + ey*ey
}

// span is a half-open horizontal run of covered pixels [x0, x1) on one
// scanline.
type span struct {
	x0, x1 int
}

type crossing struct {
	x   float64
	dir int // +1 or -1, winding direction of the edge
}

// scanFill rasterizes polylines (implicitly closed for filling, per PDF's
// "fill operators implicitly close every subpath" rule) into per-row spans
// using the given fill rule.
func scanFill(lines []polyline, rule FillRule, height int) map[int][]span {
	spans := make(map[int][]span)
	if len(lines) == 0 {
		return spans
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pl := range lines {
		for _, p := range pl.points {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	y0 := clampInt(int(math.Floor(minY)), 0, height)
	y1 := clampInt(int(math.Ceil(maxY)), 0, height)

	for y := y0; y < y1; y++ {
		scanY := float64(y) + 0.5
		var crossings []crossing
		for _, pl := range lines {
			pts := pl.points
			n := len(pts)
			if n < 2 {
				continue
			}
			for i := 0; i < n-1; i++ {
				a, b := pts[i], pts[i+1]
				if a.Y == b.Y {
					continue
				}
				dir := 1
				lo, hi := a, b
				if a.Y > b.Y {
					dir = -1
					lo, hi = b, a
				}
				if scanY < lo.Y || scanY >= hi.Y {
					continue
				}
				t := (scanY - lo.Y) / (hi.Y - lo.Y)
				x := lo.X + t*(hi.X-lo.X)
				crossings = append(crossings, crossing{x: x, dir: dir})
			}
		}
		if len(crossings) == 0 {
			continue
		}
		sort.Slice(crossings, func(i, j int) bool { return crossings[i].x < crossings[j].x })

		var rowSpans []span
		switch rule {
		case EvenOdd:
			for i := 0; i+1 < len(crossings); i += 2 {
				rowSpans = append(rowSpans, xSpan(crossings[i].x, crossings[i+1].x))
			}
		default: // NonZero
			winding := 0
			var spanStart float64
			for _, c := range crossings {
				prev := winding
				winding += c.dir
				if prev == 0 && winding != 0 {
					spanStart = c.x
				} else if prev != 0 && winding == 0 {
					rowSpans = append(rowSpans, xSpan(spanStart, c.x))
				}
			}
		}
		if len(rowSpans) > 0 {
			spans[y] = rowSpans
		}
	}
	return spans
}

func xSpan(x0, x1 float64) span {
	a := int(math.Round(x0))
	b := int(math.Round(x1))
	if b < a {
		a, b = b, a
	}
	return span{x0: a, x1: b}
}
