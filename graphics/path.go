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

// Package graphics implements the PDF graphics state (PDF 32000-1:2008
// 8.4): the current transformation matrix, text positioning matrices,
// colours, line style and the save/restore stack that the content stream
// operators q/Q/cm/... manipulate.
package graphics

import "seehuhn.de/go/geom/matrix"

// Matrix is the 2x3 affine transformation used throughout the graphics
// state: {a, b, c, d, e, f} representing
//
//	[ a b 0 ]
//	[ c d 0 ]
//	[ e f 1 ]
//
// applied to row vectors, as PDF 32000-1:2008 8.3.3 specifies. This is an
// alias for seehuhn.de/go/geom/matrix.Matrix, which already implements
// this layout and its composition rules.
type Matrix = matrix.Matrix

// PathOp names the kind of a single path construction step.
type PathOp int

const (
	// MoveTo begins a new subpath at Points[0].
	MoveTo PathOp = iota
	// LineTo appends a straight segment ending at Points[0].
	LineTo
	// CurveTo appends a cubic Bezier segment with control points Points[0],
	// Points[1] and end point Points[2].
	CurveTo
	// Close closes the current subpath with a straight line back to its
	// starting point.
	Close
)

// Point is a single 2D coordinate in whatever space a Path is expressed
// in (user space while the path is being built, device space once a
// painter has transformed it).
type Point struct {
	X, Y float64
}

// PathSegment is one step of a Path, as recorded by the path construction
// operators (PDF 32000-1:2008 8.5.2): m, l, c, v, y, h, and the re
// rectangle shorthand, which is expanded into four corners and a Close.
type PathSegment struct {
	Op     PathOp
	Points [3]Point
}

// Path is a sequence of subpaths, exactly as accumulated by the path
// construction operators between the last painting operator (or the start
// of the content stream) and the next one.
type Path struct {
	Segments []PathSegment
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: MoveTo, Points: [3]Point{{X: x, Y: y}}})
}

// LineTo appends a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: LineTo, Points: [3]Point{{X: x, Y: y}}})
}

// CurveTo appends a cubic Bezier segment.
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	p.Segments = append(p.Segments, PathSegment{
		Op:     CurveTo,
		Points: [3]Point{{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}},
	})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Segments = append(p.Segments, PathSegment{Op: Close})
}

// Rectangle appends a complete closed rectangular subpath, as the re
// operator does.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Segments) == 0
}

// CurrentPoint returns the path's current point (the end of the last
// segment appended), and whether the path has one at all.
func (p *Path) CurrentPoint() (Point, bool) {
	if p.IsEmpty() {
		return Point{}, false
	}
	last := p.Segments[len(p.Segments)-1]
	switch last.Op {
	case Close:
		// the current point reverts to the start of the subpath; scan back
		for i := len(p.Segments) - 2; i >= 0; i-- {
			if p.Segments[i].Op == MoveTo {
				return p.Segments[i].Points[0], true
			}
		}
		return Point{}, false
	case CurveTo:
		return last.Points[2], true
	default:
		return last.Points[0], true
	}
}

// Transform returns a copy of p with every coordinate mapped through m.
func (p *Path) Transform(m Matrix) *Path {
	if p == nil {
		return nil
	}
	out := &Path{Segments: make([]PathSegment, len(p.Segments))}
	for i, seg := range p.Segments {
		out.Segments[i] = seg
		switch seg.Op {
		case MoveTo, LineTo:
			out.Segments[i].Points[0] = applyPoint(m, seg.Points[0])
		case CurveTo:
			out.Segments[i].Points[0] = applyPoint(m, seg.Points[0])
			out.Segments[i].Points[1] = applyPoint(m, seg.Points[1])
			out.Segments[i].Points[2] = applyPoint(m, seg.Points[2])
		}
	}
	return out
}

func applyPoint(m Matrix, p Point) Point {
	x := p.X*m[0] + p.Y*m[2] + m[4]
	y := p.X*m[1] + p.Y*m[3] + m[5]
	return Point{X: x, Y: y}
}
