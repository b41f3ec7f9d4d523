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

package graphics

import (
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics/color"
)

// LineCap names the shape painted at an unjoined end of a stroked path
// (PDF 32000-1:2008 8.4.3.3).
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin names the shape painted where two stroked segments meet (PDF
// 32000-1:2008 8.4.3.4).
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// DashPattern is the dash array and phase set by the d operator.
type DashPattern struct {
	Array []float64
	Phase float64
}

// SoftMask describes a pending luminosity or alpha soft mask, set by the
// /SMask entry of an ExtGState (gs operator). Group is the Form XObject
// reference to render into an offscreen buffer to obtain the mask.
type SoftMask struct {
	Group    pdf.Reference
	Backdrop color.Color
	IsAlpha  bool
}

// State is the PDF graphics state (PDF 32000-1:2008 8.4, Table 52): every
// parameter that the content-stream operators read or modify, and that is
// saved and restored by the q/Q operators.
type State struct {
	CTM Matrix

	// TextMatrix and TextLineMatrix are only meaningful between BT and ET;
	// BT resets both to the identity.
	TextMatrix     Matrix
	TextLineMatrix Matrix

	StrokeColor Color
	FillColor   Color

	LineWidth  float64
	LineCap    LineCap
	LineJoin   LineJoin
	MiterLimit float64
	Dash       DashPattern

	// RenderingIntent names one of the four PDF rendering intents; the
	// rasterizer does not currently use it, but it is tracked like the
	// other parameters so that q/Q round-trips faithfully.
	RenderingIntent pdf.Name

	FillAlpha   float64
	StrokeAlpha float64
	BlendMode   pdf.Name

	SoftMask *SoftMask

	// Font, FontSize and the text-state scalars (PDF 32000-1:2008 9.3).
	Font            pdf.Name
	FontSize        float64
	CharSpacing     float64
	WordSpacing     float64
	Leading         float64
	Rise            float64
	HorizScale      float64 // percent, 100 = no scaling
	TextRenderMode  int
	StrokeAdjustment bool

	// ClipPath is the effective clipping region in device space, or nil for
	// "no clip" (the whole page). It is intersected, never replaced, by
	// W/W* as interpreted at the next painting operator.
	ClipPath *Path
	// ClipEvenOdd records whether ClipPath (when non-nil) was produced by
	// W* (even-odd) or W (nonzero winding).
	ClipEvenOdd bool
}

// Color bundles a colour space and the current colour value expressed in
// it, mirroring how the cs/CS and sc/SC/scn/SCN operators always set both
// together (PDF 32000-1:2008 8.6.8).
type Color struct {
	Space color.Space
	Value color.Color
	// Pattern is the resource name of the current pattern, set by scn/SCN
	// when Space is a Pattern colour space.
	Pattern pdf.Name
}

// NewState returns the initial graphics state in effect at the start of a
// content stream or Form XObject (PDF 32000-1:2008 8.4.1): identity CTM,
// black fill and stroke in DeviceGray, a 1-unit line width, full opacity,
// and no clip beyond the page itself.
func NewState() *State {
	black := Color{Space: color.SpaceDeviceGray, Value: color.SpaceDeviceGray.Default()}
	return &State{
		CTM:            Matrix{1, 0, 0, 1, 0, 0},
		TextMatrix:     Matrix{1, 0, 0, 1, 0, 0},
		TextLineMatrix: Matrix{1, 0, 0, 1, 0, 0},
		StrokeColor:    black,
		FillColor:      black,
		LineWidth:      1,
		MiterLimit:     10,
		FillAlpha:      1,
		StrokeAlpha:    1,
		HorizScale:     100,
	}
}

// Clone returns a deep-enough copy of s for pushing onto the q/Q stack:
// value fields copy automatically, and the two pointer fields (ClipPath,
// SoftMask) are never mutated in place by the interpreter, only replaced,
// so sharing them between the saved and live states is safe.
func (s *State) Clone() *State {
	clone := *s
	clone.Dash.Array = append([]float64(nil), s.Dash.Array...)
	return &clone
}

// Stack is the q/Q save/restore stack of graphics states.
type Stack struct {
	states []*State
}

// NewStack returns a Stack whose current state is the PDF initial state.
func NewStack() *Stack {
	return &Stack{states: []*State{NewState()}}
}

// Current returns the state on top of the stack.
func (s *Stack) Current() *State {
	return s.states[len(s.states)-1]
}

// Push duplicates the current state and pushes the copy, implementing q.
func (s *Stack) Push() {
	s.states = append(s.states, s.Current().Clone())
}

// Pop discards the current state and reverts to the one beneath it,
// implementing Q. It is a no-op (rather than a panic) on an empty stack,
// matching spec.md's "malformed operand stacks" tolerance for unbalanced
// q/Q pairs in damaged content streams.
func (s *Stack) Pop() {
	if len(s.states) > 1 {
		s.states = s.states[:len(s.states)-1]
	}
}

// Depth returns the current nesting level (1 for the initial state).
func (s *Stack) Depth() int {
	return len(s.states)
}
