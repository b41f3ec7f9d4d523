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

import (
	"errors"

	"seehuhn.de/go/pdf"
)

// SpaceSeparation is a PDF Separation colour space, PDF 32000-1:2008 8.6.6.4:
// a single named colourant, converted to the alternate space through a
// tint-transform function.
type SpaceSeparation struct {
	Name          pdf.Name
	Alternate     Space
	TintTransform pdf.Function
}

// Separation builds a Separation colour space. The tint transform must take
// one input (the tint, 0 to 1) and produce as many outputs as alternate has
// components.
func Separation(name pdf.Name, alternate Space, tintTransform pdf.Function) (*SpaceSeparation, error) {
	m, n := tintTransform.Shape()
	if m != 1 {
		return nil, errors.New("color: Separation tint transform must take 1 input")
	}
	if n != alternate.NumComponents() {
		return nil, errors.New("color: Separation tint transform output count does not match alternate space")
	}
	return &SpaceSeparation{Name: name, Alternate: alternate, TintTransform: tintTransform}, nil
}

// New returns the colour for the given tint (0 none, 1 full colourant).
func (s *SpaceSeparation) New(tint float64) (Color, error) {
	return s.NewColor([]float64{tint})
}

// NewColor implements [Space].
func (s *SpaceSeparation) NewColor(values []float64) (Color, error) {
	if len(values) != 1 {
		return nil, errors.New("color: Separation needs 1 component")
	}
	out := make([]float64, s.Alternate.NumComponents())
	s.TintTransform.Apply(out, values[0])
	return s.Alternate.NewColor(out)
}

// Family implements [Space].
func (s *SpaceSeparation) Family() string { return "Separation" }

// NumComponents implements [Space].
func (s *SpaceSeparation) NumComponents() int { return 1 }

// Default implements [Space]. PDF defines the initial Separation colour as
// full tint (1.0), not zero.
func (s *SpaceSeparation) Default() Color {
	c, _ := s.New(1)
	return c
}

// SpaceDeviceN is a PDF DeviceN colour space, PDF 32000-1:2008 8.6.6.5: a
// set of named colourants converted jointly to the alternate space through a
// tint-transform function.
type SpaceDeviceN struct {
	Names         []pdf.Name
	Alternate     Space
	TintTransform pdf.Function
	Attributes    pdf.Dict
}

// DeviceN builds a DeviceN colour space.
func DeviceN(names []pdf.Name, alternate Space, tintTransform pdf.Function, attributes pdf.Dict) (*SpaceDeviceN, error) {
	if len(names) == 0 {
		return nil, errors.New("color: DeviceN needs at least 1 colourant")
	}
	m, n := tintTransform.Shape()
	if m != len(names) {
		return nil, errors.New("color: DeviceN tint transform input count does not match colourant count")
	}
	if n != alternate.NumComponents() {
		return nil, errors.New("color: DeviceN tint transform output count does not match alternate space")
	}
	return &SpaceDeviceN{Names: names, Alternate: alternate, TintTransform: tintTransform, Attributes: attributes}, nil
}

// NewColor implements [Space].
func (s *SpaceDeviceN) NewColor(values []float64) (Color, error) {
	if len(values) != len(s.Names) {
		return nil, errors.New("color: DeviceN component count mismatch")
	}
	out := make([]float64, s.Alternate.NumComponents())
	s.TintTransform.Apply(out, values...)
	return s.Alternate.NewColor(out)
}

// Family implements [Space].
func (s *SpaceDeviceN) Family() string { return "DeviceN" }

// NumComponents implements [Space].
func (s *SpaceDeviceN) NumComponents() int { return len(s.Names) }

// Default implements [Space]. PDF defines the initial DeviceN colour as full
// tint (1.0) on every colourant.
func (s *SpaceDeviceN) Default() Color {
	values := make([]float64, len(s.Names))
	for i := range values {
		values[i] = 1
	}
	c, _ := s.NewColor(values)
	return c
}
