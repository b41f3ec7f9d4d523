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
	"math"
)

// SpaceIndexed is a PDF Indexed colour space, PDF 32000-1:2008 8.6.6.3: a
// lookup table of colours, selected by a single integer index component.
// Unlike the PDF file representation (a base space plus a packed byte
// string), the palette here holds already-resolved [Color] values.
type SpaceIndexed struct {
	Palette []Color
}

// Indexed builds an Indexed colour space from an explicit palette of
// already-resolved colours.
func Indexed(palette []Color) (*SpaceIndexed, error) {
	if len(palette) == 0 {
		return nil, errors.New("color: empty Indexed palette")
	}
	if len(palette) > 256 {
		return nil, errors.New("color: Indexed palette too large")
	}
	return &SpaceIndexed{Palette: palette}, nil
}

// New returns the colour at the given palette index, clamped to the valid
// range.
func (s *SpaceIndexed) New(index int) Color {
	if index < 0 {
		index = 0
	}
	if index >= len(s.Palette) {
		index = len(s.Palette) - 1
	}
	return colorIndexed{Index: index, space: s}
}

// NewColor implements [Space]. The single component is the (possibly
// fractional, as content streams sometimes emit) palette index.
func (s *SpaceIndexed) NewColor(values []float64) (Color, error) {
	if len(values) != 1 {
		return nil, errors.New("color: Indexed needs 1 component")
	}
	return s.New(int(math.Round(values[0]))), nil
}

// Family implements [Space].
func (s *SpaceIndexed) Family() string { return "Indexed" }

// NumComponents implements [Space].
func (s *SpaceIndexed) NumComponents() int { return 1 }

// Default implements [Space].
func (s *SpaceIndexed) Default() Color { return s.New(0) }

type colorIndexed struct {
	Index int
	space *SpaceIndexed
}

func (c colorIndexed) base() Color { return c.space.Palette[c.Index] }

func (c colorIndexed) RGBA() (r, g, b, a uint32) { return c.base().RGBA() }

func (c colorIndexed) ToXYZ() (X, Y, Z float64) { return c.base().ToXYZ() }
