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

import "errors"

// Space is a PDF colour space: something that turns a tuple of component
// values (as they appear after `sc`/`scn`) into a [Color].
type Space interface {
	// Family returns the colour space family name, e.g. "DeviceRGB" or
	// "Separation".
	Family() string

	// NumComponents returns the number of components a colour in this
	// space is specified with.
	NumComponents() int

	// NewColor builds a Color from component values.
	NewColor(values []float64) (Color, error)

	// Default returns the space's initial colour, the one `cs`/`CS`
	// implicitly selects before the first `sc`/`SC`.
	Default() Color
}

type spaceDeviceGray struct{}
type spaceDeviceRGB struct{}
type spaceDeviceCMYK struct{}

// SpaceDeviceGray, SpaceDeviceRGB and SpaceDeviceCMYK are the three device
// colour space singletons every PDF reader supports without a resource
// dictionary entry.
var (
	SpaceDeviceGray Space = spaceDeviceGray{}
	SpaceDeviceRGB  Space = spaceDeviceRGB{}
	SpaceDeviceCMYK Space = spaceDeviceCMYK{}
)

func (spaceDeviceGray) Family() string     { return "DeviceGray" }
func (spaceDeviceGray) NumComponents() int { return 1 }
func (spaceDeviceGray) Default() Color     { return DeviceGray(0) }
func (spaceDeviceGray) NewColor(v []float64) (Color, error) {
	if len(v) != 1 {
		return nil, errors.New("color: DeviceGray needs 1 component")
	}
	return DeviceGray(v[0]), nil
}

func (spaceDeviceRGB) Family() string     { return "DeviceRGB" }
func (spaceDeviceRGB) NumComponents() int { return 3 }
func (spaceDeviceRGB) Default() Color     { return DeviceRGB{0, 0, 0} }
func (spaceDeviceRGB) NewColor(v []float64) (Color, error) {
	if len(v) != 3 {
		return nil, errors.New("color: DeviceRGB needs 3 components")
	}
	return DeviceRGB{v[0], v[1], v[2]}, nil
}

func (spaceDeviceCMYK) Family() string     { return "DeviceCMYK" }
func (spaceDeviceCMYK) NumComponents() int { return 4 }
func (spaceDeviceCMYK) Default() Color     { return DeviceCMYK{0, 0, 0, 1} }
func (spaceDeviceCMYK) NewColor(v []float64) (Color, error) {
	if len(v) != 4 {
		return nil, errors.New("color: DeviceCMYK needs 4 components")
	}
	return DeviceCMYK{v[0], v[1], v[2], v[3]}, nil
}

func (s *SpaceCalGray) NewColor(v []float64) (Color, error) {
	if len(v) != 1 {
		return nil, errors.New("color: CalGray needs 1 component")
	}
	return s.New(v[0]), nil
}
func (s *SpaceCalGray) Default() Color { return s.New(0) }

func (s *SpaceCalRGB) NewColor(v []float64) (Color, error) {
	if len(v) != 3 {
		return nil, errors.New("color: CalRGB needs 3 components")
	}
	return s.New(v[0], v[1], v[2]), nil
}
func (s *SpaceCalRGB) Default() Color { return s.New(0, 0, 0) }

func (s *SpaceLab) NewColor(v []float64) (Color, error) {
	if len(v) != 3 {
		return nil, errors.New("color: Lab needs 3 components")
	}
	return s.New(v[0], v[1], v[2])
}
func (s *SpaceLab) Default() Color {
	c, _ := s.New(0, 0, 0)
	return c
}
