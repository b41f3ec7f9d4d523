// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2020  Jochen Voss <voss@seehuhn.de>
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

package pdf

import (
	"io"

	"seehuhn.de/go/pdf/filter"
)

// Filter is a single stage of a stream's decode pipeline, applied by
// [DecodeStream].  The real codecs live in package filter; this interface
// just lets the crypt pseudo-filter (filter_crypt.go) sit in the same
// pipeline as named /Filter entries.
type Filter interface {
	Decode(v Version, r io.Reader) (io.ReadCloser, error)
}

// namedFilter adapts a package-filter codec (which knows nothing about PDF
// versions) to the Filter interface.
type namedFilter struct {
	name Name
	dec  filter.Decoder
}

func (f *namedFilter) Decode(_ Version, r io.Reader) (io.ReadCloser, error) {
	rc, err := f.dec.Decode(r)
	if err != nil {
		return nil, &FilterError{Filter: f.name, Err: err}
	}
	return rc, nil
}

// makeFilter builds the Filter for one /Filter name, translating the PDF
// /DecodeParms dictionary into the generic parameters package filter
// understands.
func makeFilter(name Name, parms Dict) Filter {
	params := make(filter.Params)
	for k, v := range parms {
		switch x := v.(type) {
		case Integer:
			params[string(k)] = int(x)
		case Boolean:
			if x {
				params[string(k)] = 1
			} else {
				params[string(k)] = 0
			}
		case Real:
			params[string(k)] = int(x)
		}
	}

	dec, err := filter.New(string(name), params)
	if err != nil {
		dec = filter.Unsupported(string(name))
	}
	return &namedFilter{name: name, dec: dec}
}
