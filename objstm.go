// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
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
	"bytes"
	"errors"
	"io"
)

// objStm is a decoded compressed object stream (PDF 32000-1:2008 7.5.7),
// caching the parsed objects it holds so that several indirect references
// into the same stream only decode and scan it once.
type objStm struct {
	objects []Object
}

func readObjStm(d *Document, stm *Stream) (*objStm, error) {
	n, err := GetInteger(d, stm.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := GetInteger(d, stm.Dict["First"])
	if err != nil {
		return nil, err
	}

	body, err := DecodeStream(d, stm, 0)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if int(first) > len(raw) {
		return nil, &MalformedFileError{Err: errors.New("invalid object stream /First")}
	}

	header := newScanner(bytes.NewReader(raw[:first]), nil, nil)
	offsets := make([]int64, n)
	for i := int64(0); i < int64(n); i++ {
		if _, err := header.ReadInteger(); err != nil { // object number, unused
			return nil, &MalformedFileError{Err: err}
		}
		off, err := header.ReadInteger()
		if err != nil {
			return nil, &MalformedFileError{Err: err}
		}
		offsets[i] = int64(off)
	}

	objs := make([]Object, n)
	body2 := newScanner(bytes.NewReader(raw[first:]), nil, nil)
	for i, off := range offsets {
		body2.bufPos = 0
		body2.bufEnd = 0
		body2.filePos = off
		body2.eof = false
		body2.r = bytes.NewReader(raw[int64(first)+off:])
		obj, err := body2.ReadObject()
		if err != nil {
			return nil, &MalformedFileError{Err: err}
		}
		objs[i] = obj
	}

	return &objStm{objects: objs}, nil
}

func (os *objStm) Get(index int) (Object, error) {
	if index < 0 || index >= len(os.objects) {
		return nil, &MalformedFileError{Err: errors.New("object stream index out of range")}
	}
	return os.objects[index], nil
}
