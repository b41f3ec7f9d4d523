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
	"fmt"
	"io"
)

// xrefEntry locates one object, either directly in the file or inside a
// compressed object stream (PDF 32000-1:2008 7.5.7).
type xrefEntry struct {
	offset   int64
	streamNo uint32
	index    int
	inStream bool
	free     bool
}

// xrefTable is the merged cross-reference table for a file, built by
// following the /Prev chain starting at the newest xref section. Entries
// from a later section take priority (PDF's "incremental update" model), so
// the table is filled newest-first and never overwritten.
type xrefTable struct {
	entries map[uint32]xrefEntry
	trailer Dict
}

func readXRefTable(f *bufFile, startXRef int64) (*xrefTable, error) {
	t := &xrefTable{entries: make(map[uint32]xrefEntry)}

	seen := make(map[int64]bool)
	offset := startXRef
	var firstTrailer Dict

	for offset != 0 {
		if seen[offset] {
			return nil, &MalformedFileError{Err: errors.New("xref /Prev loop")}
		}
		seen[offset] = true

		trailer, prev, xrefStm, err := t.readOneSection(f, offset)
		if err != nil {
			return nil, err
		}
		if firstTrailer == nil {
			firstTrailer = trailer
		}

		if xrefStm != 0 && !seen[xrefStm] {
			if _, _, _, err := t.readOneSection(f, xrefStm); err != nil {
				return nil, err
			}
			seen[xrefStm] = true
		}

		offset = prev
	}

	t.trailer = firstTrailer
	return t, nil
}

// readOneSection reads one xref section (table or stream) at offset,
// merging any entries not already present, and returns its trailer
// dictionary, the /Prev offset (0 if absent) and, for an xref table, the
// /XRefStm hybrid-reference offset (0 if absent).
func (t *xrefTable) readOneSection(f *bufFile, offset int64) (Dict, int64, int64, error) {
	r, err := f.sectionReader(offset)
	if err != nil {
		return nil, 0, 0, err
	}
	s := newScanner(r, nil, nil)

	if err := s.SkipWhiteSpace(); err != nil {
		return nil, 0, 0, err
	}
	c, ok := s.peekAt(0)
	isTable := ok && c == 'x'

	if isTable {
		return t.readXRefSection(s)
	}
	return t.readXRefStreamSection(f, s)
}

func (t *xrefTable) readXRefSection(s *scanner) (Dict, int64, int64, error) {
	if err := s.expect("xref"); err != nil {
		return nil, 0, 0, err
	}
	if err := s.SkipWhiteSpace(); err != nil {
		return nil, 0, 0, err
	}

	for {
		c, ok := s.peekAt(0)
		if !ok || !(c >= '0' && c <= '9') {
			break
		}
		start, err := s.ReadInteger()
		if err != nil {
			return nil, 0, 0, err
		}
		count, err := s.ReadInteger()
		if err != nil {
			return nil, 0, 0, err
		}
		if err := s.SkipWhiteSpace(); err != nil {
			return nil, 0, 0, err
		}
		for i := int64(0); i < int64(count); i++ {
			var buf [20]byte
			if err := s.readFull(buf[:]); err != nil {
				return nil, 0, 0, &MalformedFileError{Err: err}
			}
			num := uint32(start + i)
			if _, ok := t.entries[num]; ok {
				continue
			}
			kind := buf[17]
			if kind == 'n' {
				var off int64
				fmt.Sscanf(string(buf[0:10]), "%d", &off)
				t.entries[num] = xrefEntry{offset: off}
			} else {
				t.entries[num] = xrefEntry{free: true}
			}
		}
		if err := s.SkipWhiteSpace(); err != nil {
			return nil, 0, 0, err
		}
	}

	if err := s.expect("trailer"); err != nil {
		return nil, 0, 0, err
	}
	obj, err := s.ReadObject()
	if err != nil {
		return nil, 0, 0, err
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, 0, 0, &MalformedFileError{Err: errors.New("trailer is not a dictionary")}
	}

	var prev, xrefStm int64
	if p, ok := trailer["Prev"].(Integer); ok {
		prev = int64(p)
	}
	if p, ok := trailer["XRefStm"].(Integer); ok {
		xrefStm = int64(p)
	}
	return trailer, prev, xrefStm, nil
}

func (t *xrefTable) readXRefStreamSection(f *bufFile, s *scanner) (Dict, int64, int64, error) {
	// "N G obj" header, then the stream dictionary and data.
	if _, err := s.ReadInteger(); err != nil {
		return nil, 0, 0, err
	}
	if _, err := s.ReadInteger(); err != nil {
		return nil, 0, 0, err
	}
	if err := s.SkipWhiteSpace(); err != nil {
		return nil, 0, 0, err
	}
	if err := s.expect("obj"); err != nil {
		return nil, 0, 0, err
	}
	obj, err := s.ReadObject()
	if err != nil {
		return nil, 0, 0, err
	}
	stm, ok := obj.(*Stream)
	if !ok {
		return nil, 0, 0, &MalformedFileError{Err: errors.New("cross-reference stream is not a stream")}
	}
	if err := CheckDictType(nil, stm.Dict, "XRef"); err != nil {
		return nil, 0, 0, err
	}

	w, ok := stm.Dict["W"].(Array)
	if !ok || len(w) != 3 {
		return nil, 0, 0, &MalformedFileError{Err: errors.New("invalid /W in cross-reference stream")}
	}
	w0, _ := w[0].(Integer)
	w1, _ := w[1].(Integer)
	w2, _ := w[2].(Integer)

	size, _ := stm.Dict["Size"].(Integer)

	var index []int64
	if idxArr, ok := stm.Dict["Index"].(Array); ok {
		for _, v := range idxArr {
			n, _ := v.(Integer)
			index = append(index, int64(n))
		}
	} else {
		index = []int64{0, int64(size)}
	}

	data, err := DecodeStream(nil, stm, 0)
	if err != nil {
		return nil, 0, 0, err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, 0, 0, err
	}

	recLen := int(w0 + w1 + w2)
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := int64(0); j < count; j++ {
			if pos+recLen > len(raw) {
				break
			}
			rec := raw[pos : pos+recLen]
			pos += recLen

			f1 := beInt(rec[0:w0], 1)
			f2 := beInt(rec[w0:w0+w1], 0)
			f3 := beInt(rec[w0+w1:w0+w1+w2], 0)

			num := uint32(start + j)
			if _, ok := t.entries[num]; ok {
				continue
			}
			switch f1 {
			case 0:
				t.entries[num] = xrefEntry{free: true}
			case 1:
				t.entries[num] = xrefEntry{offset: f2}
			case 2:
				t.entries[num] = xrefEntry{inStream: true, streamNo: uint32(f2), index: int(f3)}
			}
		}
	}

	var prev int64
	if p, ok := stm.Dict["Prev"].(Integer); ok {
		prev = int64(p)
	}
	return stm.Dict, prev, 0, nil
}

func beInt(b []byte, def Integer) Integer {
	if len(b) == 0 {
		return def
	}
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return Integer(v)
}

// bufFile is the minimal random-access byte source the xref/object parser
// needs: a section reader starting at an arbitrary file offset, plus a way
// to locate "startxref" near the end of the file.
type bufFile struct {
	ra   io.ReaderAt
	size int64
}

func newBufFile(ra io.ReaderAt, size int64) *bufFile {
	return &bufFile{ra: ra, size: size}
}

func (f *bufFile) sectionReader(offset int64) (io.Reader, error) {
	if offset < 0 || offset > f.size {
		return nil, &MalformedFileError{Err: fmt.Errorf("offset %d out of range", offset)}
	}
	return io.NewSectionReader(f.ra, offset, f.size-offset), nil
}

// findStartXRef locates the last "startxref" keyword and returns the
// cross-reference offset it names.
func (f *bufFile) findStartXRef() (int64, error) {
	const tailSize = 2048
	size := tailSize
	if int64(size) > f.size {
		size = int(f.size)
	}
	buf := make([]byte, size)
	if _, err := f.ra.ReadAt(buf, f.size-int64(size)); err != nil && err != io.EOF {
		return 0, err
	}

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx < 0 {
		return 0, &MalformedFileError{Err: errors.New("missing startxref")}
	}

	rest := buf[idx+len("startxref"):]
	s := newScanner(bytes.NewReader(rest), nil, nil)
	if err := s.SkipWhiteSpace(); err != nil {
		return 0, err
	}
	val, err := s.ReadInteger()
	if err != nil {
		return 0, &MalformedFileError{Err: errors.New("malformed startxref")}
	}
	return int64(val), nil
}
