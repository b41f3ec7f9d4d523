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
	"regexp"

	"golang.org/x/exp/maps"
)

// Options configures how a Document is opened.
type Options struct {
	// ReadPassword is called when the file is encrypted. needOwner is true
	// the first time authentication as owner is attempted (after a user
	// password has already been tried and rejected, or when the caller
	// wants owner-level access up front).
	ReadPassword func(tried []byte, needOwner int) string

	// DebugLog, if set, receives a line for each recovered parse error,
	// mirroring the teacher's optional Reader callbacks.
	DebugLog func(format string, args ...any)
}

// Document is an opened, read-only PDF file: the merged cross-reference
// table, the trailer, the (optional) decryption state, and a cache of
// objects decoded so far.
type Document struct {
	raw  []byte
	meta MetaInfo

	xref    *xrefTable
	objects map[Reference]Object
	objStms map[uint32]*objStm

	enc     *encryptInfo
	catalog *Catalog

	debugLog func(format string, args ...any)
}

var _ Getter = (*Document)(nil)

// Open parses data as a complete PDF file.
func Open(data []byte, opts *Options) (*Document, error) {
	if opts == nil {
		opts = &Options{}
	}

	d := &Document{
		raw:      data,
		objects:  make(map[Reference]Object),
		objStms:  make(map[uint32]*objStm),
		debugLog: opts.DebugLog,
	}

	hs := newScanner(bytes.NewReader(data), nil, nil)
	version, err := hs.readHeaderVersion()
	if err != nil {
		d.logf("invalid file header: %s; assuming PDF 1.7", err)
		version = V1_7
	}
	d.meta.Version = version

	bf := newBufFile(bytes.NewReader(data), int64(len(data)))

	var xref *xrefTable
	startXRef, err := bf.findStartXRef()
	if err == nil {
		xref, err = readXRefTable(bf, startXRef)
	}
	if err != nil || xref == nil || xref.trailer == nil {
		d.logf("cross-reference table unusable (%v); rebuilding by scanning", err)
		xref, err = d.rebuildXrefByScanning()
		if err != nil {
			return nil, err
		}
	}
	d.xref = xref

	if xref.trailer["Root"] == nil {
		xref, err = d.rebuildXrefByScanning()
		if err != nil {
			return nil, err
		}
		d.xref = xref
	}

	if encObj, ok := xref.trailer["Encrypt"]; ok && encObj != nil {
		var id []byte
		if idArr, ok := xref.trailer["ID"].(Array); ok && len(idArr) > 0 {
			if s, ok := idArr[0].(String); ok {
				id = []byte(s)
			}
		}
		readPwd := opts.ReadPassword
		if readPwd == nil {
			readPwd = func([]byte, int) string { return "" }
		}
		enc, err := parseEncryptDict(d, encObj, id, readPwd)
		if err != nil {
			return nil, err
		}
		d.enc = enc
	}

	cat, err := d.Catalog()
	if err != nil {
		return nil, err
	}
	d.catalog = cat

	return d, nil
}

func (d *Document) logf(format string, args ...any) {
	if d.debugLog != nil {
		d.debugLog(format, args...)
	}
}

// GetMeta implements the [Getter] interface.
func (d *Document) GetMeta() *MetaInfo { return &d.meta }

// Get implements the [Getter] interface, resolving an indirect object
// either from the object table, a compressed object stream, or by decoding
// it in place the first time it is requested.
func (d *Document) Get(ref Reference, canObjStm bool) (Object, error) {
	if obj, ok := d.objects[ref]; ok {
		return obj, nil
	}

	entry, ok := d.xref.entries[ref.Number()]
	if !ok || entry.free {
		return nil, nil
	}

	var obj Object
	var err error
	if entry.inStream {
		if !canObjStm {
			return nil, &MalformedFileError{Err: errors.New("object unexpectedly stored in an object stream")}
		}
		obj, err = d.getFromObjStm(entry)
	} else {
		obj, err = d.getDirect(ref, entry.offset)
	}
	if err != nil {
		return nil, err
	}

	if stm, isStream := obj.(*Stream); isStream && d.enc != nil && !isMetadataRef(d, ref) {
		stm.crypt = &filterCrypt{enc: d.enc, ref: ref}
	}

	d.objects[ref] = obj
	return obj, nil
}

func isMetadataRef(d *Document, ref Reference) bool {
	if d.enc == nil || d.enc.sec == nil || !d.enc.sec.unencryptedMetaData {
		return false
	}
	return d.catalog != nil && d.catalog.Metadata == ref
}

func (d *Document) getDirect(ref Reference, offset int64) (Object, error) {
	if offset < 0 || offset >= int64(len(d.raw)) {
		return nil, &MalformedFileError{Err: fmt.Errorf("object %s: offset out of range", ref)}
	}
	r := bytes.NewReader(d.raw[offset:])
	s := newScanner(r, d.resolveLength, d.enc)
	s.ref = ref

	if _, err := s.ReadInteger(); err != nil { // object number
		return nil, &MalformedFileError{Err: err, Loc: []string{"object " + ref.String()}}
	}
	if _, err := s.ReadInteger(); err != nil { // generation
		return nil, &MalformedFileError{Err: err, Loc: []string{"object " + ref.String()}}
	}
	if err := s.SkipWhiteSpace(); err != nil {
		return nil, err
	}
	if err := s.expect("obj"); err != nil {
		return nil, &MalformedFileError{Err: err, Loc: []string{"object " + ref.String()}}
	}

	obj, err := s.ReadObject()
	if err != nil {
		return nil, &MalformedFileError{Err: err, Loc: []string{"object " + ref.String()}}
	}
	return obj, nil
}

func (d *Document) resolveLength(o Object) (Integer, error) {
	return GetInteger(d, o)
}

func (d *Document) getFromObjStm(entry xrefEntry) (Object, error) {
	stm, ok := d.objStms[entry.streamNo]
	if !ok {
		stmRef := NewReference(entry.streamNo, 0)
		stmObj, err := d.Get(stmRef, false)
		if err != nil {
			return nil, err
		}
		s, isStream := stmObj.(*Stream)
		if !isStream {
			return nil, &MalformedFileError{Err: errors.New("object stream reference is not a stream")}
		}
		stm, err = readObjStm(d, s)
		if err != nil {
			return nil, err
		}
		d.objStms[entry.streamNo] = stm
	}
	return stm.Get(entry.index)
}

var objHeaderRE = regexp.MustCompile(`(?m)^\s*(\d+)\s+(\d+)\s+obj\b`)

// rebuildXrefByScanning recovers from a missing or broken cross-reference
// table by scanning the whole file for "N G obj" headers, keeping the last
// occurrence of each object number (later definitions in a damaged
// incremental update win), then locating a trailer dictionary the same way.
func (d *Document) rebuildXrefByScanning() (*xrefTable, error) {
	t := &xrefTable{entries: make(map[uint32]xrefEntry)}

	for _, m := range objHeaderRE.FindAllSubmatchIndex(d.raw, -1) {
		numStr := d.raw[m[2]:m[3]]
		var num uint32
		fmt.Sscanf(string(numStr), "%d", &num)
		t.entries[num] = xrefEntry{offset: int64(m[0])}
	}

	trailer, err := d.findTrailerByScanning(t.entries)
	if err != nil {
		return nil, err
	}
	t.trailer = trailer
	return t, nil
}

func (d *Document) findTrailerByScanning(entries map[uint32]xrefEntry) (Dict, error) {
	idx := bytes.LastIndex(d.raw, []byte("trailer"))
	if idx >= 0 {
		s := newScanner(bytes.NewReader(d.raw[idx+len("trailer"):]), nil, nil)
		obj, err := s.ReadObject()
		if err == nil {
			if dict, ok := obj.(Dict); ok {
				if dict["Root"] != nil {
					return dict, nil
				}
			}
		}
	}

	// No classical trailer: look for a /Type/Catalog object directly, or an
	// /XRef stream's dictionary, which also carries /Root. A defensive copy
	// of the just-scanned entries is iterated, mirroring the teacher's
	// practice of cloning before handing a map to code that might outlive
	// the scan.
	for num, entry := range maps.Clone(entries) {
		if entry.inStream || entry.free {
			continue
		}
		ref := NewReference(num, 0)
		obj, err := d.getDirect(ref, entry.offset)
		if err != nil {
			continue
		}
		if dict, ok := obj.(Dict); ok {
			if tp, _ := dict["Type"].(Name); tp == "Catalog" {
				return Dict{"Root": ref}, nil
			}
		}
		if stm, ok := obj.(*Stream); ok {
			if tp, _ := stm.Dict["Type"].(Name); tp == "XRef" && stm.Dict["Root"] != nil {
				return stm.Dict, nil
			}
		}
	}

	return nil, &MalformedFileError{Err: errors.New("could not locate a trailer or Document Catalog")}
}

// Catalog returns the document's Document Catalog.
func (d *Document) Catalog() (*Catalog, error) {
	if d.catalog != nil {
		return d.catalog, nil
	}
	root := d.xref.trailer["Root"]
	cat, err := ExtractCatalog(d, root)
	if err != nil {
		return nil, err
	}
	d.catalog = cat
	return cat, nil
}

// Info returns the document's /Info dictionary, or nil if there is none.
func (d *Document) Info() (*Info, error) {
	infoObj := d.xref.trailer["Info"]
	if infoObj == nil {
		return nil, nil
	}
	return ExtractInfo(d, infoObj)
}

// Metadata decodes the document's XMP metadata packet, if present, into a
// flat key/value view (Dublin Core fields such as title/creator/description
// when available). It supplements, rather than replaces, Info.
func (d *Document) Metadata() (map[string]string, error) {
	if d.catalog == nil || d.catalog.Metadata == 0 {
		return nil, nil
	}
	r, err := GetStreamReader(d, d.catalog.Metadata)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeXMPPacket(raw)
}

// OutlineNode is one entry of the document's outline (bookmark) tree.
type OutlineNode struct {
	Title    string
	Dest     Object
	Children []*OutlineNode
}

// Outline walks /Root/Outlines into a tree of bookmark titles and
// destinations. It is pure data: no navigation side effects, since
// interactive navigation is out of scope for a renderer.
func (d *Document) Outline() (*OutlineNode, error) {
	if d.catalog == nil || d.catalog.Outlines == 0 {
		return nil, nil
	}
	dict, err := GetDict(d, d.catalog.Outlines)
	if err != nil || dict == nil {
		return nil, err
	}
	root := &OutlineNode{}
	first := dict["First"]
	seen := make(map[Reference]bool)
	children, err := d.readOutlineSiblings(first, seen)
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

func (d *Document) readOutlineSiblings(first Object, seen map[Reference]bool) ([]*OutlineNode, error) {
	var nodes []*OutlineNode
	cur := first
	for cur != nil {
		ref, isRef := cur.(Reference)
		if isRef {
			if seen[ref] {
				break
			}
			seen[ref] = true
		}
		dict, err := GetDict(d, cur)
		if err != nil || dict == nil {
			break
		}
		title, _ := GetTextString(d, dict["Title"])
		node := &OutlineNode{Title: string(title), Dest: dict["Dest"]}
		if dict["First"] != nil {
			children, err := d.readOutlineSiblings(dict["First"], seen)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
		cur = dict["Next"]
	}
	return nodes, nil
}
