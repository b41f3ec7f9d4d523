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

package pdf

import (
	"bytes"
	"errors"
	"io"
)

// pageTreeInheritable are the page-attribute keys that propagate from a
// /Pages node down to its descendant /Page dictionaries when the leaf does
// not set them itself (PDF 32000-1:2008 7.7.3.4, Table 30).
var pageTreeInheritable = []Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// minGhostPageWidth is the smallest /MediaBox width, in points, that a page
// is allowed to have before it is treated as a spacer ("ghost") page and
// skipped while walking the page tree. Some generators insert zero-size
// leaves to pad a tree; counting them would throw off page indices.
const minGhostPageWidth = 5.0

// PageDictionary returns the Page dictionary for the index'th page (0
// based) of the document, walking the /Pages tree depth-first and
// inheriting /Resources, /MediaBox, /CropBox and /Rotate from ancestor
// /Pages nodes along the way.
//
// If the declared tree is damaged (a cycle, or a /Count that doesn't match
// reality), the function falls back to a flat scan of every object in the
// file for a dictionary with /Type /Page, in the order objects were
// numbered.
func (d *Document) PageDictionary(index int) (Dict, error) {
	if index < 0 {
		return nil, errors.New("pdf: negative page index")
	}

	root, err := GetDictTyped(d, d.catalog.Pages, "Pages")
	if err != nil || root == nil {
		return d.pageDictionaryByScanning(index)
	}

	visited := make(map[Reference]bool)
	counter := index
	page, err := d.walkPageTree(d.catalog.Pages, root, Dict{}, &counter, visited)
	if err != nil || page == nil {
		return d.pageDictionaryByScanning(index)
	}
	return page, nil
}

// walkPageTree performs the depth-first search described by spec.md §4.D.
// inherited carries the attribute values accumulated from ancestor /Pages
// nodes. counter is decremented for every genuine (non-ghost) leaf page
// visited; the page is returned once counter reaches zero.
func (d *Document) walkPageTree(ref Reference, node Dict, inherited Dict, counter *int, visited map[Reference]bool) (Dict, error) {
	if ref != 0 {
		if visited[ref] {
			return nil, nil
		}
		visited[ref] = true
	}

	merged := mergeInheritable(inherited, node)

	kids, _ := GetArray(d, node["Kids"])
	if kids == nil {
		// leaf: a /Page dictionary (or one close enough to count as one)
		if isGhostPage(d, merged) {
			return nil, nil
		}
		if *counter == 0 {
			return merged, nil
		}
		*counter--
		return nil, nil
	}

	for _, kidObj := range kids {
		kidRef, _ := kidObj.(Reference)
		kidDict, err := GetDict(d, kidObj)
		if err != nil || kidDict == nil {
			continue
		}
		found, err := d.walkPageTree(kidRef, kidDict, merged, counter, visited)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

// mergeInheritable overlays node's own values for the inheritable
// attributes on top of the values inherited from its ancestors, and copies
// every other entry of node unchanged.
func mergeInheritable(inherited, node Dict) Dict {
	merged := make(Dict, len(inherited)+len(node))
	for k, v := range inherited {
		merged[k] = v
	}
	for k, v := range node {
		merged[k] = v
	}
	// Kids/Count/Parent/Type are structural and must not leak as if they
	// were page content attributes inherited by a deeper node's siblings.
	for _, k := range []Name{"Kids", "Count", "Parent"} {
		if _, isInheritable := node[k]; !isInheritable {
			delete(merged, k)
		}
	}
	return merged
}

// isGhostPage reports whether dict looks like a placeholder /Page inserted
// by a broken generator, rather than real page content: its (possibly
// inherited) /MediaBox is narrower than minGhostPageWidth.
func isGhostPage(r Getter, dict Dict) bool {
	rect, err := GetRectangle(r, dict["MediaBox"])
	if err != nil || rect == nil {
		return false
	}
	return rect.Dx() < minGhostPageWidth
}

// pageDictionaryByScanning recovers from a broken /Pages tree by visiting
// every indirect object in the file's merged xref table, in object-number
// order, and returning the index'th one whose /Type is /Page.
func (d *Document) pageDictionaryByScanning(index int) (Dict, error) {
	var numbers []uint32
	for num, entry := range d.xref.entries {
		if !entry.free {
			numbers = append(numbers, num)
		}
	}
	sortUint32(numbers)

	remaining := index
	for _, num := range numbers {
		obj, err := d.Get(NewReference(num, 0), true)
		if err != nil {
			continue
		}
		dict, ok := obj.(Dict)
		if !ok {
			continue
		}
		if tp, _ := dict["Type"].(Name); tp != "Page" {
			continue
		}
		if remaining == 0 {
			return dict, nil
		}
		remaining--
	}
	return nil, &MalformedFileError{Err: errors.New("page index out of range")}
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// PageSize returns the page's visible size in points, accounting for
// /CropBox (intersected with /MediaBox, falling back to /MediaBox alone
// when absent) and for a /Rotate of 90 or 270 degrees, which swaps width
// and height for display purposes.
func (d *Document) PageSize(pageDict Dict) (width, height float64, rotate int, err error) {
	box, rotate, err := d.PageBox(pageDict)
	if err != nil {
		return 0, 0, 0, err
	}
	w, h := box.Dx(), box.Dy()
	if rotate == 90 || rotate == 270 {
		w, h = h, w
	}
	return w, h, rotate, nil
}

// PageBox returns the page's visible rectangle in unrotated default user
// space (/CropBox intersected with /MediaBox) and its normalized /Rotate
// value, the two pieces of information a renderer needs to build the
// user-space-to-device matrix that PageSize's width/height alone don't
// carry (the box's origin).
func (d *Document) PageBox(pageDict Dict) (box *Rectangle, rotate int, err error) {
	media, err := GetRectangle(d, pageDict["MediaBox"])
	if err != nil {
		return nil, 0, err
	}
	if media == nil {
		media = &Rectangle{LLx: 0, LLy: 0, URx: 612, URy: 792}
	}

	box = media
	if crop, cerr := GetRectangle(d, pageDict["CropBox"]); cerr == nil && crop != nil {
		box = intersectRectangles(media, crop)
	}

	rot, _ := GetInteger(d, pageDict["Rotate"])
	rotate = ((int(rot) % 360) + 360) % 360
	return box, rotate, nil
}

func intersectRectangles(a, b *Rectangle) *Rectangle {
	r := &Rectangle{
		LLx: maxFloat(a.LLx, b.LLx),
		LLy: maxFloat(a.LLy, b.LLy),
		URx: minFloat(a.URx, b.URx),
		URy: minFloat(a.URy, b.URy),
	}
	if r.URx < r.LLx || r.URy < r.LLy {
		return a
	}
	return r
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// PageContents returns the decoded and concatenated content stream(s) for
// the page, as described by its (possibly array-valued) /Contents entry.
// Successive streams are joined by a newline, matching the PDF requirement
// that tokens never span stream boundaries.
func (d *Document) PageContents(pageDict Dict) ([]byte, error) {
	contents := pageDict["Contents"]
	resolved, err := Resolve(d, contents)
	if err != nil {
		return nil, err
	}

	var parts []Object
	switch c := resolved.(type) {
	case nil:
		return nil, nil
	case *Stream:
		parts = []Object{contents}
	case Array:
		parts = c
	default:
		return nil, &MalformedFileError{Err: errors.New("invalid /Contents entry")}
	}

	var buf bytes.Buffer
	for i, part := range parts {
		stm, err := GetStream(d, part)
		if err != nil || stm == nil {
			continue
		}
		body, err := DecodeStream(d, stm, 0)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			continue
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// PageResources returns the page's (possibly inherited) /Resources
// dictionary.
func (d *Document) PageResources(pageDict Dict) (Dict, error) {
	return GetDict(d, pageDict["Resources"])
}

// PageCount walks the /Pages tree and returns the total number of leaf
// pages, falling back to a flat scan on the same terms as PageDictionary.
func (d *Document) PageCount() (int, error) {
	root, err := GetDictTyped(d, d.catalog.Pages, "Pages")
	if err != nil || root == nil {
		return d.pageCountByScanning()
	}
	count, err := GetInteger(d, root["Count"])
	if err == nil && count > 0 {
		return int(count), nil
	}
	return d.pageCountByScanning()
}

func (d *Document) pageCountByScanning() (int, error) {
	n := 0
	for num, entry := range d.xref.entries {
		if entry.free {
			continue
		}
		obj, err := d.Get(NewReference(num, 0), true)
		if err != nil {
			continue
		}
		if dict, ok := obj.(Dict); ok {
			if tp, _ := dict["Type"].(Name); tp == "Page" {
				n++
			}
		}
	}
	return n, nil
}
