// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2023  Jochen Voss <voss@seehuhn.de>
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
	"crypto/sha256"
	"encoding/hex"
	"io"

	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/pdfenc"
	"seehuhn.de/go/pdf/font/subset"
)

// FontSubtype identifies the family of font dictionary a PdfFontInfo was
// built from.
type FontSubtype int

const (
	FontSubtypeUnknown FontSubtype = iota
	FontSubtypeType1
	FontSubtypeTrueType
	FontSubtypeType3
	FontSubtypeType0
	FontSubtypeMMType1
)

// FontProgramSubtype identifies the format of an embedded font program.
type FontProgramSubtype int

const (
	FontProgramNone FontProgramSubtype = iota
	FontProgramType1
	FontProgramTrueType
	FontProgramCFF
	FontProgramOpenType
)

// PdfFontInfo is the resolved, render-ready view of a PDF font dictionary,
// built once per (document, page, resource name) and cached by the caller
// the way spec.md's document layer describes.
//
// The comment block on each field documents which of the simple-font or
// composite-font groups it belongs to; a given PdfFontInfo populates only
// one of the two groups, selected by Subtype.
type PdfFontInfo struct {
	Subtype  FontSubtype
	BaseFont string
	Encoding Name

	// Simple-font fields (Subtype != FontSubtypeType0).
	CodeToUnicode   [256]string
	CodeToGID       [256]uint16
	CodeToGlyphName [256]string
	Widths          []float64
	FirstChar       int
	MissingWidth    float64
	HasWidths       bool

	// Composite-font fields (Subtype == FontSubtypeType0).
	CIDToUnicode    map[uint32]string
	CIDToGID        []uint16
	CIDIsIdentity   bool
	CIDWidths       map[uint32]float64
	CIDDefaultWidth float64

	FontProgram        []byte
	FontProgramSubtype FontProgramSubtype

	// FontHash is a stable content hash of FontProgram, used as the sharing
	// key in the font-face cache. It is empty when FontProgram is empty
	// (non-embedded font, resolved through the host font resolver instead).
	FontHash string

	descriptor *font.Descriptor
}

// Descriptor returns the font's FontDescriptor, or nil if none was present
// (only possible for Type 3 fonts and the standard 14 fonts before PDF 2.0).
func (fi *PdfFontInfo) Descriptor() *font.Descriptor { return fi.descriptor }

// FontResolver maps a base font name (with any "ABCDEF+" subset tag already
// stripped) to a font program byte stream, for fonts not embedded in the
// document. It is supplied by the host application; this package never
// resolves system fonts on its own (spec.md's explicit non-goal).
type FontResolver func(baseFont string, descriptor *font.Descriptor) ([]byte, FontProgramSubtype, error)

// ExtractFontInfo builds a PdfFontInfo from a font dictionary reference,
// following the construction recipe: copy Subtype/BaseFont/Encoding, build
// the code-to-glyph-name table from Differences, parse ToUnicode, locate
// the embedded font program (descending into DescendantFonts for Type0),
// fall back to resolver for non-embedded fonts, derive codeToGid and
// widths, and hash the font program.
func ExtractFontInfo(r Getter, fontDictRef Object, resolve FontResolver) (*PdfFontInfo, error) {
	fontDict, err := GetDictTyped(r, fontDictRef, "Font")
	if err != nil {
		return nil, Wrap(err, "font dict")
	}
	if fontDict == nil {
		return nil, Errorf("missing font dictionary")
	}

	subtypeName, err := GetName(r, fontDict["Subtype"])
	if err != nil {
		return nil, Wrap(err, "Subtype")
	}

	fi := &PdfFontInfo{MissingWidth: 0, CIDDefaultWidth: 1000}

	switch subtypeName {
	case "Type1":
		fi.Subtype = FontSubtypeType1
	case "MMType1":
		fi.Subtype = FontSubtypeMMType1
	case "TrueType":
		fi.Subtype = FontSubtypeTrueType
	case "Type3":
		fi.Subtype = FontSubtypeType3
	case "Type0":
		fi.Subtype = FontSubtypeType0
	default:
		return nil, Errorf("unsupported font subtype %q", subtypeName)
	}

	baseFont, err := GetName(r, fontDict["BaseFont"])
	if err != nil {
		return nil, Wrap(err, "BaseFont")
	}
	fi.BaseFont = stripSubsetTag(string(baseFont))

	if fi.Subtype == FontSubtypeType0 {
		if err := fi.extractComposite(r, fontDict, resolve); err != nil {
			return nil, err
		}
	} else {
		if err := fi.extractSimple(r, fontDict, resolve); err != nil {
			return nil, err
		}
	}

	if len(fi.FontProgram) > 0 {
		sum := sha256.Sum256(fi.FontProgram)
		fi.FontHash = hex.EncodeToString(sum[:])
	}

	return fi, nil
}

func stripSubsetTag(name string) string {
	if m := subset.TagRegexp.FindStringSubmatch(name); m != nil {
		return m[2]
	}
	return name
}

func (fi *PdfFontInfo) extractSimple(r Getter, fontDict Dict, resolve FontResolver) error {
	enc, err := Resolve(r, fontDict["Encoding"])
	if err != nil {
		return Wrap(err, "Encoding")
	}

	base := pdfenc.Standard.Encoding
	switch e := enc.(type) {
	case Name:
		fi.Encoding = e
		base = baseEncodingTable(e, base)
	case Dict:
		baseName, _ := GetName(r, e["BaseEncoding"])
		fi.Encoding = baseName
		base = baseEncodingTable(baseName, base)
		diffs, err := GetArray(r, e["Differences"])
		if err != nil {
			return Wrap(err, "Differences")
		}
		base = applyDifferences(base, diffs)
	}
	for i := 0; i < 256; i++ {
		fi.CodeToGlyphName[i] = base[i]
	}

	if err := fi.extractToUnicodeSimple(r, fontDict); err != nil {
		return Wrap(err, "ToUnicode")
	}

	descriptor, err := font.ExtractDescriptor(r, fontDict["FontDescriptor"])
	if err != nil {
		return Wrap(err, "FontDescriptor")
	}
	fi.descriptor = descriptor

	if err := fi.loadFontProgram(r, fontDict, descriptor, resolve); err != nil {
		return err
	}

	firstChar, err := GetInteger(r, fontDict["FirstChar"])
	if err != nil {
		return Wrap(err, "FirstChar")
	}
	widths, err := GetArray(r, fontDict["Widths"])
	if err != nil {
		return Wrap(err, "Widths")
	}
	if len(widths) > 0 {
		fi.HasWidths = true
		fi.FirstChar = int(firstChar)
		fi.Widths = make([]float64, len(widths))
		for i, w := range widths {
			n, err := GetNumber(r, w)
			if err != nil {
				return Wrap(err, "Widths")
			}
			fi.Widths[i] = float64(n)
		}
	}
	if descriptor != nil {
		fi.MissingWidth = descriptor.MissingWidth
	}

	return nil
}

func (fi *PdfFontInfo) extractComposite(r Getter, fontDict Dict, resolve FontResolver) error {
	descendants, err := GetArray(r, fontDict["DescendantFonts"])
	if err != nil {
		return Wrap(err, "DescendantFonts")
	}
	if len(descendants) != 1 {
		return Errorf("Type0 font must have exactly one descendant font")
	}
	cidFontDict, err := GetDictTyped(r, descendants[0], "Font")
	if err != nil {
		return Wrap(err, "CIDFont dict")
	}

	if err := fi.extractToUnicodeComposite(r, fontDict); err != nil {
		return Wrap(err, "ToUnicode")
	}

	descriptor, err := font.ExtractDescriptor(r, cidFontDict["FontDescriptor"])
	if err != nil {
		return Wrap(err, "FontDescriptor")
	}
	fi.descriptor = descriptor

	if err := fi.loadFontProgram(r, cidFontDict, descriptor, resolve); err != nil {
		return err
	}

	cidToGidObj, err := Resolve(r, cidFontDict["CIDToGIDMap"])
	if err != nil {
		return Wrap(err, "CIDToGIDMap")
	}
	switch m := cidToGidObj.(type) {
	case nil:
		fi.CIDIsIdentity = true
	case Name:
		fi.CIDIsIdentity = m == "Identity" || m == ""
	case *Stream:
		data, err := GetStreamReader(r, cidToGidObj)
		if err != nil {
			return Wrap(err, "CIDToGIDMap")
		}
		raw, err := io.ReadAll(data)
		data.Close()
		if err != nil {
			return Wrap(err, "CIDToGIDMap")
		}
		fi.CIDToGID = make([]uint16, len(raw)/2)
		for i := range fi.CIDToGID {
			fi.CIDToGID[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
		}
	}

	dw, err := GetNumber(r, cidFontDict["DW"])
	if err != nil {
		return Wrap(err, "DW")
	}
	if dw != 0 {
		fi.CIDDefaultWidth = float64(dw)
	}
	wArr, err := GetArray(r, cidFontDict["W"])
	if err != nil {
		return Wrap(err, "W")
	}
	fi.CIDWidths, err = parseCIDWidths(r, wArr)
	if err != nil {
		return Wrap(err, "W")
	}

	if descriptor != nil && fi.CIDDefaultWidth == 0 {
		fi.CIDDefaultWidth = descriptor.MissingWidth
	}

	return nil
}

// parseCIDWidths decodes the PDF 9.7.4.3 /W array, which interleaves two
// forms: "c [w1 w2 ... wn]" (consecutive CIDs c, c+1, ...) and
// "cFirst cLast w" (a uniform range).
func parseCIDWidths(r Getter, w Array) (map[uint32]float64, error) {
	if len(w) == 0 {
		return nil, nil
	}
	out := make(map[uint32]float64)
	i := 0
	for i < len(w) {
		first, err := GetInteger(r, w[i])
		if err != nil {
			return nil, err
		}
		i++
		if i >= len(w) {
			break
		}
		next, err := Resolve(r, w[i])
		if err != nil {
			return nil, err
		}
		if arr, ok := next.(Array); ok {
			i++
			for j, wi := range arr {
				n, err := GetNumber(r, wi)
				if err != nil {
					return nil, err
				}
				out[uint32(first)+uint32(j)] = float64(n)
			}
			continue
		}
		last, err := GetInteger(r, w[i])
		if err != nil {
			return nil, err
		}
		i++
		if i >= len(w) {
			break
		}
		width, err := GetNumber(r, w[i])
		if err != nil {
			return nil, err
		}
		i++
		for cid := first; cid <= last; cid++ {
			out[uint32(cid)] = float64(width)
		}
	}
	return out, nil
}

func (fi *PdfFontInfo) loadFontProgram(r Getter, fontDict Dict, descriptor *font.Descriptor, resolve FontResolver) error {
	if descriptor == nil {
		if resolve != nil {
			data, subtype, err := resolve(fi.BaseFont, nil)
			if err == nil {
				fi.FontProgram, fi.FontProgramSubtype = data, subtype
			}
		}
		return nil
	}

	// FontDescriptor doesn't carry file references directly on the
	// *Descriptor value built by font.ExtractDescriptor (it only keeps
	// metrics); re-fetch the raw descriptor dict for the FontFile keys.
	rawDescriptor, err := GetDictTyped(r, fontDict["FontDescriptor"], "FontDescriptor")
	if err != nil {
		return Wrap(err, "FontDescriptor")
	}

	simpleFontFileKeys := []struct {
		key     Name
		subtype FontProgramSubtype
	}{
		{"FontFile", FontProgramType1},
		{"FontFile2", FontProgramTrueType},
	}
	for _, entry := range simpleFontFileKeys {
		key, subtype := entry.key, entry.subtype
		if ref, ok := rawDescriptor[key]; ok {
			stm, err := GetStream(r, ref)
			if err != nil {
				return Wrap(err, string(key))
			}
			if stm != nil {
				data, err := GetStreamReader(r, ref)
				if err != nil {
					return Wrap(err, string(key))
				}
				raw, err := io.ReadAll(data)
				data.Close()
				if err != nil {
					return Wrap(err, string(key))
				}
				fi.FontProgram = raw
				fi.FontProgramSubtype = subtype
				return nil
			}
		}
	}

	if ref, ok := rawDescriptor["FontFile3"]; ok {
		stm, err := GetStream(r, ref)
		if err != nil {
			return Wrap(err, "FontFile3")
		}
		if stm != nil {
			stmSubtype, _ := GetName(r, stm.Dict["Subtype"])
			data, err := GetStreamReader(r, ref)
			if err != nil {
				return Wrap(err, "FontFile3")
			}
			raw, err := io.ReadAll(data)
			data.Close()
			if err != nil {
				return Wrap(err, "FontFile3")
			}
			fi.FontProgram = raw
			if stmSubtype == "OpenType" {
				fi.FontProgramSubtype = FontProgramOpenType
			} else {
				fi.FontProgramSubtype = FontProgramCFF
			}
			return nil
		}
	}

	if resolve != nil {
		data, subtype, err := resolve(fi.BaseFont, descriptor)
		if err == nil {
			fi.FontProgram, fi.FontProgramSubtype = data, subtype
		}
	}
	return nil
}

func baseEncodingTable(name Name, fallback [256]string) [256]string {
	switch name {
	case "WinAnsiEncoding":
		return pdfenc.WinAnsi.Encoding
	case "MacRomanEncoding":
		return pdfenc.MacRoman.Encoding
	case "MacExpertEncoding":
		return pdfenc.MacExpert.Encoding
	case "StandardEncoding":
		return pdfenc.Standard.Encoding
	default:
		return fallback
	}
}

// applyDifferences overlays a /Differences array (an interleaved sequence
// of reset-codes and consecutively-assigned glyph names) onto base.
func applyDifferences(base [256]string, diffs Array) [256]string {
	out := base
	code := -1
	for _, item := range diffs {
		switch v := item.(type) {
		case Integer:
			code = int(v)
		case Name:
			if code >= 0 && code < 256 {
				out[code] = string(v)
				code++
			}
		}
	}
	return out
}

// extractToUnicodeSimple decodes a /ToUnicode CMap stream, if present, into
// CodeToUnicode.
func (fi *PdfFontInfo) extractToUnicodeSimple(r Getter, fontDict Dict) error {
	m, err := decodeToUnicodeCMap(r, fontDict["ToUnicode"])
	if err != nil || m == nil {
		return err
	}
	for code, runes := range m {
		if code < 256 {
			fi.CodeToUnicode[code] = string(runes)
		}
	}
	return nil
}

func (fi *PdfFontInfo) extractToUnicodeComposite(r Getter, fontDict Dict) error {
	m, err := decodeToUnicodeCMap(r, fontDict["ToUnicode"])
	if err != nil || m == nil {
		return err
	}
	fi.CIDToUnicode = make(map[uint32]string, len(m))
	for code, runes := range m {
		fi.CIDToUnicode[code] = string(runes)
	}
	return nil
}

// cmapToken is one lexeme of the PostScript-derived CMap language: a bare
// keyword (beginbfchar, dict, def, ...), a hex string <...>, or an array
// of hex strings [...]. Only the handful of constructs /ToUnicode streams
// actually use are recognised; everything else is skipped.
type cmapToken struct {
	keyword string
	hex     []byte
	array   [][]byte
}

// cmapLexer tokenises the subset of PostScript CMap syntax bfchar/bfrange
// blocks use. It is deliberately separate from the PDF object scanner
// (scanner.go), whose keyword reader is capped at 6 bytes and cannot
// recognise identifiers like "beginbfrange".
type cmapLexer struct {
	data []byte
	pos  int
}

func (l *cmapLexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0 {
			l.pos++
			continue
		}
		break
	}
}

func (l *cmapLexer) next() (cmapToken, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return cmapToken{}, false
	}
	switch l.data[l.pos] {
	case '<':
		return l.readHex(), true
	case '[':
		return l.readArray(), true
	default:
		start := l.pos
		for l.pos < len(l.data) && !isCMapDelim(l.data[l.pos]) {
			l.pos++
		}
		if l.pos == start {
			l.pos++ // skip an unrecognised delimiter byte
			return l.next()
		}
		return cmapToken{keyword: string(l.data[start:l.pos])}, true
	}
}

func isCMapDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '<', '[', ']', '/', '%':
		return true
	}
	return false
}

func (l *cmapLexer) readHex() cmapToken {
	l.pos++ // '<'
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		l.pos++
	}
	hexDigits := l.data[start:l.pos]
	if l.pos < len(l.data) {
		l.pos++ // '>'
	}
	out := make([]byte, 0, len(hexDigits)/2+1)
	var hi byte
	have := false
	for _, c := range hexDigits {
		v, ok := hexNibble(c)
		if !ok {
			continue
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return cmapToken{hex: out}
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func (l *cmapLexer) readArray() cmapToken {
	l.pos++ // '['
	var arr [][]byte
	for {
		l.skipSpace()
		if l.pos >= len(l.data) || l.data[l.pos] == ']' {
			if l.pos < len(l.data) {
				l.pos++
			}
			break
		}
		if l.data[l.pos] != '<' {
			l.pos++
			continue
		}
		arr = append(arr, l.readHex().hex)
	}
	return cmapToken{array: arr}
}

// decodeToUnicodeCMap parses the subset of the PostScript CMap language
// that /ToUnicode streams use: beginbfchar/endbfchar pairs and
// beginbfrange/endbfrange triples (PDF 32000-1:2008 9.10.3).
func decodeToUnicodeCMap(r Getter, obj Object) (map[uint32][]rune, error) {
	if obj == nil {
		return nil, nil
	}
	rd, err := GetStreamReader(r, obj)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}

	l := &cmapLexer{data: data}
	out := make(map[uint32][]rune)

	for {
		tok, ok := l.next()
		if !ok {
			break
		}
		switch tok.keyword {
		case "beginbfchar":
			for {
				a, ok := l.next()
				if !ok || a.keyword == "endbfchar" {
					break
				}
				b, ok := l.next()
				if !ok {
					break
				}
				out[bytesToUint32(a.hex)] = stringToRunes(b.hex)
			}
		case "beginbfrange":
			for {
				a, ok := l.next()
				if !ok || a.keyword == "endbfrange" {
					break
				}
				b, ok := l.next()
				if !ok {
					break
				}
				c, ok := l.next()
				if !ok {
					break
				}
				lo := bytesToUint32(a.hex)
				hi := bytesToUint32(b.hex)
				if c.array != nil {
					for i, h := range c.array {
						out[lo+uint32(i)] = stringToRunes(h)
					}
					continue
				}
				base := stringToRunes(c.hex)
				for code := lo; code <= hi && len(base) > 0; code++ {
					rs := make([]rune, len(base))
					copy(rs, base)
					rs[len(rs)-1] += rune(code - lo)
					out[code] = rs
				}
			}
		}
	}
	return out, nil
}

func bytesToUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

func stringToRunes(raw []byte) []rune {
	// ToUnicode strings are UTF-16BE.
	var units []uint16
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				runes = append(runes, rune(0x10000+(int(u)-0xD800)*0x400+(int(lo)-0xDC00)))
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return runes
}
