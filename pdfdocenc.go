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

// PDFDocEncoding (PDF 32000-1:2008, Annex D.2) agrees with Latin-1 for all
// but a handful of code points in the 0x18-0x9F range, which map to
// typographic punctuation and a few accented letters not present in
// Latin-1.  Only the deviations are listed; everything else round-trips as
// Latin-1.  This is a reasonable, not byte-exact-for-every-legacy-producer,
// rendering of Annex D.2 -- acceptable here because /Info strings never
// feed the filter/encryption/xref wire format the spec holds to byte-exact
// behaviour, see DESIGN.md.
var pdfDocExceptions = map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙',
	0x1C: '˝', 0x1D: '˛', 0x1E: '˚', 0x1F: '˜',
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
	0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
	0x88: '‹', 0x89: '›', 0x8A: '−', 0x8B: '‰',
	0x8C: '„', 0x8D: '“', 0x8E: '”', 0x8F: '‘',
	0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
	0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
	0x98: 'Ÿ', 0x99: 'Ž', 0x9A: 'ı', 0x9B: 'ł',
	0x9C: 'œ', 0x9D: 'š', 0x9E: 'ž', 0x9F: '�',
	0xA0: '€',
}

var pdfDocReverse = func() map[rune]byte {
	m := make(map[rune]byte, len(pdfDocExceptions))
	for b, r := range pdfDocExceptions {
		m[r] = b
	}
	return m
}()

// PDFDocDecode converts bytes encoded with PDFDocEncoding to a Go string.
func PDFDocDecode(s String) string {
	runes := make([]rune, 0, len(s))
	for _, b := range s {
		if r, ok := pdfDocExceptions[b]; ok {
			runes = append(runes, r)
		} else {
			runes = append(runes, rune(b))
		}
	}
	return string(runes)
}

// PDFDocEncode converts s to PDFDocEncoding.  It returns ok=false if s
// contains a character outside the PDFDocEncoding repertoire, in which case
// the caller should fall back to UTF-16BE or UTF-8.
func PDFDocEncode(s string) (String, bool) {
	out := make(String, 0, len(s))
	for _, r := range s {
		if r < 0x18 {
			out = append(out, byte(r))
			continue
		}
		if r < 0x7F || (r >= 0xA1 && r <= 0xFF) {
			out = append(out, byte(r))
			continue
		}
		if b, ok := pdfDocReverse[r]; ok {
			out = append(out, b)
			continue
		}
		return nil, false
	}
	return out, true
}
