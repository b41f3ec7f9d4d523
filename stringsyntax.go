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
	"fmt"
)

// format renders a PDF object using the "(...)" / "<...>" string
// conventions used in error messages and in the fuzz corpus round-trip
// test; it is not part of the decode path.
func format(x Object) string {
	buf := &bytes.Buffer{}
	if x == nil {
		buf.WriteString("null")
	} else {
		_ = x.PDF(buf)
	}
	return buf.String()
}

// ParseString decodes a literal "(...)" or hex "<...>" PDF string, as found
// embedded in dictionaries and content streams.
func ParseString(buf []byte) (String, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("pdf: string too short")
	}
	switch buf[0] {
	case '(':
		return parseLiteralString(buf)
	case '<':
		return parseHexString(buf)
	default:
		return nil, fmt.Errorf("pdf: not a string")
	}
}

func parseLiteralString(buf []byte) (String, error) {
	if buf[len(buf)-1] != ')' {
		return nil, fmt.Errorf("pdf: unterminated string")
	}
	body := buf[1 : len(buf)-1]
	var out []byte
	depth := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			switch n := body[i]; n {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, n)
			case '\n':
				// line continuation, emit nothing
			case '\r':
				if i+1 < len(body) && body[i+1] == '\n' {
					i++
				}
			default:
				if n >= '0' && n <= '7' {
					val := int(n - '0')
					for k := 0; k < 2 && i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(body[i]-'0')
					}
					out = append(out, byte(val))
				} else {
					out = append(out, n)
				}
			}
		case c == '(':
			depth++
			out = append(out, c)
		case c == ')':
			if depth == 0 {
				return nil, fmt.Errorf("pdf: unbalanced parenthesis")
			}
			depth--
			out = append(out, c)
		case c == '\r':
			out = append(out, '\n')
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		default:
			out = append(out, c)
		}
	}
	return String(out), nil
}

func parseHexString(buf []byte) (String, error) {
	if buf[len(buf)-1] != '>' {
		return nil, fmt.Errorf("pdf: unterminated hex string")
	}
	body := buf[1 : len(buf)-1]
	var digits []byte
	for _, c := range body {
		if isHexDigit(c) {
			digits = append(digits, c)
		} else if !isWhiteSpace(c) {
			return nil, fmt.Errorf("pdf: invalid hex digit %q", c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexVal(digits[2*i])<<4 | hexVal(digits[2*i+1])
	}
	return String(out), nil
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isWhiteSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
