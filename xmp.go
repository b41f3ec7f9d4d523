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
	"regexp"

	"seehuhn.de/go/xmp"
)

// decodeXMPPacket turns the raw bytes of a /Metadata XMP packet stream into
// a flat key/value view of the Dublin Core fields a caller is most likely
// to want (title, creator, description, rights). If the packet does not
// parse as valid RDF/XML, a best-effort regex scan for the same fields is
// returned instead, since a malformed metadata stream should not prevent
// rendering the rest of the document.
func decodeXMPPacket(raw []byte) (map[string]string, error) {
	doc, err := xmp.Decode(raw)
	if err == nil && doc != nil {
		out := make(map[string]string)
		for _, kv := range []struct {
			key string
			val string
		}{
			{"title", doc.Title()},
			{"creator", doc.Creator()},
			{"description", doc.Description()},
			{"rights", doc.Rights()},
		} {
			if kv.val != "" {
				out[kv.key] = kv.val
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	return scanXMPFallback(raw), nil
}

var xmpFieldRE = map[string]*regexp.Regexp{
	"title":       regexp.MustCompile(`(?s)<dc:title>.*?<rdf:li[^>]*>(.*?)</rdf:li>`),
	"creator":     regexp.MustCompile(`(?s)<dc:creator>.*?<rdf:li[^>]*>(.*?)</rdf:li>`),
	"description": regexp.MustCompile(`(?s)<dc:description>.*?<rdf:li[^>]*>(.*?)</rdf:li>`),
}

func scanXMPFallback(raw []byte) map[string]string {
	out := make(map[string]string)
	for key, re := range xmpFieldRE {
		if m := re.FindSubmatch(raw); m != nil {
			out[key] = string(m[1])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
