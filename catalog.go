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
	"errors"

	"golang.org/x/text/language"
)

// Catalog represents the fields of a PDF Document Catalog (PDF 32000-1:2008
// 7.7.2) that a renderer needs: the page tree root, the outline hierarchy,
// and the document's presentation and language metadata. Fields that only
// matter to an interactive viewer or an editor (AcroForm, digital
// signatures, Web Capture state, and the like) are not represented; their
// raw entries are still visible via the dictionary returned by
// [Document.Catalog] for callers that need them.
type Catalog struct {
	// Pages is the root of the document's page tree.
	Pages Reference

	// PageLayout specifies the page layout the document was authored for:
	// SinglePage, OneColumn, TwoColumnLeft, TwoColumnRight, TwoPageLeft or
	// TwoPageRight.
	PageLayout Name

	// PageMode specifies how the document should be displayed when opened:
	// UseNone, UseOutlines, UseThumbs, FullScreen, UseOC or UseAttachments.
	PageMode Name

	// Outlines is the root of the document's outline (bookmark) hierarchy,
	// or 0 if the document has none.
	Outlines Reference

	// Metadata is a reference to the document's XMP metadata stream, or 0.
	Metadata Reference

	// Lang specifies the natural language for text in the document, when
	// the document declares one.
	Lang language.Tag

	// NeedsRendering reports whether the document should be regenerated
	// (e.g. an XFA form) before display.
	NeedsRendering bool
}

// ExtractCatalog reads the fields of obj, which must be a Document Catalog
// dictionary (or an indirect reference to one), into a [Catalog].
func ExtractCatalog(r Getter, obj Object) (*Catalog, error) {
	dict, err := GetDictTyped(r, obj, "Catalog")
	if err != nil {
		return nil, err
	}
	if dict == nil {
		return nil, &MalformedFileError{
			Err: errors.New("catalog dictionary is missing"),
		}
	}

	pagesObj := dict["Pages"]
	if pagesObj == nil {
		return nil, &MalformedFileError{
			Err: errors.New("required field Pages is missing"),
			Loc: []string{"Catalog"},
		}
	}
	pages, _ := pagesObj.(Reference)

	pageLayout, _ := GetName(r, dict["PageLayout"])
	pageMode, _ := GetName(r, dict["PageMode"])

	outlines, _ := dict["Outlines"].(Reference)
	metadata, _ := dict["Metadata"].(Reference)

	var lang language.Tag
	if dict["Lang"] != nil {
		langStr, err := GetTextString(r, dict["Lang"])
		if err == nil && langStr != "" {
			lang, _ = language.Parse(string(langStr))
		}
	}

	needsRendering, _ := GetBoolean(r, dict["NeedsRendering"])

	return &Catalog{
		Pages:          pages,
		PageLayout:     pageLayout,
		PageMode:       pageMode,
		Outlines:       outlines,
		Metadata:       metadata,
		Lang:           lang,
		NeedsRendering: bool(needsRendering),
	}, nil
}
