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
	"errors"
	"fmt"
	"strings"
)

var (
	errVersion        = errors.New("unsupported PDF version")
	errCorrupted      = errors.New("corrupted ciphertext")
	errNoDate         = errors.New("not a valid date string")
	errNoRectangle    = errors.New("not a valid PDF rectangle")
	errDuplicateRef   = errors.New("object already written")
	errShortID        = errors.New("PDF file identifier too short")
	errInvalidPassword = errors.New("invalid password")
)

// AuthenticationError indicates that authentication failed because the correct
// password has not been supplied.
type AuthenticationError struct {
	ID []byte
}

func (err *AuthenticationError) Error() string {
	if err.ID == nil {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed for document ID %x", err.ID)
}

// MalformedFileError indicates that the PDF file could not be parsed.  Loc
// records a breadcrumb trail of the parse context (e.g. "xref", "trailer",
// "object 12 0") in outermost-first order; it is informational only and
// has no effect on equality or unwrapping.
type MalformedFileError struct {
	Err error
	Loc []string
}

func (err *MalformedFileError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if len(err.Loc) > 0 {
		tail = " (in " + strings.Join(err.Loc, "/") + ")"
	}
	return "not a valid PDF file" + middle + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// VersionError is returned when a file claims to use a PDF feature which the
// PDF version given in the header does not support.
type VersionError struct {
	Operation string
	Earliest  Version
}

func (err *VersionError) Error() string {
	return (err.Operation + " requires PDF version " +
		err.Earliest.String() + " or later")
}

// FilterError indicates that a stream filter (spec.md component A) could
// not decode its input.
type FilterError struct {
	Filter Name
	Err    error
}

func (err *FilterError) Error() string {
	return fmt.Sprintf("filter %s: %s", err.Filter, err.Err)
}

func (err *FilterError) Unwrap() error { return err.Err }

// FontError indicates a problem while building a PdfFontInfo from a font
// dictionary or embedded font program.
type FontError struct {
	Font string
	Err  error
}

func (err *FontError) Error() string {
	if err.Font == "" {
		return fmt.Sprintf("font: %s", err.Err)
	}
	return fmt.Sprintf("font %q: %s", err.Font, err.Err)
}

func (err *FontError) Unwrap() error { return err.Err }

// RenderError indicates a failure in the content interpreter or painter
// that aborts rendering of a single page (spec.md §7, "operator/paint
// failure ends the page, not the process").
type RenderError struct {
	Op  string
	Err error
}

func (err *RenderError) Error() string {
	if err.Op == "" {
		return fmt.Sprintf("render: %s", err.Err)
	}
	return fmt.Sprintf("render: operator %s: %s", err.Op, err.Err)
}

func (err *RenderError) Unwrap() error { return err.Err }

// Errorf builds a *MalformedFileError from a format string, the way callers
// throughout the GetXxx helpers and the font package report structural
// problems found while reading an object.
func Errorf(format string, args ...any) error {
	return &MalformedFileError{Err: fmt.Errorf(format, args...)}
}

// AsString renders obj as a short human-readable token for use in error
// messages and MalformedFileError.Loc breadcrumbs: "5 0 R" for a reference,
// the Go-syntax form of a name or literal, "<nil>" for nil.
func AsString(obj Object) string {
	switch x := obj.(type) {
	case nil:
		return "<nil>"
	case Reference:
		return x.String()
	case Name:
		return "/" + string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Wrap annotates err with a location breadcrumb, building (or extending) a
// *MalformedFileError.  It mirrors the teacher's practice of attaching
// parse context as errors propagate up through GetXxx helpers.
func Wrap(err error, where string) error {
	if err == nil {
		return nil
	}
	var mfe *MalformedFileError
	if errors.As(err, &mfe) {
		loc := make([]string, 0, len(mfe.Loc)+1)
		loc = append(loc, where)
		loc = append(loc, mfe.Loc...)
		return &MalformedFileError{Err: mfe.Err, Loc: loc}
	}
	return &MalformedFileError{Err: err, Loc: []string{where}}
}
