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

// This file contains more complex PDF data structures, composed of the
// elementary types in "types.go".

import (
	"bytes"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"
	"unicode/utf16"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Number is either an Integer or a Real.
type Number float64

// GetNumber reads a numeric value, resolving indirect references and
// requiring the result to be an Integer or a Real.
func GetNumber(r Getter, obj Object) (Number, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return Number(x), nil
	case Real:
		return Number(x), nil
	case nil:
		return 0, nil
	default:
		return 0, &MalformedFileError{
			Err: fmt.Errorf("expected Number but got %T", obj),
		}
	}
}

// TextString is a Go string decoded from a PDF "text string" object.
type TextString string

// GetTextString interprets x as a PDF "text string" and returns the
// corresponding UTF-8 encoded string.
func GetTextString(r Getter, obj Object) (TextString, error) {
	s, err := GetString(r, obj)
	if err != nil {
		return "", err
	}
	return s.AsTextString(), nil
}

var utf16Marker = []byte{254, 255}
var utf8Marker = []byte{239, 187, 191}

// AsTextString decodes a PDF string object as text, detecting the UTF-16BE
// byte-order mark, the (non-standard but common) UTF-8 byte-order mark, and
// otherwise falling back to PDFDocEncoding.
func (x String) AsTextString() TextString {
	b := []byte(x)

	var s string
	switch {
	case bytes.HasPrefix(b, utf16Marker):
		buf := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			buf = append(buf, uint16(b[i])<<8|uint16(b[i+1]))
		}
		s = string(utf16.Decode(buf))
	case bytes.HasPrefix(b, utf8Marker):
		s = string(b[3:])
	default:
		s = PDFDocDecode(x)
	}

	return TextString(s)
}

func (s TextString) AsTextString() TextString {
	return s
}

func (x Name) AsTextString() TextString {
	return TextString(x)
}

// Date is a PDF date/time value.
type Date time.Time

// Now returns the current date and time as a Date object.
func Now() Date {
	return Date(time.Now())
}

func (d Date) String() string {
	return time.Time(d).Format(time.RFC3339)
}

func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d Date) Equal(other Date) bool {
	return time.Time(d).Equal(time.Time(other))
}

// GetDate reads a Date value, resolving indirect references.
func GetDate(r Getter, obj Object) (Date, error) {
	var zero Date

	s, err := GetString(r, obj)
	if err != nil {
		return zero, err
	}
	return s.AsDate()
}

// AsDate converts a PDF date string to a Date object.  If the string does
// not have the expected format, an error is returned.
func (x String) AsDate() (Date, error) {
	var zero Date

	s := string(x.AsTextString())

	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "'", "")
	if s == "D:" || s == "" {
		return zero, nil
	}
	if strings.HasPrefix(s, "19") || strings.HasPrefix(s, "20") {
		s = "D:" + s
	}

	formats := []string{
		"D:20060102150405-0700",
		"D:20060102150405-07",
		"D:20060102150405Z0000",
		"D:20060102150405Z00",
		"D:20060102150405Z",
		"D:20060102150405",
		"D:200601021504-0700",
		"D:200601021504-07",
		"D:200601021504Z0000",
		"D:200601021504Z00",
		"D:200601021504Z",
		"D:200601021504",
		"D:2006010215",
		"D:20060102",
		"D:200601",
		"D:2006",
		time.ANSIC,
	}
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			t = t.Truncate(time.Second)
			return Date(t), nil
		}
	}
	return zero, errNoDate
}

// Rectangle represents a PDF rectangle, normalized so LLx<=URx, LLy<=URy.
type Rectangle struct {
	LLx, LLy, URx, URy float64
}

func (r *Rectangle) Dx() float64 { return r.URx - r.LLx }
func (r *Rectangle) Dy() float64 { return r.URy - r.LLy }

// GetRectangle resolves indirect references and converts the result to a
// PDF rectangle.  If the object is null, nil is returned.
func GetRectangle(r Getter, obj Object) (*Rectangle, error) {
	if rect, ok := obj.(*Rectangle); ok {
		return rect, nil
	}

	a, err := GetArray(r, obj)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}

	return asRectangle(r, a)
}

func asRectangle(r Getter, a Array) (*Rectangle, error) {
	if len(a) != 4 {
		return nil, errNoRectangle
	}
	values, err := GetFloatArray(r, a)
	if err != nil {
		return nil, err
	}
	if len(values) != 4 {
		return nil, errNoRectangle
	}
	rect := &Rectangle{
		LLx: math.Min(values[0], values[2]),
		LLy: math.Min(values[1], values[3]),
		URx: math.Max(values[0], values[2]),
		URy: math.Max(values[1], values[3]),
	}
	return rect, nil
}

func (r *Rectangle) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.LLx, r.LLy, r.URx, r.URy)
}

// IsZero is true if the rectangle is the zero rectangle.
func (r Rectangle) IsZero() bool {
	return r.LLx == 0 && r.LLy == 0 && r.URx == 0 && r.URy == 0
}

// Equal reports whether two rectangles have identical coordinates.
func (r *Rectangle) Equal(other *Rectangle) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.LLx == other.LLx && r.LLy == other.LLy &&
		r.URx == other.URx && r.URy == other.URy
}

// NearlyEqual reports whether the corner coordinates of two rectangles
// differ by less than eps.
func (r *Rectangle) NearlyEqual(other *Rectangle, eps float64) bool {
	return (math.Abs(r.LLx-other.LLx) < eps &&
		math.Abs(r.LLy-other.LLy) < eps &&
		math.Abs(r.URx-other.URx) < eps &&
		math.Abs(r.URy-other.URy) < eps)
}

// XPos interpolates between the left and right edge of the rectangle.
func (r *Rectangle) XPos(rel float64) float64 {
	return r.LLx + rel*(r.URx-r.LLx)
}

// YPos interpolates between the bottom and top edge of the rectangle.
func (r *Rectangle) YPos(rel float64) float64 {
	return r.LLy + rel*(r.URy-r.LLy)
}

// Extend enlarges the rectangle to also cover other.
func (r *Rectangle) Extend(other *Rectangle) {
	if other.IsZero() {
		return
	}
	if r.IsZero() {
		*r = *other
		return
	}
	if other.LLx < r.LLx {
		r.LLx = other.LLx
	}
	if other.LLy < r.LLy {
		r.LLy = other.LLy
	}
	if other.URx > r.URx {
		r.URx = other.URx
	}
	if other.URy > r.URy {
		r.URy = other.URy
	}
}

// ExtendVec enlarges the rectangle to also cover v.
func (r *Rectangle) ExtendVec(v vec.Vec2) {
	isZero := r.IsZero()
	if v.X < r.LLx || isZero {
		r.LLx = v.X
	}
	if v.Y < r.LLy || isZero {
		r.LLy = v.Y
	}
	if v.X > r.URx || isZero {
		r.URx = v.X
	}
	if v.Y > r.URy || isZero {
		r.URy = v.Y
	}
}

// Round rounds the corner coordinates to the given number of decimal
// places and returns the result.
func (r Rectangle) Round(digits int) Rectangle {
	return Rectangle{
		LLx: round(r.LLx, digits),
		LLy: round(r.LLy, digits),
		URx: round(r.URx, digits),
		URy: round(r.URy, digits),
	}
}

// IRound rounds the corner coordinates in place.
func (r *Rectangle) IRound(digits int) {
	r.LLx = round(r.LLx, digits)
	r.LLy = round(r.LLy, digits)
	r.URx = round(r.URx, digits)
	r.URy = round(r.URy, digits)
}

func round(x float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

// Contains checks if a point is within the rectangle.
func (r *Rectangle) Contains(point vec.Vec2) bool {
	return point.X >= r.LLx && point.X <= r.URx &&
		point.Y >= r.LLy && point.Y <= r.URy
}

// GetMatrix reads a 6-element numeric array as an affine transformation
// matrix, as used for /Matrix entries on Form XObjects and patterns.
func GetMatrix(r Getter, obj Object) (m matrix.Matrix, err error) {
	defer func() {
		if err != nil {
			err = Wrap(err, "GetMatrix")
		}
	}()

	a, err := GetFloatArray(r, obj)
	if err != nil {
		return matrix.Matrix{}, err
	}
	if a == nil {
		return matrix.Identity, nil
	}

	if len(a) != 6 {
		return m, &MalformedFileError{
			Err: fmt.Errorf("expected 6 numbers, got %d", len(a)),
		}
	}

	copy(m[:], a)

	return m, nil
}

// Info represents a PDF Document Information Dictionary (all fields
// optional), PDF 32000-1:2008 section 14.3.3.
type Info struct {
	Title    TextString
	Author   TextString
	Subject  TextString
	Keywords TextString

	// Creator names the application that produced the original document,
	// if it was converted to PDF from another format.
	Creator TextString

	// Producer names the application that performed the PDF conversion.
	Producer TextString

	CreationDate Date
	ModDate      Date

	// Trapped is one of "True", "False" or "Unknown".
	Trapped Name

	// Custom holds non-standard Info dictionary entries.
	Custom map[string]string
}

// ExtractInfo reads a Document Information Dictionary.
func ExtractInfo(r Getter, obj Object) (*Info, error) {
	dict, err := GetDict(r, obj)
	if err != nil || dict == nil {
		return nil, err
	}

	info := &Info{}
	info.Title, _ = GetTextString(r, dict["Title"])
	info.Author, _ = GetTextString(r, dict["Author"])
	info.Subject, _ = GetTextString(r, dict["Subject"])
	info.Keywords, _ = GetTextString(r, dict["Keywords"])
	info.Creator, _ = GetTextString(r, dict["Creator"])
	info.Producer, _ = GetTextString(r, dict["Producer"])
	info.CreationDate, _ = GetDate(r, dict["CreationDate"])
	info.ModDate, _ = GetDate(r, dict["ModDate"])
	info.Trapped, _ = GetName(r, dict["Trapped"])

	known := map[Name]bool{
		"Title": true, "Author": true, "Subject": true, "Keywords": true,
		"Creator": true, "Producer": true, "CreationDate": true,
		"ModDate": true, "Trapped": true,
	}
	for key, val := range dict {
		if known[key] {
			continue
		}
		if s, err := GetTextString(r, val); err == nil {
			if info.Custom == nil {
				info.Custom = make(map[string]string)
			}
			info.Custom[string(key)] = string(s)
		}
	}

	return info, nil
}

// Function represents a PDF function (types 0, 2, 3 and 4).  Concrete
// implementations live in package function.
type Function interface {
	FunctionType() int
	Shape() (m int, n int)
	GetDomain() []float64

	// Apply evaluates the function at in and writes the n output values
	// into out, which must have length n.
	Apply(out []float64, in ...float64)
}

// NumberTree represents a PDF number tree, mapping integer keys to values.
type NumberTree interface {
	Lookup(key Integer) (Object, error)
	All() iter.Seq2[Integer, Object]
}

// NameTree represents a PDF name tree, mapping names to values.
type NameTree interface {
	Lookup(key Name) (Object, error)
	All() iter.Seq2[Name, Object]
}

// Action represents a PDF action, e.g. GoTo or URI.
type Action interface {
	ActionType() Name
	Next() []Object
}
