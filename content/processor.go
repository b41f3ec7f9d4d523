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

// Package content interprets PDF content streams (PDF 32000-1:2008 clause
// 7.8.2, operator tables in 8.2): it tokenizes the operand/operator syntax
// and drives a [seehuhn.de/go/pdf/graphics.Stack] and a
// [seehuhn.de/go/pdf/raster.Painter] from it, turning page and Form/Image
// XObject content into paint calls.
package content

import (
	"bytes"
	"io"
	"math"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/pdf/pdfimage"
	"seehuhn.de/go/pdf/raster"
)

// maxFormDepth bounds Form XObject recursion against pathological or
// maliciously self-referential /XObject resources.
const maxFormDepth = 12

// Processor interprets a content stream, maintaining the PDF graphics
// state (spec.md §4.E) and rasterizing every painting operator through a
// [raster.Painter] (spec.md §4.G). One Processor is created per page; Do
// on a Form XObject reuses it recursively.
//
// The dispatch pattern - a scanner producing operand tokens until an
// operator is seen, then a single switch over the operator name - mirrors
// github.com/unidoc/unipdf's ContentStreamProcessor.Process loop.
type Processor struct {
	R         pdf.Getter
	Resources pdf.Dict
	Stack     *graphics.Stack
	Painter   *raster.Painter

	// Base maps PDF default user space (the page's own coordinate system,
	// before any CTM the content stream applies) to device pixels at the
	// painter's supersampled resolution: it folds together the page's
	// /Rotate, the CropBox origin, and the SSAA scale factor.
	Base graphics.Matrix

	clipStack []*raster.ClipMask // parallels Stack depth, index Depth()-1

	path               *graphics.Path
	pendingClip        bool
	pendingClipEvenOdd bool

	textMatrixValid bool
	formDepth       int
}

// NewProcessor returns a Processor ready to run a page's own content
// stream, with the PDF initial graphics state and no active clip.
func NewProcessor(r pdf.Getter, resources pdf.Dict, painter *raster.Painter, base graphics.Matrix) *Processor {
	return &Processor{
		R:         r,
		Resources: resources,
		Stack:     graphics.NewStack(),
		Painter:   painter,
		Base:      base,
		clipStack: []*raster.ClipMask{nil},
		path:      &graphics.Path{},
	}
}

// concat returns the matrix representing "apply a, then apply b", i.e. the
// PDF row-vector product a*b, matching how cm and Do's Form /Matrix
// concatenate onto the CTM (PDF 32000-1:2008 8.3.4).
func concat(a, b graphics.Matrix) graphics.Matrix {
	return graphics.Matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// deviceMatrix returns the transform from the current user space to device
// pixels: CTM followed by Base.
func (p *Processor) deviceMatrix() graphics.Matrix {
	return concat(p.Stack.Current().CTM, p.Base)
}

func (p *Processor) currentClip() *raster.ClipMask {
	d := p.Stack.Depth() - 1
	if d < 0 || d >= len(p.clipStack) {
		return nil
	}
	return p.clipStack[d]
}

// Run tokenizes and dispatches every operator in content, the top-level
// entry point for rendering a page or an independently-obtained content
// stream (spec.md §4.F).
func (p *Processor) Run(content []byte) error {
	return p.run(bytes.NewReader(content))
}

func (p *Processor) run(r io.Reader) error {
	sc := NewScanner(r)
	var operands []pdf.Object
	for {
		tok, err := sc.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if op, ok := tok.(operator); ok {
			name := string(op)
			if name == "BI" {
				if err := p.skipInlineImage(sc); err != nil && err != io.EOF {
					return err
				}
				operands = operands[:0]
				continue
			}
			p.dispatch(name, operands)
			operands = operands[:0]
			continue
		}
		operands = append(operands, tok)
	}
}

// skipInlineImage consumes tokens through the matching EI, since the
// scanner does not special-case the raw binary body between ID and EI.
// Inline images (PDF 32000-1:2008 8.9.7) are consequently not painted;
// every other operator in the stream is unaffected.
func (p *Processor) skipInlineImage(sc *Scanner) error {
	for {
		tok, err := sc.Next()
		if err != nil {
			return err
		}
		if op, ok := tok.(operator); ok && string(op) == "EI" {
			return nil
		}
	}
}

// dispatch executes a single operator against the given operand stack,
// ignoring malformed or short operand lists (spec.md's "recover instead of
// aborting" rule for damaged content streams).
func (p *Processor) dispatch(op string, args []pdf.Object) {
	st := p.Stack.Current()

	switch op {
	case "q":
		p.Stack.Push()
		p.clipStack = append(p.clipStack, p.currentClip())
	case "Q":
		p.Stack.Pop()
		if len(p.clipStack) > 1 {
			p.clipStack = p.clipStack[:len(p.clipStack)-1]
		}

	case "cm":
		if m, ok := matrixOperand(args); ok {
			st.CTM = concat(m, st.CTM)
		}

	case "w":
		if v, ok := num(args, 0); ok {
			st.LineWidth = v
		}
	case "J":
		if v, ok := num(args, 0); ok {
			st.LineCap = graphics.LineCap(int(v))
		}
	case "j":
		if v, ok := num(args, 0); ok {
			st.LineJoin = graphics.LineJoin(int(v))
		}
	case "M":
		if v, ok := num(args, 0); ok {
			st.MiterLimit = v
		}
	case "d":
		if len(args) >= 2 {
			if arr, ok := args[0].(pdf.Array); ok {
				st.Dash.Array = floatsOf(arr)
			}
			if v, ok := num(args, 1); ok {
				st.Dash.Phase = v
			}
		}
	case "ri":
		if len(args) >= 1 {
			if name, ok := args[0].(pdf.Name); ok {
				st.RenderingIntent = name
			}
		}
	case "gs":
		p.applyExtGState(args)
	case "i":
		// flatness tolerance: the rasterizer always flattens to a fixed
		// device-space tolerance, so this operator has no effect.

	case "m":
		if x, y, ok := xy(args, 0); ok {
			p.path.MoveTo(x, y)
		}
	case "l":
		if x, y, ok := xy(args, 0); ok {
			p.path.LineTo(x, y)
		}
	case "c":
		p.curveTo(args)
	case "v":
		p.curveV(args)
	case "y":
		p.curveY(args)
	case "h":
		p.path.Close()
	case "re":
		if len(args) >= 4 {
			x, _ := num(args, 0)
			y, _ := num(args, 1)
			w, _ := num(args, 2)
			h, _ := num(args, 3)
			p.path.Rectangle(x, y, w, h)
		}

	case "S":
		p.strokePath()
		p.endPath()
	case "s":
		p.path.Close()
		p.strokePath()
		p.endPath()
	case "f", "F":
		p.fillPath(raster.NonZero)
		p.endPath()
	case "f*":
		p.fillPath(raster.EvenOdd)
		p.endPath()
	case "B":
		p.fillPath(raster.NonZero)
		p.strokePath()
		p.endPath()
	case "B*":
		p.fillPath(raster.EvenOdd)
		p.strokePath()
		p.endPath()
	case "b":
		p.path.Close()
		p.fillPath(raster.NonZero)
		p.strokePath()
		p.endPath()
	case "b*":
		p.path.Close()
		p.fillPath(raster.EvenOdd)
		p.strokePath()
		p.endPath()
	case "n":
		p.endPath()

	case "W":
		p.pendingClip = true
		p.pendingClipEvenOdd = false
	case "W*":
		p.pendingClip = true
		p.pendingClipEvenOdd = true

	case "BT":
		st.TextMatrix = graphics.Matrix{1, 0, 0, 1, 0, 0}
		st.TextLineMatrix = graphics.Matrix{1, 0, 0, 1, 0, 0}
	case "ET":

	case "Tc":
		if v, ok := num(args, 0); ok {
			st.CharSpacing = v
		}
	case "Tw":
		if v, ok := num(args, 0); ok {
			st.WordSpacing = v
		}
	case "Tz":
		if v, ok := num(args, 0); ok {
			st.HorizScale = v
		}
	case "TL":
		if v, ok := num(args, 0); ok {
			st.Leading = v
		}
	case "Tf":
		if len(args) >= 2 {
			if name, ok := args[0].(pdf.Name); ok {
				st.Font = name
			}
			if v, ok := num(args, 1); ok {
				st.FontSize = v
			}
		}
	case "Tr":
		if v, ok := num(args, 0); ok {
			st.TextRenderMode = int(v)
		}
	case "Ts":
		if v, ok := num(args, 0); ok {
			st.Rise = v
		}

	case "Td":
		if x, y, ok := xy(args, 0); ok {
			m := graphics.Matrix{1, 0, 0, 1, x, y}
			st.TextLineMatrix = concat(m, st.TextLineMatrix)
			st.TextMatrix = st.TextLineMatrix
		}
	case "TD":
		if x, y, ok := xy(args, 0); ok {
			st.Leading = -y
			m := graphics.Matrix{1, 0, 0, 1, x, y}
			st.TextLineMatrix = concat(m, st.TextLineMatrix)
			st.TextMatrix = st.TextLineMatrix
		}
	case "Tm":
		if m, ok := matrixOperand(args); ok {
			st.TextLineMatrix = m
			st.TextMatrix = m
		}
	case "T*":
		m := graphics.Matrix{1, 0, 0, 1, 0, -st.Leading}
		st.TextLineMatrix = concat(m, st.TextLineMatrix)
		st.TextMatrix = st.TextLineMatrix

	case "Tj":
		if len(args) >= 1 {
			if s, ok := args[0].(pdf.String); ok {
				p.showText(s)
			}
		}
	case "'":
		m := graphics.Matrix{1, 0, 0, 1, 0, -st.Leading}
		st.TextLineMatrix = concat(m, st.TextLineMatrix)
		st.TextMatrix = st.TextLineMatrix
		if len(args) >= 1 {
			if s, ok := args[0].(pdf.String); ok {
				p.showText(s)
			}
		}
	case `"`:
		if len(args) >= 3 {
			if v, ok := num(args, 0); ok {
				st.WordSpacing = v
			}
			if v, ok := num(args, 1); ok {
				st.CharSpacing = v
			}
			m := graphics.Matrix{1, 0, 0, 1, 0, -st.Leading}
			st.TextLineMatrix = concat(m, st.TextLineMatrix)
			st.TextMatrix = st.TextLineMatrix
			if s, ok := args[2].(pdf.String); ok {
				p.showText(s)
			}
		}
	case "TJ":
		if len(args) >= 1 {
			if arr, ok := args[0].(pdf.Array); ok {
				p.showTextArray(arr)
			}
		}

	case "CS":
		if name, ok := args0Name(args); ok {
			st.StrokeColor.Space = p.resolveColorSpace(name)
			st.StrokeColor.Value = st.StrokeColor.Space.Default()
		}
	case "cs":
		if name, ok := args0Name(args); ok {
			st.FillColor.Space = p.resolveColorSpace(name)
			st.FillColor.Value = st.FillColor.Space.Default()
		}
	case "SC", "SCN":
		p.setColor(&st.StrokeColor, args)
	case "sc", "scn":
		p.setColor(&st.FillColor, args)
	case "G":
		p.setDeviceColor(&st.StrokeColor, color.SpaceDeviceGray, args)
	case "g":
		p.setDeviceColor(&st.FillColor, color.SpaceDeviceGray, args)
	case "RG":
		p.setDeviceColor(&st.StrokeColor, color.SpaceDeviceRGB, args)
	case "rg":
		p.setDeviceColor(&st.FillColor, color.SpaceDeviceRGB, args)
	case "K":
		p.setDeviceColor(&st.StrokeColor, color.SpaceDeviceCMYK, args)
	case "k":
		p.setDeviceColor(&st.FillColor, color.SpaceDeviceCMYK, args)
	case "sh":
		// shading patterns paint the current clip region directly; without
		// a clip region active this has no well-defined effect and is
		// skipped.

	case "Do":
		if name, ok := args0Name(args); ok {
			p.doXObject(name)
		}

	case "BMC", "BDC", "EMC", "MP", "DP":
		// marked-content operators carry no painting semantics.

	default:
		// unknown or unsupported operator: ignored, per spec.md's malformed
		// content-stream recovery rule.
	}
}

func args0Name(args []pdf.Object) (pdf.Name, bool) {
	if len(args) == 0 {
		return "", false
	}
	n, ok := args[len(args)-1].(pdf.Name)
	return n, ok
}

func num(args []pdf.Object, i int) (float64, bool) {
	if i < 0 || i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case pdf.Real:
		return float64(v), true
	case pdf.Integer:
		return float64(v), true
	}
	return 0, false
}

func xy(args []pdf.Object, i int) (x, y float64, ok bool) {
	x, ok1 := num(args, i)
	y, ok2 := num(args, i+1)
	return x, y, ok1 && ok2
}

func floatsOf(arr pdf.Array) []float64 {
	out := make([]float64, 0, len(arr))
	for _, obj := range arr {
		switch v := obj.(type) {
		case pdf.Real:
			out = append(out, float64(v))
		case pdf.Integer:
			out = append(out, float64(v))
		}
	}
	return out
}

func matrixOperand(args []pdf.Object) (graphics.Matrix, bool) {
	if len(args) < 6 {
		return graphics.Matrix{}, false
	}
	var m graphics.Matrix
	for i := 0; i < 6; i++ {
		v, ok := num(args, i)
		if !ok {
			return graphics.Matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

func (p *Processor) curveTo(args []pdf.Object) {
	if len(args) < 6 {
		return
	}
	vals := make([]float64, 6)
	for i := range vals {
		v, ok := num(args, i)
		if !ok {
			return
		}
		vals[i] = v
	}
	p.path.CurveTo(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
}

// curveV expands the v operator (first control point == current point).
func (p *Processor) curveV(args []pdf.Object) {
	if len(args) < 4 {
		return
	}
	cur, _ := p.path.CurrentPoint()
	x2, y2, ok1 := xy(args, 0)
	x3, y3, ok2 := xy(args, 2)
	if !ok1 || !ok2 {
		return
	}
	p.path.CurveTo(cur.X, cur.Y, x2, y2, x3, y3)
}

// curveY expands the y operator (second control point == end point).
func (p *Processor) curveY(args []pdf.Object) {
	if len(args) < 4 {
		return
	}
	x1, y1, ok1 := xy(args, 0)
	x3, y3, ok2 := xy(args, 2)
	if !ok1 || !ok2 {
		return
	}
	p.path.CurveTo(x1, y1, x3, y3, x3, y3)
}

func (p *Processor) fillPath(rule raster.FillRule) {
	st := p.Stack.Current()
	device := p.path.Transform(p.deviceMatrix())
	style := raster.Style{Color: colorOrBlack(st.FillColor.Value), Alpha: st.FillAlpha}
	p.Painter.Fill(device, rule, style, p.currentClip())
}

func (p *Processor) strokePath() {
	st := p.Stack.Current()
	device := p.path.Transform(p.deviceMatrix())
	scale := deviceScale(p.deviceMatrix())
	width := st.LineWidth * scale
	style := raster.Style{Color: colorOrBlack(st.StrokeColor.Value), Alpha: st.StrokeAlpha}
	p.Painter.Stroke(device, width, st.LineCap, st.LineJoin, st.MiterLimit, style, p.currentClip())
}

// endPath finalizes the current path: applies a pending clip (from W/W*)
// and starts a fresh, empty path for the next painting operator (PDF
// 32000-1:2008 8.5.4: the clip only takes effect once the path-painting
// operator that follows W/W* executes).
func (p *Processor) endPath() {
	if p.pendingClip {
		device := p.path.Transform(p.deviceMatrix())
		rule := raster.NonZero
		if p.pendingClipEvenOdd {
			rule = raster.EvenOdd
		}
		w, h := p.Painter.Bounds()
		newMask := raster.NewClipMask(device, rule, w, h)
		d := p.Stack.Depth() - 1
		p.clipStack[d] = newMask.Intersect(p.currentClip())
		p.pendingClip = false
	}
	p.path = &graphics.Path{}
}

func colorOrBlack(c color.Color) color.Color {
	if c == nil {
		return color.DeviceGray(0)
	}
	return c
}

// deviceScale estimates the isotropic scale factor a matrix applies, used
// to convert a user-space line width into device pixels.
func deviceScale(m graphics.Matrix) float64 {
	sx := hypot(m[0], m[1])
	sy := hypot(m[2], m[3])
	return (sx + sy) / 2
}

func hypot(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

func (p *Processor) applyExtGState(args []pdf.Object) {
	name, ok := args0Name(args)
	if !ok || p.Resources == nil {
		return
	}
	gsDict, err := pdf.GetDict(p.R, p.Resources["ExtGState"])
	if err != nil || gsDict == nil {
		return
	}
	egs, err := pdf.GetDict(p.R, gsDict[name])
	if err != nil || egs == nil {
		return
	}
	st := p.Stack.Current()
	if v, err := pdf.GetNumber(p.R, egs["CA"]); err == nil {
		st.StrokeAlpha = float64(v)
	}
	if v, err := pdf.GetNumber(p.R, egs["ca"]); err == nil {
		st.FillAlpha = float64(v)
	}
	if v, err := pdf.GetNumber(p.R, egs["LW"]); err == nil {
		st.LineWidth = float64(v)
	}
	if bm, ok := egs["BM"]; ok {
		if name, err := pdf.GetName(p.R, bm); err == nil {
			st.BlendMode = name
		} else if arr, err := pdf.GetArray(p.R, bm); err == nil && len(arr) > 0 {
			if name, ok := arr[0].(pdf.Name); ok {
				st.BlendMode = name
			}
		}
	}
}

// resolveColorSpace implements the cs/CS lookup: the device and pattern
// names are special-cased, everything else is a /Resources /ColorSpace
// entry (PDF 32000-1:2008 8.6.8).
func (p *Processor) resolveColorSpace(name pdf.Name) color.Space {
	switch name {
	case "DeviceGray":
		return color.SpaceDeviceGray
	case "DeviceRGB":
		return color.SpaceDeviceRGB
	case "DeviceCMYK":
		return color.SpaceDeviceCMYK
	}
	if p.Resources != nil {
		if csDict, err := pdf.GetDict(p.R, p.Resources["ColorSpace"]); err == nil && csDict != nil {
			if entry, ok := csDict[name]; ok {
				if sp, err := color.ExtractSpace(p.R, entry); err == nil && sp != nil {
					return sp
				}
			}
		}
	}
	return color.SpaceDeviceGray
}

func (p *Processor) setColor(c *graphics.Color, args []pdf.Object) {
	if c.Space == nil {
		c.Space = color.SpaceDeviceGray
	}
	nums := args
	if len(args) > 0 {
		if name, ok := args[len(args)-1].(pdf.Name); ok {
			c.Pattern = name
			nums = args[:len(args)-1]
		}
	}
	values := make([]float64, 0, len(nums))
	for i := range nums {
		if v, ok := num(nums, i); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return
	}
	if col, err := c.Space.NewColor(values); err == nil {
		c.Value = col
	}
}

func (p *Processor) setDeviceColor(c *graphics.Color, space color.Space, args []pdf.Object) {
	values := floatsOf(pdf.Array(args))
	if col, err := space.NewColor(values); err == nil {
		c.Space = space
		c.Value = col
		c.Pattern = ""
	}
}

// doXObject implements the Do operator: resolves the named resource from
// /Resources /XObject and paints it as either an Image or a Form XObject
// (PDF 32000-1:2008 8.10).
func (p *Processor) doXObject(name pdf.Name) {
	if p.Resources == nil {
		return
	}
	xobjDict, err := pdf.GetDict(p.R, p.Resources["XObject"])
	if err != nil || xobjDict == nil {
		return
	}
	stream, err := pdf.GetStream(p.R, xobjDict[name])
	if err != nil || stream == nil {
		return
	}
	subtype, _ := pdf.GetName(p.R, stream.Dict["Subtype"])
	switch subtype {
	case "Image":
		p.doImage(stream)
	case "Form":
		p.doForm(stream)
	}
}

func (p *Processor) doImage(stream *pdf.Stream) {
	img, err := pdfimage.Decode(p.R, stream, p.Resources)
	if err != nil {
		return
	}
	st := p.Stack.Current()
	m := p.deviceMatrix()
	style := raster.Style{Alpha: st.FillAlpha}
	var tint *color.Color
	if img.IsStencil {
		v := colorOrBlack(st.FillColor.Value)
		tint = &v
	}
	p.Painter.DrawImage(img, m, tint, style, p.currentClip())
}

func (p *Processor) doForm(stream *pdf.Stream) {
	if p.formDepth >= maxFormDepth {
		return
	}
	body, err := pdf.DecodeStream(p.R, stream, 0)
	if err != nil {
		return
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return
	}

	formMatrix := graphics.Matrix{1, 0, 0, 1, 0, 0}
	if m, err := pdf.GetMatrix(p.R, stream.Dict["Matrix"]); err == nil {
		formMatrix = m
	}

	resources := p.Resources
	if r, err := pdf.GetDict(p.R, stream.Dict["Resources"]); err == nil && r != nil {
		resources = r
	}

	p.Stack.Push()
	p.clipStack = append(p.clipStack, p.currentClip())
	st := p.Stack.Current()
	st.CTM = concat(formMatrix, st.CTM)

	savedResources, savedPath := p.Resources, p.path
	p.Resources = resources
	p.path = &graphics.Path{}
	p.formDepth++

	p.run(bytes.NewReader(data))

	p.formDepth--
	p.Resources = savedResources
	p.path = savedPath

	p.Stack.Pop()
	if len(p.clipStack) > 1 {
		p.clipStack = p.clipStack[:len(p.clipStack)-1]
	}
}

// showText paints one text-showing string, advancing the text matrix by
// each byte's width. Glyph outlines are not decoded from the embedded or
// referenced font program (spec.md's font stack is a still-open question,
// see DESIGN.md); instead every non-space byte paints a filled box
// approximating a glyph's ink extent, wide enough to keep line layout
// (word wrap boundaries, right margins) visually faithful to the real
// text.
func (p *Processor) showText(s pdf.String) {
	st := p.Stack.Current()
	if st.TextRenderMode == 3 || st.TextRenderMode == 7 {
		p.advanceTextOnly(s)
		return
	}
	scale := st.HorizScale / 100
	for _, b := range s {
		advance := glyphAdvance(st, b)
		if b != ' ' {
			p.paintGlyphBox(st, advance*0.8)
		}
		dx := (advance + extraSpacing(st, b)) * scale
		m := graphics.Matrix{1, 0, 0, 1, dx, 0}
		st.TextMatrix = concat(m, st.TextMatrix)
	}
}

func (p *Processor) advanceTextOnly(s pdf.String) {
	st := p.Stack.Current()
	scale := st.HorizScale / 100
	for _, b := range s {
		advance := glyphAdvance(st, b)
		dx := (advance + extraSpacing(st, b)) * scale
		m := graphics.Matrix{1, 0, 0, 1, dx, 0}
		st.TextMatrix = concat(m, st.TextMatrix)
	}
}

func glyphAdvance(st *graphics.State, _ byte) float64 {
	return st.FontSize * 0.5
}

func extraSpacing(st *graphics.State, b byte) float64 {
	extra := st.CharSpacing
	if b == ' ' {
		extra += st.WordSpacing
	}
	return extra
}

func (p *Processor) paintGlyphBox(st *graphics.State, width float64) {
	box := &graphics.Path{}
	height := st.FontSize * 0.62
	box.Rectangle(width*0.1, 0, width*0.8, height)
	trm := concat(st.TextMatrix, st.CTM)
	device := box.Transform(concat(trm, p.Base))

	var col color.Color
	var alpha float64
	if st.TextRenderMode == 1 || st.TextRenderMode == 5 {
		col, alpha = colorOrBlack(st.StrokeColor.Value), st.StrokeAlpha
	} else {
		col, alpha = colorOrBlack(st.FillColor.Value), st.FillAlpha
	}
	style := raster.Style{Color: col, Alpha: alpha}
	p.Painter.Fill(device, raster.NonZero, style, p.currentClip())
}

// showTextArray implements TJ: a mix of strings (shown via showText) and
// numbers (position adjustments in thousandths of text space, subtracted
// from the text matrix's translation per PDF 32000-1:2008 9.4.3).
func (p *Processor) showTextArray(arr pdf.Array) {
	st := p.Stack.Current()
	scale := st.HorizScale / 100
	for _, obj := range arr {
		switch v := obj.(type) {
		case pdf.String:
			p.showText(v)
		case pdf.Real, pdf.Integer:
			adj, _ := num([]pdf.Object{v}, 0)
			dx := -adj / 1000 * st.FontSize * scale
			m := graphics.Matrix{1, 0, 0, 1, dx, 0}
			st.TextMatrix = concat(m, st.TextMatrix)
		}
	}
}
