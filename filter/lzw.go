package filter

import (
	"io"
)

// lzwDecoder implements the PDF variant of LZW (variable code width 9-12
// bits, MSB-first bit packing, EarlyChange toggling when the code width
// grows), which differs from both Go's compress/lzw (fixed LSB order) and
// TIFF's LZW. It is hand-rolled; only golang.org/x/image/ccitt's bit-reader
// style (read N bits MSB-first from a byte stream) is borrowed as the
// model, since x/image does not itself expose a PDF-compatible LZW reader.
type lzwDecoder struct {
	predictor   int
	colors      int
	bpc         int
	columns     int
	earlyChange bool
}

func newLZWDecoder(p Params) *lzwDecoder {
	return &lzwDecoder{
		predictor:   p.getInt("Predictor", 1),
		colors:      p.getInt("Colors", 1),
		bpc:         p.getInt("BitsPerComponent", 8),
		columns:     p.getInt("Columns", 1),
		earlyChange: p.getInt("EarlyChange", 1) != 0,
	}
}

const (
	lzwClearCode = 256
	lzwEODCode   = 257
	lzwFirstCode = 258
)

func (f *lzwDecoder) Decode(r io.Reader) (io.ReadCloser, error) {
	raw, err := decodePDFLZW(r, f.earlyChange)
	if err != nil {
		return nil, err
	}
	pred := newPredictor(raw, f.predictor, f.colors, f.bpc, f.columns)
	if rc, ok := pred.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(pred), nil
}

type bitReader struct {
	r     io.ByteReader
	bits  uint32
	nBits uint
}

func (b *bitReader) readCode(width uint) (int, error) {
	for b.nBits < width {
		c, err := b.r.ReadByte()
		if err != nil {
			return 0, err
		}
		b.bits = b.bits<<8 | uint32(c)
		b.nBits += 8
	}
	b.nBits -= width
	code := int(b.bits>>b.nBits) & ((1 << width) - 1)
	return code, nil
}

type byteReader struct{ io.Reader }

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b, buf[:])
	return buf[0], err
}

func decodePDFLZW(r io.Reader, earlyChange bool) (io.Reader, error) {
	br := &bitReader{r: byteReader{r}}

	var out []byte
	var table [][]byte
	resetTable := func() {
		table = make([][]byte, lzwFirstCode, 4096)
		for i := 0; i < 256; i++ {
			table[i] = []byte{byte(i)}
		}
		table = table[:lzwFirstCode]
	}
	resetTable()

	width := uint(9)
	var prev []byte

	bump := func() uint {
		n := len(table)
		if earlyChange {
			n++
		}
		switch {
		case n > 2048:
			return 12
		case n > 1024:
			return 11
		case n > 512:
			return 10
		default:
			return 9
		}
	}

	for {
		code, err := br.readCode(width)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if code == lzwClearCode {
			resetTable()
			width = 9
			prev = nil
			continue
		}
		if code == lzwEODCode {
			break
		}

		var entry []byte
		switch {
		case code < len(table):
			entry = table[code]
		case code == len(table) && prev != nil:
			entry = append(append([]byte{}, prev...), prev[0])
		default:
			break
		}
		if entry == nil {
			break
		}

		out = append(out, entry...)

		if prev != nil {
			newEntry := append(append([]byte{}, prev...), entry[0])
			table = append(table, newEntry)
		}
		prev = entry
		width = bump()
	}

	return byteSliceReader(out), nil
}

func byteSliceReader(b []byte) io.Reader {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b   []byte
	pos int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += n
	return n, nil
}
