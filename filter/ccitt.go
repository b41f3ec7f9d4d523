package filter

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// ccittDecoder wraps golang.org/x/image/ccitt to implement CCITTFaxDecode
// (PDF 32000-1:2008 7.4.6). The /DecodeParms keys map directly onto the
// ccitt package's options.
type ccittDecoder struct {
	columns   int
	rows      int
	k         int
	blackIs1  bool
	byteAlign bool
}

func newCCITTDecoder(p Params) *ccittDecoder {
	return &ccittDecoder{
		columns:   p.getInt("Columns", 1728),
		rows:      p.getInt("Rows", 0),
		k:         p.getInt("K", 0),
		blackIs1:  p.getInt("BlackIs1", 0) != 0,
		byteAlign: p.getInt("EncodedByteAlign", 0) != 0,
	}
}

func (f *ccittDecoder) Decode(r io.Reader) (io.ReadCloser, error) {
	mode := ccitt.Group4
	switch {
	case f.k < 0:
		mode = ccitt.Group4
	case f.k == 0:
		mode = ccitt.Group3_1D
	default:
		mode = ccitt.Group3_2D
	}

	opts := &ccitt.Options{
		Invert: f.blackIs1,
		Align:  f.byteAlign,
	}

	rows := f.rows
	var reader io.Reader
	if rows > 0 {
		reader = ccitt.NewReader(r, ccitt.MSB, mode, f.columns, rows, opts)
	} else {
		// Rows unspecified: decode greedily and let the caller determine
		// length from the consumer (e.g. the Image XObject's /Height).
		reader = ccitt.NewReader(r, ccitt.MSB, mode, f.columns, 1<<20, opts)
	}

	buf, err := io.ReadAll(reader)
	if err != nil && len(buf) == 0 {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}
