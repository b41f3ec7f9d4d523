package filter

import (
	"compress/zlib"
	"io"
)

type flateDecoder struct {
	predictor int
	colors    int
	bpc       int
	columns   int
}

func newFlateDecoder(p Params) *flateDecoder {
	return &flateDecoder{
		predictor: p.getInt("Predictor", 1),
		colors:    p.getInt("Colors", 1),
		bpc:       p.getInt("BitsPerComponent", 8),
		columns:   p.getInt("Columns", 1),
	}
}

func (f *flateDecoder) Decode(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	pred := newPredictor(zr, f.predictor, f.colors, f.bpc, f.columns)
	return &closeChain{Reader: pred, closers: []io.Closer{zr}}, nil
}

// closeChain lets Decode return a reader built from several layers (e.g. a
// predictor wrapping a zlib.Reader) while still exposing the underlying
// Close methods.
type closeChain struct {
	io.Reader
	closers []io.Closer
}

func (c *closeChain) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
