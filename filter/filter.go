// Package filter implements the PDF stream filter pipeline (spec.md
// component A): FlateDecode, LZWDecode, ASCII85Decode, ASCIIHexDecode,
// RunLengthDecode and CCITTFaxDecode, plus the PNG/TIFF predictors shared by
// Flate and LZW.  DCTDecode and JPXDecode are identity passthroughs here;
// the real JPEG/JPEG2000 decoding happens in package pdfimage, which is the
// only consumer that needs pixel data rather than a byte stream.
package filter

import (
	"bytes"
	"fmt"
	"io"
)

// Params carries the (already resolved) /DecodeParms entries relevant to a
// filter, keyed by their PDF name.  Using plain Go values here, rather than
// pdf.Dict, keeps this package free of a dependency on the root module.
type Params map[string]int

func (p Params) getInt(key string, def int) int {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Decoder turns an encoded stream into a reader over its decoded bytes.
type Decoder interface {
	Decode(r io.Reader) (io.ReadCloser, error)
}

type decoderFunc func(io.Reader) (io.ReadCloser, error)

func (f decoderFunc) Decode(r io.Reader) (io.ReadCloser, error) { return f(r) }

// New constructs the Decoder for one named PDF filter.
func New(name string, parms Params) (Decoder, error) {
	switch name {
	case "FlateDecode", "Fl":
		return newFlateDecoder(parms), nil
	case "LZWDecode", "LZW":
		return newLZWDecoder(parms), nil
	case "ASCII85Decode", "A85":
		return decoderFunc(decodeASCII85), nil
	case "ASCIIHexDecode", "AHx":
		return decoderFunc(decodeASCIIHex), nil
	case "RunLengthDecode", "RL":
		return decoderFunc(decodeRunLength), nil
	case "CCITTFaxDecode", "CCF":
		return newCCITTDecoder(parms), nil
	case "DCTDecode", "DCT", "JPXDecode":
		// Identity at this layer; pdfimage invokes the real image codec.
		return decoderFunc(func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		}), nil
	case "Crypt":
		return decoderFunc(func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		}), nil
	default:
		return nil, fmt.Errorf("unsupported filter %q", name)
	}
}

// Unsupported returns a Decoder whose Decode always fails, used so that a
// bad /Filter name surfaces as an error only when the stream is actually
// read, matching the teacher's lazy-decode behaviour.
func Unsupported(name string) Decoder {
	return decoderFunc(func(io.Reader) (io.ReadCloser, error) {
		return nil, fmt.Errorf("unsupported filter %q", name)
	})
}

func readAllClosed(r io.Reader) (io.ReadCloser, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}
