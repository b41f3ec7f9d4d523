package filter

import (
	"bytes"
	"io"
)

// decodeRunLength implements the PDF RunLengthDecode algorithm (PDF
// 32000-1:2008 7.4.5): each run is introduced by a length byte 0-127 (copy
// the following length+1 literal bytes) or 129-255 (repeat the following
// single byte 257-length times); 128 marks end of data.
func decodeRunLength(r io.Reader) (io.ReadCloser, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var out []byte
	i := 0
	for i < len(raw) {
		length := raw[i]
		i++
		switch {
		case length == 128:
			i = len(raw)
		case length < 128:
			n := int(length) + 1
			if i+n > len(raw) {
				n = len(raw) - i
			}
			out = append(out, raw[i:i+n]...)
			i += n
		default:
			if i >= len(raw) {
				break
			}
			b := raw[i]
			i++
			n := 257 - int(length)
			for k := 0; k < n; k++ {
				out = append(out, b)
			}
		}
	}
	return io.NopCloser(bytes.NewReader(out)), nil
}
