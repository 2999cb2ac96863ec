package table

// streaming.go provides the io.Reader wrappers the loader reads through:
//
//   - BOMSkippingReader: Removes UTF-8 BOM (0xEF 0xBB 0xBF) from Windows files
//   - CountingReader: Tracks bytes read for load diagnostics

import (
	"io"
)

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader     io.Reader
	bomChecked bool
	buf        [3]byte
	pending    []byte // bytes read during the BOM check that are not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.bomChecked {
		r.bomChecked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}

		if !(n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF) {
			r.pending = r.buf[:n]
		}

		if err == io.EOF {
			if len(r.pending) == 0 {
				return 0, io.EOF
			}
			copied := copy(p, r.pending)
			r.pending = r.pending[copied:]
			if len(r.pending) == 0 {
				return copied, io.EOF
			}
			return copied, nil
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// wrapSource strips a BOM and counts the bytes that pass through.
func wrapSource(r io.Reader) *CountingReader {
	return NewCountingReader(NewBOMSkippingReader(r))
}
