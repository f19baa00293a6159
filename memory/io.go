package memory

import (
	"fmt"
	"io"
)

// ensure interface conformation
var (
	_ io.ReaderAt = (*Memory)(nil)
	_ io.WriterAt = (*Memory)(nil)
)

// size is the number of addressable bytes.
func (m *Memory) size() int64 {
	if c := m.conf.Geometry.Capacity(); c > 0 && c < 1<<16 {
		return int64(c)
	}
	return 1 << 16
}

// ReadAt implements io.ReaderAt on top of Read. Reads running past the end
// of the device return the bytes up to the end and io.EOF.
func (m *Memory) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	if off >= m.size() {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n = len(p)
	if end := off + int64(n); end > m.size() {
		n = int(m.size() - off)
		err = io.EOF
	}
	if rerr := m.Read(uint16(off), p[:n]); rerr != nil {
		return 0, rerr
	}
	return n, err
}

// WriteAt implements io.WriterAt by queueing p with WriteRequest. The data
// reaches the device once the request is serviced, so a nil error only means
// the write was accepted.
func (m *Memory) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(p)) > m.size() {
		return 0, fmt.Errorf("%w: %d bytes at %d", ErrOutOfRange, len(p), off)
	}
	m.WriteRequest(uint16(off), p)
	return len(p), nil
}
