// Package queue provides a FIFO byte buffer used to hold the payloads
// of pending EEPROM writes.
package queue

import (
	"bytes"
	"errors"
)

// ErrUnderflow is returned when more bytes are requested than the queue holds.
// Operations returning it leave the queue unchanged.
var ErrUnderflow = errors.New("queue: underflow")

// Queue is a first-in first-out sequence of bytes. The zero value is an
// empty queue ready to use.
//
// Queue is not safe for concurrent use.
type Queue struct {
	buf bytes.Buffer
}

// Append adds p to the back of the queue.
func (q *Queue) Append(p []byte) {
	q.buf.Write(p)
}

// AppendByte adds a single byte to the back of the queue.
func (q *Queue) AppendByte(b byte) {
	q.buf.WriteByte(b)
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return q.buf.Len()
}

// IsEmpty reports whether the queue holds no bytes.
func (q *Queue) IsEmpty() bool {
	return q.buf.Len() == 0
}

// Clear discards the queue contents.
func (q *Queue) Clear() {
	q.buf.Reset()
}

// Extract removes n bytes from the front of the queue and returns them.
// If fewer than n bytes are queued, nothing is removed and ErrUnderflow
// is returned.
func (q *Queue) Extract(n int) ([]byte, error) {
	p, err := q.Peek(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	q.buf.Next(n)
	return out, nil
}

// ExtractByte removes and returns the front byte.
func (q *Queue) ExtractByte() (byte, error) {
	if q.buf.Len() == 0 {
		return 0, ErrUnderflow
	}
	return q.buf.ReadByte()
}

// Peek returns the first n bytes without removing them. The returned slice
// aliases the queue storage and is only valid until the next mutation.
func (q *Queue) Peek(n int) ([]byte, error) {
	if n < 0 {
		panic("queue: negative count")
	}
	if q.buf.Len() < n {
		return nil, ErrUnderflow
	}
	return q.buf.Bytes()[:n], nil
}

// Front returns the front byte without removing it.
func (q *Queue) Front() (byte, error) {
	if q.buf.Len() == 0 {
		return 0, ErrUnderflow
	}
	return q.buf.Bytes()[0], nil
}

// DropFront removes the front byte.
func (q *Queue) DropFront() error {
	return q.Drop(1)
}

// Drop removes n bytes from the front of the queue. Like Extract it fails
// without side effects if fewer than n bytes are queued.
func (q *Queue) Drop(n int) error {
	if n < 0 {
		panic("queue: negative count")
	}
	if q.buf.Len() < n {
		return ErrUnderflow
	}
	q.buf.Next(n)
	return nil
}

// IndexByte returns the position of the first occurrence of b, or -1.
func (q *Queue) IndexByte(b byte) int {
	return bytes.IndexByte(q.buf.Bytes(), b)
}

// IndexAfter searches for pattern and returns the position just past the
// end of its first occurrence, or -1 if it was not found. An empty pattern
// matches at 0.
//
// The scan restarts the pattern from its first byte after any mismatch and
// does not backtrack, so a match that overlaps the tail of a partial match
// (e.g. {2, 3} in {2, 2, 3}) is missed. Patterns are short framing markers,
// for which this does not matter.
func (q *Queue) IndexAfter(pattern []byte) int {
	if len(pattern) == 0 {
		return 0
	}
	loc, matched := 0, 0
	for i, b := range q.buf.Bytes() {
		if b != pattern[matched] {
			matched = 0
			continue
		}
		if matched == 0 {
			loc = i + len(pattern)
		}
		matched++
		if matched == len(pattern) {
			return loc
		}
	}
	return -1
}
