// Package binary provides positional binary I/O for the hts container
// format. All integers are little-endian; strings and byte blocks are
// uint32-length-prefixed.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxBlockLen bounds any single length-prefixed block. It guards index
// parsing against a corrupt length field blowing up allocation.
const MaxBlockLen = 1 << 30

// ErrBlockTooLarge is returned when a length prefix exceeds MaxBlockLen.
var ErrBlockTooLarge = errors.New("length-prefixed block too large")

// Reader reads hts binary structures from an io.ReaderAt, tracking its own
// position so multiple readers can share one underlying file.
type Reader struct {
	r   io.ReaderAt
	pos int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r}
}

// At returns a new reader over the same source positioned at offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := r.r.ReadAt(buf, r.pos); err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadBlock reads a uint32-length-prefixed byte block.
func (r *Reader) ReadBlock() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if n > MaxBlockLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, n)
	}
	return r.ReadBytes(int(n))
}

// ReadString reads a uint32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBlock()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}
