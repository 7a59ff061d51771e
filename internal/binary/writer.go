package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes hts binary structures to an io.WriterAt, tracking its own
// position so multiple writers can share one underlying file.
type Writer struct {
	w   io.WriterAt
	pos int64
}

// NewWriter creates a writer positioned at offset 0.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{w: w}
}

// At returns a new writer over the same destination positioned at offset.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, pos: offset}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteBlock writes a uint32-length-prefixed byte block.
func (w *Writer) WriteBlock(data []byte) error {
	if err := w.WriteUint32(uint32(len(data))); err != nil {
		return err
	}
	return w.WriteBytes(data)
}

// WriteString writes a uint32-length-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) error {
	return w.WriteBlock([]byte(s))
}

// Buffer is an in-memory WriterAt used to stage structures that need a
// trailing checksum before they hit the file.
type Buffer struct {
	buf []byte
}

// NewBuffer creates an empty staging buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the accumulated buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
