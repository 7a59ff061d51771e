package filestore

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hdstore/hts/internal/binary"
)

// Payload encodings. Integers are 8-byte little-endian two's complement,
// floats are IEEE-754 bits in 8 bytes, strings and opaque fields are
// uint32-length-prefixed. A ref payload is the referenced path as a single
// length-prefixed string.

func encodeStrings(v []string) []byte {
	buf := binary.NewBuffer()
	w := binary.NewWriter(buf)
	for _, s := range v {
		w.WriteString(s)
	}
	return buf.Bytes()
}

func decodeStrings(b []byte, n int) ([]string, error) {
	r := binary.NewReader(bytes.NewReader(b))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("decoding string %d of %d: %w", i, n, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func encodeInts(v []int64) []byte {
	buf := binary.NewBuffer()
	w := binary.NewWriter(buf)
	for _, x := range v {
		w.WriteUint64(uint64(x))
	}
	return buf.Bytes()
}

func decodeInts(b []byte, n int) ([]int64, error) {
	if len(b) != n*8 {
		return nil, fmt.Errorf("int payload is %d bytes, want %d", len(b), n*8)
	}
	r := binary.NewReader(bytes.NewReader(b))
	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		x, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		out = append(out, int64(x))
	}
	return out, nil
}

func encodeFloats(v []float64) []byte {
	buf := binary.NewBuffer()
	w := binary.NewWriter(buf)
	for _, x := range v {
		w.WriteUint64(math.Float64bits(x))
	}
	return buf.Bytes()
}

func decodeFloats(b []byte, n int) ([]float64, error) {
	if len(b) != n*8 {
		return nil, fmt.Errorf("float payload is %d bytes, want %d", len(b), n*8)
	}
	r := binary.NewReader(bytes.NewReader(b))
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		bits, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		out = append(out, math.Float64frombits(bits))
	}
	return out, nil
}

func encodeRef(target string) []byte {
	return encodeStrings([]string{target})
}

func decodeRef(b []byte) (string, error) {
	v, err := decodeStrings(b, 1)
	if err != nil {
		return "", err
	}
	return v[0], nil
}

func encodeOpaque(tag string, data []byte) []byte {
	buf := binary.NewBuffer()
	w := binary.NewWriter(buf)
	w.WriteString(tag)
	w.WriteBlock(data)
	return buf.Bytes()
}

func decodeOpaque(b []byte) (string, []byte, error) {
	r := binary.NewReader(bytes.NewReader(b))
	tag, err := r.ReadString()
	if err != nil {
		return "", nil, fmt.Errorf("decoding opaque tag: %w", err)
	}
	data, err := r.ReadBlock()
	if err != nil {
		return "", nil, fmt.Errorf("decoding opaque data: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return tag, data, nil
}
