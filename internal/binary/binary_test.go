package binary

import (
	"bytes"
	"testing"
)

func TestWriteReadIntegers(t *testing.T) {
	buf := NewBuffer()
	w := NewWriter(buf)

	if err := w.WriteUint8(0xab); err != nil {
		t.Fatalf("WriteUint8 failed: %v", err)
	}
	if err := w.WriteUint16(0xbeef); err != nil {
		t.Fatalf("WriteUint16 failed: %v", err)
	}
	if err := w.WriteUint32(0xdeadbeef); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}
	if err := w.WriteUint64(0x0123456789abcdef); err != nil {
		t.Fatalf("WriteUint64 failed: %v", err)
	}
	if w.Pos() != 15 {
		t.Errorf("Pos: got %d, want 15", w.Pos())
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if v, err := r.ReadUint8(); err != nil || v != 0xab {
		t.Errorf("ReadUint8: got %#x, err %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0xbeef {
		t.Errorf("ReadUint16: got %#x, err %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadUint32: got %#x, err %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x0123456789abcdef {
		t.Errorf("ReadUint64: got %#x, err %v", v, err)
	}
}

func TestLittleEndianLayout(t *testing.T) {
	buf := NewBuffer()
	w := NewWriter(buf)
	if err := w.WriteUint32(0x01020304); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("layout: got % x, want % x", buf.Bytes(), want)
	}
}

func TestWriteReadBlocksAndStrings(t *testing.T) {
	buf := NewBuffer()
	w := NewWriter(buf)

	if err := w.WriteString("hello"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := w.WriteString(""); err != nil {
		t.Fatalf("WriteString empty failed: %v", err)
	}
	if err := w.WriteBlock([]byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBlock failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if s, err := r.ReadString(); err != nil || s != "hello" {
		t.Errorf("ReadString: got %q, err %v", s, err)
	}
	if s, err := r.ReadString(); err != nil || s != "" {
		t.Errorf("ReadString empty: got %q, err %v", s, err)
	}
	b, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("ReadBlock: got % x", b)
	}
}

func TestReadBlockRejectsHugeLength(t *testing.T) {
	buf := NewBuffer()
	w := NewWriter(buf)
	if err := w.WriteUint32(MaxBlockLen + 1); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if _, err := r.ReadBlock(); err == nil {
		t.Fatal("ReadBlock should reject oversized length prefix")
	}
}

func TestAt(t *testing.T) {
	buf := NewBuffer()
	w := NewWriter(buf)
	if err := w.WriteUint32(1); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// Independent writer position must not disturb the original.
	w2 := w.At(8)
	if err := w2.WriteUint32(2); err != nil {
		t.Fatalf("write at offset failed: %v", err)
	}
	if w.Pos() != 4 {
		t.Errorf("original writer position moved: %d", w.Pos())
	}

	r := NewReader(bytes.NewReader(buf.Bytes())).At(8)
	if v, err := r.ReadUint32(); err != nil || v != 2 {
		t.Errorf("ReadUint32 at 8: got %d, err %v", v, err)
	}
}

func TestChecksumStability(t *testing.T) {
	// Fixed vectors: the checksum must be stable across releases because it
	// is embedded in every file.
	tests := []struct {
		data []byte
	}{
		{nil},
		{[]byte("a")},
		{[]byte("hello, world")},
		{bytes.Repeat([]byte{0x5a}, 100)},
	}

	for _, tt := range tests {
		c1 := Checksum(tt.data)
		c2 := Checksum(tt.data)
		if c1 != c2 {
			t.Errorf("checksum not deterministic for %q", tt.data)
		}
		if !VerifyChecksum(tt.data, c1) {
			t.Errorf("VerifyChecksum failed for %q", tt.data)
		}
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	sum := Checksum(data)

	for i := range data {
		corrupted := append([]byte(nil), data...)
		corrupted[i] ^= 0x01
		if VerifyChecksum(corrupted, sum) {
			t.Errorf("flipping byte %d went undetected", i)
		}
	}
}
