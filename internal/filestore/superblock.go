// Package filestore implements the native hts container format: a single
// file holding a checksummed superblock, an append-only payload region, and
// a serialized node index written at flush time.
package filestore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hdstore/hts/internal/binary"
)

// hts file signature, same shape as other binary container magics: a
// high-bit byte to catch 7-bit transports, then CRLF/LF to catch newline
// translation.
var signature = []byte{0x89, 'H', 'T', 'S', '\r', '\n', 0x1a, '\n'}

const (
	formatVersion = 1

	// Signature(8) + Version(1) + Flags(1) + IndexAddr(8) + IndexLen(8) +
	// EOF(8) + Checksum(4)
	superblockSize = 38
)

var (
	errBadSignature = errors.New("not an hts container: signature not found")
	errBadVersion   = errors.New("unsupported hts container version")
	errBadChecksum  = errors.New("superblock checksum mismatch")
)

// superblock is the fixed-location file header. It is rewritten in place on
// every flush to point at the most recent index copy.
type superblock struct {
	Version   uint8
	Flags     uint8
	IndexAddr uint64
	IndexLen  uint64
	EOF       uint64
}

func newSuperblock() *superblock {
	return &superblock{Version: formatVersion, EOF: superblockSize}
}

// readSuperblock parses and verifies the superblock at offset 0.
func readSuperblock(r *binary.Reader) (*superblock, error) {
	raw, err := r.At(0).ReadBytes(superblockSize)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	if !bytes.Equal(raw[:8], signature) {
		return nil, errBadSignature
	}

	body := raw[:superblockSize-4]
	br := binary.NewReader(bytes.NewReader(raw)).At(8)

	sb := &superblock{}
	if sb.Version, err = br.ReadUint8(); err != nil {
		return nil, err
	}
	if sb.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", errBadVersion, sb.Version)
	}
	if sb.Flags, err = br.ReadUint8(); err != nil {
		return nil, err
	}
	if sb.IndexAddr, err = br.ReadUint64(); err != nil {
		return nil, err
	}
	if sb.IndexLen, err = br.ReadUint64(); err != nil {
		return nil, err
	}
	if sb.EOF, err = br.ReadUint64(); err != nil {
		return nil, err
	}

	sum, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	if !binary.VerifyChecksum(body, sum) {
		return nil, errBadChecksum
	}
	return sb, nil
}

// write stages the superblock in memory, checksums it, and emits it at the
// writer's current position.
func (sb *superblock) write(w *binary.Writer) error {
	buf := binary.NewBuffer()
	bw := binary.NewWriter(buf)

	if err := bw.WriteBytes(signature); err != nil {
		return err
	}
	if err := bw.WriteUint8(sb.Version); err != nil {
		return err
	}
	if err := bw.WriteUint8(sb.Flags); err != nil {
		return err
	}
	if err := bw.WriteUint64(sb.IndexAddr); err != nil {
		return err
	}
	if err := bw.WriteUint64(sb.IndexLen); err != nil {
		return err
	}
	if err := bw.WriteUint64(sb.EOF); err != nil {
		return err
	}

	sum := binary.Checksum(buf.Bytes())
	if err := bw.WriteUint32(sum); err != nil {
		return err
	}
	return w.WriteBytes(buf.Bytes())
}
