package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hdstore/hts/backend"
	"github.com/hdstore/hts/internal/binary"
)

var errIndexChecksum = errors.New("index checksum mismatch")

type nodeKind uint8

const (
	kindGroup nodeKind = iota + 1
	kindDataset
)

// attrRecord holds one attribute: its declared type and its encoded value.
// Attribute values are small, so they live inline in the index rather than
// in the payload region.
type attrRecord struct {
	desc  backend.Descriptor
	value []byte
}

// nodeRecord is one row of the node table. Dataset payloads live in the
// payload region, addressed by payloadAddr/payloadLen.
type nodeRecord struct {
	kind        nodeKind
	desc        backend.Descriptor
	payloadAddr uint64
	payloadLen  uint64
	attrs       map[string]*attrRecord
}

// index is the in-memory node table. It is the source of truth between
// flushes; a serialized copy is appended to the file on every flush.
type index struct {
	nodes map[string]*nodeRecord
}

func newIndex() *index {
	return &index{
		nodes: map[string]*nodeRecord{
			"/": {kind: kindGroup, attrs: map[string]*attrRecord{}},
		},
	}
}

func (ix *index) get(path string) *nodeRecord {
	return ix.nodes[path]
}

func (ix *index) put(path string, rec *nodeRecord) {
	if rec.attrs == nil {
		rec.attrs = map[string]*attrRecord{}
	}
	ix.nodes[path] = rec
}

// children returns the sorted names of the direct children of path.
func (ix *index) children(path string) []string {
	var names []string
	for p := range ix.nodes {
		if p == "/" {
			continue
		}
		if parentOf(p) == path {
			names = append(names, p[strings.LastIndex(p, "/")+1:])
		}
	}
	sort.Strings(names)
	return names
}

// parentOf returns the parent path of a non-root absolute path.
func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

// serialize encodes the node table with a trailing checksum. Rows are
// emitted in path order so identical trees produce identical bytes.
func (ix *index) serialize() []byte {
	paths := make([]string, 0, len(ix.nodes))
	for p := range ix.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	buf := binary.NewBuffer()
	w := binary.NewWriter(buf)

	w.WriteUint32(uint32(len(paths)))
	for _, p := range paths {
		rec := ix.nodes[p]
		w.WriteString(p)
		w.WriteUint8(uint8(rec.kind))
		writeDescriptor(w, rec.desc)
		w.WriteUint64(rec.payloadAddr)
		w.WriteUint64(rec.payloadLen)

		attrNames := make([]string, 0, len(rec.attrs))
		for name := range rec.attrs {
			attrNames = append(attrNames, name)
		}
		sort.Strings(attrNames)

		w.WriteUint16(uint16(len(attrNames)))
		for _, name := range attrNames {
			ar := rec.attrs[name]
			w.WriteString(name)
			writeDescriptor(w, ar.desc)
			w.WriteBlock(ar.value)
		}
	}

	sum := binary.Checksum(buf.Bytes())
	w.WriteUint32(sum)
	return buf.Bytes()
}

// parseIndex decodes and verifies a serialized node table.
func parseIndex(raw []byte) (*index, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("index too short: %d bytes", len(raw))
	}

	body := raw[:len(raw)-4]
	r := binary.NewReader(bytes.NewReader(raw))

	sumReader := r.At(int64(len(raw) - 4))
	sum, err := sumReader.ReadUint32()
	if err != nil {
		return nil, err
	}
	if !binary.VerifyChecksum(body, sum) {
		return nil, errIndexChecksum
	}

	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	ix := &index{nodes: make(map[string]*nodeRecord, count)}
	for i := uint32(0); i < count; i++ {
		p, err := r.ReadString()
		if err != nil {
			return nil, fmt.Errorf("reading node %d path: %w", i, err)
		}
		kind, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		rec := &nodeRecord{kind: nodeKind(kind), attrs: map[string]*attrRecord{}}
		if rec.desc, err = readDescriptor(r); err != nil {
			return nil, fmt.Errorf("reading node %q descriptor: %w", p, err)
		}
		if rec.payloadAddr, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		if rec.payloadLen, err = r.ReadUint64(); err != nil {
			return nil, err
		}

		attrCount, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		for j := uint16(0); j < attrCount; j++ {
			name, err := r.ReadString()
			if err != nil {
				return nil, fmt.Errorf("reading attr %d of %q: %w", j, p, err)
			}
			ar := &attrRecord{}
			if ar.desc, err = readDescriptor(r); err != nil {
				return nil, err
			}
			if ar.value, err = r.ReadBlock(); err != nil {
				return nil, err
			}
			rec.attrs[name] = ar
		}
		ix.nodes[p] = rec
	}

	if ix.nodes["/"] == nil {
		return nil, errors.New("index has no root group")
	}
	return ix, nil
}

func writeDescriptor(w *binary.Writer, d backend.Descriptor) {
	w.WriteUint8(uint8(d.Class))
	arrayFlag := uint8(0)
	if d.IsArrayType {
		arrayFlag = 1
	}
	w.WriteUint8(arrayFlag)
	w.WriteUint8(uint8(len(d.Dims)))
	for _, dim := range d.Dims {
		w.WriteUint64(dim)
	}
}

func readDescriptor(r *binary.Reader) (backend.Descriptor, error) {
	var d backend.Descriptor

	class, err := r.ReadUint8()
	if err != nil {
		return d, err
	}
	d.Class = backend.Class(class)

	arrayFlag, err := r.ReadUint8()
	if err != nil {
		return d, err
	}
	d.IsArrayType = arrayFlag != 0

	ndims, err := r.ReadUint8()
	if err != nil {
		return d, err
	}
	for i := uint8(0); i < ndims; i++ {
		dim, err := r.ReadUint64()
		if err != nil {
			return d, err
		}
		d.Dims = append(d.Dims, dim)
	}
	return d, nil
}
