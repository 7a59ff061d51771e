package filestore

import (
	"fmt"
	"os"

	"github.com/hdstore/hts/backend"
	"github.com/hdstore/hts/internal/alloc"
	"github.com/hdstore/hts/internal/binary"
)

// Options configures a filestore.
type Options struct {
	// SyncOnFlush fsyncs the file after every flush.
	SyncOnFlush bool
}

// Store is the native single-file backend. Dataset payloads are written to
// the payload region as they are created; the node index is kept in memory
// and appended to the file on Flush and Close.
type Store struct {
	path  string
	mode  backend.Mode
	file  *os.File
	r     *binary.Reader
	w     *binary.Writer // nil when read-only
	alloc *alloc.Allocator
	super *superblock
	idx   *index
	opts  Options
	dirty bool
}

var _ backend.Store = (*Store)(nil)

// Open opens or creates a container file in the given mode. For ReadOnly
// and ReadWrite the file must already exist; Create truncates any existing
// file at path.
func Open(path string, mode backend.Mode, opts Options) (*Store, error) {
	switch mode {
	case backend.Create:
		return create(path, opts)
	case backend.ReadOnly, backend.ReadWrite:
		return open(path, mode, opts)
	default:
		return nil, fmt.Errorf("unknown open mode %d", mode)
	}
}

func create(path string, opts Options) (*Store, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}

	s := &Store{
		path:  path,
		mode:  backend.Create,
		file:  f,
		r:     binary.NewReader(f),
		w:     binary.NewWriter(f),
		alloc: alloc.New(superblockSize),
		super: newSuperblock(),
		idx:   newIndex(),
	}
	s.opts = opts

	// Write a valid empty container immediately so a crash before the first
	// flush still leaves a parseable file.
	if err := s.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return s, nil
}

func open(path string, mode backend.Mode, opts Options) (*Store, error) {
	flag := os.O_RDONLY
	if mode == backend.ReadWrite {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}

	r := binary.NewReader(f)
	sb, err := readSuperblock(r)
	if err != nil {
		f.Close()
		return nil, err
	}

	raw, err := r.At(int64(sb.IndexAddr)).ReadBytes(int(sb.IndexLen))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading index: %w", err)
	}
	idx, err := parseIndex(raw)
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &Store{
		path:  path,
		mode:  mode,
		file:  f,
		r:     r,
		super: sb,
		idx:   idx,
		opts:  opts,
	}
	if mode == backend.ReadWrite {
		s.w = binary.NewWriter(f)
		s.alloc = alloc.New(sb.EOF)
	}
	return s, nil
}

// Path returns the container file path.
func (s *Store) Path() string {
	return s.path
}

// AllocStats returns allocation counters, for tests and diagnostics.
func (s *Store) AllocStats() alloc.Stats {
	if s.alloc == nil {
		return alloc.Stats{}
	}
	return s.alloc.Stats()
}

func (s *Store) Exists(path string) (bool, error) {
	return s.idx.get(path) != nil, nil
}

func (s *Store) IsGroup(path string) (bool, error) {
	rec := s.idx.get(path)
	return rec != nil && rec.kind == kindGroup, nil
}

func (s *Store) IsDataset(path string) (bool, error) {
	rec := s.idx.get(path)
	return rec != nil && rec.kind == kindDataset, nil
}

func (s *Store) ListChildren(path string) ([]string, error) {
	if rec := s.idx.get(path); rec == nil {
		return nil, fmt.Errorf("no node at %q", path)
	}
	return s.idx.children(path), nil
}

func (s *Store) CreateGroup(path string) error {
	if s.w == nil {
		return backend.ErrReadOnly
	}
	if s.idx.get(path) != nil {
		return fmt.Errorf("node already exists at %q", path)
	}
	s.idx.put(path, &nodeRecord{kind: kindGroup})
	s.dirty = true
	return nil
}

func (s *Store) Descriptor(path, attr string) (backend.Descriptor, error) {
	if attr == "" {
		rec, err := s.dataset(path)
		if err != nil {
			return backend.Descriptor{}, err
		}
		return rec.desc, nil
	}
	ar, err := s.attr(path, attr)
	if err != nil {
		return backend.Descriptor{}, err
	}
	return ar.desc, nil
}

func (s *Store) ListAttrs(path string) ([]string, error) {
	rec := s.idx.get(path)
	if rec == nil {
		return nil, fmt.Errorf("no node at %q", path)
	}
	names := make([]string, 0, len(rec.attrs))
	for name := range rec.attrs {
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) HasAttr(path, name string) (bool, error) {
	rec := s.idx.get(path)
	if rec == nil {
		return false, fmt.Errorf("no node at %q", path)
	}
	_, ok := rec.attrs[name]
	return ok, nil
}

func (s *Store) ReadStrings(path, attr string) ([]string, error) {
	raw, d, err := s.payload(path, attr)
	if err != nil {
		return nil, err
	}
	return decodeStrings(raw, elemCount(d))
}

func (s *Store) ReadInts(path, attr string) ([]int64, error) {
	raw, d, err := s.payload(path, attr)
	if err != nil {
		return nil, err
	}
	return decodeInts(raw, elemCount(d))
}

func (s *Store) ReadFloats(path, attr string) ([]float64, error) {
	raw, d, err := s.payload(path, attr)
	if err != nil {
		return nil, err
	}
	return decodeFloats(raw, elemCount(d))
}

func (s *Store) ReadRef(path, attr string) (string, error) {
	raw, _, err := s.payload(path, attr)
	if err != nil {
		return "", err
	}
	return decodeRef(raw)
}

func (s *Store) ReadOpaque(path string) (string, []byte, error) {
	raw, _, err := s.payload(path, "")
	if err != nil {
		return "", nil, err
	}
	return decodeOpaque(raw)
}

func (s *Store) WriteStrings(path, attr string, d backend.Descriptor, v []string) error {
	if err := checkLen(d, len(v)); err != nil {
		return err
	}
	return s.write(path, attr, d, encodeStrings(v))
}

func (s *Store) WriteInts(path, attr string, d backend.Descriptor, v []int64) error {
	if err := checkLen(d, len(v)); err != nil {
		return err
	}
	return s.write(path, attr, d, encodeInts(v))
}

func (s *Store) WriteFloats(path, attr string, d backend.Descriptor, v []float64) error {
	if err := checkLen(d, len(v)); err != nil {
		return err
	}
	return s.write(path, attr, d, encodeFloats(v))
}

func (s *Store) WriteRef(path, attr, target string) error {
	return s.write(path, attr, backend.Scalar(backend.ClassRef), encodeRef(target))
}

func (s *Store) WriteOpaque(path, tag string, data []byte) error {
	d := backend.Array(backend.ClassOpaque, uint64(len(data)))
	return s.write(path, "", d, encodeOpaque(tag, data))
}

// write stores an encoded payload as a dataset (attr == "") or as an
// attribute of an existing node.
func (s *Store) write(path, attr string, d backend.Descriptor, raw []byte) error {
	if s.w == nil {
		return backend.ErrReadOnly
	}

	if attr == "" {
		if s.idx.get(path) != nil {
			return fmt.Errorf("node already exists at %q", path)
		}
		addr := s.alloc.Alloc(uint64(len(raw)))
		if err := s.w.At(int64(addr)).WriteBytes(raw); err != nil {
			return fmt.Errorf("writing payload: %w", err)
		}
		s.idx.put(path, &nodeRecord{
			kind:        kindDataset,
			desc:        d,
			payloadAddr: addr,
			payloadLen:  uint64(len(raw)),
		})
		s.dirty = true
		return nil
	}

	rec := s.idx.get(path)
	if rec == nil {
		return fmt.Errorf("no node at %q", path)
	}
	if _, ok := rec.attrs[attr]; ok {
		return fmt.Errorf("attribute %q already exists on %q", attr, path)
	}
	rec.attrs[attr] = &attrRecord{desc: d, value: raw}
	s.dirty = true
	return nil
}

// Flush appends the current index and rewrites the superblock to point at
// it. A no-op on read-only stores.
func (s *Store) Flush() error {
	if s.w == nil {
		return nil
	}

	raw := s.idx.serialize()
	addr := s.alloc.Alloc(uint64(len(raw)))
	if err := s.w.At(int64(addr)).WriteBytes(raw); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	s.super.IndexAddr = addr
	s.super.IndexLen = uint64(len(raw))
	s.super.EOF = s.alloc.EOF()
	if err := s.super.write(s.w.At(0)); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}

	s.dirty = false
	if s.opts.SyncOnFlush {
		return s.file.Sync()
	}
	return nil
}

// Close flushes pending index changes and releases the file.
func (s *Store) Close() error {
	if s.w != nil && s.dirty {
		if err := s.Flush(); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.file.Close()
}

func (s *Store) dataset(path string) (*nodeRecord, error) {
	rec := s.idx.get(path)
	if rec == nil {
		return nil, fmt.Errorf("no node at %q", path)
	}
	if rec.kind != kindDataset {
		return nil, fmt.Errorf("node at %q is not a dataset", path)
	}
	return rec, nil
}

func (s *Store) attr(path, name string) (*attrRecord, error) {
	rec := s.idx.get(path)
	if rec == nil {
		return nil, fmt.Errorf("no node at %q", path)
	}
	ar, ok := rec.attrs[name]
	if !ok {
		return nil, fmt.Errorf("no attribute %q on %q", name, path)
	}
	return ar, nil
}

// payload returns the raw encoded bytes and descriptor of a dataset or
// attribute value.
func (s *Store) payload(path, attr string) ([]byte, backend.Descriptor, error) {
	if attr != "" {
		ar, err := s.attr(path, attr)
		if err != nil {
			return nil, backend.Descriptor{}, err
		}
		return ar.value, ar.desc, nil
	}

	rec, err := s.dataset(path)
	if err != nil {
		return nil, backend.Descriptor{}, err
	}
	if rec.payloadLen == 0 {
		return nil, rec.desc, nil
	}
	raw, err := s.r.At(int64(rec.payloadAddr)).ReadBytes(int(rec.payloadLen))
	if err != nil {
		return nil, backend.Descriptor{}, fmt.Errorf("reading payload at %q: %w", path, err)
	}
	return raw, rec.desc, nil
}

// elemCount returns the number of payload elements a descriptor declares.
func elemCount(d backend.Descriptor) int {
	n := 1
	for _, dim := range d.Dims {
		n *= int(dim)
	}
	return n
}

func checkLen(d backend.Descriptor, got int) error {
	if want := elemCount(d); got != want {
		return fmt.Errorf("payload has %d elements, descriptor declares %d", got, want)
	}
	return nil
}
