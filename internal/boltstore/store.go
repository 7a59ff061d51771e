// Package boltstore implements the hts backend on top of a bolt database.
// Node and attribute records are JSON documents keyed by path, which keeps
// the on-disk format inspectable with stock bolt tooling.
package boltstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/hdstore/hts/backend"
)

var (
	nodesBucket = []byte("nodes")
	attrsBucket = []byte("attrs")
)

// attrKeySep joins a node path and attribute name into a single attrs-bucket
// key. NUL cannot appear in either part.
const attrKeySep = "\x00"

const (
	kindGroup   = "group"
	kindDataset = "dataset"
)

// record is the JSON document stored per node and per attribute. Payloads
// are inline; the value fields are mutually exclusive, selected by
// Desc.Class.
type record struct {
	Kind    string     `json:"kind,omitempty"`
	Desc    descriptor `json:"desc"`
	Strings []string   `json:"strings,omitempty"`
	Ints    []int64    `json:"ints,omitempty"`
	Floats  []float64  `json:"floats,omitempty"`
	Ref     string     `json:"ref,omitempty"`
	Tag     string     `json:"tag,omitempty"`
	Data    []byte     `json:"data,omitempty"`
}

// descriptor mirrors backend.Descriptor with an explicit Scalar marker,
// because JSON cannot distinguish a nil dims slice from an empty one.
type descriptor struct {
	Class  uint8    `json:"class"`
	Scalar bool     `json:"scalar"`
	Dims   []uint64 `json:"dims,omitempty"`
	Array  bool     `json:"array,omitempty"`
}

func toDescriptor(d backend.Descriptor) descriptor {
	return descriptor{
		Class:  uint8(d.Class),
		Scalar: d.Dims == nil,
		Dims:   d.Dims,
		Array:  d.IsArrayType,
	}
}

func (d descriptor) toBackend() backend.Descriptor {
	out := backend.Descriptor{Class: backend.Class(d.Class), IsArrayType: d.Array}
	if !d.Scalar {
		out.Dims = d.Dims
		if out.Dims == nil {
			out.Dims = []uint64{}
		}
	}
	return out
}

// Store is a bolt-backed hts backend.
type Store struct {
	db       *bolt.DB
	readOnly bool
}

var _ backend.Store = (*Store)(nil)

// Open opens or creates a bolt container at path. Existence checks for
// ReadOnly and ReadWrite are the caller's concern: bolt itself creates
// missing files, so the hts session layer stats the path first.
func Open(path string, mode backend.Mode) (*Store, error) {
	if mode == backend.Create {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing existing container: %w", err)
		}
	}

	opts := &bolt.Options{}
	if mode == backend.ReadOnly {
		opts.ReadOnly = true
	}
	db, err := bolt.Open(path, 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("opening bolt container: %w", err)
	}

	s := &Store{db: db, readOnly: mode == backend.ReadOnly}
	if mode == backend.Create {
		if err := s.initBuckets(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		nodes, err := tx.CreateBucketIfNotExists(nodesBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(attrsBucket); err != nil {
			return err
		}
		root, err := json.Marshal(&record{Kind: kindGroup})
		if err != nil {
			return err
		}
		return nodes.Put([]byte("/"), root)
	})
}

func (s *Store) Exists(path string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(nodesBucket).Get([]byte(path)) != nil
		return nil
	})
	return found, err
}

func (s *Store) IsGroup(path string) (bool, error) {
	rec, err := s.node(path)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.Kind == kindGroup, nil
}

func (s *Store) IsDataset(path string) (bool, error) {
	rec, err := s.node(path)
	if err != nil || rec == nil {
		return false, err
	}
	return rec.Kind == kindDataset, nil
}

func (s *Store) ListChildren(path string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		if b.Get([]byte(path)) == nil {
			return fmt.Errorf("no node at %q", path)
		}
		return b.ForEach(func(k, _ []byte) error {
			p := string(k)
			if p == "/" {
				return nil
			}
			if parentOf(p) == path {
				names = append(names, p[strings.LastIndex(p, "/")+1:])
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func parentOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return "/"
	}
	return p[:i]
}

func (s *Store) CreateGroup(path string) error {
	return s.putNode(path, &record{Kind: kindGroup})
}

func (s *Store) Descriptor(path, attr string) (backend.Descriptor, error) {
	rec, err := s.lookup(path, attr)
	if err != nil {
		return backend.Descriptor{}, err
	}
	return rec.Desc.toBackend(), nil
}

func (s *Store) ListAttrs(path string) ([]string, error) {
	prefix := []byte(path + attrKeySep)
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(nodesBucket).Get([]byte(path)) == nil {
			return fmt.Errorf("no node at %q", path)
		}
		c := tx.Bucket(attrsBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			names = append(names, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) HasAttr(path, name string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(nodesBucket).Get([]byte(path)) == nil {
			return fmt.Errorf("no node at %q", path)
		}
		found = tx.Bucket(attrsBucket).Get(attrKey(path, name)) != nil
		return nil
	})
	return found, err
}

func (s *Store) ReadStrings(path, attr string) ([]string, error) {
	rec, err := s.lookup(path, attr)
	if err != nil {
		return nil, err
	}
	if rec.Strings == nil {
		return []string{}, nil
	}
	return rec.Strings, nil
}

func (s *Store) ReadInts(path, attr string) ([]int64, error) {
	rec, err := s.lookup(path, attr)
	if err != nil {
		return nil, err
	}
	if rec.Ints == nil {
		return []int64{}, nil
	}
	return rec.Ints, nil
}

func (s *Store) ReadFloats(path, attr string) ([]float64, error) {
	rec, err := s.lookup(path, attr)
	if err != nil {
		return nil, err
	}
	if rec.Floats == nil {
		return []float64{}, nil
	}
	return rec.Floats, nil
}

func (s *Store) ReadRef(path, attr string) (string, error) {
	rec, err := s.lookup(path, attr)
	if err != nil {
		return "", err
	}
	return rec.Ref, nil
}

func (s *Store) ReadOpaque(path string) (string, []byte, error) {
	rec, err := s.lookup(path, "")
	if err != nil {
		return "", nil, err
	}
	data := rec.Data
	if data == nil {
		data = []byte{}
	}
	return rec.Tag, data, nil
}

func (s *Store) WriteStrings(path, attr string, d backend.Descriptor, v []string) error {
	return s.put(path, attr, &record{Desc: toDescriptor(d), Strings: v})
}

func (s *Store) WriteInts(path, attr string, d backend.Descriptor, v []int64) error {
	return s.put(path, attr, &record{Desc: toDescriptor(d), Ints: v})
}

func (s *Store) WriteFloats(path, attr string, d backend.Descriptor, v []float64) error {
	return s.put(path, attr, &record{Desc: toDescriptor(d), Floats: v})
}

func (s *Store) WriteRef(path, attr, target string) error {
	d := toDescriptor(backend.Scalar(backend.ClassRef))
	return s.put(path, attr, &record{Desc: d, Ref: target})
}

func (s *Store) WriteOpaque(path, tag string, data []byte) error {
	d := toDescriptor(backend.Array(backend.ClassOpaque, uint64(len(data))))
	return s.put(path, "", &record{Desc: d, Tag: tag, Data: data})
}

// Flush is a no-op: every bolt update transaction is durable on commit.
func (s *Store) Flush() error {
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func attrKey(path, name string) []byte {
	return []byte(path + attrKeySep + name)
}

// node returns the node record at path, or nil if absent.
func (s *Store) node(path string) (*record, error) {
	var rec *record
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(nodesBucket).Get([]byte(path))
		if raw == nil {
			return nil
		}
		rec = &record{}
		return json.Unmarshal(raw, rec)
	})
	return rec, err
}

// lookup returns the dataset record at path (attr == "") or the named
// attribute record, failing if either is absent.
func (s *Store) lookup(path, attr string) (*record, error) {
	if attr == "" {
		rec, err := s.node(path)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("no node at %q", path)
		}
		if rec.Kind != kindDataset {
			return nil, fmt.Errorf("node at %q is not a dataset", path)
		}
		return rec, nil
	}

	var rec *record
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(attrsBucket).Get(attrKey(path, attr))
		if raw == nil {
			return fmt.Errorf("no attribute %q on %q", attr, path)
		}
		rec = &record{}
		return json.Unmarshal(raw, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// putNode inserts a node record, failing on collision.
func (s *Store) putNode(path string, rec *record) error {
	if s.readOnly {
		return backend.ErrReadOnly
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		if b.Get([]byte(path)) != nil {
			return fmt.Errorf("node already exists at %q", path)
		}
		return b.Put([]byte(path), raw)
	})
}

// put stores a dataset (attr == "") or attribute record.
func (s *Store) put(path, attr string, rec *record) error {
	if s.readOnly {
		return backend.ErrReadOnly
	}

	if attr == "" {
		rec.Kind = kindDataset
		return s.putNode(path, rec)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(nodesBucket).Get([]byte(path)) == nil {
			return fmt.Errorf("no node at %q", path)
		}
		b := tx.Bucket(attrsBucket)
		key := attrKey(path, attr)
		if b.Get(key) != nil {
			return fmt.Errorf("attribute %q already exists on %q", attr, path)
		}
		return b.Put(key, raw)
	})
}
