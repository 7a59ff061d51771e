// Package backend defines the capability interface between the hts API layer
// and a concrete storage container. A backend owns one open file and exposes
// path-addressed, typed access to groups, datasets and attributes. It knows
// nothing about dispatch rules or error policy; those live in the hts package.
package backend

import "errors"

// ErrReadOnly is returned by write operations on a store opened read-only.
var ErrReadOnly = errors.New("store is read-only")

// Mode selects how a store file is opened.
type Mode int

const (
	// ReadOnly opens an existing store for reading.
	ReadOnly Mode = iota
	// ReadWrite opens an existing store for reading and writing.
	ReadWrite
	// Create creates a new store, truncating any existing file.
	Create
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

// Class identifies the declared element class of a dataset or attribute.
type Class uint8

const (
	ClassNone Class = iota
	ClassString
	ClassInt
	ClassFloat
	ClassRef
	ClassOpaque
)

func (c Class) String() string {
	switch c {
	case ClassString:
		return "string"
	case ClassInt:
		return "int"
	case ClassFloat:
		return "float"
	case ClassRef:
		return "ref"
	case ClassOpaque:
		return "opaque"
	default:
		return "none"
	}
}

// Descriptor describes the declared type of a dataset or attribute payload.
// Dims is nil for scalars and holds the outer dimensions otherwise.
// IsArrayType is set when the declared element type is itself array-typed,
// which contributes one extra dimension to the effective rank.
type Descriptor struct {
	Class       Class
	Dims        []uint64
	IsArrayType bool
}

// Scalar returns a scalar descriptor of the given class.
func Scalar(c Class) Descriptor {
	return Descriptor{Class: c}
}

// Array returns a rank-1 descriptor of the given class and length.
func Array(c Class, n uint64) Descriptor {
	return Descriptor{Class: c, Dims: []uint64{n}}
}

// Rank returns the effective rank: the number of outer dimensions plus one
// if the element type is itself array-typed.
func (d Descriptor) Rank() int {
	r := len(d.Dims)
	if d.IsArrayType {
		r++
	}
	return r
}

// IsScalar reports whether the descriptor describes a scalar payload.
func (d Descriptor) IsScalar() bool {
	return d.Rank() == 0
}

// Store is the minimum surface a storage container must provide. All paths
// are absolute, "/"-separated, with "/" naming the root group. For dataset
// payload operations the attr argument is empty; a non-empty attr addresses
// the named attribute of the node at path.
//
// A Store is a single mutable resource: callers must serialize access to it
// externally. Implementations do no internal locking.
type Store interface {
	// Exists reports whether a node exists at path.
	Exists(path string) (bool, error)
	// IsGroup reports whether the node at path is a group.
	IsGroup(path string) (bool, error)
	// IsDataset reports whether the node at path is a dataset.
	IsDataset(path string) (bool, error)
	// ListChildren returns the names of the direct children of a group.
	ListChildren(path string) ([]string, error)
	// CreateGroup creates an empty group at path.
	CreateGroup(path string) error

	// Descriptor returns the declared type of a dataset (attr == "") or of
	// the named attribute.
	Descriptor(path, attr string) (Descriptor, error)
	// ListAttrs returns the attribute names present on the node at path.
	ListAttrs(path string) ([]string, error)
	// HasAttr reports whether the node at path carries the named attribute.
	HasAttr(path, name string) (bool, error)

	ReadStrings(path, attr string) ([]string, error)
	ReadInts(path, attr string) ([]int64, error)
	ReadFloats(path, attr string) ([]float64, error)
	// ReadRef returns the referenced node path.
	ReadRef(path, attr string) (string, error)
	// ReadOpaque returns the tag and data of an opaque dataset payload.
	ReadOpaque(path string) (string, []byte, error)

	// The typed writes create the dataset (attr == "") or attribute payload
	// with the given declared type. The slice length must match the
	// descriptor: one element for scalars, Dims[0] elements for arrays.
	WriteStrings(path, attr string, d Descriptor, v []string) error
	WriteInts(path, attr string, d Descriptor, v []int64) error
	WriteFloats(path, attr string, d Descriptor, v []float64) error
	WriteRef(path, attr, target string) error
	WriteOpaque(path, tag string, data []byte) error

	// Flush makes all completed writes durable.
	Flush() error
	// Close releases the underlying file. The store is unusable afterwards.
	Close() error
}
