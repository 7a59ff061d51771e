package hts

import (
	"fmt"

	"github.com/hdstore/hts/backend"
)

// Read decodes the payload of a dataset by its declared type. Scalars come
// back as String/Int/Float, rank-1 arrays as Strings/Ints/Floats, opaque
// payloads as Opaque. Declared ranks above 1 fail with ErrUnsupportedRank;
// declared classes outside the dataset set decode to Unsupported rather
// than guessing.
func (n *Node) Read() (Value, error) {
	if err := n.requireDataset(); err != nil {
		return nil, err
	}

	d, err := n.h.store.Descriptor(n.path, "")
	if err != nil {
		return nil, storeErr(n.h.backendName, "descriptor", err)
	}
	return n.decode(n.path, "", d, false)
}

// Datatype returns the declared type of a dataset. Fails with ErrNotDataset
// on groups.
func (n *Node) Datatype() (backend.Descriptor, error) {
	return n.datasetDescriptor()
}

func (n *Node) datasetDescriptor() (backend.Descriptor, error) {
	if err := n.requireDataset(); err != nil {
		return backend.Descriptor{}, err
	}
	d, err := n.h.store.Descriptor(n.path, "")
	if err != nil {
		return backend.Descriptor{}, storeErr(n.h.backendName, "descriptor", err)
	}
	return d, nil
}

// decode dispatches on the declared descriptor of a dataset (attr == "") or
// attribute. forAttr selects the attribute protocol: scalar references are
// decoded, opaque is not.
func (n *Node) decode(path, attr string, d backend.Descriptor, forAttr bool) (Value, error) {
	rank := d.Rank()
	if rank > 1 {
		return nil, fmt.Errorf("rank %d at %q: %w", rank, path, ErrUnsupportedRank)
	}

	store := n.h.store
	if rank == 0 {
		switch d.Class {
		case backend.ClassString:
			v, err := store.ReadStrings(path, attr)
			if err != nil {
				return nil, storeErr(n.h.backendName, "read", err)
			}
			return String(v[0]), nil
		case backend.ClassInt:
			v, err := store.ReadInts(path, attr)
			if err != nil {
				return nil, storeErr(n.h.backendName, "read", err)
			}
			return Int(v[0]), nil
		case backend.ClassFloat:
			v, err := store.ReadFloats(path, attr)
			if err != nil {
				return nil, storeErr(n.h.backendName, "read", err)
			}
			return Float(v[0]), nil
		case backend.ClassRef:
			if !forAttr {
				return Unsupported{Reason: "scalar reference on a dataset"}, nil
			}
			target, err := store.ReadRef(path, attr)
			if err != nil {
				return nil, storeErr(n.h.backendName, "read", err)
			}
			return Ref{Path: target, Node: &Node{h: n.h, path: target}}, nil
		default:
			return Unsupported{Reason: fmt.Sprintf("scalar class %s", d.Class)}, nil
		}
	}

	switch d.Class {
	case backend.ClassString:
		v, err := store.ReadStrings(path, attr)
		if err != nil {
			return nil, storeErr(n.h.backendName, "read", err)
		}
		return Strings(v), nil
	case backend.ClassInt:
		v, err := store.ReadInts(path, attr)
		if err != nil {
			return nil, storeErr(n.h.backendName, "read", err)
		}
		return Ints(v), nil
	case backend.ClassFloat:
		v, err := store.ReadFloats(path, attr)
		if err != nil {
			return nil, storeErr(n.h.backendName, "read", err)
		}
		return Floats(v), nil
	case backend.ClassOpaque:
		if forAttr {
			return Unsupported{Reason: "opaque attribute"}, nil
		}
		tag, data, err := store.ReadOpaque(path)
		if err != nil {
			return nil, storeErr(n.h.backendName, "read", err)
		}
		return Opaque{Tag: tag, Data: data}, nil
	case backend.ClassRef:
		// Arrays of references are deliberately unsupported.
		return Unsupported{Reason: "reference array"}, nil
	default:
		return Unsupported{Reason: fmt.Sprintf("array class %s", d.Class)}, nil
	}
}
