package hts

import (
	"fmt"

	"github.com/hdstore/hts/backend"
)

// CreateDataset creates a new dataset under a group, dispatching on the
// shape of v. Fails with ErrNotGroup if the node is a dataset, ErrExists if
// the target path is occupied, and ErrTypeMismatch for value shapes with no
// dataset encoding. Writing always creates a brand-new dataset; there is no
// overwrite path.
func (n *Node) CreateDataset(name string, v Value) (*Node, error) {
	if err := n.requireGroup(); err != nil {
		return nil, err
	}

	childPath, err := Concat(n.path, name)
	if err != nil {
		return nil, err
	}
	exists, err := n.h.store.Exists(childPath)
	if err != nil {
		return nil, storeErr(n.h.backendName, "exists", err)
	}
	if exists {
		return nil, fmt.Errorf("creating dataset %q: %w", childPath, ErrExists)
	}

	if err := n.writeValue(childPath, "", v, false); err != nil {
		return nil, err
	}
	return &Node{h: n.h, path: childPath}, nil
}

// CreateAttribute attaches a named metadatum to an existing node. The value
// set is the dataset set minus Opaque; node references are allowed. Fails
// with ErrExists if the attribute name is taken.
func (n *Node) CreateAttribute(name string, v Value) (*Attribute, error) {
	if err := n.h.check(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("empty attribute name: %w", ErrInvalidArgument)
	}

	exists, err := n.h.store.Exists(n.path)
	if err != nil {
		return nil, storeErr(n.h.backendName, "exists", err)
	}
	if !exists {
		return nil, fmt.Errorf("attaching attribute to %q: %w", n.path, ErrNotFound)
	}

	hasAttr, err := n.h.store.HasAttr(n.path, name)
	if err != nil {
		return nil, storeErr(n.h.backendName, "has-attr", err)
	}
	if hasAttr {
		return nil, fmt.Errorf("creating attribute %q on %q: %w", name, n.path, ErrExists)
	}

	if err := n.writeValue(n.path, name, v, true); err != nil {
		return nil, err
	}
	return &Attribute{h: n.h, path: n.path, name: name}, nil
}

// writeValue dispatches a Value to the matching typed store write. The
// switch is exhaustive over the closed Value set.
func (n *Node) writeValue(path, attr string, v Value, forAttr bool) error {
	store := n.h.store
	var err error

	switch x := v.(type) {
	case String:
		err = store.WriteStrings(path, attr, backend.Scalar(backend.ClassString), []string{string(x)})
	case Int:
		err = store.WriteInts(path, attr, backend.Scalar(backend.ClassInt), []int64{int64(x)})
	case Float:
		err = store.WriteFloats(path, attr, backend.Scalar(backend.ClassFloat), []float64{float64(x)})
	case Strings:
		err = store.WriteStrings(path, attr, backend.Array(backend.ClassString, uint64(len(x))), x)
	case Ints:
		err = store.WriteInts(path, attr, backend.Array(backend.ClassInt, uint64(len(x))), x)
	case Floats:
		err = store.WriteFloats(path, attr, backend.Array(backend.ClassFloat, uint64(len(x))), x)

	case Ref:
		// References are attribute-only: the dataset read protocol has no
		// reference decode.
		if !forAttr {
			return fmt.Errorf("dataset at %q: node references are attribute-only: %w", path, ErrTypeMismatch)
		}
		target := x.Path
		if target == "" && x.Node != nil {
			target = x.Node.path
		}
		if !IsAbsolute(target) {
			return fmt.Errorf("reference target %q: %w", target, ErrInvalidPath)
		}
		err = store.WriteRef(path, attr, target)

	case Opaque:
		if forAttr {
			return fmt.Errorf("attribute on %q: opaque values are dataset-only: %w", path, ErrTypeMismatch)
		}
		if x.Data == nil {
			return fmt.Errorf("opaque data must be a byte sequence: %w", ErrTypeMismatch)
		}
		err = store.WriteOpaque(path, x.Tag, x.Data)

	case Unsupported:
		return fmt.Errorf("unsupported value cannot be written: %w", ErrTypeMismatch)
	case nil:
		return fmt.Errorf("nil value: %w", ErrTypeMismatch)
	default:
		return fmt.Errorf("%w: %T", ErrTypeMismatch, v)
	}

	return storeErr(n.h.backendName, "write", err)
}
