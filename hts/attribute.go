package hts

import (
	"fmt"

	"github.com/hdstore/hts/backend"
)

// Attribute identifies a named metadatum attached to a node: a store
// handle, the node path, and the attribute name. It never exists
// independently of its node.
type Attribute struct {
	h    *handle
	path string
	name string
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.name
}

// NodePath returns the path of the node the attribute is attached to.
func (a *Attribute) NodePath() string {
	return a.path
}

// Node returns the node the attribute is attached to.
func (a *Attribute) Node() *Node {
	return &Node{h: a.h, path: a.path}
}

// Datatype returns the declared type of the attribute value.
func (a *Attribute) Datatype() (backend.Descriptor, error) {
	if err := a.h.check(); err != nil {
		return backend.Descriptor{}, err
	}
	d, err := a.h.store.Descriptor(a.path, a.name)
	if err != nil {
		return backend.Descriptor{}, storeErr(a.h.backendName, "descriptor", err)
	}
	return d, nil
}

// Read decodes the attribute value by its declared type. Scalar references
// come back as Ref nodes; reference arrays and other undecodable declared
// types come back as Unsupported; rank above 1 fails with
// ErrUnsupportedRank.
func (a *Attribute) Read() (Value, error) {
	d, err := a.Datatype()
	if err != nil {
		return nil, err
	}
	n := &Node{h: a.h, path: a.path}
	return n.decode(a.path, a.name, d, true)
}

// Attributes enumerates the metadata attached to the node, keyed by name.
func (n *Node) Attributes() (map[string]*Attribute, error) {
	if err := n.h.check(); err != nil {
		return nil, err
	}

	exists, err := n.h.store.Exists(n.path)
	if err != nil {
		return nil, storeErr(n.h.backendName, "exists", err)
	}
	if !exists {
		return nil, fmt.Errorf("listing attributes of %q: %w", n.path, ErrNotFound)
	}

	names, err := n.h.store.ListAttrs(n.path)
	if err != nil {
		return nil, storeErr(n.h.backendName, "list-attrs", err)
	}

	attrs := make(map[string]*Attribute, len(names))
	for _, name := range names {
		attrs[name] = &Attribute{h: n.h, path: n.path, name: name}
	}
	return attrs, nil
}

// Attr returns the named attribute, or (nil, nil) if the node does not
// carry it.
func (n *Node) Attr(name string) (*Attribute, error) {
	if err := n.h.check(); err != nil {
		return nil, err
	}

	hasAttr, err := n.h.store.HasAttr(n.path, name)
	if err != nil {
		return nil, storeErr(n.h.backendName, "has-attr", err)
	}
	if !hasAttr {
		return nil, nil
	}
	return &Attribute{h: n.h, path: n.path, name: name}, nil
}

// HasAttr reports whether the node carries the named attribute.
func (n *Node) HasAttr(name string) (bool, error) {
	a, err := n.Attr(name)
	if err != nil {
		return false, err
	}
	return a != nil, nil
}
