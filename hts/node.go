package hts

import "fmt"

// Node identifies a location in the hierarchy: a store handle plus an
// absolute path. Whether the location is a group or a dataset is never
// cached on the node; it is queried live so the answer stays consistent
// with concurrent mutation of the same store handle.
type Node struct {
	h    *handle
	path string
}

// Path returns the absolute path of the node.
func (n *Node) Path() string {
	return n.path
}

// Name returns the last path segment, or "/" for the root.
func (n *Node) Name() string {
	return Base(n.path)
}

// Exists reports whether a node is present at this path.
func (n *Node) Exists() (bool, error) {
	if err := n.h.check(); err != nil {
		return false, err
	}
	ok, err := n.h.store.Exists(n.path)
	return ok, storeErr(n.h.backendName, "exists", err)
}

// IsGroup reports whether the node is a group.
func (n *Node) IsGroup() (bool, error) {
	if err := n.h.check(); err != nil {
		return false, err
	}
	ok, err := n.h.store.IsGroup(n.path)
	return ok, storeErr(n.h.backendName, "is-group", err)
}

// IsDataset reports whether the node is a dataset.
func (n *Node) IsDataset() (bool, error) {
	if err := n.h.check(); err != nil {
		return false, err
	}
	ok, err := n.h.store.IsDataset(n.path)
	return ok, storeErr(n.h.backendName, "is-dataset", err)
}

// IsRoot reports whether the node is the root group.
func (n *Node) IsRoot() (bool, error) {
	isGroup, err := n.IsGroup()
	if err != nil {
		return false, err
	}
	return isGroup && n.path == "/", nil
}

// Parent returns the parent node, or nil for the root. The parent shares
// this node's store handle.
func (n *Node) Parent() *Node {
	parent, ok := Parent(n.path)
	if !ok {
		return nil
	}
	return &Node{h: n.h, path: parent}
}

// Members returns the direct children of a group, keyed by name. Fails
// with ErrNotGroup on datasets.
func (n *Node) Members() (map[string]*Node, error) {
	if err := n.requireGroup(); err != nil {
		return nil, err
	}

	names, err := n.h.store.ListChildren(n.path)
	if err != nil {
		return nil, storeErr(n.h.backendName, "list-children", err)
	}

	members := make(map[string]*Node, len(names))
	for _, name := range names {
		childPath, err := Concat(n.path, name)
		if err != nil {
			return nil, err
		}
		members[name] = &Node{h: n.h, path: childPath}
	}
	return members, nil
}

// Lookup resolves a single relative child name. A missing child returns
// (nil, nil), never an error.
func (n *Node) Lookup(name string) (*Node, error) {
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
	if !exists {
		return nil, nil
	}
	return &Node{h: n.h, path: childPath}, nil
}

// CreateGroup creates an empty child group. Fails with ErrNotGroup if the
// node is a dataset and ErrExists if the child name is taken.
func (n *Node) CreateGroup(name string) (*Node, error) {
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
		return nil, fmt.Errorf("creating group %q: %w", childPath, ErrExists)
	}

	if err := n.h.store.CreateGroup(childPath); err != nil {
		return nil, storeErr(n.h.backendName, "create-group", err)
	}
	return &Node{h: n.h, path: childPath}, nil
}

// Dimensions returns the outer dimensions of a dataset, nil for scalars.
// Fails with ErrNotDataset on groups.
func (n *Node) Dimensions() ([]uint64, error) {
	d, err := n.datasetDescriptor()
	if err != nil {
		return nil, err
	}
	return d.Dims, nil
}

// MaxDimensions returns the maximum dimensions of a dataset. Datasets are
// fixed-size, so this equals Dimensions.
func (n *Node) MaxDimensions() ([]uint64, error) {
	return n.Dimensions()
}

// Rank returns the effective rank of a dataset.
func (n *Node) Rank() (int, error) {
	d, err := n.datasetDescriptor()
	if err != nil {
		return 0, err
	}
	return d.Rank(), nil
}

// Close releases the store this node belongs to. Only the root node may be
// closed; any other node fails with ErrInvalidArgument.
func (n *Node) Close() error {
	if n.path != "/" {
		return fmt.Errorf("close of non-root node %q: %w", n.path, ErrInvalidArgument)
	}
	if n.h.closed {
		return nil
	}
	n.h.closed = true
	return storeErr(n.h.backendName, "close", n.h.store.Close())
}

// requireGroup fails with ErrClosed or ErrNotGroup unless the node is a
// live group.
func (n *Node) requireGroup() error {
	isGroup, err := n.IsGroup()
	if err != nil {
		return err
	}
	if !isGroup {
		return fmt.Errorf("%q: %w", n.path, ErrNotGroup)
	}
	return nil
}

// requireDataset fails with ErrClosed or ErrNotDataset unless the node is a
// live dataset.
func (n *Node) requireDataset() error {
	isDataset, err := n.IsDataset()
	if err != nil {
		return err
	}
	if !isDataset {
		return fmt.Errorf("%q: %w", n.path, ErrNotDataset)
	}
	return nil
}
