package hts

import (
	"fmt"
	"sort"
)

// maxWalkDepth bounds hierarchy traversal. The store format has no cycles,
// but a depth guard keeps a corrupt index from recursing without end.
const maxWalkDepth = 100

// WalkFunc is called once per visited node, parents before children.
type WalkFunc func(n *Node) error

// Walk visits the node and, for groups, every node below it in preorder.
// Children are visited in name order. Returning an error from fn stops the
// walk and returns that error.
func (n *Node) Walk(fn WalkFunc) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn WalkFunc, depth int) error {
	if depth > maxWalkDepth {
		return fmt.Errorf("walk below %q: depth limit exceeded", n.path)
	}

	if err := fn(n); err != nil {
		return err
	}

	isGroup, err := n.IsGroup()
	if err != nil {
		return err
	}
	if !isGroup {
		return nil
	}

	members, err := n.Members()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := members[name].walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}
