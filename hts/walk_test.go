package hts

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert"
)

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()
	root := f.Root()

	a, err := root.CreateGroup("a")
	assert.NoError(t, err)
	_, err = a.CreateGroup("b")
	assert.NoError(t, err)
	_, err = a.CreateDataset("n", Int(1))
	assert.NoError(t, err)
	_, err = root.CreateDataset("z", Float(2))
	assert.NoError(t, err)

	var visited []string
	err = root.Walk(func(n *Node) error {
		visited = append(visited, n.Path())
		return nil
	})
	assert.NoError(t, err)

	// preorder, children in name order
	assert.Equal(t, []string{"/", "/a", "/a/b", "/a/n", "/z"}, visited)
}

func TestWalkFromSubtree(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	a, err := f.Root().CreateGroup("a")
	assert.NoError(t, err)
	_, err = a.CreateGroup("b")
	assert.NoError(t, err)

	var visited []string
	err = a.Walk(func(n *Node) error {
		visited = append(visited, n.Path())
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"/a", "/a/b"}, visited)
}

func TestWalkOnDataset(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	ds, err := f.Root().CreateDataset("n", Int(1))
	assert.NoError(t, err)

	var visited []string
	err = ds.Walk(func(n *Node) error {
		visited = append(visited, n.Path())
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"/n"}, visited)
}

func TestWalkStopsOnError(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	_, err := f.Root().CreateGroup("a")
	assert.NoError(t, err)
	_, err = f.Root().CreateGroup("b")
	assert.NoError(t, err)

	sentinel := errors.New("stop")
	var visited []string
	err = f.Root().Walk(func(n *Node) error {
		visited = append(visited, n.Path())
		if n.Path() == "/a" {
			return sentinel
		}
		return nil
	})
	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, []string{"/", "/a"}, visited)
}
