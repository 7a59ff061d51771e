package hts

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert"
)

func TestRootNode(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()
	root := f.Root()

	assert.Equal(t, "/", root.Path())
	assert.Equal(t, "/", root.Name())
	assert.True(t, root.Parent() == nil)

	isRoot, err := root.IsRoot()
	assert.NoError(t, err)
	assert.True(t, isRoot)

	members, err := root.Members()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(members))
}

func TestGroupHierarchy(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	data, err := f.Root().CreateGroup("data")
	assert.NoError(t, err)
	raw, err := data.CreateGroup("raw")
	assert.NoError(t, err)

	assert.Equal(t, "/data/raw", raw.Path())
	assert.Equal(t, "raw", raw.Name())
	assert.Equal(t, "/data", raw.Parent().Path())
	assert.Equal(t, "/", raw.Parent().Parent().Path())

	isRoot, err := raw.IsRoot()
	assert.NoError(t, err)
	assert.False(t, isRoot)

	members, err := f.Root().Members()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(members))
	assert.Equal(t, "/data", members["data"].Path())
}

func TestLookupMissingChild(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithBoltBackend()}} {
		f, _ := newStore(t, opts...)
		child, err := f.Root().Lookup("ghost")
		assert.NoError(t, err)
		assert.True(t, child == nil)
		assert.NoError(t, f.Close())
	}
}

func TestCreateGroupCollision(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithBoltBackend()}} {
		f, _ := newStore(t, opts...)
		root := f.Root()

		_, err := root.CreateGroup("data")
		assert.NoError(t, err)
		_, err = root.CreateGroup("data")
		assert.True(t, errors.Is(err, ErrExists))

		// a dataset occupies the name just as much as a group does
		_, err = root.CreateDataset("n", Int(1))
		assert.NoError(t, err)
		_, err = root.CreateGroup("n")
		assert.True(t, errors.Is(err, ErrExists))

		assert.NoError(t, f.Close())
	}
}

func TestGroupOperationsOnDataset(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	ds, err := f.Root().CreateDataset("n", Int(1))
	assert.NoError(t, err)

	_, err = ds.Members()
	assert.True(t, errors.Is(err, ErrNotGroup))
	_, err = ds.Lookup("x")
	assert.True(t, errors.Is(err, ErrNotGroup))
	_, err = ds.CreateGroup("x")
	assert.True(t, errors.Is(err, ErrNotGroup))
	_, err = ds.CreateDataset("x", Int(2))
	assert.True(t, errors.Is(err, ErrNotGroup))
}

func TestDatasetOperationsOnGroup(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	g, err := f.Root().CreateGroup("data")
	assert.NoError(t, err)

	_, err = g.Read()
	assert.True(t, errors.Is(err, ErrNotDataset))
	_, err = g.Dimensions()
	assert.True(t, errors.Is(err, ErrNotDataset))
	_, err = g.Rank()
	assert.True(t, errors.Is(err, ErrNotDataset))
	_, err = g.Datatype()
	assert.True(t, errors.Is(err, ErrNotDataset))
}

func TestConcatRejectedByCreate(t *testing.T) {
	f, _ := newStore(t)
	defer f.Close()

	_, err := f.Root().CreateGroup("a/b")
	assert.True(t, errors.Is(err, ErrInvalidPath))
	_, err = f.Root().CreateDataset("", Int(1))
	assert.True(t, errors.Is(err, ErrInvalidPath))
}
