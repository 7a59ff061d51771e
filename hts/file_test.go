package hts

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/hdstore/hts/backend"
)

// newStore creates an empty store in a test tempdir and returns the open
// file plus its path for later reopening.
func newStore(t *testing.T, opts ...Option) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.hts")
	f, err := Create(path, opts...)
	assert.NoError(t, err)
	return f, path
}

func TestCreateAndReopen(t *testing.T) {
	f, path := newStore(t)
	assert.Equal(t, backend.Create, f.Mode())
	assert.Equal(t, path, f.Path())

	_, err := f.Root().CreateGroup("data")
	assert.NoError(t, err)
	assert.NoError(t, f.Flush())
	assert.NoError(t, f.Close())

	ro, err := Open(path)
	assert.NoError(t, err)
	defer ro.Close()
	assert.Equal(t, backend.ReadOnly, ro.Mode())

	child, err := ro.Root().Lookup("data")
	assert.NoError(t, err)
	assert.True(t, child != nil)
	isGroup, err := child.IsGroup()
	assert.NoError(t, err)
	assert.True(t, isGroup)
}

func TestOpenMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.hts")

	_, err := Open(missing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = OpenReadWrite(missing)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateTruncatesExisting(t *testing.T) {
	f, path := newStore(t)
	_, err := f.Root().CreateGroup("old")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	f2, err := Create(path)
	assert.NoError(t, err)
	defer f2.Close()

	child, err := f2.Root().Lookup("old")
	assert.NoError(t, err)
	assert.True(t, child == nil)
}

func TestClosedHandle(t *testing.T) {
	f, _ := newStore(t)
	root := f.Root()
	_, err := root.CreateGroup("data")
	assert.NoError(t, err)

	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close()) // idempotent

	_, err = root.Exists()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = root.Members()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = root.CreateGroup("more")
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(f.Flush(), ErrClosed))
}

func TestCloseViaRootNode(t *testing.T) {
	f, _ := newStore(t)
	child, err := f.Root().CreateGroup("data")
	assert.NoError(t, err)

	err = child.Close()
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	assert.NoError(t, f.Root().Close())
	_, err = child.Exists()
	assert.True(t, errors.Is(err, ErrClosed))
	assert.NoError(t, f.Root().Close()) // idempotent
}

func TestWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.hts")

	var captured *Node
	err := With(path, backend.Create, func(root *Node) error {
		captured = root
		_, err := root.CreateDataset("n", Int(41))
		return err
	})
	assert.NoError(t, err)

	// the handle is released after With returns
	_, err = captured.Exists()
	assert.True(t, errors.Is(err, ErrClosed))

	err = With(path, backend.ReadOnly, func(root *Node) error {
		ds, err := root.Lookup("n")
		if err != nil {
			return err
		}
		v, err := ds.Read()
		if err != nil {
			return err
		}
		assert.Equal(t, Int(41), v)
		return nil
	})
	assert.NoError(t, err)
}

func TestWithPropagatesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.hts")
	sentinel := errors.New("boom")
	var captured *Node
	err := With(path, backend.Create, func(root *Node) error {
		captured = root
		return sentinel
	})
	assert.True(t, errors.Is(err, sentinel))

	// the store is released on the error path too
	_, err = captured.Exists()
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	f, path := newStore(t)
	assert.NoError(t, f.Close())

	ro, err := Open(path)
	assert.NoError(t, err)
	defer ro.Close()

	_, err = ro.Root().CreateGroup("data")
	assert.True(t, errors.Is(err, backend.ErrReadOnly))
	_, err = ro.Root().CreateDataset("n", Int(1))
	assert.True(t, errors.Is(err, backend.ErrReadOnly))
	_, err = ro.Root().CreateAttribute("note", String("x"))
	assert.True(t, errors.Is(err, backend.ErrReadOnly))
}

func TestBoltBackendLifecycle(t *testing.T) {
	f, path := newStore(t, WithBoltBackend())
	_, err := f.Root().CreateDataset("n", Ints{1, 2, 3})
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	// a bolt file cannot be opened by the native backend
	_, err = Open(path)
	assert.Error(t, err)

	ro, err := Open(path, WithBoltBackend())
	assert.NoError(t, err)
	defer ro.Close()

	ds, err := ro.Root().Lookup("n")
	assert.NoError(t, err)
	v, err := ds.Read()
	assert.NoError(t, err)
	assert.Equal(t, Ints{1, 2, 3}, v)
}
