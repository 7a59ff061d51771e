package hts

import (
	"fmt"
	"os"

	"github.com/hdstore/hts/backend"
	"github.com/hdstore/hts/internal/boltstore"
	"github.com/hdstore/hts/internal/filestore"
)

// handle is the shared state behind every Node and Attribute derived from
// one open file. It is a single mutable resource: callers must serialize
// access externally, there is no internal locking.
type handle struct {
	store       backend.Store
	backendName string
	closed      bool
}

func (h *handle) check() error {
	if h.closed {
		return ErrClosed
	}
	return nil
}

// File is an open hts store. All nodes and attributes derived from it share
// its handle and become unusable once it is closed.
type File struct {
	path string
	mode backend.Mode
	h    *handle
	root *Node
}

// Open opens an existing store for reading. Fails with ErrNotFound if no
// file exists at path.
func Open(path string, opts ...Option) (*File, error) {
	return OpenFile(path, backend.ReadOnly, opts...)
}

// OpenReadWrite opens an existing store for reading and writing. Fails with
// ErrNotFound if no file exists at path.
func OpenReadWrite(path string, opts ...Option) (*File, error) {
	return OpenFile(path, backend.ReadWrite, opts...)
}

// Create creates a new store at path, truncating any existing file there.
func Create(path string, opts ...Option) (*File, error) {
	return OpenFile(path, backend.Create, opts...)
}

// OpenFile opens a store in the given mode.
func OpenFile(path string, mode backend.Mode, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if mode == backend.ReadOnly || mode == backend.ReadWrite {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("opening %q: %w", path, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("opening %q: %w", path, err)
		}
	}

	var (
		store       backend.Store
		backendName string
		err         error
	)
	if o.bolt {
		backendName = "boltstore"
		store, err = boltstore.Open(path, mode)
	} else {
		backendName = "filestore"
		store, err = filestore.Open(path, mode, filestore.Options{SyncOnFlush: o.syncOnFlush})
	}
	if err != nil {
		return nil, storeErr(backendName, "open "+mode.String(), err)
	}

	f := &File{
		path: path,
		mode: mode,
		h:    &handle{store: store, backendName: backendName},
	}
	f.root = &Node{h: f.h, path: "/"}
	return f, nil
}

// Path returns the store file path.
func (f *File) Path() string {
	return f.path
}

// Mode returns the mode the store was opened in.
func (f *File) Mode() backend.Mode {
	return f.mode
}

// Root returns the root group node.
func (f *File) Root() *Node {
	return f.root
}

// Flush makes all completed writes durable.
func (f *File) Flush() error {
	if err := f.h.check(); err != nil {
		return err
	}
	return storeErr(f.h.backendName, "flush", f.h.store.Flush())
}

// Close releases the store. Every node and attribute derived from this file
// fails with ErrClosed afterwards. Closing twice is a no-op.
func (f *File) Close() error {
	if f.h.closed {
		return nil
	}
	f.h.closed = true
	return storeErr(f.h.backendName, "close", f.h.store.Close())
}

// With opens a store, hands its root to fn, and guarantees the store is
// closed on every exit path. The close error is reported when fn itself
// succeeds.
func With(path string, mode backend.Mode, fn func(root *Node) error, opts ...Option) error {
	f, err := OpenFile(path, mode, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f.root); err != nil {
		return err
	}
	return f.Close()
}
