// Package hts provides a minimal hierarchical typed-data store: groups,
// datasets and attributes addressed by POSIX-like paths, with typed scalar
// and rank-1 array payloads, backed by a pluggable storage container.
package hts

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound        = errors.New("object not found")
	ErrExists          = errors.New("object already exists")
	ErrTypeMismatch    = errors.New("unsupported value type")
	ErrNotGroup        = errors.New("object is not a group")
	ErrNotDataset      = errors.New("object is not a dataset")
	ErrUnsupportedRank = errors.New("rank greater than 1 is not supported")
	ErrInvalidPath     = errors.New("invalid path")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrClosed          = errors.New("store is closed")
)

// StoreError wraps a failure reported by the backing store. Backend I/O
// failures are not distinguished from logical ones; both surface to the
// caller immediately and nothing is retried.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err as a StoreError unless it is nil or already one of the
// package sentinels.
func storeErr(backendName, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrClosed) {
		return err
	}
	return &StoreError{Backend: backendName, Op: op, Err: err}
}
