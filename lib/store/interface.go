package store

import (
	"errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Factory is a function type that creates a new store instance.
// This is used to abstract the creation of the store from the code using it,
// e.g. for selecting a storage engine via configuration or for running the
// same test suite against multiple implementations.
type Factory func() IStore

// IStore is the generic interface for interacting with a key-value store.
// All methods are safe for concurrent use. Each operation is atomic with
// respect to its key: concurrent writes to the same key serialize in some
// order, and a read never observes a partially written value.
//
// Implementations must treat stored values as immutable: a value passed to
// Put is copied before it is retained, and values returned by Get and Del
// are detached from the store's internal state. Callers may freely modify
// any slice they pass in or get back.
type IStore interface {
	// Put inserts or updates a key-value pair.
	Put(key string, value []byte) (err error)
	// Get returns the value for a key. The boolean return value indicates
	// whether a value for the key was found.
	Get(key string) (value []byte, found bool, err error)
	// Del removes a key-value pair and returns the value that was stored
	// prior to removal. The boolean return value indicates whether the key
	// was present. Deleting an absent key is not an error.
	Del(key string) (prior []byte, found bool, err error)
	// Len returns the number of keys currently stored.
	Len() (size int, err error)
	// Close releases all resources held by the store. Close is idempotent.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrClosed is returned by implementations that reject operations
	// after Close has been called.
	ErrClosed = errors.New("store is closed")

	// ErrUnsupported is returned when an implementation cannot provide an
	// operation, e.g. Len on a store accessed over the network.
	ErrUnsupported = errors.New("operation not supported")
)
