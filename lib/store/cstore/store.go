package cstore

import (
	"bytes"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type storeImpl struct {
	data *xsync.MapOf[string, []byte]
}

// NewConcurrentStore creates a new concurrent store instance.
// This store implementation keeps all data in memory in a sharded concurrent
// hash map, so operations on different keys proceed in parallel without a
// global lock. It is the default engine for the fKV server.
func NewConcurrentStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

// Every slice crossing the interface boundary is cloned: Put detaches the
// stored value from the caller, Get and Del detach the returned value from
// the map. Readers therefore never share backing memory with writers.

func (s *storeImpl) Put(key string, value []byte) error {
	s.data.Store(key, bytes.Clone(value))
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	value, found := s.data.Load(key)
	if !found {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

func (s *storeImpl) Del(key string) ([]byte, bool, error) {
	// The prior value is cloned as well: a concurrent Get may have loaded
	// the same slice and not copied it yet.
	prior, found := s.data.LoadAndDelete(key)
	if !found {
		return nil, false, nil
	}
	return bytes.Clone(prior), true, nil
}

func (s *storeImpl) Len() (int, error) {
	return s.data.Size(), nil
}

// Close is a no-op for this engine. The map holds no resources beyond
// memory, which is reclaimed once the store is unreferenced.
func (s *storeImpl) Close() error {
	return nil
}
