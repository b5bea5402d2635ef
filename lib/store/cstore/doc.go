// Package cstore implements an in-memory key-value store based on the
// store.IStore interface. It is backed by a sharded concurrent hash map
// (xsync.MapOf), so there is no single lock guarding the data set: operations
// on different keys run in parallel, and operations on the same key are
// serialized by the map itself. Data is stored entirely in memory and is not
// persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Lock-free reads and fine-grained, per-bucket write synchronization
//   - Per-key atomic operations, including delete-and-return-prior
//   - Value isolation through copy-on-write and copy-on-read
//
// Implementation Details:
//
//   - Sharding: The underlying xsync.MapOf shards keys internally across
//     cache-line sized buckets, which keeps unrelated keys from contending
//     with each other. The store itself adds no further synchronization.
//
//   - Value Isolation: Every byte slice crossing the interface is cloned.
//     A value passed to Put is copied before insertion, and values returned
//     by Get and Del are copies of the stored data. Callers can mutate any
//     slice they hold without affecting the store or other callers.
//
//   - Delete Semantics: Del uses the map's atomic load-and-delete, so when
//     two deletes race on the same key exactly one of them observes the
//     prior value and the other reports the key as absent.
//
// Thread Safety:
//
//	All operations are safe for concurrent use without external locking.
//	Atomicity is per key: a read concurrent with a write to the same key
//	returns either the complete old value or the complete new value, never
//	a mixture of both.
//
// Usage Example:
//
//	store := cstore.NewConcurrentStore()
//
//	// Store a value
//	err := store.Put("greeting", []byte("hello"))
//
//	// Retrieve the value
//	value, found, err := store.Get("greeting")
//
//	// Remove it and obtain what was stored
//	prior, found, err := store.Del("greeting")
//
// For a strictly ordered alternative that funnels all operations through a
// single owner goroutine, see the astore package, which implements the same
// interface with an actor-style mailbox.
package cstore
