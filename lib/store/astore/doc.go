// Package astore implements an in-memory key-value store based on the
// store.IStore interface using the actor model. A single owner goroutine
// holds the map and processes one operation at a time; callers communicate
// with it exclusively through an unbounded mailbox queue. Data is stored
// entirely in memory and is not persisted between process restarts.
//
// Key Features:
//   - All state confined to one goroutine, no shared-memory synchronization
//   - Strict total ordering of operations in mailbox order
//   - Value isolation through cloning at the ownership boundary
//   - Clean shutdown semantics: operations after Close fail with ErrClosed
//
// Implementation Details:
//
//   - Message Passing: Each operation is sent as a message carrying the
//     operation type, key, value and a buffered reply channel. The mailbox
//     is the lock-free MPSC queue from the internal mpsc package, so
//     senders never block each other or wait for mailbox capacity. The
//     owner answers on the reply channel and can never block doing so,
//     which keeps a slow caller from stalling the store.
//
//   - Cloning Strategy: Put clones on the sender side, so the caller gets
//     its slice back immediately. Get clones on the owner side before the
//     value leaves the actor. Del hands out the stored slice without a
//     copy, since after removal the owner is the last reference holder.
//
//   - Shutdown: Close closes the mailbox. Operations already accepted
//     into the mailbox are drained and answered normally; operations
//     arriving after Close fail with ErrClosed. The owner goroutine exits
//     once the mailbox is empty.
//
// Thread Safety:
//
//	All operations are safe for concurrent use. Unlike cstore, operations
//	on different keys do not run in parallel: the mailbox serializes
//	everything, which makes this engine a useful ordering baseline and a
//	contention-free reference point for benchmarks, at the cost of
//	throughput on multi-core machines.
//
// Usage Example:
//
//	store := astore.NewActorStore()
//	defer store.Close()
//
//	err := store.Put("greeting", []byte("hello"))
//	value, found, err := store.Get("greeting")
//
// For the default engine that scales with parallel load, see the cstore
// package, which implements the same interface on a sharded concurrent map.
package astore
