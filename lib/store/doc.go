// Package store defines the common interface for key-value storage used
// throughout fKV. It decouples the code that needs a store (the RPC server,
// the CLI, tests) from the concrete engine holding the data, so deployments
// can pick an engine via configuration without any code changes.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across engines
//   - Pluggable engine architecture through the Factory pattern
//   - Shared error values for conditions all engines report the same way
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining Put, Get, Del, Len and
//     Close. All implementations share this common interface and the same
//     concurrency contract: every method is safe for concurrent use, each
//     operation is atomic per key, and values crossing the interface are
//     copied so callers and the store never alias each other's memory.
//
//   - Factory: A function type that abstracts the creation of IStore
//     instances, providing dependency injection for the server (engine
//     selection by name) and for the conformance test suite in the
//     storetest package.
//
// Implementations:
//
//	The package includes two in-memory implementations of the IStore
//	interface:
//
//	- Concurrent Store (cstore): The default engine, built on a sharded
//	  concurrent hash map. Operations on different keys proceed in parallel
//	  without any global lock. This implementation is suitable whenever the
//	  store is shared between many connections.
//	  Available in the "github.com/pbeckmann/fKV/lib/store/cstore" package.
//
//	- Actor Store (astore): An implementation that confines the map to a
//	  single owner goroutine and serializes all access through a mailbox
//	  queue. It trades throughput for strict operation ordering and
//	  serves as a reference point for benchmarking the concurrent engine.
//	  Available in the "github.com/pbeckmann/fKV/lib/store/astore" package.
//
// A third implementation lives in the RPC layer: the client package adapts
// a remote fKV server to the IStore interface, so application code can stay
// agnostic about whether data is held locally or across the network.
package store
