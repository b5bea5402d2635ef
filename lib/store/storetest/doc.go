// Package storetest provides standardised tests and benchmarks for
// implementations of the store.IStore interface.
//
// The package contains:
//   - testing: A conformance suite validating the IStore contract, including
//     per-key atomicity, value isolation and delete-returns-prior semantics
//   - benchmark: Performance tests for measuring throughput of common store
//     operations under parallel load
//
// This package is particularly useful for:
//   - Selecting a storage engine based on performance characteristics
//   - Developers implementing the IStore interface
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() store.IStore {
//		return NewMyStore()
//	}
//
//	// Running the standard test suite
//	storetest.RunStoreTests(t, "MyStore", factory)
//
//	// Running performance benchmarks
//	storetest.RunStoreBenchmarks(b, "MyStore", factory)
package storetest
