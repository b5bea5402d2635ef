// Package base provides a foundation for transport layers in fKV,
// implementing core functionality for RPC communication independent of the
// specific network protocol (TCP, Unix sockets, etc.). It serves as a base
// layer that can be extended with protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - Performance optimization through connection pooling and buffer reuse
//   - Strictly sequential request handling per connection
//   - Graceful shutdown with connection tracking
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific
//     operations that allow extending the base transport with different
//     network protocols.
//
//   - clientTransport: Core client implementation that manages multiple
//     connections with round-robin load balancing. Each connection carries
//     exactly one exchange at a time; supports multiple connections per
//     endpoint for parallel requests.
//
//   - serverTransport: Core server implementation that accepts connections
//     (optionally on several SO_REUSEPORT accept loops) and processes the
//     requests of each connection in strict arrival order.
//
// Ordering Model:
//
//	The wire protocol has no request identifiers. Request/response pairs
//	are matched purely by order on the connection: the server never reads
//	the next request before the previous response is written, and the
//	client holds a connection for the full round trip. Parallelism is
//	achieved across connections, never within one.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per endpoint improve
//     throughput since each connection is limited to one in-flight
//     exchange. For small workloads a single connection per endpoint may
//     perform better due to reduced overhead.
//
//   - Buffer Pooling: The server uses a sync.Pool to reuse read buffers,
//     reducing GC pressure. A buffer covers the largest legal frame, so a
//     connection never reallocates.
//
//   - Vectored Writes: Frames are written with net.Buffers, combining
//     header and payload into a single write operation.
//
// Error Handling:
//
//	A failed exchange closes the affected connection. The client redials
//	lazily on the connection's next use but never retries the failed
//	operation itself, since a write that died halfway may or may not have
//	been applied by the server. On the server, a handler error (malformed
//	payload) closes the connection without a response; all other requests
//	keep their connections alive.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport uses atomic
//	operations and mutexes to ensure concurrent access safety, while the
//	server creates a dedicated goroutine for each connection.
package base
