// Package tcp implements the TCP socket-based transport for the key-value
// store's RPC system. It provides concrete implementations of the base
// package's connector interfaces optimized for TCP connections.
//
// This package builds on the base package's transport functionality,
// inheriting its strict sequential request/response handling, connection
// pooling and buffer reuse. See the base package documentation for detailed
// information on the underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both connectors tune accepted/dialed sockets from the shared
// common.TransportConfig: Nagle's algorithm (TCPNoDelay), socket buffer
// sizes, keep-alive and linger.
//
// When ReusePort is enabled in the transport configuration, the server
// connector binds multiple SO_REUSEPORT listeners to the same address
// (one per accept loop) so the kernel distributes incoming connections
// across them. This avoids the accept-mutex bottleneck under high
// connection churn.
package tcp
