// Package unix implements a transport layer for the key-value store's RPC
// system using Unix domain sockets. It provides optimized communication for
// processes running on the same machine.
//
// This package extends the base transport layer with Unix socket-specific
// connectors while inheriting all core functionality like connection pooling,
// sequential request handling and error handling from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners and accepts connections
//
// The server connector removes a stale socket file before binding so that
// restarts after a crash do not fail with "address already in use".
//
// Performance Characteristics:
//
//   - Default buffer size: 64 KB, covers the largest legal frame
//   - Reduced overhead: Eliminates TCP/IP stack processing
//   - Lower latency: Direct kernel-mediated IPC avoids the network subsystem
package unix
