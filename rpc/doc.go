// Package rpc provides the remote procedure call framework of the key-value
// store. It acts as the communication layer between clients and servers,
// enabling the store operations across network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures and logging setup shared across the
//     RPC system.
//
//   - wire: The protobuf wire format of the Request and Response messages,
//     hand-coded against the wire primitives so no generated code is needed.
//
//   - transport: Network communication abstractions with pluggable
//     implementations (TCP, Unix sockets, WebSocket) plus the length-prefix
//     frame codec the socket transports share.
//
//   - client: RPC client implementations, both a typed client and an
//     adapter implementing the store interface against a remote server.
//
//   - server: RPC server components that handle incoming requests,
//     including the adapter dispatching commands onto a store engine.
package rpc
