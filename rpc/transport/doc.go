// Package transport defines the interfaces and abstractions for RPC
// communication in the key-value store. It provides a common contract that
// all transport implementations must fulfill, enabling protocol-agnostic
// communication.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Guaranteeing strict sequential request handling per connection
//   - Enabling multiple transport implementations (TCP, Unix sockets,
//     WebSocket)
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport
//     implementations that handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport
//     implementations that receives requests and routes them to the
//     registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks. A
//     returned error closes the connection, which is the contract for
//     payloads that cannot be decoded.
//
// The wire protocol carries no request identifiers. Responses match up with
// requests purely by ordering: on every connection the server writes the
// response to request n before reading request n+1, and the client holds a
// connection for the full round trip. Concurrency comes from pooling
// connections, never from pipelining on one of them.
package transport
