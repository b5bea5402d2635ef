// Package ws implements a WebSocket transport for the key-value store's RPC
// system. It lets browser-based and firewall-constrained clients speak the
// same request/response protocol as the socket transports.
//
// Unlike the tcp and unix packages this transport does not build on the base
// package: WebSocket messages are already length-delimited by the protocol,
// so request and response payloads travel as binary messages instead of
// length-prefixed frames. Everything above the framing is identical, in
// particular the strict sequential ordering of exchanges per connection.
//
// Key Components:
//
//   - wsServerTransport: HTTP server upgrading connections via
//     gorilla/websocket and serving requests message by message
//
//   - wsClientTransport: connection pool of WebSocket connections with
//     round-robin request distribution
//
// Endpoints may be given as ws:// or wss:// URLs or as bare host:port
// strings, which are dialed as ws://.
package ws
