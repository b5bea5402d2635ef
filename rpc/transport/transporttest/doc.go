// Package transporttest provides a shared test suite for implementations of
// the transport interfaces. Each transport package runs the suite against its
// own factories, so the round-trip, ordering and failure semantics are
// verified uniformly across tcp, unix and ws.
//
// Servers bind ephemeral endpoints (port 0 or a temp-dir socket path), so
// the suite can run in parallel CI environments without port clashes.
package transporttest
