// Package common provides configuration structures and utilities shared
// across the fKV RPC system. It defines the types both the client and the
// server are configured with, plus the application-wide logger factory.
//
// The package focuses on:
//   - Configuration structures for client and server components
//   - Shared socket-level transport tuning
//   - Structured logging setup on top of zap
//
// Key Components:
//
//   - ServerConfig: Comprehensive configuration for the server, including
//     the KV endpoint, the optional HTTP admin endpoint, storage engine
//     selection, exchange deadlines and logging. Its String method renders
//     a startup banner grouped into sections.
//
//   - ClientConfig: Configuration for client components, controlling the
//     endpoint list, connection pool sizing and timeouts.
//
//   - TransportConfig: Socket tuning knobs (TCP_NODELAY, keep-alive,
//     linger, buffer sizes, SO_REUSEPORT accept loops) embedded in both
//     of the above and honored by every transport implementation.
//
//   - NewLogger: Factory for the root zap logger. Console output goes to
//     stdout; an optional JSON file sink with size-based rotation can be
//     added via configuration. Components derive sub-loggers with Named().
package common
