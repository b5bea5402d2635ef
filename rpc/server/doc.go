// Package server implements the RPC server for the key-value store. It
// provides the dispatch adapter translating wire requests into store
// operations, along with the core server implementation that binds a store
// engine to a transport.
//
// The package focuses on:
//   - Server-side request handling for the key-value operations
//   - Adapter pattern to decouple dispatch logic from RPC mechanisms
//   - Store engine selection based on configuration
//   - Request metrics (counters, miss counters, latency histograms)
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server
//     adapters, with the Handle method that processes one decoded request
//     against a store.IStore.
//
//   - NewIStoreServerAdapter: Factory function creating the adapter for
//     key-value store operations, translating wire requests to store.IStore
//     method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Endpoint:      "0.0.0.0:8888",
//	  StoreEngine:   "cstore",
//	  TimeoutSecond: 5,
//	  LogLevel:      "info",
//	}
//
//	// Create and start the server
//	s, err := server.NewRPCServer(config, tcp.NewTCPServerTransport(log), log)
//	if err != nil {
//	  log.Fatal("server setup failed", zap.Error(err))
//	}
//	if err := s.Serve(); err != nil {
//	  log.Fatal("server error", zap.Error(err))
//	}
//	defer s.Shutdown()
//
// Response semantics, by command:
//
//   - Get: code 0 with key and value on a hit, code 404 with the key and an
//     empty value on a miss.
//
//   - Put: always code 0, echoing the stored key and value.
//
//   - Del: code 0 with the key and the prior value on a hit, code 404 on a
//     miss.
//
//   - No command: code 500 with empty key and value.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently against the shared store. The Serve method is not
//	thread-safe and should be called only once.
package server
