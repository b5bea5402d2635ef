// Package client implements the RPC client for the key-value store. It
// provides a typed client plus an implementation of the store.IStore
// interface that forwards all operations to a remote server.
//
// The package focuses on:
//   - Typed access to the Get/Put/Del operations
//   - Transparent remote access through the store.IStore interface
//   - Conversion between response codes and domain results
//
// Key Components:
//
//   - NewClient: Factory function creating the typed client. Its Do method
//     sends a raw request, the Get/Put/Del methods wrap the three commands.
//
//   - NewRemoteStore: Factory function that creates a client implementing
//     the store.IStore interface, so code written against the local store
//     runs unchanged against the RPC service. Response code 404 maps to
//     found=false.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:8888"},
//	  TimeoutSecond:          5,
//	  ConnectionsPerEndpoint: 4,
//	}
//
//	// Create the client
//	c, _ := client.NewClient(config, tcp.NewTCPClientTransport(log))
//	defer c.Close()
//
//	// Use it
//	c.Put("mykey", []byte("myvalue"))
//	resp, _ := c.Get("mykey")
//
// Operations are never retried by the client. A transport error leaves the
// caller unable to tell whether the server applied the operation; only the
// caller knows whether repeating a mutation is safe.
//
// Performance Considerations:
//
//   - Each connection carries one exchange at a time, so
//     ConnectionsPerEndpoint bounds the number of parallel in-flight
//     requests.
//
//   - For small messages, a single connection per endpoint is often more
//     efficient due to reduced connection overhead.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently
//	from multiple goroutines without additional synchronization.
package client
