package server

import (
	"net"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// IRPCServer is the interface for the RPC server. It ties a store engine,
// a dispatch adapter and a transport together.
type IRPCServer interface {
	// Serve binds the configured endpoint and starts serving connections
	// in background goroutines. It returns once the listener is bound.
	Serve() error
	// Addr returns the bound address, nil before Serve has succeeded.
	Addr() net.Addr
	// Shutdown stops the transport, waits for in-flight requests and
	// closes the store.
	Shutdown() error
}

// IRPCServerAdapter is the interface for all RPC server adapters.
// It is responsible for handling decoded requests and producing responses.
type IRPCServerAdapter interface {
	// Handle handles a request against the given store and returns a
	// response. It never returns nil: requests without a usable command
	// and store failures are reported in the response code.
	Handle(req *wire.Request, store store.IStore) (resp *wire.Response)
}
