package transport

import (
	"net"

	"github.com/pbeckmann/fKV/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests.
// It is called by a server transport layer with the raw payload of one
// request frame and returns the raw payload of the response frame.
//
// A non-nil error marks the request as unrecoverable: the transport closes
// the connection without writing a response. This is the contract for
// malformed payloads, where the byte stream can no longer be trusted.
type ServerHandleFunc func(req []byte) (resp []byte, err error)

// IRPCServerTransport is the interface for the RPC server transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer.
	// Must be called before Listen.
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the configured endpoint and starts serving connections
	// in background goroutines. It returns once the listeners are bound,
	// so a bind failure is reported synchronously.
	Listen(config common.ServerConfig) error
	// Addr returns the bound address of the first listener. It returns
	// nil before Listen has succeeded.
	Addr() net.Addr
	// Shutdown stops accepting new connections, closes all active ones
	// and waits for their handler goroutines to finish.
	Shutdown() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends one request payload to the server and returns the
	// response payload. Requests on a single connection are strictly
	// sequential; concurrent callers are spread over the connection pool.
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
