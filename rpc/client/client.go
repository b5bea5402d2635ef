package client

import (
	"fmt"

	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// Client is the typed RPC client for the key-value service. All methods
// are safe for concurrent use; parallel calls are spread over the
// transport's connection pool.
type Client struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
}

// NewClient creates a client and connects its transport. An empty endpoint
// list defaults to the local server address.
func NewClient(config common.ClientConfig, transport transport.IRPCClientTransport) (*Client, error) {
	if len(config.Endpoints) == 0 {
		config.Endpoints = []string{common.DefaultClientEndpoint}
	}

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &Client{
		config:    config,
		transport: transport,
	}, nil
}

// --------------------------------------------------------------------------
// Request Methods
// --------------------------------------------------------------------------

// Do sends one request and returns the decoded response. It is the raw
// escape hatch underneath the typed methods.
//
// Operations are never retried: when the transport reports an error the
// caller cannot know whether the server applied the operation, and for a
// mutation only the caller can decide whether repeating it is safe.
func (c *Client) Do(req *wire.Request) (*wire.Response, error) {
	respBytes, err := c.transport.Send(req.Marshal())
	if err != nil {
		return nil, fmt.Errorf("rpc exchange failed: %w", err)
	}

	resp := &wire.Response{}
	if err := resp.Unmarshal(respBytes); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

// Get asks for the value stored under key
func (c *Client) Get(key string) (*wire.Response, error) {
	return c.Do(wire.NewGetRequest(key))
}

// Put stores value under key, overwriting any previous value
func (c *Client) Put(key string, value []byte) (*wire.Response, error) {
	return c.Do(wire.NewPutRequest(key, value))
}

// Del removes key and reports the value it held
func (c *Client) Del(key string) (*wire.Response, error) {
	return c.Do(wire.NewDelRequest(key))
}

// Close closes the underlying transport
func (c *Client) Close() error {
	return c.transport.Close()
}
