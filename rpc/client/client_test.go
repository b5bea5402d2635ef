package client

import (
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/lib/store/storetest"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/server"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/tcp"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// --------------------------------------------------------------------------
// In-process loopback plumbing
// --------------------------------------------------------------------------

// captureTransport implements the server transport interface and hands the
// registered handler to the test instead of a network
type captureTransport struct {
	handler transport.ServerHandleFunc
}

func (c *captureTransport) RegisterHandler(h transport.ServerHandleFunc) { c.handler = h }
func (c *captureTransport) Listen(common.ServerConfig) error             { return nil }
func (c *captureTransport) Addr() net.Addr                               { return nil }
func (c *captureTransport) Shutdown() error                              { return nil }

// loopbackTransport implements the client transport interface by invoking
// a server handler in-process
type loopbackTransport struct {
	handler transport.ServerHandleFunc
}

func (l *loopbackTransport) Connect(common.ClientConfig) error { return nil }
func (l *loopbackTransport) Send(req []byte) ([]byte, error)   { return l.handler(req) }
func (l *loopbackTransport) Close() error                      { return nil }

// newLoopbackHandler builds a full server pipeline and returns its handler
func newLoopbackHandler(engine string) transport.ServerHandleFunc {
	capture := &captureTransport{}
	s, err := server.NewRPCServer(common.ServerConfig{StoreEngine: engine}, capture, nil)
	if err != nil {
		panic(err)
	}
	if err := s.Serve(); err != nil {
		panic(err)
	}
	return capture.handler
}

// newLoopbackClient connects a client to an in-process server
func newLoopbackClient(t *testing.T, engine string) *Client {
	t.Helper()

	c, err := NewClient(
		common.ClientConfig{Endpoints: []string{"loopback"}},
		&loopbackTransport{handler: newLoopbackHandler(engine)},
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return c
}

// checkResponse asserts one response against the expected triple
func checkResponse(t *testing.T, step string, got *wire.Response, err error, code wire.Code, key string, value []byte) {
	t.Helper()

	if err != nil {
		t.Fatalf("%s: error = %v", step, err)
	}
	if got.Code != code {
		t.Errorf("%s: code = %v, want %v", step, got.Code, code)
	}
	if got.Key != key {
		t.Errorf("%s: key = %q, want %q", step, got.Key, key)
	}
	if !bytes.Equal(got.Value, value) {
		t.Errorf("%s: value = %q, want %q", step, got.Value, value)
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// runDemoSequence walks the canonical five steps against a connected client
func runDemoSequence(t *testing.T, c *Client) {
	t.Helper()

	resp, err := c.Put("hello", []byte("world"))
	checkResponse(t, "put hello", resp, err, wire.CodeOK, "hello", []byte("world"))

	resp, err = c.Get("hello")
	checkResponse(t, "get hello", resp, err, wire.CodeOK, "hello", []byte("world"))

	resp, err = c.Get("world")
	checkResponse(t, "get world", resp, err, wire.CodeNotFound, "world", nil)

	resp, err = c.Del("hello")
	checkResponse(t, "del hello", resp, err, wire.CodeOK, "hello", []byte("world"))

	resp, err = c.Get("hello")
	checkResponse(t, "get hello after del", resp, err, wire.CodeNotFound, "hello", nil)
}

func TestClientLoopback(t *testing.T) {
	for _, engine := range []string{"cstore", "astore"} {
		t.Run(engine, func(t *testing.T) {
			runDemoSequence(t, newLoopbackClient(t, engine))
		})
	}
}

func TestClientOverTCP(t *testing.T) {
	s, err := server.NewRPCServer(
		common.ServerConfig{Endpoint: "127.0.0.1:0", StoreEngine: "cstore"},
		tcp.NewTCPServerTransport(nil),
		nil,
	)
	if err != nil {
		t.Fatalf("NewRPCServer() error = %v", err)
	}
	if err := s.Serve(); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	defer func() {
		if err := s.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	c, err := NewClient(
		common.ClientConfig{
			Endpoints:     []string{s.Addr().String()},
			TimeoutSecond: 10,
		},
		tcp.NewTCPClientTransport(nil),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	runDemoSequence(t, c)
}

func TestClientNoCommand(t *testing.T) {
	c := newLoopbackClient(t, "cstore")

	resp, err := c.Do(&wire.Request{})
	checkResponse(t, "empty request", resp, err, wire.CodeNotImpl, "", nil)
}

func TestClientUndecodableResponse(t *testing.T) {
	c, err := NewClient(
		common.ClientConfig{Endpoints: []string{"loopback"}},
		&loopbackTransport{handler: func(req []byte) ([]byte, error) {
			return []byte{0x80}, nil // truncated varint
		}},
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.Get("key"); err == nil {
		t.Fatal("Get() with undecodable response: error = nil, want error")
	}
}

func TestRemoteStore(t *testing.T) {
	storetest.RunStoreTests(t, "RemoteStore", func() store.IStore {
		rs, err := NewRemoteStore(
			common.ClientConfig{Endpoints: []string{"loopback"}},
			&loopbackTransport{handler: newLoopbackHandler("cstore")},
		)
		if err != nil {
			panic(err)
		}
		return rs
	})
}

func TestRemoteStoreLenUnsupported(t *testing.T) {
	rs, err := NewRemoteStore(
		common.ClientConfig{Endpoints: []string{"loopback"}},
		&loopbackTransport{handler: newLoopbackHandler("cstore")},
	)
	if err != nil {
		t.Fatalf("NewRemoteStore() error = %v", err)
	}

	if _, err := rs.Len(); !errors.Is(err, store.ErrUnsupported) {
		t.Fatalf("Len() error = %v, want ErrUnsupported", err)
	}
}
