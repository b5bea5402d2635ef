package server

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/frame"
	"github.com/pbeckmann/fKV/rpc/transport/tcp"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// stubTransport captures the registered handler so tests can feed requests
// through the full decode/dispatch/encode pipeline without a network
type stubTransport struct {
	handler transport.ServerHandleFunc
}

func (s *stubTransport) RegisterHandler(h transport.ServerHandleFunc) { s.handler = h }
func (s *stubTransport) Listen(common.ServerConfig) error             { return nil }
func (s *stubTransport) Addr() net.Addr                               { return nil }
func (s *stubTransport) Shutdown() error                              { return nil }

// handle round-trips one request through the server's handler
func handle(t *testing.T, stub *stubTransport, req *wire.Request) *wire.Response {
	t.Helper()

	payload, err := stub.handler(req.Marshal())
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	var resp wire.Response
	if err := resp.Unmarshal(payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &resp
}

// checkResponse asserts one response against the expected triple
func checkResponse(t *testing.T, step string, got *wire.Response, code wire.Code, key string, value []byte) {
	t.Helper()

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

func TestNewRPCServerUnknownEngine(t *testing.T) {
	_, err := NewRPCServer(common.ServerConfig{StoreEngine: "bogus"}, &stubTransport{}, nil)
	if err == nil {
		t.Fatal("NewRPCServer(unknown engine) error = nil, want error")
	}
}

func TestServerHandler(t *testing.T) {
	for _, engine := range []string{"cstore", "astore"} {
		t.Run(engine, func(t *testing.T) {
			stub := &stubTransport{}
			s, err := NewRPCServer(common.ServerConfig{StoreEngine: engine}, stub, nil)
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

			// The canonical put/get/del walk
			checkResponse(t, "put hello",
				handle(t, stub, wire.NewPutRequest("hello", []byte("world"))),
				wire.CodeOK, "hello", []byte("world"))

			checkResponse(t, "get hello",
				handle(t, stub, wire.NewGetRequest("hello")),
				wire.CodeOK, "hello", []byte("world"))

			checkResponse(t, "get world",
				handle(t, stub, wire.NewGetRequest("world")),
				wire.CodeNotFound, "world", nil)

			checkResponse(t, "del hello",
				handle(t, stub, wire.NewDelRequest("hello")),
				wire.CodeOK, "hello", []byte("world"))

			checkResponse(t, "get hello after del",
				handle(t, stub, wire.NewGetRequest("hello")),
				wire.CodeNotFound, "hello", nil)

			checkResponse(t, "empty request",
				handle(t, stub, &wire.Request{}),
				wire.CodeNotImpl, "", nil)
		})
	}
}

func TestServerHandlerMalformedRequest(t *testing.T) {
	stub := &stubTransport{}
	s, err := NewRPCServer(common.ServerConfig{}, stub, nil)
	if err != nil {
		t.Fatalf("NewRPCServer() error = %v", err)
	}
	if err := s.Serve(); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	defer s.Shutdown()

	// A truncated varint cannot be decoded, the handler must signal the
	// transport to close the connection
	if _, err := stub.handler([]byte{0x80}); err == nil {
		t.Fatal("handler(malformed) error = nil, want error")
	}
}

// --------------------------------------------------------------------------
// Integration over real TCP
// --------------------------------------------------------------------------

// dialServer opens a raw framed connection to the server
func dialServer(t *testing.T, addr string) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		t.Fatalf("SetDeadline() error = %v", err)
	}
	return conn
}

// exchange sends one request frame and reads the response frame
func exchange(t *testing.T, conn net.Conn, req *wire.Request) *wire.Response {
	t.Helper()

	if err := frame.Write(conn, req.Marshal()); err != nil {
		t.Fatalf("frame.Write() error = %v", err)
	}
	payload, err := frame.Read(conn, nil)
	if err != nil {
		t.Fatalf("frame.Read() error = %v", err)
	}

	var resp wire.Response
	if err := resp.Unmarshal(payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &resp
}

func TestServerOverTCP(t *testing.T) {
	s, err := NewRPCServer(
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

	conn := dialServer(t, s.Addr().String())

	checkResponse(t, "put hello",
		exchange(t, conn, wire.NewPutRequest("hello", []byte("world"))),
		wire.CodeOK, "hello", []byte("world"))

	checkResponse(t, "get hello",
		exchange(t, conn, wire.NewGetRequest("hello")),
		wire.CodeOK, "hello", []byte("world"))

	checkResponse(t, "get world",
		exchange(t, conn, wire.NewGetRequest("world")),
		wire.CodeNotFound, "world", nil)

	checkResponse(t, "del hello",
		exchange(t, conn, wire.NewDelRequest("hello")),
		wire.CodeOK, "hello", []byte("world"))

	checkResponse(t, "get hello after del",
		exchange(t, conn, wire.NewGetRequest("hello")),
		wire.CodeNotFound, "hello", nil)
}

func TestServerClosesConnOnMalformedFrame(t *testing.T) {
	s, err := NewRPCServer(
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
	defer s.Shutdown()

	addr := s.Addr().String()
	healthy := dialServer(t, addr)
	poisoned := dialServer(t, addr)

	// Seed a key over the healthy connection
	checkResponse(t, "put",
		exchange(t, healthy, wire.NewPutRequest("key", []byte("value"))),
		wire.CodeOK, "key", []byte("value"))

	// A frame whose payload is not decodable protobuf kills exactly this
	// connection
	if err := frame.Write(poisoned, []byte{0x80}); err != nil {
		t.Fatalf("frame.Write(garbage) error = %v", err)
	}
	if _, err := frame.Read(poisoned, nil); err == nil {
		t.Error("frame.Read() on poisoned connection = nil error, want closed connection")
	}

	// The healthy connection and new connections are unaffected
	checkResponse(t, "get after poison",
		exchange(t, healthy, wire.NewGetRequest("key")),
		wire.CodeOK, "key", []byte("value"))

	fresh := dialServer(t, addr)
	checkResponse(t, "get on fresh connection",
		exchange(t, fresh, wire.NewGetRequest("key")),
		wire.CodeOK, "key", []byte("value"))
}
