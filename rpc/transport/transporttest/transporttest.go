package transporttest

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/frame"
)

// Factories bundles the constructors and endpoint source for one transport
// implementation under test.
type Factories struct {
	// NewServer creates an unstarted server transport
	NewServer func() transport.IRPCServerTransport

	// NewClient creates an unconnected client transport
	NewClient func() transport.IRPCClientTransport

	// Endpoint returns a fresh endpoint for the server to bind. Socket
	// transports return an address with port 0, the unix transport a
	// path in a temp dir.
	Endpoint func(t *testing.T) string
}

// RunTransportTests runs a test suite shared by all transport implementations.
func RunTransportTests(t *testing.T, name string, f Factories) {
	t.Run(name, func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, f)
		})

		t.Run("EmptyPayload", func(t *testing.T) {
			testEmptyPayload(t, f)
		})

		t.Run("MaxPayload", func(t *testing.T) {
			testMaxPayload(t, f)
		})

		t.Run("SequentialOrdering", func(t *testing.T) {
			testSequentialOrdering(t, f)
		})

		t.Run("ConcurrentClients", func(t *testing.T) {
			testConcurrentClients(t, f)
		})

		t.Run("HandlerErrorClosesConnection", func(t *testing.T) {
			testHandlerError(t, f)
		})

		t.Run("ShutdownIdempotent", func(t *testing.T) {
			testShutdownIdempotent(t, f)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// startServer binds a server transport with the given handler and returns
// it together with the endpoint clients should dial.
func startServer(t *testing.T, f Factories, handler transport.ServerHandleFunc) (transport.IRPCServerTransport, string) {
	t.Helper()

	server := f.NewServer()
	server.RegisterHandler(handler)

	if err := server.Listen(common.ServerConfig{Endpoint: f.Endpoint(t)}); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() {
		if err := server.Shutdown(); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})

	addr := server.Addr()
	if addr == nil {
		t.Fatal("Addr() = nil after successful Listen")
	}
	return server, addr.String()
}

// connectClient connects a client transport to the given endpoint
func connectClient(t *testing.T, f Factories, endpoint string, connsPerEndpoint int) transport.IRPCClientTransport {
	t.Helper()

	client := f.NewClient()
	err := client.Connect(common.ClientConfig{
		Endpoints:              []string{endpoint},
		ConnectionsPerEndpoint: connsPerEndpoint,
		TimeoutSecond:          10,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return client
}

// echoHandler responds with the request payload
func echoHandler(req []byte) ([]byte, error) {
	return req, nil
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testRoundTrip(t *testing.T, f Factories) {
	_, endpoint := startServer(t, f, echoHandler)
	client := connectClient(t, f, endpoint, 1)

	for _, payload := range [][]byte{
		[]byte("hello"),
		[]byte("world"),
		{0x00, 0xff, 0x80, 0x7f},
	} {
		resp, err := client.Send(payload)
		if err != nil {
			t.Fatalf("Send(%q) error = %v", payload, err)
		}
		if !bytes.Equal(resp, payload) {
			t.Errorf("Send(%q) = %q, want echo", payload, resp)
		}
	}
}

func testEmptyPayload(t *testing.T, f Factories) {
	_, endpoint := startServer(t, f, echoHandler)
	client := connectClient(t, f, endpoint, 1)

	resp, err := client.Send([]byte{})
	if err != nil {
		t.Fatalf("Send(empty) error = %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("Send(empty) = %q, want empty response", resp)
	}
}

func testMaxPayload(t *testing.T, f Factories) {
	_, endpoint := startServer(t, f, echoHandler)
	client := connectClient(t, f, endpoint, 1)

	payload := bytes.Repeat([]byte{0xab}, frame.MaxPayload)
	resp, err := client.Send(payload)
	if err != nil {
		t.Fatalf("Send(max payload) error = %v", err)
	}
	if !bytes.Equal(resp, payload) {
		t.Errorf("max payload echo mismatch: got %d bytes, want %d", len(resp), len(payload))
	}
}

func testSequentialOrdering(t *testing.T, f Factories) {
	// The handler tags every response with a server-side sequence number.
	// On a single connection the transport must never read request n+1
	// before response n was written, so the numbers must match the send
	// order exactly.
	var mu sync.Mutex
	seq := 0
	_, endpoint := startServer(t, f, func(req []byte) ([]byte, error) {
		mu.Lock()
		seq++
		n := seq
		mu.Unlock()
		return []byte(fmt.Sprintf("%s#%d", req, n)), nil
	})
	client := connectClient(t, f, endpoint, 1)

	for i := 1; i <= 20; i++ {
		want := fmt.Sprintf("req#%d", i)
		resp, err := client.Send([]byte("req"))
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if string(resp) != want {
			t.Fatalf("Send() = %q, want %q", resp, want)
		}
	}
}

func testConcurrentClients(t *testing.T, f Factories) {
	_, endpoint := startServer(t, f, echoHandler)
	client := connectClient(t, f, endpoint, 4)

	const (
		goroutines = 8
		requests   = 50
	)

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < requests; i++ {
				payload := []byte(fmt.Sprintf("g%d-r%d", g, i))
				resp, err := client.Send(payload)
				if err != nil {
					errs <- fmt.Errorf("Send(%q) error: %w", payload, err)
					return
				}
				if !bytes.Equal(resp, payload) {
					errs <- fmt.Errorf("Send(%q) = %q, want echo", payload, resp)
					return
				}
			}
		}(g)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func testHandlerError(t *testing.T, f Factories) {
	_, endpoint := startServer(t, f, func(req []byte) ([]byte, error) {
		if bytes.Equal(req, []byte("poison")) {
			return nil, fmt.Errorf("unrecoverable request")
		}
		return req, nil
	})
	client := connectClient(t, f, endpoint, 1)

	// The server closes the connection without a response, so the client
	// sees an error instead of hanging
	if _, err := client.Send([]byte("poison")); err == nil {
		t.Fatal("Send(poison) error = nil, want error after server closed connection")
	}

	// The next exchange redials and succeeds
	resp, err := client.Send([]byte("recovered"))
	if err != nil {
		t.Fatalf("Send() after reconnect error = %v", err)
	}
	if string(resp) != "recovered" {
		t.Errorf("Send() after reconnect = %q, want %q", resp, "recovered")
	}
}

func testShutdownIdempotent(t *testing.T, f Factories) {
	server, _ := startServer(t, f, echoHandler)

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := server.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
