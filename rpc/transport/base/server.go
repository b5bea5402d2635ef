package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/frame"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates one or more listeners for the configured endpoint.
	// Transports supporting SO_REUSEPORT may return several listeners
	// bound to the same address, one per accept loop.
	Listen(config common.ServerConfig) ([]net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// defaultBufferSize covers the largest legal frame payload plus its header
const defaultBufferSize = 64 * 1024

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector  IServerConnector
	handler    transport.ServerHandleFunc
	config     common.ServerConfig
	log        *zap.Logger
	bufferPool *sync.Pool
	bufferSize int

	mu        sync.Mutex
	listeners []net.Listener
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool

	activeConns atomic.Int64
	connsTotal  *metrics.Counter
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport on top of the
// given connector. bufferSize is the per-connection read buffer size; values
// below the maximum frame size are raised to the default.
func NewBaseServerTransport(connector IServerConnector, log *zap.Logger, bufferSize int) transport.IRPCServerTransport {
	if log == nil {
		log = zap.NewNop()
	}
	if bufferSize < frame.MaxPayload {
		bufferSize = defaultBufferSize
	}

	return &serverTransport{
		connector:  connector,
		log:        log.Named("transport/" + connector.GetName()),
		bufferSize: bufferSize,
		conns:      make(map[net.Conn]struct{}),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	name := t.connector.GetName()
	t.connsTotal = metrics.GetOrCreateCounter(fmt.Sprintf(`fkv_connections_total{transport=%q}`, name))
	metrics.GetOrCreateGauge(fmt.Sprintf(`fkv_connections_active{transport=%q}`, name), func() float64 {
		return float64(t.activeConns.Load())
	})

	// Create listeners using the connector
	listeners, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	if len(listeners) == 0 {
		return fmt.Errorf("connector %s returned no listeners", name)
	}

	t.mu.Lock()
	t.listeners = listeners
	t.mu.Unlock()

	t.log.Info("server listening",
		zap.String("endpoint", config.Endpoint),
		zap.Int("accept_loops", len(listeners)),
	)

	// Accept connections
	for _, listener := range listeners {
		t.wg.Add(1)
		go t.acceptLoop(listener)
	}

	return nil
}

func (t *serverTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.listeners) == 0 {
		return nil
	}
	return t.listeners[0].Addr()
}

func (t *serverTransport) Shutdown() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error

	t.mu.Lock()
	for _, listener := range t.listeners {
		if cerr := listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	for conn := range t.conns {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	t.mu.Unlock()

	t.wg.Wait()
	t.log.Info("server transport stopped")
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acceptLoop accepts connections from one listener until it is closed
func (t *serverTransport) acceptLoop(listener net.Listener) {
	defer t.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			t.log.Error("accept error", zap.Error(err))
			continue
		}

		if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
			t.log.Warn("failed to upgrade connection",
				zap.String("remote", conn.RemoteAddr().String()),
				zap.Error(err),
			)
			_ = conn.Close()
			continue
		}

		t.trackConn(conn, true)

		// Handle the connection in a goroutine
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.handleConnection(conn)
		}()
	}
}

// trackConn registers or unregisters a connection for shutdown and metrics
func (t *serverTransport) trackConn(conn net.Conn, add bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if add {
		t.conns[conn] = struct{}{}
		t.activeConns.Add(1)
		t.connsTotal.Inc()
	} else {
		delete(t.conns, conn)
		t.activeConns.Add(-1)
	}
}

// handleConnection handles incoming requests for one connection.
//
// Requests are processed strictly in order: read one frame, dispatch it,
// write the response, then read the next frame. A request is never read
// before the previous response has been written, so responses can carry no
// request identifiers and still match up on the client side.
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer func() {
		t.trackConn(conn, false)
		_ = conn.Close()
	}()

	log := t.log.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("connection established")

	// Timeout in seconds (zero disables deadlines)
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// One read buffer per connection, large enough for any legal frame
	buf := t.bufferPool.Get().([]byte)
	defer t.bufferPool.Put(buf)

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				log.Error("failed to set read deadline", zap.Error(err))
				return
			}
		}

		payload, err := frame.Read(conn, buf)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Debug("connection closed by client")
			case t.closed.Load():
				// Shutdown closed the connection underneath us
			case errors.Is(err, frame.ErrTruncated):
				log.Warn("connection dropped mid-frame", zap.Error(err))
			default:
				log.Warn("read error", zap.Error(err))
			}
			return
		}

		// Process the request
		start := time.Now()
		resp, err := t.handler(payload)
		if err != nil {
			// The payload could not be decoded, the stream is no longer
			// trustworthy
			log.Warn("closing connection after unrecoverable request", zap.Error(err))
			return
		}
		log.Debug("processed request", zap.Duration("took", time.Since(start)))

		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				log.Error("failed to set write deadline", zap.Error(err))
				return
			}
		}

		if err := frame.Write(conn, resp); err != nil {
			if !t.closed.Load() {
				log.Warn("failed to write response", zap.Error(err))
			}
			return
		}
	}
}
