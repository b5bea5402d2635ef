package ws

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/websocket"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/frame"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// wsServerTransport implements the IRPCServerTransport interface on top of
// WebSocket connections. Unlike the socket transports it does not go through
// the base package: WebSocket messages are already length-delimited, so the
// frame codec is not needed.
type wsServerTransport struct {
	handler  transport.ServerHandleFunc
	config   common.ServerConfig
	log      *zap.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	wg     sync.WaitGroup
	closed atomic.Bool

	activeConns atomic.Int64
	connsTotal  *metrics.Counter
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewWSServerTransport creates a new WebSocket server transport
func NewWSServerTransport(log *zap.Logger) transport.IRPCServerTransport {
	if log == nil {
		log = zap.NewNop()
	}

	return &wsServerTransport{
		log:   log.Named("transport/ws"),
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *wsServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *wsServerTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	t.connsTotal = metrics.GetOrCreateCounter(`fkv_connections_total{transport="ws"}`)
	metrics.GetOrCreateGauge(`fkv_connections_active{transport="ws"}`, func() float64 {
		return float64(t.activeConns.Load())
	})

	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create WebSocket listener: %w", err)
	}
	t.listener = listener

	mux := http.NewServeMux()
	// Go 1.21's ServeMux has no method patterns ("GET /"); GET-only is
	// enforced by the upgrader, which rejects other methods with 405.
	mux.HandleFunc("/", t.handleUpgrade)
	t.httpServer = &http.Server{Handler: mux}

	t.log.Info("server listening", zap.String("endpoint", config.Endpoint))

	// Serve in the background, Listen only reports bind errors
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("http serve error", zap.Error(err))
		}
	}()

	return nil
}

func (t *wsServerTransport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *wsServerTransport) Shutdown() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error

	// The HTTP server does not track upgraded (hijacked) connections, so
	// the WebSocket connections have to be closed explicitly.
	t.mu.Lock()
	for conn := range t.conns {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	t.mu.Unlock()

	if t.httpServer != nil {
		if cerr := t.httpServer.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}

	t.wg.Wait()
	t.log.Info("server transport stopped")
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleUpgrade upgrades an incoming HTTP request to a WebSocket connection
// and serves requests on it until the peer disconnects
func (t *wsServerTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if t.closed.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	// Cap incoming messages at the same limit the framed transports enforce
	conn.SetReadLimit(frame.MaxPayload)

	t.wg.Add(1)
	t.trackConn(conn, true)
	defer func() {
		t.trackConn(conn, false)
		_ = conn.Close()
		t.wg.Done()
	}()

	log := t.log.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("connection established")

	// Timeout in seconds (zero disables deadlines)
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// Requests are processed strictly in order, same contract as the
	// socket transports: read one message, dispatch it, write the
	// response, then read the next message.
	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				log.Error("failed to set read deadline", zap.Error(err))
				return
			}
		}

		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if !t.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("connection closed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			log.Warn("dropping non-binary message", zap.Int("type", msgType))
			continue
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

		if err := conn.WriteMessage(websocket.BinaryMessage, resp); err != nil {
			if !t.closed.Load() {
				log.Warn("failed to write response", zap.Error(err))
			}
			return
		}
	}
}

// trackConn registers or unregisters a connection for shutdown and metrics
func (t *wsServerTransport) trackConn(conn *websocket.Conn, add bool) {
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
