package ws

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// wsClientConnection represents a single WebSocket connection.
//
// Like the socket transports, a connection carries one exchange at a time:
// the mutex holds it for a full write-request/read-response round trip.
type wsClientConnection struct {
	endpoint string
	parent   *wsClientTransport

	mu   sync.Mutex      // serializes the request/response exchange
	conn *websocket.Conn // nil after a failure, redialed on next use
}

// wsClientTransport implements the IRPCClientTransport interface on top of
// WebSocket connections
type wsClientTransport struct {
	config common.ClientConfig
	log    *zap.Logger
	dialer *websocket.Dialer

	connectionsMu sync.RWMutex
	connections   []*wsClientConnection
	nextConnIndex uint64 // Atomic counter for Round Robin
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewWSClientTransport creates a new WebSocket client transport
func NewWSClientTransport(log *zap.Logger) transport.IRPCClientTransport {
	if log == nil {
		log = zap.NewNop()
	}

	return &wsClientTransport{
		log: log.Named("transport/ws"),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *wsClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Store the config
	t.config = config

	// Close all existing connections
	_ = t.closeConnections()

	t.dialer = &websocket.Dialer{
		HandshakeTimeout: time.Duration(max(1, config.TimeoutSecond)) * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := max(1, config.ConnectionsPerEndpoint)

	// Initialize client connections
	connections := make([]*wsClientConnection, 0, len(config.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &wsClientConnection{
				endpoint: endpointURL(endpoint),
				parent:   t,
			}

			// Establish the initial connection
			clientConn.mu.Lock()
			err := clientConn.dial()
			clientConn.mu.Unlock()

			if err != nil {
				t.log.Warn("failed to connect",
					zap.String("endpoint", endpoint),
					zap.Int("connection", i+1),
					zap.Int("of", connectionsPerEP),
					zap.Error(err),
				)
				continue
			}

			connections = append(connections, clientConn)
		}
	}

	// Check if we have at least one connection
	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	t.log.Info("connected",
		zap.Int("connections", len(connections)),
		zap.Int("of", len(config.Endpoints)*connectionsPerEP),
		zap.Int("endpoints", len(config.Endpoints)),
	)

	return nil
}

func (t *wsClientTransport) Send(req []byte) ([]byte, error) {
	conn := t.getNextConnection()
	if conn == nil {
		return nil, fmt.Errorf("no active connections available")
	}

	// Failed exchanges are never retried here, see the socket transports
	// for the reasoning
	return conn.exchange(req)
}

func (t *wsClientTransport) Close() error {
	return t.closeConnections()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// endpointURL normalizes a configured endpoint to a WebSocket URL.
// Bare host:port endpoints are turned into ws:// URLs so the same endpoint
// list works for the socket transports and this one.
func endpointURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
		return endpoint
	}
	return "ws://" + endpoint
}

// getNextConnection selects the next connection via Round Robin
func (t *wsClientTransport) getNextConnection() *wsClientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// Simple Round Robin algorithm
	var index uint64
	if len(t.connections) == 1 {
		// optimize for single connection
		index = 0
	} else {
		index = atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
	}
	return t.connections[index]
}

// closeConnections closes all active connections
func (t *wsClientTransport) closeConnections() error {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	var err error
	for _, conn := range t.connections {
		conn.mu.Lock()
		if conn.conn != nil {
			// Best effort close handshake before dropping the connection
			_ = conn.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			err = multierr.Append(err, conn.conn.Close())
			conn.conn = nil
		}
		conn.mu.Unlock()
	}

	// Empty the list
	t.connections = nil
	return err
}

// dial establishes the connection to the endpoint. The caller must hold c.mu.
func (c *wsClientConnection) dial() error {
	conn, _, err := c.parent.dialer.Dial(c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}

// teardown drops the connection so the next exchange dials anew.
// The caller must hold c.mu.
func (c *wsClientConnection) teardown() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// exchange performs one request/response round trip on this connection
func (c *wsClientConnection) exchange(req []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-establish the connection if an earlier exchange tore it down
	if c.conn == nil {
		if err := c.dial(); err != nil {
			return nil, err
		}
		c.parent.log.Info("reconnected", zap.String("endpoint", c.endpoint))
	}

	// One deadline covers the whole round trip
	if t := c.parent.config.TimeoutSecond; t > 0 {
		deadline := time.Now().Add(time.Duration(t) * time.Second)
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, req); err != nil {
		c.teardown()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	msgType, resp, err := c.conn.ReadMessage()
	if err != nil {
		c.teardown()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if msgType != websocket.BinaryMessage {
		c.teardown()
		return nil, fmt.Errorf("unexpected message type %d", msgType)
	}

	return resp, nil
}
