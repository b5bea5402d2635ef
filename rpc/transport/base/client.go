package base

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/frame"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the given endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConnection represents a single net connection.
//
// The wire protocol carries no request identifiers, so a connection can
// only ever have one exchange in flight: the mutex holds the connection
// for a full write-request/read-response round trip. Parallelism comes
// from the pool of connections, not from pipelining on one of them.
type clientConnection struct {
	endpoint string
	parent   *clientTransport

	mu   sync.Mutex // serializes the request/response exchange
	conn net.Conn   // nil after a failure, redialed on next use
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	log       *zap.Logger

	connectionsMu sync.RWMutex
	connections   []*clientConnection
	nextConnIndex uint64 // Atomic counter for Round Robin
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector, log *zap.Logger) transport.IRPCClientTransport {
	if log == nil {
		log = zap.NewNop()
	}

	return &clientTransport{
		connector: connector,
		log:       log.Named("transport/" + connector.GetName()),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Store the config
	t.config = config

	// Close all existing connections
	_ = t.closeConnections()

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := max(1, config.ConnectionsPerEndpoint)

	// Initialize client connections
	connections := make([]*clientConnection, 0, len(config.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint: endpoint,
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

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	conn := t.getNextConnection()
	if conn == nil {
		return nil, fmt.Errorf("no active connections available")
	}

	// A failed exchange is reported to the caller as-is. The connection
	// is torn down and redialed on its next use, but the operation itself
	// is never retried here: the caller cannot know whether a write that
	// died halfway was applied by the server.
	return conn.exchange(req)
}

func (t *clientTransport) Close() error {
	return t.closeConnections()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
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
func (t *clientTransport) closeConnections() error {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	var err error
	for _, conn := range t.connections {
		conn.mu.Lock()
		if conn.conn != nil {
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
func (c *clientConnection) dial() error {
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}

// teardown drops the connection so the next exchange dials anew.
// The caller must hold c.mu.
func (c *clientConnection) teardown() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// exchange performs one request/response round trip on this connection
func (c *clientConnection) exchange(req []byte) ([]byte, error) {
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
		if err := c.conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if err := frame.Write(c.conn, req); err != nil {
		c.teardown()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	resp, err := frame.Read(c.conn, nil)
	if err != nil {
		c.teardown()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp, nil
}
