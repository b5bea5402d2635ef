package tcp

import (
	"fmt"
	"net"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/base"
	"go.uber.org/zap"
)

const (
	defaultBufferSize = 64 * 1024 // 64 KB, covers the largest legal frame
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) ([]net.Listener, error) {
	// With SO_REUSEPORT enabled, several listeners bind the same address and
	// the kernel spreads incoming connections across the accept loops
	if config.Transport.ReusePort {
		loops := max(1, config.Transport.AcceptLoops)

		listeners := make([]net.Listener, 0, loops)
		for i := 0; i < loops; i++ {
			listener, err := reuseport.Listen("tcp", config.Endpoint)
			if err != nil {
				for _, l := range listeners {
					_ = l.Close()
				}
				return nil, fmt.Errorf("failed to create reuseport TCP socket: %w", err)
			}
			listeners = append(listeners, listener)
		}
		return listeners, nil
	}

	// Create TCP socket listener
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %w", err)
	}

	return []net.Listener{listener}, nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	return upgradeTCPConn(conn, config.Transport)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// upgradeTCPConn applies the configured socket options to a TCP connection.
// Shared by the server and client connectors.
func upgradeTCPConn(conn net.Conn, cfg common.TransportConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(cfg.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if cfg.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(cfg.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if cfg.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(cfg.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if cfg.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		// Set keep-alive period
		keepAlivePeriod := time.Duration(cfg.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if cfg.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(cfg.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPServerTransport creates a new TCP server transport
func NewTCPServerTransport(log *zap.Logger) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, log, defaultBufferSize)
}
