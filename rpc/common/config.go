package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	// DefaultServerEndpoint is the address the server binds when no
	// endpoint is configured.
	DefaultServerEndpoint = "0.0.0.0:8888"

	// DefaultClientEndpoint is the address the client connects to when no
	// endpoint is configured.
	DefaultClientEndpoint = "127.0.0.1:8888"
)

// --------------------------------------------------------------------------
// Shared transport configuration struct
// --------------------------------------------------------------------------

// TransportConfig holds the socket-level tuning knobs shared by all
// transports. The zero value means "leave it to the OS" for every field.
type TransportConfig struct {
	// TCPNoDelay disables Nagle's algorithm on TCP connections
	TCPNoDelay bool
	// TCPKeepAliveSec is the TCP keep-alive period in seconds (0 = OS default)
	TCPKeepAliveSec int
	// TCPLingerSec sets SO_LINGER on TCP connections (negative = OS default)
	TCPLingerSec int
	// ReadBufferSize is the socket receive buffer size in bytes (0 = OS default)
	ReadBufferSize int
	// WriteBufferSize is the socket send buffer size in bytes (0 = OS default)
	WriteBufferSize int
	// ReusePort enables SO_REUSEPORT listeners so multiple accept loops
	// can share one port
	ReusePort bool
	// AcceptLoops is the number of concurrent accept loops (only used
	// together with ReusePort, minimum 1)
	AcceptLoops int
}

// writeFields appends the transport fields via the supplied formatter
func (c *TransportConfig) writeFields(addField func(name, value string)) {
	addField("TCP No Delay", strconv.FormatBool(c.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.TCPLingerSec))
	addField("Read Buffer Size", strconv.Itoa(c.ReadBufferSize))
	addField("Write Buffer Size", strconv.Itoa(c.WriteBufferSize))
	addField("Reuse Port", strconv.FormatBool(c.ReusePort))
	addField("Accept Loops", strconv.Itoa(max(1, c.AcceptLoops)))
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// Endpoint is the address the KV service listens on
	Endpoint string

	// AdminEndpoint is the address of the HTTP admin API serving health,
	// metrics and profiling. An empty string disables the admin API.
	AdminEndpoint string

	// StoreEngine selects the storage engine ("cstore" or "astore")
	StoreEngine string

	// TimeoutSecond is the per-exchange read/write deadline. A zero value
	// disables deadlines entirely: a stalled peer then occupies its
	// connection goroutine until it disconnects.
	TimeoutSecond int64

	// Logging configuration
	LogLevel string
	LogFile  string

	// Socket tuning shared by all transports
	Transport TransportConfig
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Store Engine", c.StoreEngine)
	if c.TimeoutSecond > 0 {
		addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Timeout", "disabled")
	}

	// Admin API
	addSection("Admin API")
	if c.AdminEndpoint != "" {
		addField("Endpoint", c.AdminEndpoint)
	} else {
		addField("Endpoint", "disabled")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.LogFile != "" {
		addField("Log File", c.LogFile)
	} else {
		addField("Log File", "stdout only")
	}

	// Transport tuning
	addSection("Transport")
	c.Transport.writeFields(addField)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for the RPC client.
type ClientConfig struct {
	// Endpoints lists the server addresses the client spreads its
	// connections over
	Endpoints []string

	// TimeoutSecond is the per-exchange deadline (0 = wait forever)
	TimeoutSecond int

	// ConnectionsPerEndpoint is the connection pool size per endpoint
	// (minimum 1). Each connection carries one exchange at a time, so the
	// pool size bounds the number of in-flight requests.
	ConnectionsPerEndpoint int

	// Socket tuning shared by all transports
	Transport TransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	if c.TimeoutSecond > 0 {
		addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	} else {
		addField("Timeout", "disabled")
	}
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	// Transport tuning
	addSection("Transport")
	c.Transport.writeFields(addField)

	return sb.String()
}
