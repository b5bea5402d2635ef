package util

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/tcp"
	"github.com/pbeckmann/fKV/rpc/transport/unix"
	"github.com/pbeckmann/fKV/rpc/transport/ws"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds for one request/response exchange"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, common.DefaultClientEndpoint, WrapString("The address of the fKV server. Multiple endpoints can be specified as a comma-separated list, requests are spread over them"))

	key = "conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint. Each connection carries one request at a time, so this bounds the number of in-flight requests"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 = OS default, ignored for ws)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 = OS default, ignored for ws)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to disable Nagle's algorithm (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, 0 = OS default, only for tcp)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time on close (in seconds, negative = OS default, only for tcp)"))

	key = "verbose"
	cmd.PersistentFlags().Bool(key, false, WrapString("Log transport activity to stderr"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("fkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		Endpoints:              strings.Split(viper.GetString("endpoints"), ","),
		TimeoutSecond:          viper.GetInt("timeout"),
		ConnectionsPerEndpoint: viper.GetInt("conn-per-endpoint"),
		Transport: common.TransportConfig{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}
}

// GetClientLogger creates the logger for client commands. Without the
// verbose flag only errors reach the terminal, so command output stays
// parseable.
func GetClientLogger() (*zap.Logger, error) {
	level := "error"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	return common.NewLogger(level, "")
}

// GetClientTransport creates a client transport based on configuration
func GetClientTransport(log *zap.Logger) (transport.IRPCClientTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "tcp":
		return tcp.NewTCPClientTransport(log), nil
	case "unix":
		return unix.NewUnixClientTransport(log), nil
	case "ws":
		return ws.NewWSClientTransport(log), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// GetServerTransport creates a server transport based on configuration
func GetServerTransport(log *zap.Logger) (transport.IRPCServerTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "tcp":
		return tcp.NewTCPServerTransport(log), nil
	case "unix":
		return unix.NewUnixServerTransport(log), nil
	case "ws":
		return ws.NewWSServerTransport(log), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
