package tcp

import (
	"testing"

	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/transporttest"
)

func TestTCPTransport(t *testing.T) {
	transporttest.RunTransportTests(t, "TCP", transporttest.Factories{
		NewServer: func() transport.IRPCServerTransport {
			return NewTCPServerTransport(nil)
		},
		NewClient: func() transport.IRPCClientTransport {
			return NewTCPClientTransport(nil)
		},
		Endpoint: func(t *testing.T) string {
			return "127.0.0.1:0"
		},
	})
}
