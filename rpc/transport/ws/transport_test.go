package ws

import (
	"testing"

	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/transporttest"
)

func TestWSTransport(t *testing.T) {
	transporttest.RunTransportTests(t, "WebSocket", transporttest.Factories{
		NewServer: func() transport.IRPCServerTransport {
			return NewWSServerTransport(nil)
		},
		NewClient: func() transport.IRPCClientTransport {
			return NewWSClientTransport(nil)
		},
		Endpoint: func(t *testing.T) string {
			return "127.0.0.1:0"
		},
	})
}
