package unix

import (
	"path/filepath"
	"testing"

	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/transport/transporttest"
)

func TestUnixTransport(t *testing.T) {
	transporttest.RunTransportTests(t, "Unix", transporttest.Factories{
		NewServer: func() transport.IRPCServerTransport {
			return NewUnixServerTransport(nil)
		},
		NewClient: func() transport.IRPCClientTransport {
			return NewUnixClientTransport(nil)
		},
		Endpoint: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "rpc.sock")
		},
	})
}
