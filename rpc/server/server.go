package server

import (
	"fmt"
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/lib/store/astore"
	"github.com/pbeckmann/fKV/lib/store/cstore"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/wire"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// --------------------------------------------------------------------------
// Server Factory Method
// --------------------------------------------------------------------------

// NewRPCServer creates a new RPC server. It selects and creates the store
// engine named in the config and wires it to the given transport.
//
// Usage:
//
//	s, err := server.NewRPCServer(config, tcp.NewTCPServerTransport(log), log)
//	if err != nil {
//		return err
//	}
//	if err := s.Serve(); err != nil {
//		return err
//	}
//	defer s.Shutdown()
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	log *zap.Logger,
) (IRPCServer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("rpc")

	// Create the store engine
	st, err := newStoreEngine(config.StoreEngine)
	if err != nil {
		return nil, err
	}

	log.Info("created RPC server", zap.String("engine", engineName(config.StoreEngine)))

	return &rpcServer{
		config:    config,
		transport: transport,
		store:     st,
		adapter:   NewIStoreServerAdapter(log),
		log:       log,
		metrics:   newServerMetrics(st),
	}, nil
}

// rpcServer binds the store engine, the dispatch adapter and the transport
// together
type rpcServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	store     store.IStore
	adapter   IRPCServerAdapter
	log       *zap.Logger
	metrics   *serverMetrics
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IRPCServer)
// --------------------------------------------------------------------------

func (s *rpcServer) Serve() error {
	s.registerTransportHandler()

	if err := s.transport.Listen(s.config); err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}
	return nil
}

func (s *rpcServer) Addr() net.Addr {
	return s.transport.Addr()
}

func (s *rpcServer) Shutdown() error {
	err := s.transport.Shutdown()
	err = multierr.Append(err, s.store.Close())
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// registerTransportHandler installs the decode/dispatch/encode pipeline as
// the transport's request handler
func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) ([]byte, error) {
		var msg wire.Request

		// Decode the request. Decode errors are unrecoverable: returning
		// the error makes the transport close the connection.
		if err := msg.Unmarshal(req); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}

		// Let the adapter handle the request
		start := time.Now()
		resp := s.adapter.Handle(&msg, s.store)
		s.metrics.observe(&msg, resp, start)

		// Return the encoded response
		return resp.Marshal(), nil
	})
}

// newStoreEngine creates the store engine registered under the given name.
// An empty name selects the default engine.
func newStoreEngine(name string) (store.IStore, error) {
	switch engineName(name) {
	case "cstore":
		return cstore.NewConcurrentStore(), nil
	case "astore":
		return astore.NewActorStore(), nil
	default:
		return nil, fmt.Errorf("unknown store engine %q", name)
	}
}

// engineName resolves the default engine name
func engineName(name string) string {
	if name == "" {
		return "cstore"
	}
	return name
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// cmdMetrics bundles the per-command counters and latency histogram
type cmdMetrics struct {
	requests *metrics.Counter
	misses   *metrics.Counter
	duration *metrics.Histogram
}

// serverMetrics holds the pre-created metric handles so the request path
// never goes through name formatting
type serverMetrics struct {
	get  cmdMetrics
	put  cmdMetrics
	del  cmdMetrics
	none cmdMetrics
}

func newServerMetrics(st store.IStore) *serverMetrics {
	newCmd := func(command string) cmdMetrics {
		return cmdMetrics{
			requests: metrics.GetOrCreateCounter(fmt.Sprintf(`fkv_requests_total{command=%q}`, command)),
			misses:   metrics.GetOrCreateCounter(fmt.Sprintf(`fkv_misses_total{command=%q}`, command)),
			duration: metrics.GetOrCreateHistogram(fmt.Sprintf(`fkv_request_duration_seconds{command=%q}`, command)),
		}
	}

	metrics.GetOrCreateGauge(`fkv_store_keys`, func() float64 {
		size, err := st.Len()
		if err != nil {
			return 0
		}
		return float64(size)
	})

	return &serverMetrics{
		get:  newCmd("get"),
		put:  newCmd("put"),
		del:  newCmd("del"),
		none: newCmd("none"),
	}
}

// observe records one handled request
func (m *serverMetrics) observe(req *wire.Request, resp *wire.Response, start time.Time) {
	var cmd *cmdMetrics
	switch req.Cmd.(type) {
	case *wire.Get:
		cmd = &m.get
	case *wire.Put:
		cmd = &m.put
	case *wire.Del:
		cmd = &m.del
	default:
		cmd = &m.none
	}

	cmd.requests.Inc()
	if resp.Code == wire.CodeNotFound {
		cmd.misses.Inc()
	}
	cmd.duration.UpdateDuration(start)
}
