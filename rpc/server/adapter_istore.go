package server

import (
	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/rpc/wire"
	"go.uber.org/zap"
)

// NewIStoreServerAdapter creates the adapter mapping wire requests to
// IStore operations
func NewIStoreServerAdapter(log *zap.Logger) IRPCServerAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &iStoreServerAdapterImpl{log: log.Named("adapter")}
}

type iStoreServerAdapterImpl struct {
	log *zap.Logger
}

func (adapter *iStoreServerAdapterImpl) Handle(req *wire.Request, st store.IStore) *wire.Response {
	// Check for nil store
	if st == nil {
		adapter.log.Error("store is nil")
		return wire.NewNotImplResponse()
	}

	// Handle the different commands
	switch cmd := req.Cmd.(type) {
	case *wire.Get:
		value, found, err := st.Get(cmd.Key)
		if err != nil {
			return adapter.storeError("get", cmd.Key, err)
		}
		if !found {
			return wire.NewNotFoundResponse(cmd.Key)
		}
		return wire.NewOKResponse(cmd.Key, value)

	case *wire.Put:
		if err := st.Put(cmd.Key, cmd.Value); err != nil {
			return adapter.storeError("put", cmd.Key, err)
		}
		// A put always succeeds and echoes the stored pair
		return wire.NewOKResponse(cmd.Key, cmd.Value)

	case *wire.Del:
		prior, found, err := st.Del(cmd.Key)
		if err != nil {
			return adapter.storeError("del", cmd.Key, err)
		}
		if !found {
			return wire.NewNotFoundResponse(cmd.Key)
		}
		// A delete hit reports the value the key held
		return wire.NewOKResponse(cmd.Key, prior)

	default:
		// No command set, syntactically valid but not dispatchable
		return wire.NewNotImplResponse()
	}
}

// storeError logs a failed store operation and converts it into a response.
// The protocol has no error payload, so the client only sees the code.
func (adapter *iStoreServerAdapterImpl) storeError(op, key string, err error) *wire.Response {
	adapter.log.Error("store operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return wire.NewNotImplResponse()
}
