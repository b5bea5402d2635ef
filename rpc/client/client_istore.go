package client

import (
	"fmt"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/rpc/common"
	"github.com/pbeckmann/fKV/rpc/transport"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// NewRemoteStore creates a store.IStore backed by a remote server. It lets
// code written against the store interface run unchanged against the RPC
// service: response code 404 maps to found=false, everything else follows
// the local semantics.
func NewRemoteStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
) (store.IStore, error) {
	c, err := NewClient(config, transport)
	if err != nil {
		return nil, err
	}

	return &rpcStore{client: c}, nil
}

type rpcStore struct {
	client *Client
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store.IStore)
// --------------------------------------------------------------------------

func (s *rpcStore) Put(key string, value []byte) error {
	resp, err := s.client.Put(key, value)
	if err != nil {
		return err
	}
	if resp.Code != wire.CodeOK {
		return fmt.Errorf("put %q: server answered %v", key, resp.Code)
	}
	return nil
}

func (s *rpcStore) Get(key string) (value []byte, found bool, err error) {
	resp, err := s.client.Get(key)
	if err != nil {
		return nil, false, err
	}

	switch resp.Code {
	case wire.CodeOK:
		return resp.Value, true, nil
	case wire.CodeNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("get %q: server answered %v", key, resp.Code)
	}
}

func (s *rpcStore) Del(key string) (prior []byte, found bool, err error) {
	resp, err := s.client.Del(key)
	if err != nil {
		return nil, false, err
	}

	switch resp.Code {
	case wire.CodeOK:
		return resp.Value, true, nil
	case wire.CodeNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("del %q: server answered %v", key, resp.Code)
	}
}

// Len is not part of the wire protocol
func (s *rpcStore) Len() (int, error) {
	return 0, fmt.Errorf("remote store: %w", store.ErrUnsupported)
}

func (s *rpcStore) Close() error {
	return s.client.Close()
}
