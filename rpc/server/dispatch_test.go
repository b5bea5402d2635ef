package server

import (
	"bytes"
	"testing"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/lib/store/astore"
	"github.com/pbeckmann/fKV/lib/store/cstore"
	"github.com/pbeckmann/fKV/rpc/wire"
)

// seed puts the given pairs into a fresh store
func seed(t *testing.T, st store.IStore, pairs map[string][]byte) {
	t.Helper()
	for k, v := range pairs {
		if err := st.Put(k, v); err != nil {
			t.Fatalf("seed Put(%q) error = %v", k, err)
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		seed map[string][]byte
		req  *wire.Request
		want *wire.Response
	}{
		{
			name: "get hit",
			seed: map[string][]byte{"hello": []byte("world")},
			req:  wire.NewGetRequest("hello"),
			want: &wire.Response{Code: wire.CodeOK, Key: "hello", Value: []byte("world")},
		},
		{
			name: "get miss",
			req:  wire.NewGetRequest("missing"),
			want: &wire.Response{Code: wire.CodeNotFound, Key: "missing"},
		},
		{
			name: "put echoes pair",
			req:  wire.NewPutRequest("hello", []byte("world")),
			want: &wire.Response{Code: wire.CodeOK, Key: "hello", Value: []byte("world")},
		},
		{
			name: "put overwrite still code 0",
			seed: map[string][]byte{"hello": []byte("old")},
			req:  wire.NewPutRequest("hello", []byte("new")),
			want: &wire.Response{Code: wire.CodeOK, Key: "hello", Value: []byte("new")},
		},
		{
			name: "del hit reports prior value",
			seed: map[string][]byte{"hello": []byte("world")},
			req:  wire.NewDelRequest("hello"),
			want: &wire.Response{Code: wire.CodeOK, Key: "hello", Value: []byte("world")},
		},
		{
			name: "del miss",
			req:  wire.NewDelRequest("missing"),
			want: &wire.Response{Code: wire.CodeNotFound, Key: "missing"},
		},
		{
			name: "no command",
			req:  &wire.Request{},
			want: &wire.Response{Code: wire.CodeNotImpl},
		},
		{
			name: "empty key is a regular key",
			seed: map[string][]byte{"": []byte("empty")},
			req:  wire.NewGetRequest(""),
			want: &wire.Response{Code: wire.CodeOK, Key: "", Value: []byte("empty")},
		},
	}

	adapter := NewIStoreServerAdapter(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := cstore.NewConcurrentStore()
			seed(t, st, tt.seed)

			got := adapter.Handle(tt.req, st)

			if got.Code != tt.want.Code {
				t.Errorf("Handle() code = %v, want %v", got.Code, tt.want.Code)
			}
			if got.Key != tt.want.Key {
				t.Errorf("Handle() key = %q, want %q", got.Key, tt.want.Key)
			}
			if !bytes.Equal(got.Value, tt.want.Value) {
				t.Errorf("Handle() value = %q, want %q", got.Value, tt.want.Value)
			}
		})
	}
}

func TestDispatchDeleteRemovesKey(t *testing.T) {
	st := cstore.NewConcurrentStore()
	adapter := NewIStoreServerAdapter(nil)

	seed(t, st, map[string][]byte{"hello": []byte("world")})

	if resp := adapter.Handle(wire.NewDelRequest("hello"), st); resp.Code != wire.CodeOK {
		t.Fatalf("del code = %v, want %v", resp.Code, wire.CodeOK)
	}

	// The key must be gone afterwards
	if resp := adapter.Handle(wire.NewGetRequest("hello"), st); resp.Code != wire.CodeNotFound {
		t.Errorf("get after del code = %v, want %v", resp.Code, wire.CodeNotFound)
	}
}

func TestDispatchNilStore(t *testing.T) {
	adapter := NewIStoreServerAdapter(nil)

	resp := adapter.Handle(wire.NewGetRequest("hello"), nil)
	if resp.Code != wire.CodeNotImpl {
		t.Errorf("Handle(nil store) code = %v, want %v", resp.Code, wire.CodeNotImpl)
	}
}

func TestDispatchStoreError(t *testing.T) {
	// A closed actor store fails every operation, the adapter must map
	// that to the not-implemented code instead of panicking
	st := astore.NewActorStore()
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	adapter := NewIStoreServerAdapter(nil)

	for _, req := range []*wire.Request{
		wire.NewGetRequest("k"),
		wire.NewPutRequest("k", []byte("v")),
		wire.NewDelRequest("k"),
	} {
		resp := adapter.Handle(req, st)
		if resp.Code != wire.CodeNotImpl {
			t.Errorf("Handle(%T) on closed store code = %v, want %v", req.Cmd, resp.Code, wire.CodeNotImpl)
		}
	}
}
