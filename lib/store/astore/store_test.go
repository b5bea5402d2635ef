package astore

import (
	"errors"
	"testing"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/lib/store/storetest"
)

func Test(t *testing.T) {
	storetest.RunStoreTests(t, "ActorStore", NewActorStore)
}

func Benchmark(b *testing.B) {
	storetest.RunStoreBenchmarks(b, "ActorStore", NewActorStore)
}

// TestOperationsAfterClose tests that a closed store rejects all operations
// with store.ErrClosed instead of blocking on the stopped owner goroutine
func TestOperationsAfterClose(t *testing.T) {
	s := NewActorStore()

	if err := s.Put("key", []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.Put("key", []byte("value")); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Put after Close: expected ErrClosed, got %v", err)
	}

	if _, _, err := s.Get("key"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Get after Close: expected ErrClosed, got %v", err)
	}

	if _, _, err := s.Del("key"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Del after Close: expected ErrClosed, got %v", err)
	}

	if _, err := s.Len(); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Len after Close: expected ErrClosed, got %v", err)
	}
}
