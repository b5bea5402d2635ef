package cstore

import (
	"testing"

	"github.com/pbeckmann/fKV/lib/store/storetest"
)

func Test(t *testing.T) {
	storetest.RunStoreTests(t, "ConcurrentStore", NewConcurrentStore)
}

func Benchmark(b *testing.B) {
	storetest.RunStoreBenchmarks(b, "ConcurrentStore", NewConcurrentStore)
}
