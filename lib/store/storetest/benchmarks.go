package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/pbeckmann/fKV/lib/store"
)

// RunStoreBenchmarks runs all benchmarks for an IStore implementation
func RunStoreBenchmarks(b *testing.B, name string, factory store.Factory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory())
		})

		b.Run("PutExisting", func(b *testing.B) {
			benchmarkPutExisting(b, factory())
		})

		b.Run("PutLargeValue", func(b *testing.B) {
			benchmarkPutLargeValue(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Get(miss)", func(b *testing.B) {
			benchmarkGetMiss(b, factory())
		})

		b.Run("Del", func(b *testing.B) {
			benchmarkDel(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put with fresh keys
func benchmarkPut(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			if err := s.Put(key, value); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			counter++
		}
	})
}

// Benchmark for Put overwriting existing keys
func benchmarkPutExisting(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		value := []byte(fmt.Sprintf("test-value-%d", i))
		if err := s.Put(key, value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			if err := s.Put(key, value); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			counter++
		}
	})
}

// Benchmark for Put with large values
func benchmarkPutLargeValue(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	largeValue := make([]byte, 64*1024) // 64KB

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			if err := s.Put(key, largeValue); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			counter++
		}
	})
}

// Parallel benchmarking for Get
func benchmarkGet(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		value := []byte(fmt.Sprintf("test-value-%d", i))
		if err := s.Put(key, value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			if _, _, err := s.Get(key); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
			counter++
		}
	})
}

// Parallel benchmarking for Get with a key miss
func benchmarkGetMiss(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	const key = "test-key"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := s.Get(key); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
		}
	})
}

// Parallel benchmarking for Del
func benchmarkDel(b *testing.B, s store.IStore) {

	b.Cleanup(func() {
		s.Close()
	})

	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	// Prepare data
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		value := []byte(fmt.Sprintf("test-value-%d", i))
		if err := s.Put(keys[i], value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	// Counter for atomic access
	var counter int64

	// Reset timer since we were doing setup
	b.ResetTimer()

	// Run parallel delete operations
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys
			if _, _, err := s.Del(keys[idx]); err != nil {
				b.Fatalf("Del failed: %v", err)
			}
		}
	})
}

// Benchmark for mixed usage patterns
func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	b.Cleanup(func() {
		s.Close()
	})

	// Number of pre-populated keys
	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	// Prepare initial data
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		value := []byte(fmt.Sprintf("test-value-%d", i))
		if err := s.Put(keys[i], value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	// Counter for atomic access
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		// Local counter for each goroutine
		localCounter := 0

		for pb.Next() {
			// Get a somewhat random index
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys

			// Select operation (roughly 60% get, 30% put, 10% del)
			op := localCounter % 10

			// For every 10th operation, use a completely new key
			var key string
			if localCounter%10 == 0 {
				key = fmt.Sprintf("new-key-%d", localCounter)
			} else {
				key = keys[idx]
			}

			switch {
			case op < 6: // Get
				_, _, _ = s.Get(key)
			case op < 9: // Put
				value := []byte(fmt.Sprintf("mixed-value-%d", localCounter))
				_ = s.Put(key, value)
			default: // Del
				_, _, _ = s.Del(key)
			}

			localCounter++
		}
	})
}
