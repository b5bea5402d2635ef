package storetest

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pbeckmann/fKV/lib/store"
)

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory store.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("Del", func(t *testing.T) {
			testDel(t, factory())
		})

		t.Run("Len", func(t *testing.T) {
			testLen(t, factory())
		})

		t.Run("ValueIsolation", func(t *testing.T) {
			testValueIsolation(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ManyKeys", func(t *testing.T) {
			testManyKeys(t, factory())
		})

		t.Run("ConcurrentDistinctKeys", func(t *testing.T) {
			testConcurrentDistinctKeys(t, factory())
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// mustPut stores a key-value pair and fails the test on error
func mustPut(t testing.TB, s store.IStore, key string, value []byte) {
	t.Helper()
	if err := s.Put(key, value); err != nil {
		t.Fatalf("Put(%q) failed: %v", key, err)
	}
}

// mustGet retrieves a key and fails the test on error
func mustGet(t testing.TB, s store.IStore, key string) ([]byte, bool) {
	t.Helper()
	value, found, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return value, found
}

// mustDel removes a key and fails the test on error
func mustDel(t testing.TB, s store.IStore, key string) ([]byte, bool) {
	t.Helper()
	prior, found, err := s.Del(key)
	if err != nil {
		t.Fatalf("Del(%q) failed: %v", key, err)
	}
	return prior, found
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, s store.IStore) {
	defer s.Close()

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustPut(t, s, testKey, testValue1)

	result, exists := mustGet(t, s, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// Overwrite with a new value
	mustPut(t, s, testKey, testValue2)

	result, exists = mustGet(t, s, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists = mustGet(t, s, "nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testDel(t *testing.T, s store.IStore) {
	defer s.Close()

	testKey := "delete-test-key"
	testValue := []byte("delete-test-value")

	mustPut(t, s, testKey, testValue)

	// Del must hand back the value that was stored
	prior, found := mustDel(t, s, testKey)
	if !found {
		t.Errorf("Expected Del to find key %s", testKey)
	}
	if !bytes.Equal(prior, testValue) {
		t.Errorf("Expected prior value %s, got %s", testValue, prior)
	}

	// The key is gone afterwards
	_, exists := mustGet(t, s, testKey)
	if exists {
		t.Errorf("Expected key %s to not exist after Del", testKey)
	}

	// Deleting again reports the key as absent, without error
	prior, found = mustDel(t, s, testKey)
	if found {
		t.Errorf("Expected second Del to not find key %s", testKey)
	}
	if len(prior) != 0 {
		t.Errorf("Expected no prior value from second Del, got %s", prior)
	}

	// Deleting a key that never existed behaves the same
	_, found = mustDel(t, s, "nonexistent-key")
	if found {
		t.Errorf("Expected Del of nonexistent key to report found=false")
	}
}

func testLen(t *testing.T, s store.IStore) {
	defer s.Close()

	if _, err := s.Len(); errors.Is(err, store.ErrUnsupported) {
		t.Skipf("Len not supported: %v", err)
	}

	checkLen := func(want int) {
		t.Helper()
		size, err := s.Len()
		if err != nil {
			t.Fatalf("Len failed: %v", err)
		}
		if size != want {
			t.Errorf("Expected Len %d, got %d", want, size)
		}
	}

	checkLen(0)

	mustPut(t, s, "a", []byte("1"))
	mustPut(t, s, "b", []byte("2"))
	mustPut(t, s, "c", []byte("3"))
	checkLen(3)

	// Overwriting does not change the count
	mustPut(t, s, "b", []byte("2b"))
	checkLen(3)

	mustDel(t, s, "a")
	checkLen(2)

	// Deleting an absent key does not change the count
	mustDel(t, s, "a")
	checkLen(2)
}

func testValueIsolation(t *testing.T, s store.IStore) {
	defer s.Close()

	testKey := "isolation-test-key"

	// Mutating the input slice after Put must not affect the store
	input := []byte("original")
	mustPut(t, s, testKey, input)
	input[0] = 'X'

	result, _ := mustGet(t, s, testKey)
	if !bytes.Equal(result, []byte("original")) {
		t.Errorf("Put should copy the value, stored data changed to %s", result)
	}

	// Mutating a retrieved slice must not affect the store
	retrieved, _ := mustGet(t, s, testKey)
	retrieved[0] = 'Y'

	result, _ = mustGet(t, s, testKey)
	if !bytes.Equal(result, []byte("original")) {
		t.Errorf("Get should return a copy, stored data changed to %s", result)
	}

	// The prior value from Del is detached as well
	mustPut(t, s, testKey, []byte("before-delete"))
	prior, _ := mustDel(t, s, testKey)
	mustPut(t, s, testKey, []byte("after-delete"))
	prior[0] = 'Z'

	result, _ = mustGet(t, s, testKey)
	if !bytes.Equal(result, []byte("after-delete")) {
		t.Errorf("Del result should be detached, stored data changed to %s", result)
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	defer s.Close()

	// The empty key is a regular key
	emptyKey := ""
	emptyKeyValue := []byte("value for empty key")

	mustPut(t, s, emptyKey, emptyKeyValue)

	result, exists := mustGet(t, s, emptyKey)
	if !exists {
		t.Errorf("Empty key not found after Put")
	} else if !bytes.Equal(result, emptyKeyValue) {
		t.Errorf("Value mismatch for empty key")
	}

	prior, found := mustDel(t, s, emptyKey)
	if !found || !bytes.Equal(prior, emptyKeyValue) {
		t.Errorf("Del of empty key returned found=%v value=%s", found, prior)
	}

	// Empty and nil values are stored and reported as present
	emptyValueKey := "empty-value-key"
	mustPut(t, s, emptyValueKey, []byte{})

	result, exists = mustGet(t, s, emptyValueKey)
	if !exists {
		t.Errorf("Key for empty value not found after Put")
	} else if len(result) != 0 {
		t.Errorf("Empty value mismatch: %v", result)
	}

	nilValueKey := "nil-value-key"
	mustPut(t, s, nilValueKey, nil)

	result, exists = mustGet(t, s, nilValueKey)
	if !exists {
		t.Errorf("Key for nil value not found after Put")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	if !t.Failed() {

		largeKey := string(make([]byte, 1000))
		largeKeyValue := []byte("value for large key")

		mustPut(t, s, largeKey, largeKeyValue)

		result, exists = mustGet(t, s, largeKey)
		if !exists {
			t.Errorf("Large key not found after Put")
		} else if !bytes.Equal(result, largeKeyValue) {
			t.Errorf("Value mismatch for large key")
		}

		largeValueKey := "large-value-key"
		largeValue := make([]byte, 16*1024*1024)

		for i := range largeValue {
			largeValue[i] = byte(i % 256)
		}

		mustPut(t, s, largeValueKey, largeValue)

		result, exists = mustGet(t, s, largeValueKey)
		if !exists {
			t.Errorf("Key for large value not found after Put")
		} else if !bytes.Equal(result, largeValue) {

			headMismatch := !bytes.Equal(result[:10], largeValue[:10])
			tailMismatch := !bytes.Equal(result[len(result)-10:], largeValue[len(largeValue)-10:])
			if headMismatch || tailMismatch || len(result) != len(largeValue) {
				t.Errorf("Large value mismatch: Head mismatch=%v, Tail mismatch=%v, Size mismatch=%v",
					headMismatch, tailMismatch, len(result) != len(largeValue))
			}
		}
	}
}

func testManyKeys(t *testing.T, s store.IStore) {
	defer s.Close()

	prefix := "many-keys-test-"
	numKeys := 1000

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		value := []byte(fmt.Sprintf("value-%d", i))

		mustPut(t, s, key, value)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		expectedValue := []byte(fmt.Sprintf("value-%d", i))

		actualValue, exists := mustGet(t, s, key)
		if !exists {
			t.Errorf("Key %s not found", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value for key %s does not match: expected %s, got %s",
				key, expectedValue, actualValue)
		}
	}

	// Delete every second key and verify the rest survived
	for i := 0; i < numKeys; i += 2 {
		key := fmt.Sprintf("%s%d", prefix, i)
		if _, found := mustDel(t, s, key); !found {
			t.Errorf("Del did not find key %s", key)
		}
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		_, exists := mustGet(t, s, key)

		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should be deleted", key)
			}
		} else {
			if !exists {
				t.Errorf("Key %s should still exist", key)
			}
		}
	}

	size, err := s.Len()
	if err != nil && !errors.Is(err, store.ErrUnsupported) {
		t.Fatalf("Len failed: %v", err)
	}
	if err == nil && size != numKeys/2 {
		t.Errorf("Expected %d keys after deletion, got %d", numKeys/2, size)
	}
}

func testConcurrentDistinctKeys(t *testing.T, s store.IStore) {
	defer s.Close()

	numWorkers := 8
	keysPerWorker := 200

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	// Each worker owns a disjoint key range and runs a full
	// put/get/overwrite/delete cycle on it
	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				value := []byte(fmt.Sprintf("worker-%d-value-%d", workerId, i))

				if err := s.Put(key, value); err != nil {
					t.Errorf("Put(%q) failed: %v", key, err)
					return
				}

				got, found, err := s.Get(key)
				if err != nil {
					t.Errorf("Get(%q) failed: %v", key, err)
					return
				}
				if !found || !bytes.Equal(got, value) {
					t.Errorf("Key %s: expected %s, found=%v got %s", key, value, found, got)
					return
				}
			}

			// Delete half of the owned keys again
			for i := 0; i < keysPerWorker; i += 2 {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				if _, found, err := s.Del(key); err != nil || !found {
					t.Errorf("Del(%q) failed: found=%v err=%v", key, found, err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	// Verify the final state from the main goroutine
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, i)
			_, exists := mustGet(t, s, key)

			if i%2 == 0 && exists {
				t.Errorf("Key %s should be deleted", key)
			}
			if i%2 == 1 && !exists {
				t.Errorf("Key %s should still exist", key)
			}
		}
	}
}

func testConcurrentSameKey(t *testing.T, s store.IStore) {
	defer s.Close()

	const (
		key        = "contended-key"
		numWriters = 4
		numReaders = 4
		valueSize  = 4096
		iterations = 500
	)

	// Every writer repeatedly stores a slice filled entirely with its own
	// marker byte. A reader must therefore only ever observe uniform
	// values: a mixed slice means a torn read.
	checkUniform := func(value []byte, op string) bool {
		if len(value) != valueSize {
			t.Errorf("%s observed value of size %d, expected %d", op, len(value), valueSize)
			return false
		}
		first := value[0]
		for _, b := range value {
			if b != first {
				t.Errorf("%s observed a torn value: starts with %c, contains %c", op, first, b)
				return false
			}
		}
		return true
	}

	var (
		writersWg sync.WaitGroup
		readersWg sync.WaitGroup
	)
	stop := make(chan struct{})

	writersWg.Add(numWriters)
	for w := 0; w < numWriters; w++ {
		go func(marker byte) {
			defer writersWg.Done()

			value := bytes.Repeat([]byte{marker}, valueSize)
			for i := 0; i < iterations; i++ {
				if err := s.Put(key, value); err != nil {
					t.Errorf("Put failed: %v", err)
					return
				}
			}
		}(byte('A' + w))
	}

	readersWg.Add(numReaders)
	for r := 0; r < numReaders; r++ {
		go func() {
			defer readersWg.Done()

			for {
				select {
				case <-stop:
					return
				default:
				}

				value, found, err := s.Get(key)
				if err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
				if found && !checkUniform(value, "Get") {
					return
				}
			}
		}()
	}

	// Readers run until all writers are through their iterations
	writersWg.Wait()
	close(stop)
	readersWg.Wait()

	// Deleting under contention returns either a full prior value or
	// reports the key as absent
	mustPut(t, s, key, bytes.Repeat([]byte{'Z'}, valueSize))
	prior, found := mustDel(t, s, key)
	if found {
		checkUniform(prior, "Del")
	}
}

func testRealisticUsage(t *testing.T, s store.IStore) {
	defer s.Close()

	type operation struct {
		op    string
		key   string
		value []byte
	}

	numOperations := 10_000
	operations := make([]operation, numOperations)

	for i := 0; i < numOperations; i++ {
		var op string
		switch i % 10 {
		case 0, 1, 2, 3, 4, 5, 6:
			op = "put"
		case 7, 8:
			op = "get"
		case 9:
			op = "del"
		}

		var key string
		if i%5 == 0 {
			key = fmt.Sprintf("hot-key-%d", i%50)
		} else {
			key = fmt.Sprintf("key-%d", i)
		}

		var value []byte
		if op == "put" {
			valueSize := 64
			if i%10 == 0 {
				valueSize = 1024
			}
			value = make([]byte, valueSize)

			for j := 0; j < valueSize; j++ {
				value[j] = byte((i + j) % 256)
			}
		}

		operations[i] = operation{op, key, value}
	}

	allKeys := make(map[string]bool)
	for _, op := range operations {
		allKeys[op.key] = true
	}

	numWorkers := 8
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	opsPerWorker := numOperations / numWorkers

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			start := workerId * opsPerWorker
			end := start + opsPerWorker

			for i := start; i < end; i++ {
				op := operations[i]

				switch op.op {
				case "put":
					if err := s.Put(op.key, op.value); err != nil {
						t.Errorf("Put(%q) failed: %v", op.key, err)
						return
					}
				case "get":
					if _, _, err := s.Get(op.key); err != nil {
						t.Errorf("Get(%q) failed: %v", op.key, err)
						return
					}
				case "del":
					if _, _, err := s.Del(op.key); err != nil {
						t.Errorf("Del(%q) failed: %v", op.key, err)
						return
					}
				}
			}
		}(w)
	}

	wg.Wait()

	// Once the dust has settled the store must answer consistently:
	// two sequential reads of the same key agree with each other
	for key := range allKeys {
		value1, exists1 := mustGet(t, s, key)
		value2, exists2 := mustGet(t, s, key)

		if exists1 != exists2 {
			t.Errorf("Consistency error: key %s existence changed between reads", key)
			continue
		}

		if exists1 && !bytes.Equal(value1, value2) {
			t.Errorf("Value mismatch for key %s between reads", key)
		}
	}
}

func testClose(t *testing.T, s store.IStore) {
	mustPut(t, s, "close-test-key", []byte("value"))

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Close is idempotent
	if err := s.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
