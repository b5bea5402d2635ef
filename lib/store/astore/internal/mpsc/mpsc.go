// Package mpsc provides the unbounded multi-producer single-consumer
// queue backing the actor store's mailbox.
//
// Producers append through atomic pointer operations and never block each
// other, so any number of goroutines can Push concurrently. A single
// consumer goroutine drains the list into the channel returned by Recv.
// Every Push that reports success is delivered, even when Close races
// with producers; the channel is closed once the queue is drained.
package mpsc

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is a single element of the internal linked list
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// Queue is an unbounded lock-free MPSC queue. Ordering between concurrent
// producers is decided by whichever append wins; items from a single
// producer stay in order.
type Queue[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	out    chan *T
	closed atomic.Bool

	// counts pushes between their closed check and their append, so the
	// consumer can tell when no successful append can still be pending
	producing atomic.Int64

	// parks the consumer while the list is empty
	mu   sync.Mutex
	cond *sync.Cond
}

// New creates a queue and starts its consumer goroutine.
func New[T any]() *Queue[T] {
	// Sentinel node so head and tail are never nil
	sentinel := &node[T]{}

	q := &Queue[T]{out: make(chan *T)}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.consume()

	return q
}

// Push appends an item to the queue. It returns false if the item is nil
// or the queue is closed; returning true guarantees the item reaches the
// consumer.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *Queue[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	q.producing.Add(1)
	defer q.producing.Add(-1)

	// Re-check under the counter: the consumer only exits once closed is
	// set and the counter is zero, so an append that passes this check is
	// guaranteed to be drained
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()

		next := tailNode.next.Load()
		if next == nil {
			// the tail has no next node yet, try to append our node
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// Swinging tail may fail when another producer helps out,
				// the pointer converges either way
				q.tail.CompareAndSwap(tailNode, newNode)

				q.wake()
				return true
			}
		} else {
			// another producer appended but has not swung tail yet, help
			q.tail.CompareAndSwap(tailNode, next)
		}

		// Exponential backoff under contention: spin first, yield once
		// the retry count grows
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// wake signals the consumer. The lock is held while signalling so the
// consumer cannot park between its emptiness check and Wait and miss the
// wakeup.
func (q *Queue[T]) wake() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// consume shovels items from the linked list into the output channel
func (q *Queue[T]) consume() {
	defer close(q.out)

	for {
		// Snapshot the exit condition before draining: once closed is set
		// and no push is in flight, every successful append is already
		// visible to the drain below
		done := q.closed.Load() && q.producing.Load() == 0

		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}

			hasItems = true
			value := next.value

			// advancing head releases the consumed node to the GC
			q.head.Store(next)

			q.out <- value
			next.value = nil
		}

		// Exit once closed and fully drained
		if done && !hasItems {
			return
		}

		if !hasItems {
			q.mu.Lock()
			// re-check under the lock, a producer may have signalled in
			// the meantime
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the channel the consumer side reads from. The channel is
// closed after Close once all remaining items have been delivered, so it
// can be ranged over.
func (q *Queue[T]) Recv() <-chan *T {
	return q.out
}

// Close rejects further pushes. Items already queued are still delivered
// to the consumer. Close is idempotent.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	q.wake()
}
