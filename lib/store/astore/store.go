package astore

import (
	"bytes"
	"sync"

	"github.com/pbeckmann/fKV/lib/store"
	"github.com/pbeckmann/fKV/lib/store/astore/internal/mpsc"
)

// --------------------------------------------------------------------------
// Message Types
// --------------------------------------------------------------------------

// opType identifies the operation a request asks the owner to perform
type opType uint8

const (
	opPut opType = iota
	opGet
	opDel
	opLen
)

// request is the message sent to the owner goroutine. The reply channel is
// buffered with capacity 1 so the owner never blocks when answering.
type request struct {
	op    opType
	key   string
	value []byte
	reply chan reply
}

// reply carries the result of an operation back to the caller
type reply struct {
	value []byte
	found bool
	size  int
}

// --------------------------------------------------------------------------
// Core Store Structure
// --------------------------------------------------------------------------

type storeImpl struct {
	mailbox   *mpsc.Queue[request]
	closeOnce sync.Once
}

// NewActorStore creates a new actor store instance.
// This store implementation confines the entire data set to a single owner
// goroutine. All operations are sent as messages through an unbounded
// mailbox queue and processed strictly one after another, so the map itself
// needs no synchronization at all. Concurrent callers are serialized in
// mailbox order, and senders never block on a full mailbox.
func NewActorStore() store.IStore {
	s := &storeImpl{
		mailbox: mpsc.New[request](),
	}
	go s.run()
	return s
}

// run is the owner goroutine. It is the only code that ever touches the
// map. The loop ends when the mailbox is closed and fully drained.
func (s *storeImpl) run() {
	data := make(map[string][]byte)

	for req := range s.mailbox.Recv() {
		switch req.op {
		case opPut:
			// The value was already cloned by the sender
			data[req.key] = req.value
			req.reply <- reply{found: true}
		case opGet:
			value, found := data[req.key]
			if found {
				// Clone before the slice leaves the owner: the map
				// keeps referencing the original
				value = bytes.Clone(value)
			}
			req.reply <- reply{value: value, found: found}
		case opDel:
			prior, found := data[req.key]
			delete(data, req.key)
			// No clone needed: after removal the map no longer
			// references the slice and no other goroutine can reach it
			req.reply <- reply{value: prior, found: found}
		case opLen:
			req.reply <- reply{size: len(data)}
		}
	}
}

// exchange sends a request to the owner and waits for the answer. It
// returns store.ErrClosed if the store was closed before the request could
// be enqueued. Requests accepted into the mailbox are always answered,
// even when Close happens while they are still queued.
func (s *storeImpl) exchange(req request) (reply, error) {
	req.reply = make(chan reply, 1)

	if !s.mailbox.Push(&req) {
		return reply{}, store.ErrClosed
	}

	return <-req.reply, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(key string, value []byte) error {
	// Clone on the sender side so the caller can reuse its slice
	// immediately, without waiting for the owner to pick the request up
	_, err := s.exchange(request{op: opPut, key: key, value: bytes.Clone(value)})
	return err
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	rep, err := s.exchange(request{op: opGet, key: key})
	if err != nil {
		return nil, false, err
	}
	return rep.value, rep.found, nil
}

func (s *storeImpl) Del(key string) ([]byte, bool, error) {
	rep, err := s.exchange(request{op: opDel, key: key})
	if err != nil {
		return nil, false, err
	}
	return rep.value, rep.found, nil
}

func (s *storeImpl) Len() (int, error) {
	rep, err := s.exchange(request{op: opLen})
	if err != nil {
		return 0, err
	}
	return rep.size, nil
}

// Close closes the mailbox. Queued operations are still processed, new
// operations return store.ErrClosed, and the owner goroutine exits once
// the mailbox is drained. Close is idempotent.
func (s *storeImpl) Close() error {
	s.closeOnce.Do(func() {
		s.mailbox.Close()
	})
	return nil
}
