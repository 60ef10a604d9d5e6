// Package fanout broadcasts the latest CombinedBook snapshot to any
// number of subscribers without buffering history: a slow subscriber
// only ever sees the most recent value, never a backlog.
package fanout

import (
	"context"
	"sync"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/google/uuid"
)

// Hub holds one latest-value slot shared by every Subscriber. Publish
// overwrites the slot and wakes every blocked Receive; it never
// blocks itself, matching the rule that CombinedBook.Update (the
// drive loop) must never suspend on a subscriber.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	seq      uint64
	snapshot book.Snapshot
}

// NewHub creates an empty Hub. The zero snapshot (sequence 0) is never
// delivered to a subscriber; Receive only returns once Publish has
// been called at least once.
func NewHub() *Hub {
	h := &Hub{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish makes snap the latest value and wakes every Subscriber
// blocked in Receive.
func (h *Hub) Publish(snap book.Snapshot) {
	h.mu.Lock()
	h.snapshot = snap
	h.seq++
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Latest returns a copy of the most recently published snapshot
// without blocking and without advancing any Subscriber's position.
// Useful for poll-style readers (the admin HTTP surface) that want
// "whatever is current right now", not "the next new one".
func (h *Hub) Latest() book.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot
}

// Subscribe creates a new Subscriber identified by a fresh UUID, for
// use in logs and per-stream diagnostics.
func (h *Hub) Subscribe() *Subscriber {
	return &Subscriber{hub: h, id: uuid.New()}
}

// Subscriber reads the latest published snapshot. Multiple goroutines
// must not share one Subscriber — each needs its own to track its own
// last-seen sequence number.
type Subscriber struct {
	hub     *Hub
	id      uuid.UUID
	lastSeq uint64
}

// ID identifies this subscriber for logging.
func (s *Subscriber) ID() uuid.UUID { return s.id }

// Receive blocks until a snapshot newer than the last one this
// Subscriber observed is published, or ctx is done. It never returns
// the same snapshot twice to the same Subscriber.
func (s *Subscriber) Receive(ctx context.Context) (book.Snapshot, error) {
	s.hub.mu.Lock()
	for s.hub.seq == s.lastSeq {
		if ctx.Err() != nil {
			s.hub.mu.Unlock()
			return book.Snapshot{}, ctx.Err()
		}
		waitCh := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.hub.mu.Lock()
				s.hub.cond.Broadcast()
				s.hub.mu.Unlock()
			case <-waitCh:
			}
		}()
		s.hub.cond.Wait()
		close(waitCh)
	}
	snap := s.hub.snapshot
	s.lastSeq = s.hub.seq
	s.hub.mu.Unlock()
	return snap, nil
}
