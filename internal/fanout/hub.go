// Package fanout delivers seat transition events to every live observer.
// The hub exclusively owns the subscriber set; nothing else reaches into it.
// Publish is fire-and-forget from the lock manager's perspective: a slow or
// dead subscriber is removed from the set, and its failure never delays,
// drops, or corrupts delivery to any other subscriber.
package fanout

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-lock-engine/internal/model"
)

// subscriberBuffer is the per-subscriber queue depth.  A subscriber that
// falls this many events behind is considered dead and is dropped rather
// than allowed to stall the hub.
const subscriberBuffer = 64

// Subscriber is the handle for one connected observer.  Consumers read
// delivered events from C until it is closed.  Subscribers carry no seat
// filter: every subscriber receives every transition.
type Subscriber struct {
	ID uuid.UUID
	C  <-chan model.SeatUpdateEvent

	ch chan model.SeatUpdateEvent
}

// Hub is the subscriber registry plus broadcast primitive.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscriber
	closed bool
}

// NewHub returns an empty hub ready for subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]*Subscriber)}
}

// Subscribe registers a new observer and returns its handle.  Subscribing
// on a closed hub returns a handle whose channel is already closed.
func (h *Hub) Subscribe() *Subscriber {
	ch := make(chan model.SeatUpdateEvent, subscriberBuffer)
	sub := &Subscriber{ID: uuid.New(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub.ID] = sub
	return sub
}

// Unsubscribe removes the observer and closes its channel.  Removing an
// already-removed handle is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub.ID)
}

// remove deletes and closes a subscriber.  Caller must hold h.mu; closing
// under the same lock Publish sends under rules out send-on-closed panics.
func (h *Hub) remove(id uuid.UUID) {
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
}

// Publish enqueues the event to every current subscriber.  Delivery to one
// subscriber is independent of the others: a subscriber whose buffer is
// full is removed on the spot.  Publish never blocks beyond enqueuing and
// never reports an error to the caller.
func (h *Hub) Publish(ev model.SeatUpdateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for id, sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			log.Printf("fanout: dropping stalled subscriber %s", id)
			h.remove(id)
		}
	}
}

// Closed reports whether the hub has been torn down.
func (h *Hub) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drains the subscriber set and rejects further publishes.  Part of
// service teardown; idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.subs {
		h.remove(id)
	}
}
