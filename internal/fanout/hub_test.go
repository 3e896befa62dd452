package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-lock-engine/internal/model"
)

func seatUpdate(seatID, version uint64, status string) model.SeatUpdateEvent {
	return model.SeatUpdateEvent{Type: "seat_update", SeatID: seatID, Status: status, Version: version}
}

func TestPublishReachesAllCurrentSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Count())

	ev := seatUpdate(3, 1, "held")
	h.Publish(ev)

	assert.Equal(t, ev, <-a.C)
	assert.Equal(t, ev, <-b.C)

	// A subscriber connecting after the event sees nothing for it.
	late := h.Subscribe()
	assert.Empty(t, late.C)
}

func TestSubscribersAreIndependent(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(seatUpdate(1, 1, "held"))
	h.Unsubscribe(a)
	h.Publish(seatUpdate(1, 2, "sold"))

	// b got both in order despite a's departure in between.
	assert.Equal(t, uint64(1), (<-b.C).Version)
	assert.Equal(t, uint64(2), (<-b.C).Version)

	// a's channel was closed with only the first event delivered.
	ev, ok := <-a.C
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.Version)
	_, ok = <-a.C
	assert.False(t, ok)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // second removal is a no-op, not an error
	h.Unsubscribe(nil)
	assert.Zero(t, h.Count())
}

func TestStalledSubscriberIsRemoved(t *testing.T) {
	h := NewHub()
	stalled := h.Subscribe()
	healthy := h.Subscribe()

	// Fill the stalled subscriber's buffer without draining it.
	for v := uint64(1); v <= subscriberBuffer; v++ {
		h.Publish(seatUpdate(1, v, "held"))
	}
	assert.Equal(t, 2, h.Count())

	// Drain the healthy subscriber so only the stalled one is full.
	for v := 0; v < subscriberBuffer; v++ {
		<-healthy.C
	}

	// The overflowing publish drops the stalled subscriber but still
	// reaches the healthy one.
	h.Publish(seatUpdate(1, subscriberBuffer+1, "sold"))
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, uint64(subscriberBuffer+1), (<-healthy.C).Version)

	// The dropped subscriber's channel ends after its buffered backlog.
	var got int
	for range stalled.C {
		got++
	}
	assert.Equal(t, subscriberBuffer, got)
}

func TestPerSeatOrderingPreserved(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()

	statuses := []string{"held", "available", "held", "sold"}
	for i, s := range statuses {
		h.Publish(seatUpdate(7, uint64(i+1), s))
	}
	for i, want := range statuses {
		ev := <-sub.C
		assert.Equal(t, uint64(i+1), ev.Version)
		assert.Equal(t, want, ev.Status)
	}
}

func TestCloseDrainsSubscribers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe()
	h.Close()
	h.Close() // idempotent

	assert.True(t, h.Closed())
	assert.Zero(t, h.Count())
	_, ok := <-sub.C
	assert.False(t, ok)

	// Publishing and subscribing after teardown are safe no-ops.
	h.Publish(seatUpdate(1, 1, "held"))
	late := h.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok)
}
