// Package registry holds the authoritative in-memory state of every seat.
// It is the only place seat records are mutated.  Each seat lives in its own
// lock-guarded slot so operations on different seats never contend; the
// compare-and-transition primitive is the sole mutation path and is atomic
// with respect to all concurrent callers on the same seat.
package registry

import (
	"sync"
	"time"

	"github.com/iliyamo/seat-lock-engine/internal/model"
)

// slot pairs a seat record with its guard.  Slots are allocated once at
// construction and their addresses never change, so the map itself is
// read-only after New returns and needs no lock of its own.
type slot struct {
	mu   sync.Mutex
	seat model.Seat
}

// Registry maps seat IDs to their slots.  Seats are registered once at
// construction (IDs 1..totalSeats) and live for the process lifetime.
type Registry struct {
	seats map[uint64]*slot
	ids   []uint64 // ascending, fixed at construction; drives snapshot order
}

// New builds a registry with seats numbered 1 through totalSeats, all
// available.  totalSeats values below 1 yield an empty registry.
func New(totalSeats int) *Registry {
	r := &Registry{
		seats: make(map[uint64]*slot, totalSeats),
		ids:   make([]uint64, 0, totalSeats),
	}
	for i := 1; i <= totalSeats; i++ {
		id := uint64(i)
		r.seats[id] = &slot{seat: model.Seat{ID: id, Status: model.StatusAvailable}}
		r.ids = append(r.ids, id)
	}
	return r
}

// Expect describes the pre-transition state a caller requires.  Status is
// always checked.  Holder is checked only when MatchHolder is set.  When
// ExpiredAt is non-zero the seat's hold must have lapsed at that instant;
// when LiveAt is non-zero the hold must still be live at that instant.
type Expect struct {
	Status      model.SeatStatus
	Holder      uint64
	MatchHolder bool
	ExpiredAt   time.Time
	LiveAt      time.Time
}

func (e Expect) matches(seat model.Seat) bool {
	if seat.Status != e.Status {
		return false
	}
	if e.MatchHolder && seat.Holder != e.Holder {
		return false
	}
	if !e.ExpiredAt.IsZero() && !seat.HoldExpired(e.ExpiredAt) {
		return false
	}
	if !e.LiveAt.IsZero() && seat.HoldExpired(e.LiveAt) {
		return false
	}
	return true
}

// Change describes the post-transition state.  When Status is held the new
// hold expires HoldTTL after the instant passed to CompareAndTransition;
// otherwise the expiry is cleared.
type Change struct {
	Status  model.SeatStatus
	Holder  uint64
	HoldTTL time.Duration
}

// Get returns a copy of the seat record, or ok=false for an unknown ID.
// The copy is read under the seat lock and is never torn.
func (r *Registry) Get(seatID uint64) (model.Seat, bool) {
	s, ok := r.seats[seatID]
	if !ok {
		return model.Seat{}, false
	}
	s.mu.Lock()
	seat := s.seat
	s.mu.Unlock()
	return seat, true
}

// CompareAndTransition atomically transitions one seat.  The expectation is
// evaluated and, on match, the change applied and the version bumped, all
// under the seat's lock.  On mismatch (or unknown seat) it returns ok=false
// with no side effects.
//
// When emit is non-nil it is invoked with the post-transition record while
// the seat lock is still held, so events for the same seat are always
// produced in version order.  emit must therefore only enqueue, never block.
func (r *Registry) CompareAndTransition(seatID uint64, at time.Time, expect Expect, next Change, emit func(model.Seat)) (model.Seat, bool) {
	s, ok := r.seats[seatID]
	if !ok {
		return model.Seat{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expect.matches(s.seat) {
		return s.seat, false
	}

	s.seat.Status = next.Status
	s.seat.Holder = next.Holder
	if next.Status == model.StatusHeld {
		s.seat.HoldExpiresAt = at.Add(next.HoldTTL)
	} else {
		s.seat.HoldExpiresAt = time.Time{}
	}
	s.seat.Version++

	seat := s.seat
	if emit != nil {
		emit(seat)
	}
	return seat, true
}

// Snapshot returns a copy of every seat in ascending ID order.  Each record
// is read atomically under its own lock; the snapshot as a whole is not a
// single global point in time, which is sufficient for the seat map surface.
func (r *Registry) Snapshot() []model.Seat {
	out := make([]model.Seat, 0, len(r.ids))
	for _, id := range r.ids {
		s := r.seats[id]
		s.mu.Lock()
		out = append(out, s.seat)
		s.mu.Unlock()
	}
	return out
}

// Len returns the number of registered seats.
func (r *Registry) Len() int { return len(r.ids) }
