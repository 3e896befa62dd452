package lock

import (
	"time"

	"github.com/iliyamo/seat-lock-engine/internal/model"
	"github.com/iliyamo/seat-lock-engine/internal/registry"
)

// EventSink receives every successful transition.  Publish is invoked while
// the transitioning seat's lock is held, so implementations must only
// enqueue and return; they must never block on I/O or slow consumers.
type EventSink interface {
	Publish(ev model.SeatUpdateEvent)
}

// Manager arbitrates competing hold/confirm/release/expire operations over
// the registry.  Every mutation goes through the registry's
// compare-and-transition primitive, so when two operations race on the same
// seat exactly one wins and the loser gets a typed error, never a partial
// state.  There is no fairness guarantee across competing holders: the
// first compare-and-swap to land wins, regardless of request arrival order.
//
// State machine per seat:
//
//	Available --Hold(user)--> Held(user, ttl)
//	Held(user) --Confirm(user)--> Sold(user)
//	Held(user) --Release(user) or --Expire--> Available
//	Sold --(terminal)--
type Manager struct {
	reg     *registry.Registry
	sink    EventSink
	holdTTL time.Duration

	// Now is the clock used to evaluate hold expiry.  Overridable in tests.
	Now func() time.Time
}

// NewManager builds a manager over the given registry.  sink may be nil when
// no observer delivery is wanted (e.g. in tests of pure arbitration).
func NewManager(reg *registry.Registry, sink EventSink, holdTTL time.Duration) *Manager {
	return &Manager{reg: reg, sink: sink, holdTTL: holdTTL, Now: time.Now}
}

// HoldTTL returns the configured hold time-to-live.
func (m *Manager) HoldTTL() time.Duration { return m.holdTTL }

// emit adapts the sink into the registry's under-lock callback.
func (m *Manager) emit() func(model.Seat) {
	if m.sink == nil {
		return nil
	}
	return func(seat model.Seat) { m.sink.Publish(model.NewSeatUpdate(seat)) }
}

// Hold places a time-bounded exclusive hold on the seat for the given user.
// It succeeds only if the seat is available, or carries a hold that has
// already lapsed (the lapsed hold is taken over in a single transition, one
// version bump, one "held" event).  A live hold by anyone, including the
// same user re-requesting, and a sold seat both fail with ErrSeatUnavailable.
func (m *Manager) Hold(seatID, userID uint64) error {
	now := m.Now()
	next := registry.Change{Status: model.StatusHeld, Holder: userID, HoldTTL: m.holdTTL}

	if _, ok := m.reg.CompareAndTransition(seatID, now,
		registry.Expect{Status: model.StatusAvailable}, next, m.emit()); ok {
		return nil
	}
	// Lapsed holds count as available for arbitration.
	if _, ok := m.reg.CompareAndTransition(seatID, now,
		registry.Expect{Status: model.StatusHeld, ExpiredAt: now}, next, m.emit()); ok {
		return nil
	}
	if _, found := m.reg.Get(seatID); !found {
		return ErrSeatNotFound
	}
	return ErrSeatUnavailable
}

// Confirm converts the user's live hold into a sale.  It succeeds only if
// the seat is held by this user and the hold has not lapsed at evaluation
// time.  A lapsed hold is lazily released back to available (with its own
// event) and reported as ErrHoldExpired.
func (m *Manager) Confirm(seatID, userID uint64) error {
	now := m.Now()
	for {
		if _, ok := m.reg.CompareAndTransition(seatID, now,
			registry.Expect{Status: model.StatusHeld, Holder: userID, MatchHolder: true, LiveAt: now},
			registry.Change{Status: model.StatusSold, Holder: userID}, m.emit()); ok {
			return nil
		}
		seat, found := m.reg.Get(seatID)
		if !found {
			return ErrSeatNotFound
		}
		switch {
		case seat.Status == model.StatusHeld && seat.Holder == userID && seat.HoldExpired(now):
			// Forfeit the lapsed hold so the seat is immediately
			// contestable again; a racing sweep doing the same is fine.
			m.reg.CompareAndTransition(seatID, now,
				registry.Expect{Status: model.StatusHeld, Holder: userID, MatchHolder: true, ExpiredAt: now},
				registry.Change{Status: model.StatusAvailable}, m.emit())
			return ErrHoldExpired
		case seat.Status == model.StatusHeld && seat.Holder != userID:
			return ErrNotHolder
		case seat.Status == model.StatusHeld:
			// Held by this user and live again: the failed swap lost a
			// benign race (e.g. takeover after lapse). Try once more.
			continue
		default:
			return ErrNotHeld
		}
	}
}

// Release is a voluntary early release by the current holder.  The seat
// returns to available and the holder is cleared.  Lapsed-but-unswept holds
// may still be released by their holder.
func (m *Manager) Release(seatID, userID uint64) error {
	now := m.Now()
	if _, ok := m.reg.CompareAndTransition(seatID, now,
		registry.Expect{Status: model.StatusHeld, Holder: userID, MatchHolder: true},
		registry.Change{Status: model.StatusAvailable}, m.emit()); ok {
		return nil
	}
	seat, found := m.reg.Get(seatID)
	if !found {
		return ErrSeatNotFound
	}
	if seat.Status == model.StatusHeld && seat.Holder != userID {
		return ErrNotHolder
	}
	return ErrNotHeld
}

// ExpireSweep releases every hold that has lapsed at the given instant and
// returns the IDs transitioned.  Each release goes through
// compare-and-transition, so a confirm racing the sweep wins or loses
// atomically and exclusively; a seat already transitioned by the time the
// swap lands is skipped silently (no event, no version bump).
func (m *Manager) ExpireSweep(now time.Time) []uint64 {
	var swept []uint64
	for _, seat := range m.reg.Snapshot() {
		if !seat.HoldExpired(now) {
			continue
		}
		if _, ok := m.reg.CompareAndTransition(seat.ID, now,
			registry.Expect{Status: model.StatusHeld, ExpiredAt: now},
			registry.Change{Status: model.StatusAvailable}, m.emit()); ok {
			swept = append(swept, seat.ID)
		}
	}
	return swept
}

// Snapshot returns the seat map projection in ascending seat-ID order, with
// status encoded as 0=available, 1=held, 2=sold.
func (m *Manager) Snapshot() []model.SeatView {
	seats := m.reg.Snapshot()
	views := make([]model.SeatView, 0, len(seats))
	for _, s := range seats {
		views = append(views, model.SeatView{SeatID: s.ID, Status: s.Status, UserID: s.Holder})
	}
	return views
}
