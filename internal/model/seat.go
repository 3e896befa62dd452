package model

import "time"

// SeatStatus enumerates the three states a seat can be in.  The numeric
// values are part of the wire contract for the seat map endpoint
// (0 = available, 1 = held, 2 = sold) and must not be reordered.
type SeatStatus int

const (
	StatusAvailable SeatStatus = 0 // seat can be held by anyone
	StatusHeld      SeatStatus = 1 // seat is temporarily reserved, pending confirmation
	StatusSold      SeatStatus = 2 // seat purchase is confirmed; terminal state
)

// Label returns the string form of a status used in push events
// ("available", "held", "sold").  Both encodings describe the same
// three-state enumeration.
func (s SeatStatus) Label() string {
	switch s {
	case StatusHeld:
		return "held"
	case StatusSold:
		return "sold"
	default:
		return "available"
	}
}

// Seat is the canonical record for a single seat.  Seats are created once
// at service start and are never deleted, only transitioned.
//
// Fields:
//  ID            – opaque seat identifier, immutable once registered.
//  Status        – current state of the seat.
//  Holder        – user holding or owning the seat; zero while available.
//                  Retained after a sale for the audit trail.
//  HoldExpiresAt – when the current hold lapses; meaningful only while held.
//  Version       – monotonically increasing counter, bumped on every
//                  successful transition.  Never reused, never decreases.
type Seat struct {
	ID            uint64
	Status        SeatStatus
	Holder        uint64
	HoldExpiresAt time.Time
	Version       uint64
}

// HoldExpired reports whether the seat carries a hold that has lapsed at
// the given instant.  Always false for available and sold seats.
func (s Seat) HoldExpired(now time.Time) bool {
	return s.Status == StatusHeld && !s.HoldExpiresAt.After(now)
}

// SeatView is the projection returned by the seat map endpoint.  Status is
// encoded as an integer per the wire contract.
type SeatView struct {
	SeatID uint64     `json:"seat_id"`
	Status SeatStatus `json:"status"`
	UserID uint64     `json:"user_id"`
}
