// Package lock implements the seat state machine on top of the registry.
// This file defines the sentinel errors returned by the manager.  These are
// expected, routine outcomes of normal contention, never faults; handlers
// use errors.Is to translate them into specific HTTP responses so a client
// can tell "someone else has it" from "you're too late" from "unknown seat".
package lock

import "errors"

// ErrSeatUnavailable is returned when a hold is attempted on a seat that is
// already held (by anyone, including the same user re-requesting) or sold.
// Handlers should translate this into an HTTP 409 response.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrNotHolder is returned when a confirm or release is attempted by a user
// who does not hold the seat.
var ErrNotHolder = errors.New("seat held by another user")

// ErrNotHeld is returned when a confirm or release is attempted on a seat
// that is available or already sold.
var ErrNotHeld = errors.New("seat not held")

// ErrHoldExpired is returned when a confirm arrives after the hold's TTL has
// lapsed.  For arbitration the seat counts as available, but the reason is
// reported distinctly for clearer client feedback.
var ErrHoldExpired = errors.New("hold expired")

// ErrSeatNotFound is returned for seat IDs outside the registered set.
var ErrSeatNotFound = errors.New("seat not found")
