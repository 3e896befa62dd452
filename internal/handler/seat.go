package handler

import (
	"errors"   // for errors.Is comparisons against lock sentinels
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/seat-lock-engine/internal/lock" // the lock manager core
)

// SeatHandler exposes the lock manager operations over HTTP.  Each handler
// is stateless per request; all shared state lives behind the manager,
// which serializes competing operations per seat.  Contention failures are
// routine outcomes here and map to specific status codes and reasons so a
// client can tell "someone else has it" from "you're too late" from
// "unknown seat".
type SeatHandler struct {
	Manager *lock.Manager
}

// NewSeatHandler constructs a SeatHandler.  The manager must be non-nil.
func NewSeatHandler(m *lock.Manager) *SeatHandler {
	if m == nil {
		panic("nil manager passed to NewSeatHandler")
	}
	return &SeatHandler{Manager: m}
}

// seatRequest is the shared body for hold, confirm and release.
type seatRequest struct {
	SeatID uint64 `json:"seat_id"`
	UserID uint64 `json:"user_id"`
}

func bindSeatRequest(c echo.Context) (seatRequest, error) {
	var req seatRequest
	if err := c.Bind(&req); err != nil {
		return req, errors.New("invalid request body")
	}
	if req.SeatID == 0 || req.UserID == 0 {
		return req, errors.New("seat_id and user_id are required")
	}
	return req, nil
}

// Hold handles POST /hold.  On success the seat is exclusively held for the
// requesting user until the hold TTL lapses.  A seat that is live-held by
// anyone (including the same user re-requesting) or sold yields 409.
func (h *SeatHandler) Hold(c echo.Context) error {
	req, err := bindSeatRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	switch err := h.Manager.Hold(req.SeatID, req.UserID); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "held", "seat_id": req.SeatID})
	case errors.Is(err, lock.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	default: // lock.ErrSeatUnavailable
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
	}
}

// Confirm handles POST /confirm, converting the user's live hold into a
// sale.  Failures are 400s with a machine-readable reason: not_holder,
// not_held or hold_expired.
func (h *SeatHandler) Confirm(c echo.Context) error {
	req, err := bindSeatRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	switch err := h.Manager.Confirm(req.SeatID, req.UserID); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "sold", "seat_id": req.SeatID})
	case errors.Is(err, lock.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, lock.ErrNotHolder):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot confirm", "reason": "not_holder"})
	case errors.Is(err, lock.ErrHoldExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot confirm", "reason": "hold_expired"})
	default: // lock.ErrNotHeld
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot confirm", "reason": "not_held"})
	}
}

// Release handles POST /release, a voluntary early release by the current
// holder.  Only the holder of a held seat may release it.
func (h *SeatHandler) Release(c echo.Context) error {
	req, err := bindSeatRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	switch err := h.Manager.Release(req.SeatID, req.UserID); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "available", "seat_id": req.SeatID})
	case errors.Is(err, lock.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, lock.ErrNotHolder):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot release", "reason": "not_holder"})
	default: // lock.ErrNotHeld
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot release", "reason": "not_held"})
	}
}

// GetSeatMap handles GET /seats.  It returns every seat in ascending ID
// order with status encoded as 0=available, 1=held, 2=sold.  Each seat is
// read atomically; the map as a whole is not one global point in time.
func (h *SeatHandler) GetSeatMap(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Manager.Snapshot())
}
