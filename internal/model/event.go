package model

// SeatUpdateEvent is pushed to every live subscriber (and relayed to the
// message broker) whenever a seat completes a state transition.  It carries
// enough information for downstream consumers to update their view without
// querying the seat map.  Version orders events for the same seat; events
// for different seats carry no relative ordering.
type SeatUpdateEvent struct {
	Type    string `json:"type"` // always "seat_update"
	SeatID  uint64 `json:"seat_id"`
	Status  string `json:"status"` // "available" | "held" | "sold"
	UserID  uint64 `json:"user_id"`
	Version uint64 `json:"version"`
}

// NewSeatUpdate builds the event for a seat's post-transition state.
func NewSeatUpdate(seat Seat) SeatUpdateEvent {
	return SeatUpdateEvent{
		Type:    "seat_update",
		SeatID:  seat.ID,
		Status:  seat.Status.Label(),
		UserID:  seat.Holder,
		Version: seat.Version,
	}
}
