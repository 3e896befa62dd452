package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"github.com/iliyamo/seat-lock-engine/internal/fanout"
)

// pingInterval is how often the stream emits a liveness frame so proxies
// and clients can tell an idle venue from a dead connection.
const pingInterval = 30 * time.Second

// StreamHandler serves the live seat-update stream.  Each WebSocket client
// becomes one hub subscriber for the lifetime of its connection; events are
// pushed as JSON in the order the hub delivers them, so per-seat order
// matches transition order.  A failed send, a stalled buffer or a client
// close all end in the same place: the subscriber is removed and the
// handler returns.
type StreamHandler struct {
	Hub *fanout.Hub
}

// NewStreamHandler constructs a StreamHandler.  The hub must be non-nil.
func NewStreamHandler(hub *fanout.Hub) *StreamHandler {
	if hub == nil {
		panic("nil hub passed to NewStreamHandler")
	}
	return &StreamHandler{Hub: hub}
}

// pingFrame is the out-of-band liveness acknowledgment; it is not a seat
// event and carries no seat fields.
type pingFrame struct {
	Type string `json:"type"` // always "ping"
}

// Subscribe handles GET /ws.  It upgrades the connection and streams
// seat_update events until the client disconnects or the hub drops the
// subscriber.
func (h *StreamHandler) Subscribe(c echo.Context) error {
	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()

		sub := h.Hub.Subscribe()
		defer h.Hub.Unsubscribe(sub)

		// Drain inbound frames purely to learn when the client goes away;
		// subscribers hold no authority, so their payloads are ignored.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var discard string
				if err := websocket.Message.Receive(ws, &discard); err != nil {
					return
				}
			}
		}()

		pings := time.NewTicker(pingInterval)
		defer pings.Stop()

		for {
			select {
			case <-done:
				return
			case ev, ok := <-sub.C:
				if !ok {
					// Unsubscribed by the hub (stalled buffer or teardown).
					return
				}
				if err := websocket.JSON.Send(ws, ev); err != nil {
					return
				}
			case <-pings.C:
				if err := websocket.JSON.Send(ws, pingFrame{Type: "ping"}); err != nil {
					return
				}
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}
