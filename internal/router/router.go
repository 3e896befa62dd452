package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seat-lock-engine/internal/config"
	"github.com/iliyamo/seat-lock-engine/internal/handler"
	"github.com/iliyamo/seat-lock-engine/internal/middleware"
)

// RegisterRoutes registers the whole request surface on the provided Echo
// instance.  The seat mutation routes (hold/confirm/release) go through the
// token-bucket limiter; the seat map, the live stream and the health check
// are always reachable.
func RegisterRoutes(e *echo.Echo, seats *handler.SeatHandler, stream *handler.StreamHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// The health endpoint lets load balancers and monitoring verify the
	// service is up without touching seat state.
	e.GET("/healthz", handler.Health)

	limited := middleware.NewTokenBucket(rlCfg, rdb)
	e.POST("/hold", seats.Hold, limited)
	e.POST("/confirm", seats.Confirm, limited)
	e.POST("/release", seats.Release, limited)

	e.GET("/seats", seats.GetSeatMap)
	e.GET("/ws", stream.Subscribe)
}
