package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // optional .env loading for local runs
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/seat-lock-engine/internal/audit"
	"github.com/iliyamo/seat-lock-engine/internal/config"
	"github.com/iliyamo/seat-lock-engine/internal/database"
	"github.com/iliyamo/seat-lock-engine/internal/expiry"
	"github.com/iliyamo/seat-lock-engine/internal/fanout"
	"github.com/iliyamo/seat-lock-engine/internal/handler"
	"github.com/iliyamo/seat-lock-engine/internal/lock"
	"github.com/iliyamo/seat-lock-engine/internal/registry"
	"github.com/iliyamo/seat-lock-engine/internal/router"
	queuepublisher "github.com/iliyamo/seat-lock-engine/internal/service"
)

// main wires the service together: the registry and hub are constructed
// once, owned here, handed to the collaborating layers, and torn down in
// reverse order on shutdown.  No component holds implicit global state.
func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly

	cfg := config.Load()

	reg := registry.New(cfg.TotalSeats)
	hub := fanout.NewHub()
	manager := lock.NewManager(reg, hub, cfg.HoldTTL)

	sweeper := expiry.NewScheduler(manager, cfg.SweepInterval)
	sweeper.Start()

	// Optional transition audit trail; the registry stays authoritative
	// whether or not a database is configured.
	var recorder *audit.Recorder
	if name := os.Getenv("DB_NAME"); name != "" {
		db, err := database.Open(
			os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), name,
		)
		if err != nil {
			log.Printf("audit: database unavailable, auditing disabled: %v", err)
		} else {
			recorder, err = audit.NewRecorder(db, hub)
			if err != nil {
				log.Printf("audit: schema setup failed, auditing disabled: %v", err)
				recorder = nil
			} else {
				recorder.Start()
			}
			defer db.Close()
		}
	}

	// Optional broker relay mirroring seat updates to seat.updated.
	var relay *queuepublisher.Relay
	if url := queuepublisher.BrokerURL(); url != "" {
		relay = queuepublisher.NewRelay(url, hub)
		relay.Start()
	}

	rdb := config.NewRedisClient() // nil disables rate limiting
	rlCfg := config.LoadRateLimitConfig()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e,
		handler.NewSeatHandler(manager),
		handler.NewStreamHandler(hub),
		rlCfg, rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s seats=%d hold_ttl=%s sweep=%s)",
		addr, cfg.Env, cfg.TotalSeats, cfg.HoldTTL, cfg.SweepInterval)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Teardown order: stop producing transitions, drain observers, then
	// stop accepting requests.
	log.Printf("shutting down")
	sweeper.Stop()
	hub.Close()
	if relay != nil {
		relay.Stop()
	}
	if recorder != nil {
		recorder.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
