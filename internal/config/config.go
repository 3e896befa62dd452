package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  These are constants for the lifetime of the
// process; clients cannot tune them at runtime.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	TotalSeats    int           // size of the fixed venue map; seats are numbered 1..TotalSeats
	HoldTTL       time.Duration // how long an unconfirmed hold survives
	SweepInterval time.Duration // how often the expiry sweeper runs
}

// Load reads configuration from environment variables, applying defaults
// that make the service runnable out of the box.  Nonsensical values are
// clamped rather than rejected so a bad .env cannot produce a zero-interval
// sweeper or an instantly-expiring hold.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8080"),
		TotalSeats:    envInt("TOTAL_SEATS", 50),
		HoldTTL:       envDur("HOLD_TTL", 120*time.Second),
		SweepInterval: envDur("SWEEP_INTERVAL", 2*time.Second),
	}
	if cfg.TotalSeats < 1 {
		cfg.TotalSeats = 1
	}
	if cfg.HoldTTL < time.Second {
		cfg.HoldTTL = time.Second
	}
	if cfg.SweepInterval < 100*time.Millisecond {
		cfg.SweepInterval = 100 * time.Millisecond
	}
	return cfg
}

// envStr returns the value of the environment variable or the default when
// unset or empty.
func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envBool parses common true/false spellings, falling back to the default.
func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

// envInt parses an integer environment variable, falling back to the default.
func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur parses a time.ParseDuration value, falling back to the default.
func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
