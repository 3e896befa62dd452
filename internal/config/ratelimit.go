package config

import "time"

// RateLimitConfig controls the Redis token-bucket limiter that shields the
// hold/confirm/release endpoints during an on-sale rush.  When disabled, or
// when no Redis server is reachable, the middleware degrades to a
// passthrough.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size (burst)
	RefillTokens   int           // tokens added per refill interval
	RefillInterval time.Duration // how often tokens are added
	TTL            time.Duration // how long an idle bucket key lives in Redis
	Prefix         string        // key prefix, e.g. "rl"
	Debug          bool          // log limiter decisions and Redis errors
}

// LoadRateLimitConfig reads the limiter settings from the environment and
// normalizes degenerate values.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
