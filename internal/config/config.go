// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Required variables are
// enforced by must(); everything else has a sensible default so a dev
// instance runs with just JWT_SECRET and MONGO_URI set.
type Config struct {
	Env            string // application environment ("dev", "prod")
	Port           string // HTTP port to listen on
	MongoURI       string // MongoDB connection string
	MongoDB        string // database name
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	AMQPURL        string // RabbitMQ URL; empty means broker-less, buffer-only dispatch
	RateLimit      RateLimitConfig
	Cache          CacheConfig
}

// RateLimitConfig controls the redis token-bucket limiter. When Enabled is
// false or no redis client is available, limiting is a no-op.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// CacheConfig controls the redis response cache for the public event
// listing. Entries expire after TTL; staleness is bounded by it.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// Load reads configuration from the environment. Missing required values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		MongoURI:       must("MONGO_URI"),
		MongoDB:        envStr("MONGO_DB", "ticketing"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
			RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
			TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		},
		Cache: CacheConfig{
			Enabled: envBool("CACHE_ENABLED", true),
			TTL:     envDur("CACHE_TTL", 30*time.Second),
			Prefix:  envStr("CACHE_PREFIX", "cache"),
		},
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "on":
		return true
	case "0", "false", "FALSE", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
