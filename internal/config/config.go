package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and RELAY_BASE_URL
// are required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Chat relay (the serverless function holding the chat-API credential)
	RelayBaseURL string
	RelayTimeout time.Duration

	// Portal base URL used for deep links back to a bug's detail view
	PortalBaseURL string

	// Duplicate suppression: identical (recipient, bug, kind) notifications
	// within the cooldown are dropped. MaxEntries bounds the in-memory cache.
	DedupCooldown   time.Duration
	DedupMaxEntries int

	// Rate limiting: maximum relay sends per second
	RateLimit int

	// Delivery-log retention
	PruneInterval     time.Duration
	DeliveryRetention time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	relayURL := os.Getenv("RELAY_BASE_URL")
	if relayURL == "" {
		return nil, fmt.Errorf("RELAY_BASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		RelayBaseURL: relayURL,
		RelayTimeout: getDuration("RELAY_TIMEOUT", 10*time.Second),

		PortalBaseURL: getEnv("PORTAL_BASE_URL", "http://localhost:3000"),

		DedupCooldown:   getDuration("DEDUP_COOLDOWN", 5*time.Second),
		DedupMaxEntries: getInt("DEDUP_MAX_ENTRIES", 100),

		RateLimit: getInt("RELAY_RATE_LIMIT", 20),

		PruneInterval:     getDuration("PRUNE_INTERVAL", 1*time.Hour),
		DeliveryRetention: getDuration("DELIVERY_RETENTION", 30*24*time.Hour),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
