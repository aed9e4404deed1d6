// Package redis provides the Redis-backed transport adapters: the dispatch
// channel publisher, the relay subscription source and the shared
// acknowledgment store.
package redis

import (
	"time"

	"github.com/go-redis/redis/v8"
)

// Config defines the Redis connection and the keys the service uses.
type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Channel is the pub/sub channel carrying command envelopes from the
	// API process to the relay.
	Channel string `json:"channel"`
	// KeyPrefix namespaces the acknowledgment records.
	KeyPrefix string `json:"key_prefix"`

	PollIntervalMS    int `json:"poll_interval_ms"`
	WaitingTTLSeconds int `json:"waiting_ttl_seconds"`
	AckedTTLSeconds   int `json:"acked_ttl_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Channel == "" {
		c.Channel = "bike-commands"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "bike:ack:"
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = 1000
	}
	if c.WaitingTTLSeconds <= 0 {
		c.WaitingTTLSeconds = 10
	}
	if c.AckedTTLSeconds <= 0 {
		c.AckedTTLSeconds = 30
	}
}

// PollInterval returns the configured polling interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// NewClient creates a Redis client from the config.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
