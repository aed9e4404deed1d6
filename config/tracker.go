package config

import "fmt"

// Store backends for the acknowledgment store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// TrackerConfig configures the correlation tracker.
type TrackerConfig struct {
	// Store selects the acknowledgment store: "memory" keeps waits
	// in-process, "redis" shares them across processes.
	Store string `json:"store"`
	// AckTimeoutSeconds bounds how long a probe waits for its ack.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *TrackerConfig) SetDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.AckTimeoutSeconds <= 0 {
		c.AckTimeoutSeconds = 5
	}
}

// Validate checks the store selection.
func (c TrackerConfig) Validate() error {
	if c.Store != StoreMemory && c.Store != StoreRedis {
		return fmt.Errorf("unknown tracker store %q", c.Store)
	}
	return nil
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	Addr string `json:"addr"`
	// DefaultBikeID is the target for command bodies without a bike_id.
	DefaultBikeID string `json:"default_bike_id"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.DefaultBikeID == "" {
		c.DefaultBikeID = "bike1"
	}
}
