package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingTopic marks an envelope with no destination bike.
	ErrMissingTopic = errors.New("envelope missing topic")
	// ErrMissingPayload marks an envelope with no command body.
	ErrMissingPayload = errors.New("envelope missing payload")
)

// Envelope is the message carried on the dispatch channel: a destination
// bike identifier and an opaque command body.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Validate requires both fields to be present. Incomplete envelopes are
// never forwarded, not even partially.
func (e Envelope) Validate() error {
	if e.Topic == "" {
		return ErrMissingTopic
	}
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return ErrMissingPayload
	}
	return nil
}

// ParseEnvelope decodes and validates a raw channel message.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
