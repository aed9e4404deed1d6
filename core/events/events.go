// Package events defines the event types emitted on the event bus.
//
// Available event types:
//   - ProbeEvent: outcome of a connection probe
//   - AckEvent: inbound acknowledgment, expected or not
package events

import "time"

// ProbeEvent is published for each completed connection probe.
type ProbeEvent struct {
	BikeID       string
	Acknowledged bool
	Latency      time.Duration
	Err          error
}

// AckEvent is published when an acknowledgment arrives over HTTP.
// Waiter reports whether a probe was still pending for the bike.
type AckEvent struct {
	BikeID string
	Waiter bool
	Time   time.Time
}
