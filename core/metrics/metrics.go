package metrics

import "time"

// ProbeResult captures the outcome of one connection probe.
type ProbeResult struct {
	BikeID       string
	Acknowledged bool
	Latency      time.Duration
}

// AckResult captures an inbound acknowledgment. Waiter is false when the ack
// arrived for a bike with no pending probe.
type AckResult struct {
	BikeID string
	Waiter bool
}

// RelayResult captures one relay forwarding attempt. Topic is empty when the
// envelope could not be parsed.
type RelayResult struct {
	Topic     string
	Forwarded bool
}

// MetricsSink records probe, ack and relay events. Implementations must be
// safe for concurrent use.
type MetricsSink interface {
	RecordProbeResult(ProbeResult) error
	RecordAck(AckResult) error
	RecordRelayMessage(RelayResult) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordProbeResult(ProbeResult) error { return nil }

func (NopSink) RecordAck(AckResult) error { return nil }

func (NopSink) RecordRelayMessage(RelayResult) error { return nil }
