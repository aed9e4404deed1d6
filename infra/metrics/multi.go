package metrics

import coremetrics "github.com/mkervran/bikefleet/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordProbeResult forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordProbeResult(res coremetrics.ProbeResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordProbeResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordAck forwards the record to all sinks.
func (m *MultiSink) RecordAck(res coremetrics.AckResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordAck(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRelayMessage forwards the record to all sinks.
func (m *MultiSink) RecordRelayMessage(res coremetrics.RelayResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordRelayMessage(res); err != nil {
			return err
		}
	}
	return nil
}
