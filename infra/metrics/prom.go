package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mkervran/bikefleet/core/metrics"
)

// PromSink records probe, ack and relay events in Prometheus metrics.
type PromSink struct {
	probes  *prometheus.CounterVec
	latency *prometheus.HistogramVec
	acks    *prometheus.CounterVec
	relayed *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The metrics server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	probes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "probe_events_total",
		Help: "Total number of connection probes",
	}, []string{"bike_id", "acknowledged"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "probe_latency_seconds",
		Help:    "Time between probe publish and acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"acknowledged"})
	acks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ack_events_total",
		Help: "Total number of inbound acknowledgments",
	}, []string{"waiter"})
	relayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_total",
		Help: "Total number of relay forwarding attempts",
	}, []string{"forwarded"})

	if err := reg.Register(probes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			probes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(acks); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			acks = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(relayed); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			relayed = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{probes: probes, latency: latency, acks: acks, relayed: relayed}, nil
}

// RecordProbeResult increments the probe counter and observes the latency.
func (s *PromSink) RecordProbeResult(res coremetrics.ProbeResult) error {
	acked := strconv.FormatBool(res.Acknowledged)
	s.probes.WithLabelValues(res.BikeID, acked).Inc()
	s.latency.WithLabelValues(acked).Observe(res.Latency.Seconds())
	return nil
}

// RecordAck increments the ack counter.
func (s *PromSink) RecordAck(res coremetrics.AckResult) error {
	s.acks.WithLabelValues(strconv.FormatBool(res.Waiter)).Inc()
	return nil
}

// RecordRelayMessage increments the relay counter.
func (s *PromSink) RecordRelayMessage(res coremetrics.RelayResult) error {
	s.relayed.WithLabelValues(strconv.FormatBool(res.Forwarded)).Inc()
	return nil
}
