package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/mkervran/bikefleet/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordProbeResult(coremetrics.ProbeResult{
		BikeID: "bike1", Acknowledged: true, Latency: 120 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordAck(coremetrics.AckResult{BikeID: "bike1", Waiter: true}))
	require.NoError(t, sink.RecordRelayMessage(coremetrics.RelayResult{Topic: "bike1", Forwarded: true}))
	require.NoError(t, sink.RecordRelayMessage(coremetrics.RelayResult{Forwarded: false}))

	fams, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(fams))
	for _, f := range fams {
		names[f.GetName()] = true
	}
	for _, want := range []string{"probe_events_total", "probe_latency_seconds", "ack_events_total", "relay_messages_total"} {
		require.True(t, names[want], "missing metric %s", want)
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	// a second sink on the same registry must reuse the collectors
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordAck(coremetrics.AckResult{BikeID: "bike1"}))
}

func TestMultiSinkFanout(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	multi := NewMultiSink(prom, coremetrics.NopSink{})

	require.NoError(t, multi.RecordProbeResult(coremetrics.ProbeResult{BikeID: "bike1"}))
	require.NoError(t, multi.RecordAck(coremetrics.AckResult{BikeID: "bike1"}))
	require.NoError(t, multi.RecordRelayMessage(coremetrics.RelayResult{Topic: "bike1", Forwarded: true}))
}
