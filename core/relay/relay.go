// Package relay bridges the dispatch channel to the broker transport: it
// subscribes to the pub/sub channel command producers publish on and forwards
// each well-formed envelope to the broker client.
package relay

import (
	"context"

	"github.com/mkervran/bikefleet/core/logger"
	"github.com/mkervran/bikefleet/core/metrics"
	"github.com/mkervran/bikefleet/core/mqtt"
)

// Source delivers raw messages from the dispatch channel. The channel is
// closed when the underlying subscription ends.
type Source interface {
	Messages() <-chan []byte
	Close() error
}

// Relay forwards dispatch channel envelopes to the broker. A single
// malformed message never terminates the loop.
type Relay struct {
	src  Source
	cli  mqtt.Client
	sink metrics.MetricsSink
	log  logger.Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// New creates a Relay. Sink and log may be nil.
func New(src Source, cli mqtt.Client, sink metrics.MetricsSink, log logger.Logger) *Relay {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Relay{src: src, cli: cli, sink: sink, log: log}
}

// Run consumes the source until the context is cancelled or the subscription
// closes. It always returns nil: shutdown is not an error.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Infof("relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Infof("relay stopping: %v", ctx.Err())
			return nil
		case raw, ok := <-r.src.Messages():
			if !ok {
				r.log.Warnf("dispatch channel closed, relay stopping")
				return nil
			}
			r.forward(raw)
		}
	}
}

func (r *Relay) forward(raw []byte) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		r.log.Warnf("dropping message: %v", err)
		r.record(metrics.RelayResult{Forwarded: false})
		return
	}
	if err := r.cli.Publish(env.Topic, env.Payload); err != nil {
		r.log.Errorf("publish to %s failed: %v", env.Topic, err)
		r.record(metrics.RelayResult{Topic: env.Topic, Forwarded: false})
		return
	}
	r.log.Debugw("forwarded envelope", map[string]any{"topic": env.Topic, "bytes": len(env.Payload)})
	r.record(metrics.RelayResult{Topic: env.Topic, Forwarded: true})
}

func (r *Relay) record(res metrics.RelayResult) {
	if err := r.sink.RecordRelayMessage(res); err != nil {
		r.log.Errorf("record relay metric: %v", err)
	}
}
