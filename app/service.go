// Package app wires the configuration into a runnable control plane service.
package app

import (
	"context"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/mkervran/bikefleet/api/bikes"
	"github.com/mkervran/bikefleet/config"
	"github.com/mkervran/bikefleet/core/events"
	"github.com/mkervran/bikefleet/core/fleet"
	coremetrics "github.com/mkervran/bikefleet/core/metrics"
	"github.com/mkervran/bikefleet/core/track"
	"github.com/mkervran/bikefleet/infra/logger"
	"github.com/mkervran/bikefleet/infra/metrics"
	"github.com/mkervran/bikefleet/infra/redis"
	"github.com/mkervran/bikefleet/internal/eventbus"
)

// Service hosts the HTTP API, the correlation tracker and the metrics
// recorder. The relay runs as a separate process.
type Service struct {
	srv         *http.Server
	rdb         *goredis.Client
	bus         *eventbus.Bus
	sink        coremetrics.MetricsSink
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	rdb := redis.NewClient(cfg.Redis)
	pub := redis.NewPublisher(rdb, cfg.Redis.Channel, logger.New("publisher"))
	bus := eventbus.New()

	var store track.Store
	if cfg.Tracker.Store == config.StoreRedis {
		store = redis.NewAckStore(rdb, cfg.Redis, logger.New("ack-store"))
	} else {
		store = track.NewMemoryStore()
	}

	ackTimeout := time.Duration(cfg.Tracker.AckTimeoutSeconds) * time.Second
	tracker := track.NewTracker(pub, store, ackTimeout, bus, logger.New("tracker"))
	svc := fleet.NewService(pub, tracker, store, bus, logger.New("fleet"))

	sink := BuildSink(cfg.Metrics)

	handler := bikes.New(svc, cfg.API.DefaultBikeID, logger.New("api"))
	srv := &http.Server{Addr: cfg.API.Addr, Handler: handler}

	return &Service{
		srv:         srv,
		rdb:         rdb,
		bus:         bus,
		sink:        sink,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// BuildSink assembles the configured metrics sinks, falling back to a nop
// sink when none is enabled.
func BuildSink(cfg coremetrics.Config) coremetrics.MetricsSink {
	var sinks []coremetrics.MetricsSink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg)
		if err != nil {
			logger.New("metrics").Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return metrics.NewMultiSink(sinks...)
	}
}

// Run starts the HTTP server and the metrics recorder, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.recordEvents(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()

	s.log.Infof("API listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// recordEvents drains the event bus into the metrics sink.
func (s *Service) recordEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case events.ProbeEvent:
				if err := s.sink.RecordProbeResult(coremetrics.ProbeResult{
					BikeID:       e.BikeID,
					Acknowledged: e.Acknowledged,
					Latency:      e.Latency,
				}); err != nil {
					s.log.Errorf("record probe: %v", err)
				}
			case events.AckEvent:
				if err := s.sink.RecordAck(coremetrics.AckResult{
					BikeID: e.BikeID,
					Waiter: e.Waiter,
				}); err != nil {
					s.log.Errorf("record ack: %v", err)
				}
			}
		}
	}
}

// Close releases the resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	return s.rdb.Close()
}
