package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkervran/bikefleet/app"
	"github.com/mkervran/bikefleet/config"
	"github.com/mkervran/bikefleet/core/relay"
	"github.com/mkervran/bikefleet/infra/logger"
	"github.com/mkervran/bikefleet/infra/metrics"
	"github.com/mkervran/bikefleet/infra/mqtt"
	"github.com/mkervran/bikefleet/infra/redis"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward dispatch channel envelopes to the MQTT broker",
	RunE:  runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("relay")
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	rdb := redis.NewClient(cfg.Redis)
	defer func() {
		if err := rdb.Close(); err != nil {
			logg.Errorf("redis close: %v", err)
		}
	}()
	sub, err := redis.NewSubscriber(ctx, rdb, cfg.Redis.Channel, logger.New("subscriber"))
	if err != nil {
		return fmt.Errorf("subscriber: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			logg.Errorf("subscriber close: %v", err)
		}
	}()

	sink := app.BuildSink(cfg.Metrics)
	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusPort); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}

	return relay.New(sub, client, sink, logg).Run(ctx)
}
