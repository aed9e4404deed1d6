package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkervran/bikefleet/config"
	"github.com/mkervran/bikefleet/core/track"
	"github.com/mkervran/bikefleet/infra/logger"
	"github.com/mkervran/bikefleet/infra/redis"
)

var probeCmd = &cobra.Command{
	Use:   "probe <bike-id>",
	Short: "Run a connection probe against a bike",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

// runProbe issues a one-off connection test. It requires the shared store so
// the API process can deliver the ack to this process.
func runProbe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Tracker.Store != config.StoreRedis {
		return fmt.Errorf("probe requires tracker.store=redis, the in-process store cannot see acks delivered to the API process")
	}

	logg := logger.New("probe")
	rdb := redis.NewClient(cfg.Redis)
	defer func() {
		if err := rdb.Close(); err != nil {
			logg.Errorf("redis close: %v", err)
		}
	}()

	pub := redis.NewPublisher(rdb, cfg.Redis.Channel, logg)
	store := redis.NewAckStore(rdb, cfg.Redis, logg)
	timeout := time.Duration(cfg.Tracker.AckTimeoutSeconds) * time.Second
	tracker := track.NewTracker(pub, store, timeout, nil, logg)

	res := tracker.TestConnection(ctx, args[0])
	fmt.Printf("%s: %s\n", res.Status, res.Message)
	if res.Status != track.StatusSuccess {
		return fmt.Errorf("probe failed")
	}
	return nil
}
