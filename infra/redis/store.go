package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mkervran/bikefleet/infra/logger"
)

// Acknowledgment record states. A key whose TTL expired is equivalent to
// absent, so a record is never observed as waiting forever.
const (
	stateWaiting      = "waiting"
	stateAcknowledged = "acknowledged"
)

// AckStore is the shared, polled form of the acknowledgment store: records
// live in Redis so the tracker and the HTTP handler receiving the ack may
// run in different processes, and survive a restart of either.
type AckStore struct {
	rdb        *redis.Client
	prefix     string
	poll       time.Duration
	waitingTTL time.Duration
	ackedTTL   time.Duration
	log        logger.Logger
}

// NewAckStore creates an AckStore from the config.
func NewAckStore(rdb *redis.Client, cfg Config, log logger.Logger) *AckStore {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &AckStore{
		rdb:        rdb,
		prefix:     cfg.KeyPrefix,
		poll:       cfg.PollInterval(),
		waitingTTL: time.Duration(cfg.WaitingTTLSeconds) * time.Second,
		ackedTTL:   time.Duration(cfg.AckedTTLSeconds) * time.Second,
		log:        log,
	}
}

func (s *AckStore) key(bikeID string) string { return s.prefix + bikeID }

// Create writes a waiting record for the bike, superseding any previous one.
func (s *AckStore) Create(ctx context.Context, bikeID string) error {
	if err := s.rdb.Set(ctx, s.key(bikeID), stateWaiting, s.waitingTTL).Err(); err != nil {
		return fmt.Errorf("create ack record for %s: %w", bikeID, err)
	}
	return nil
}

// Signal overwrites the record to acknowledged with the longer TTL, so a
// late-arriving ack is still recorded even when no one is waiting. It
// reports whether a waiting record existed.
func (s *AckStore) Signal(ctx context.Context, bikeID string) (bool, error) {
	key := s.key(bikeID)
	prev, err := s.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("read ack record for %s: %w", bikeID, err)
	}
	if err := s.rdb.Set(ctx, key, stateAcknowledged, s.ackedTTL).Err(); err != nil {
		return false, fmt.Errorf("write ack record for %s: %w", bikeID, err)
	}
	return prev == stateWaiting, nil
}

// Await polls the record at the configured interval until it observes
// acknowledged or the timeout budget is exhausted. The sleep between polls
// honours context cancellation so request handlers are never blocked past
// their own deadline.
func (s *AckStore) Await(ctx context.Context, bikeID string, timeout time.Duration) (bool, error) {
	key := s.key(bikeID)
	deadline := time.Now().Add(timeout)
	for {
		val, err := s.rdb.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return false, fmt.Errorf("poll ack record for %s: %w", bikeID, err)
		}
		if val == stateAcknowledged {
			if err := s.rdb.Del(ctx, key).Err(); err != nil {
				s.log.Warnf("cleanup ack record for %s: %v", bikeID, err)
			}
			return true, nil
		}
		if !time.Now().Before(deadline) {
			// release the pending record so a later ack reads as unexpected
			if val == stateWaiting {
				if err := s.rdb.Del(ctx, key).Err(); err != nil {
					s.log.Warnf("cleanup ack record for %s: %v", bikeID, err)
				}
			}
			return false, nil
		}
		timer := time.NewTimer(s.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}
