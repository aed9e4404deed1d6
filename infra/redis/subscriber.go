package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mkervran/bikefleet/infra/logger"
)

// Subscriber adapts a Redis pub/sub subscription to the relay Source
// contract.
type Subscriber struct {
	ps  *redis.PubSub
	out chan []byte
	log logger.Logger
}

// NewSubscriber subscribes to the channel and starts pumping messages. The
// subscription is confirmed before returning so a publisher starting right
// after sees a receiver.
func NewSubscriber(ctx context.Context, rdb *redis.Client, channel string, log logger.Logger) (*Subscriber, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	ps := rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}
	log.Infof("subscribed to channel %s", channel)

	s := &Subscriber{ps: ps, out: make(chan []byte, 64), log: log}
	go s.pump()
	return s, nil
}

func (s *Subscriber) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		s.out <- []byte(msg.Payload)
	}
}

// Messages returns the raw message stream. The channel closes when the
// subscription ends.
func (s *Subscriber) Messages() <-chan []byte { return s.out }

// Close terminates the subscription; the message channel closes once the
// pump drains.
func (s *Subscriber) Close() error { return s.ps.Close() }
