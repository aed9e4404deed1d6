package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mkervran/bikefleet/core/relay"
	"github.com/mkervran/bikefleet/infra/logger"
)

// Publisher implements the dispatch channel Publisher over Redis pub/sub.
// The receiver count reported by Redis is the delivery confirmation: zero
// receivers means no relay is subscribed and the command went nowhere.
type Publisher struct {
	rdb     *redis.Client
	channel string
	log     logger.Logger
}

// NewPublisher creates a Publisher for the given channel.
func NewPublisher(rdb *redis.Client, channel string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Publisher{rdb: rdb, channel: channel, log: log}
}

// Publish wraps the payload in an envelope and publishes it on the channel.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) (int64, error) {
	data, err := json.Marshal(relay.Envelope{Topic: topic, Payload: payload})
	if err != nil {
		return 0, fmt.Errorf("encode envelope: %w", err)
	}
	receivers, err := p.rdb.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("publish on %s: %w", p.channel, err)
	}
	p.log.Debugw("published envelope", map[string]any{
		"channel":   p.channel,
		"topic":     topic,
		"receivers": receivers,
	})
	return receivers, nil
}
