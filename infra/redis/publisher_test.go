package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"

	corerelay "github.com/mkervran/bikefleet/core/relay"
	"github.com/mkervran/bikefleet/infra/mqtt"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestPublisherReportsZeroReceivers(t *testing.T) {
	_, rdb := newTestRedis(t)
	pub := NewPublisher(rdb, "bike-commands", nil)

	receivers, err := pub.Publish(context.Background(), "bike1", []byte(`{"command":"stop"}`))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if receivers != 0 {
		t.Fatalf("expected 0 receivers on an empty channel, got %d", receivers)
	}
}

func TestPublisherReachesSubscriber(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	sub, err := NewSubscriber(ctx, rdb, "bike-commands", nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	pub := NewPublisher(rdb, "bike-commands", nil)
	receivers, err := pub.Publish(ctx, "bike7", []byte(`{"command":"stop"}`))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if receivers != 1 {
		t.Fatalf("expected 1 receiver, got %d", receivers)
	}

	select {
	case raw := <-sub.Messages():
		env, err := corerelay.ParseEnvelope(raw)
		if err != nil {
			t.Fatalf("parse envelope: %v", err)
		}
		if env.Topic != "bike7" {
			t.Fatalf("expected topic bike7, got %s", env.Topic)
		}
		if string(env.Payload) != `{"command":"stop"}` {
			t.Fatalf("unexpected payload %s", env.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on the subscription")
	}
}

// covers the full dispatch path: channel publish, relay subscription and
// broker forwarding, with only the broker faked.
func TestRelayOverRedisChannel(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := NewSubscriber(ctx, rdb, "bike-commands", nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	broker := mqtt.NewMockClient()
	r := corerelay.New(sub, broker, nil, nil)
	done := make(chan struct{})
	go func() { _ = r.Run(ctx); close(done) }()

	pub := NewPublisher(rdb, "bike-commands", nil)
	if _, err := pub.Publish(ctx, "bike2", []byte(`{"command":"forward","speed":30}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(broker.Published("bike2")) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	msgs := broker.Published("bike2")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 forwarded message, got %d", len(msgs))
	}
	if string(msgs[0]) != `{"command":"forward","speed":30}` {
		t.Fatalf("unexpected payload %s", msgs[0])
	}

	cancel()
	<-done
}
