package pubsub

import "context"

// Publisher sends a command payload for a bike on the dispatch channel and
// reports how many receivers observed it. Zero receivers means nothing is
// listening on the channel and the message went nowhere.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (receivers int64, err error)
}
