package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/mkervran/bikefleet/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockClient is a simple broker client used in tests. It records every
// publish and can be configured to fail for specific topics.
type MockClient struct {
	mu         sync.Mutex
	Messages   map[string][][]byte
	FailTopics map[string]bool
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		Messages:   make(map[string][][]byte),
		FailTopics: make(map[string]bool),
	}
}

// Publish records the payload or returns an error if configured to fail.
func (m *MockClient) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish to %s failed", topic)
	}
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}

// Published returns the payloads recorded for the topic.
func (m *MockClient) Published(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.Messages[topic]))
	copy(out, m.Messages[topic])
	return out
}
