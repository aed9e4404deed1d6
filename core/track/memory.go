package track

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store: one resettable one-shot signal per
// bike, keyed by bike ID. Suitable when probe and ack are handled by the
// same process.
type MemoryStore struct {
	mu      sync.Mutex
	waiters map[string]chan struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{waiters: make(map[string]chan struct{})}
}

// Create installs a buffered one-shot channel for the bike, replacing any
// previous one. The buffer lets a Signal that lands before Await is entered
// still resolve the wait.
func (m *MemoryStore) Create(_ context.Context, bikeID string) error {
	m.mu.Lock()
	m.waiters[bikeID] = make(chan struct{}, 1)
	m.mu.Unlock()
	return nil
}

// Signal fires the bike's pending signal if one exists.
func (m *MemoryStore) Signal(_ context.Context, bikeID string) (bool, error) {
	m.mu.Lock()
	ch, ok := m.waiters[bikeID]
	if ok {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	m.mu.Unlock()
	return ok, nil
}

// Await blocks until the bike's signal fires, the timeout elapses or the
// context is cancelled. All paths remove the entry, but only if it is still
// the one this Await started with: a superseding Create must not lose its
// own waiter to a stale cleanup.
func (m *MemoryStore) Await(ctx context.Context, bikeID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	ch := m.waiters[bikeID]
	m.mu.Unlock()
	if ch == nil {
		return false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		m.remove(bikeID, ch)
		return true, nil
	case <-timer.C:
		m.remove(bikeID, ch)
		return false, nil
	case <-ctx.Done():
		m.remove(bikeID, ch)
		return false, ctx.Err()
	}
}

func (m *MemoryStore) remove(bikeID string, ch chan struct{}) {
	m.mu.Lock()
	if m.waiters[bikeID] == ch {
		delete(m.waiters, bikeID)
	}
	m.mu.Unlock()
}
