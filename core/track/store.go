// Package track implements the request/acknowledgment correlation protocol:
// an outbound probe is matched to a future, possibly-absent inbound
// acknowledgment under a deadline.
package track

import (
	"context"
	"time"
)

// Store records bikes awaiting acknowledgment. Two interchangeable
// implementations exist: an in-process event form (MemoryStore) and a shared
// polled form backed by Redis, used when the tracker and the HTTP handler
// receiving the ack live in different processes.
type Store interface {
	// Create installs a pending wait for the bike. A second Create for the
	// same bike supersedes the first: only the most recent probe can be
	// satisfied, the earlier caller's Await times out at its own deadline.
	Create(ctx context.Context, bikeID string) error

	// Signal marks the bike as acknowledged and reports whether a waiter
	// existed. An unknown bike is not a protocol violation; acks may
	// legitimately arrive after cleanup.
	Signal(ctx context.Context, bikeID string) (bool, error)

	// Await blocks until the bike is acknowledged or the timeout elapses.
	// The pending entry is released exactly once, on whichever path
	// completes first. A timeout is reported as (false, nil); the error is
	// reserved for context cancellation and store failures.
	Await(ctx context.Context, bikeID string, timeout time.Duration) (bool, error)
}
