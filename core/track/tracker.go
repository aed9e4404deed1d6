package track

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkervran/bikefleet/core/events"
	"github.com/mkervran/bikefleet/core/logger"
	"github.com/mkervran/bikefleet/core/model"
	"github.com/mkervran/bikefleet/core/pubsub"
	"github.com/mkervran/bikefleet/internal/eventbus"
)

// Statuses reported to callers of TestConnection.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result is the terminal outcome of a connection probe. A timeout is a
// normal outcome, not an error: it is folded into Status.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Tracker orchestrates the probe protocol: publish a connect command, wait
// up to the deadline for the out-of-band ack, report the outcome.
type Tracker struct {
	pub     pubsub.Publisher
	store   Store
	timeout time.Duration
	bus     eventbus.EventBus
	log     logger.Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// NewTracker creates a Tracker. The bus may be nil when no one consumes
// probe events.
func NewTracker(pub pubsub.Publisher, store Store, timeout time.Duration, bus eventbus.EventBus, log logger.Logger) *Tracker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Tracker{pub: pub, store: store, timeout: timeout, bus: bus, log: log}
}

type connectCommand struct {
	CommandID string       `json:"command_id"`
	Action    model.Action `json:"action"`
	Timestamp int64        `json:"timestamp"`
}

// TestConnection publishes a connect command for the bike and waits for its
// acknowledgment. Publish failure reports failed immediately without
// creating a pending wait; both the success and the timeout path release it.
func (t *Tracker) TestConnection(ctx context.Context, bikeID string) Result {
	payload, err := json.Marshal(connectCommand{
		CommandID: uuid.NewString(),
		Action:    model.ActionConnect,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return Result{Status: StatusFailed, Message: fmt.Sprintf("encode connect command: %v", err)}
	}

	receivers, err := t.pub.Publish(ctx, bikeID, payload)
	if err != nil || receivers == 0 {
		if err != nil {
			t.log.Errorf("publish connect command for %s: %v", bikeID, err)
		} else {
			t.log.Warnf("connect command for %s reached no receivers", bikeID)
		}
		t.publishEvent(events.ProbeEvent{BikeID: bikeID, Err: err})
		return Result{Status: StatusFailed, Message: "failed to publish connect command"}
	}

	if err := t.store.Create(ctx, bikeID); err != nil {
		t.log.Errorf("create pending wait for %s: %v", bikeID, err)
		t.publishEvent(events.ProbeEvent{BikeID: bikeID, Err: err})
		return Result{Status: StatusFailed, Message: "failed to track connection request"}
	}

	start := time.Now()
	acked, err := t.store.Await(ctx, bikeID, t.timeout)
	latency := time.Since(start)
	t.publishEvent(events.ProbeEvent{BikeID: bikeID, Acknowledged: acked, Latency: latency, Err: err})
	if err != nil {
		t.log.Errorf("await ack for %s: %v", bikeID, err)
		return Result{Status: StatusFailed, Message: fmt.Sprintf("bike %s wait aborted", bikeID)}
	}
	if !acked {
		t.log.Infof("bike %s did not respond within %s", bikeID, t.timeout)
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("bike %s did not respond within %s", bikeID, t.timeout),
		}
	}
	t.log.Infof("bike %s responded in %s", bikeID, latency.Round(time.Millisecond))
	return Result{Status: StatusSuccess, Message: fmt.Sprintf("bike %s responded successfully", bikeID)}
}

func (t *Tracker) publishEvent(ev events.ProbeEvent) {
	if t.bus != nil {
		t.bus.Publish(ev)
	}
}
