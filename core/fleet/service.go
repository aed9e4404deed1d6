// Package fleet implements the command service: it validates and shapes
// outbound commands, hands them to the dispatch channel and delegates
// connection tests and acknowledgments to the tracking layer.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkervran/bikefleet/core/events"
	"github.com/mkervran/bikefleet/core/logger"
	"github.com/mkervran/bikefleet/core/model"
	"github.com/mkervran/bikefleet/core/pubsub"
	"github.com/mkervran/bikefleet/core/track"
	"github.com/mkervran/bikefleet/internal/eventbus"
)

// ErrNoReceivers is returned when the dispatch channel reports that nothing
// consumed the published command.
var ErrNoReceivers = errors.New("no receivers for published command")

// AckOutcome distinguishes an ack that resolved a pending probe from one
// that arrived with no waiter.
type AckOutcome int

const (
	// AckResolved means a pending probe was waiting for this ack.
	AckResolved AckOutcome = iota
	// AckUnexpected means no probe was pending: the wait already timed
	// out, was already resolved, or never existed.
	AckUnexpected
)

// DispatchResult reports a successful dispatch.
type DispatchResult struct {
	Receivers int64
}

// Service validates and dispatches bike commands.
type Service struct {
	pub     pubsub.Publisher
	tracker *track.Tracker
	store   track.Store
	bus     eventbus.EventBus
	log     logger.Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// NewService creates a Service. The bus may be nil.
func NewService(pub pubsub.Publisher, tracker *track.Tracker, store track.Store, bus eventbus.EventBus, log logger.Logger) *Service {
	if log == nil {
		log = nopLogger{}
	}
	return &Service{pub: pub, tracker: tracker, store: store, bus: bus, log: log}
}

type wireCommand struct {
	CommandID string       `json:"command_id"`
	Action    model.Action `json:"action"`
	Speed     *int         `json:"speed,omitempty"`
	Angle     *int         `json:"angle,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

type wireNavigation struct {
	CommandID   string             `json:"command_id"`
	Action      model.Action       `json:"action"`
	Start       *model.Coordinates `json:"start"`
	Destination *model.Coordinates `json:"destination"`
	Timestamp   int64              `json:"timestamp"`
}

// SendCommand validates the command vocabulary and publishes the command for
// the bike. Validation failures surface before any publish happens.
func (s *Service) SendCommand(ctx context.Context, bikeID string, cmd model.Command) (DispatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return DispatchResult{}, err
	}
	if cmd.Speed == nil {
		speed := model.DefaultSpeed
		cmd.Speed = &speed
	}
	payload, err := json.Marshal(wireCommand{
		CommandID: uuid.NewString(),
		Action:    cmd.Action,
		Speed:     cmd.Speed,
		Angle:     cmd.Angle,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("encode command: %w", err)
	}
	return s.dispatch(ctx, bikeID, payload)
}

// SendNavigation publishes a navigation request. The action is implicitly
// navigate; only the coordinate pairs are validated.
func (s *Service) SendNavigation(ctx context.Context, bikeID string, nav model.Navigation) (DispatchResult, error) {
	if err := nav.Validate(); err != nil {
		return DispatchResult{}, err
	}
	payload, err := json.Marshal(wireNavigation{
		CommandID:   uuid.NewString(),
		Action:      model.ActionNavigate,
		Start:       nav.Start,
		Destination: nav.Destination,
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("encode navigation: %w", err)
	}
	return s.dispatch(ctx, bikeID, payload)
}

func (s *Service) dispatch(ctx context.Context, bikeID string, payload []byte) (DispatchResult, error) {
	receivers, err := s.pub.Publish(ctx, bikeID, payload)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("publish command for %s: %w", bikeID, err)
	}
	if receivers == 0 {
		return DispatchResult{}, ErrNoReceivers
	}
	s.log.Debugw("command dispatched", map[string]any{"bike_id": bikeID, "receivers": receivers})
	return DispatchResult{Receivers: receivers}, nil
}

// TestConnection runs the correlation probe for the bike.
func (s *Service) TestConnection(ctx context.Context, bikeID string) track.Result {
	return s.tracker.TestConnection(ctx, bikeID)
}

// HandleAck records an inbound acknowledgment. An ack without a pending
// probe is reported as AckUnexpected, never as a failure: acks may
// legitimately arrive after the wait was released.
func (s *Service) HandleAck(ctx context.Context, bikeID string) (AckOutcome, error) {
	waiter, err := s.store.Signal(ctx, bikeID)
	if err != nil {
		return AckUnexpected, fmt.Errorf("signal ack for %s: %w", bikeID, err)
	}
	if s.bus != nil {
		s.bus.Publish(events.AckEvent{BikeID: bikeID, Waiter: waiter, Time: time.Now()})
	}
	if !waiter {
		s.log.Warnf("unexpected ack from %s", bikeID)
		return AckUnexpected, nil
	}
	s.log.Infof("ack from %s resolved pending probe", bikeID)
	return AckResolved, nil
}
