package model

import (
	"errors"
	"fmt"
)

// Action identifies a drive instruction understood by the bikes.
type Action string

const (
	ActionForward  Action = "forward"
	ActionBackward Action = "backward"
	ActionLeft     Action = "left"
	ActionRight    Action = "right"
	ActionStop     Action = "stop"
	ActionCenter   Action = "center"
	// ActionConnect is the probe command used for connection tests.
	ActionConnect Action = "connect"
	// ActionNavigate is implicit on the navigation path and never accepted
	// as a direct command.
	ActionNavigate Action = "navigate"
)

// driveActions is the fixed vocabulary accepted for direct commands.
var driveActions = map[Action]struct{}{
	ActionForward:  {},
	ActionBackward: {},
	ActionLeft:     {},
	ActionRight:    {},
	ActionStop:     {},
	ActionCenter:   {},
}

// DefaultSpeed is applied when a command carries no explicit speed.
const DefaultSpeed = 50

var (
	// ErrInvalidAction is returned when a command action is outside the
	// fixed vocabulary.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidSpeed is returned when a command speed is outside 0-100.
	ErrInvalidSpeed = errors.New("speed out of range")
)

// Command is a validated outbound instruction for a bike.
type Command struct {
	Action Action `json:"action"`
	Speed  *int   `json:"speed,omitempty"`
	Angle  *int   `json:"angle,omitempty"`
}

// Validate checks the action vocabulary and the optional speed bounds.
// Validation happens before any publish so invalid commands never reach
// the transport.
func (c Command) Validate() error {
	if _, ok := driveActions[c.Action]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAction, c.Action)
	}
	if c.Speed != nil && (*c.Speed < 0 || *c.Speed > 100) {
		return fmt.Errorf("%w: %d", ErrInvalidSpeed, *c.Speed)
	}
	return nil
}
