package mqtt

import "errors"

// ErrNotConnected is returned when a publish is attempted while the broker
// connection is down and cannot be re-established.
var ErrNotConnected = errors.New("broker not connected")
