package model

import "errors"

// ErrMissingCoordinates is returned when a navigation request lacks its
// start or destination pair.
var ErrMissingCoordinates = errors.New("missing coordinates")

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Navigation asks a bike to ride from Start to Destination.
type Navigation struct {
	Start       *Coordinates `json:"start"`
	Destination *Coordinates `json:"destination"`
}

// Validate requires both coordinate pairs to be present.
func (n Navigation) Validate() error {
	if n.Start == nil || n.Destination == nil {
		return ErrMissingCoordinates
	}
	return nil
}
