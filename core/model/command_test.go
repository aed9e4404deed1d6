package model

import (
	"errors"
	"testing"
)

func TestCommandValidate(t *testing.T) {
	for _, a := range []Action{ActionForward, ActionBackward, ActionLeft, ActionRight, ActionStop, ActionCenter} {
		if err := (Command{Action: a}).Validate(); err != nil {
			t.Errorf("action %s rejected: %v", a, err)
		}
	}
	if err := (Command{Action: "spin"}).Validate(); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction got %v", err)
	}
	// navigate must go through the navigation path, never as a direct command
	if err := (Command{Action: ActionNavigate}).Validate(); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for navigate got %v", err)
	}
}

func TestCommandValidateSpeed(t *testing.T) {
	speed := 50
	if err := (Command{Action: ActionForward, Speed: &speed}).Validate(); err != nil {
		t.Fatalf("valid speed rejected: %v", err)
	}
	over := 140
	if err := (Command{Action: ActionForward, Speed: &over}).Validate(); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("expected ErrInvalidSpeed got %v", err)
	}
	neg := -1
	if err := (Command{Action: ActionForward, Speed: &neg}).Validate(); !errors.Is(err, ErrInvalidSpeed) {
		t.Fatalf("expected ErrInvalidSpeed got %v", err)
	}
}

func TestNavigationValidate(t *testing.T) {
	nav := Navigation{
		Start:       &Coordinates{Lat: 48.8566, Lng: 2.3522},
		Destination: &Coordinates{Lat: 48.8606, Lng: 2.3376},
	}
	if err := nav.Validate(); err != nil {
		t.Fatalf("valid navigation rejected: %v", err)
	}
	if err := (Navigation{Start: nav.Start}).Validate(); !errors.Is(err, ErrMissingCoordinates) {
		t.Fatalf("expected ErrMissingCoordinates got %v", err)
	}
	if err := (Navigation{Destination: nav.Destination}).Validate(); !errors.Is(err, ErrMissingCoordinates) {
		t.Fatalf("expected ErrMissingCoordinates got %v", err)
	}
}
