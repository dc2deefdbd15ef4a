// Package panel drives a set of named buttons from raw GPIO samples.
// Like the button package it does no I/O; time is passed in with each Input.
package panel

import (
	"time"

	"github.com/sweeney/anybutton/internal/button"
)

// EventKind distinguishes a transition report from an auto-clear.
type EventKind string

const (
	EventValue   EventKind = "VALUE"
	EventCleared EventKind = "CLEARED"
)

// Event is one value reported by a button, ready to be published.
type Event struct {
	Timestamp time.Time
	Button    string
	Kind      EventKind
	Value     int
}

// Input is a single sample of every button's logical level, in panel order.
type Input struct {
	Levels []bool // true = active (already inverted from raw GPIO)
	Time   time.Time
}

// Spec names a button and its behavior.
type Spec struct {
	Name   string
	Config button.Config
}

// ButtonState is a point-in-time view of one button.
type ButtonState struct {
	Name    string
	Kind    button.InputKind
	Mode    button.OutputMode
	Span    button.Span
	Value   int
	Level   button.Level
	Phase   button.Phase
	Reports int // values reported since startup, clears included
	Clears  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Reports   int
}
