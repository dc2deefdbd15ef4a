// Package button turns raw two-level switch samples into stable logical values.
// It has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is either passed in as time.Time or read from an injected clock.
package button

import (
	"errors"
	"fmt"
	"time"
)

// InputKind describes how the physical switch actuates.
type InputKind int

const (
	Push   InputKind = iota // momentary: active only while held
	Toggle                  // latching: stays where it was left
)

func (k InputKind) String() string {
	switch k {
	case Push:
		return "push"
	case Toggle:
		return "toggle"
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// OutputMode selects how stable edges map onto output values.
type OutputMode int

const (
	Direct OutputMode = iota // value mirrors the level: 1=off, 2=on
	Select                   // value cycles 1..SelectCeiling
)

func (m OutputMode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Select:
		return "select"
	}
	return fmt.Sprintf("OutputMode(%d)", int(m))
}

// Span controls whether a reported value is followed by a cleared report.
type Span int

const (
	Persistent Span = iota
	Oneshot         // report 0 once OneshotDuration has passed
)

func (s Span) String() string {
	switch s {
	case Persistent:
		return "persistent"
	case Oneshot:
		return "oneshot"
	}
	return fmt.Sprintf("Span(%d)", int(s))
}

// Level is a sampled raw input level.
type Level int

const (
	LevelLow  Level = 0
	LevelHigh Level = 1
)

// LevelOf converts a logical pressed/active state to a Level.
func LevelOf(active bool) Level {
	if active {
		return LevelHigh
	}
	return LevelLow
}

// Edge is a change of the debounced stable level.
type Edge struct {
	From Level
	To   Level
}

// Rising reports whether the edge goes from low to high.
func (e Edge) Rising() bool {
	return e.To == LevelHigh
}

// Phase is the reporting state of a button.
type Phase int

const (
	Idle           Phase = iota
	EdgePending          // a transition has not been polled yet
	AutoCloseArmed       // waiting for the oneshot deadline
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case EdgePending:
		return "EDGE_PENDING"
	case AutoCloseArmed:
		return "AUTOCLOSE_ARMED"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Value 0 is never an active position: it means cleared/undefined.
const (
	ValueCleared = 0
	ValueOff     = 1 // Direct mode, level low
	ValueOn      = 2 // Direct mode, level high
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("button: invalid config")

	// ErrInvalidLevel is returned for raw samples outside {0, 1}.
	ErrInvalidLevel = errors.New("button: invalid level")
)

// Defaults match the values push buttons are usually wired for.
const (
	DefaultSelectCeiling   = 2
	DefaultOneshotDuration = 200 * time.Millisecond
	DefaultDebounceWindow  = 5 * time.Millisecond
)
