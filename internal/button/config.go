package button

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the behavioral parameters of a button.
type Config struct {
	Kind            InputKind
	Mode            OutputMode
	Span            Span
	SelectCeiling   int           // highest Select position, >= 2
	OneshotDuration time.Duration // delay before the cleared report in Oneshot span
	DebounceWindow  time.Duration // minimum spacing between accepted samples
}

// DefaultConfig returns a push button mirroring its level, never auto-clearing.
func DefaultConfig() Config {
	return Config{
		Kind:            Push,
		Mode:            Direct,
		Span:            Persistent,
		SelectCeiling:   DefaultSelectCeiling,
		OneshotDuration: DefaultOneshotDuration,
		DebounceWindow:  DefaultDebounceWindow,
	}
}

// Validate reports the first field that is out of range.
func (c Config) Validate() error {
	switch c.Kind {
	case Push, Toggle:
	default:
		return fmt.Errorf("%w: unknown input kind %v", ErrInvalidConfig, c.Kind)
	}
	switch c.Mode {
	case Direct, Select:
	default:
		return fmt.Errorf("%w: unknown output mode %v", ErrInvalidConfig, c.Mode)
	}
	switch c.Span {
	case Persistent, Oneshot:
	default:
		return fmt.Errorf("%w: unknown span %v", ErrInvalidConfig, c.Span)
	}
	if err := validateCeiling(c.SelectCeiling); err != nil {
		return err
	}
	if err := validateDuration("oneshot duration", c.OneshotDuration); err != nil {
		return err
	}
	return validateDuration("debounce window", c.DebounceWindow)
}

func validateCeiling(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: select ceiling %d, must be at least 2", ErrInvalidConfig, n)
	}
	return nil
}

func validateDuration(name string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s %v is negative", ErrInvalidConfig, name, d)
	}
	return nil
}

// ParseInputKind accepts "push" or "toggle" (case-insensitive).
func ParseInputKind(s string) (InputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "push":
		return Push, nil
	case "toggle":
		return Toggle, nil
	}
	return 0, fmt.Errorf("%w: unknown input kind %q", ErrInvalidConfig, s)
}

// ParseOutputMode accepts "direct" or "select" (case-insensitive).
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return Direct, nil
	case "select":
		return Select, nil
	}
	return 0, fmt.Errorf("%w: unknown output mode %q", ErrInvalidConfig, s)
}

// ParseSpan accepts "persistent" or "oneshot" (case-insensitive).
func ParseSpan(s string) (Span, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "persistent", "ever":
		return Persistent, nil
	case "oneshot":
		return Oneshot, nil
	}
	return 0, fmt.Errorf("%w: unknown span %q", ErrInvalidConfig, s)
}
