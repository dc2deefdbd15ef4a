package button

import (
	"fmt"
	"time"
)

// noReport is the last-reported sentinel; no output value is ever negative.
const noReport = -1

// Button maps debounced samples of one switch onto logical output values.
//
// A Button is not safe for concurrent use. It is meant to be driven from a
// single polling loop: Sample (or SetRawLevel) for every reading, then Poll
// (or PollEdge) to collect what changed.
type Button struct {
	cfg   Config
	rule  strategy
	clock func() time.Time

	filter filter

	value        int
	pending      bool
	armed        bool
	deadline     time.Time
	lastReported int
}

// Option configures a Button at construction.
type Option func(*Button)

// WithClock sets the time source used by SetRawLevel, SetPressed and PollEdge.
// The clock must be monotonic; time.Now is the default.
func WithClock(now func() time.Time) Option {
	return func(b *Button) {
		b.clock = now
	}
}

// New creates a Button with a validated configuration.
func New(cfg Config, opts ...Option) (*Button, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Button{clock: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.setConfig(cfg)
	return b, nil
}

// Config returns the current configuration.
func (b *Button) Config() Config {
	return b.cfg
}

// Apply replaces the whole configuration and resets all runtime state.
// On error the button is left untouched.
func (b *Button) Apply(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.setConfig(cfg)
	return nil
}

// Configure changes kind, mode and span, keeping the other settings,
// and resets all runtime state.
func (b *Button) Configure(kind InputKind, mode OutputMode, span Span) error {
	cfg := b.cfg
	cfg.Kind = kind
	cfg.Mode = mode
	cfg.Span = span
	return b.Apply(cfg)
}

// SetSelectCeiling changes the highest Select position. Runtime state is kept;
// a value above the new ceiling wraps on the next advance.
func (b *Button) SetSelectCeiling(n int) error {
	if err := validateCeiling(n); err != nil {
		return err
	}
	b.cfg.SelectCeiling = n
	b.rule = strategyFor(b.cfg)
	return nil
}

// SetOneshotDuration changes the auto-clear delay used for the next arming.
func (b *Button) SetOneshotDuration(d time.Duration) error {
	if err := validateDuration("oneshot duration", d); err != nil {
		return err
	}
	b.cfg.OneshotDuration = d
	return nil
}

// SetDebounceWindow changes the minimum spacing between accepted samples.
func (b *Button) SetDebounceWindow(d time.Duration) error {
	if err := validateDuration("debounce window", d); err != nil {
		return err
	}
	b.cfg.DebounceWindow = d
	b.filter.window = d
	return nil
}

func (b *Button) setConfig(cfg Config) {
	b.cfg = cfg
	b.rule = strategyFor(cfg)
	b.filter.window = cfg.DebounceWindow
	b.Reset()
}

// Reset discards any pending report or armed auto-clear and returns the
// button to its initial state. Configuration is kept.
func (b *Button) Reset() {
	b.filter.reset()
	b.value = ValueCleared
	b.pending = false
	b.armed = false
	b.deadline = time.Time{}
	b.lastReported = noReport
}

// Sample feeds one raw level observed at now.
func (b *Button) Sample(level Level, now time.Time) error {
	if level != LevelLow && level != LevelHigh {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	if e, ok := b.filter.accept(level, now); ok {
		b.apply(e, now)
	}
	return nil
}

// SetRawLevel feeds a raw 0/1 level timestamped by the button's clock.
func (b *Button) SetRawLevel(level int) error {
	return b.Sample(Level(level), b.clock())
}

// SetPressed feeds a logical level timestamped by the button's clock.
func (b *Button) SetPressed(active bool) {
	// LevelOf only yields valid levels.
	_ = b.Sample(LevelOf(active), b.clock())
}

// apply runs the transition rule for a stable edge.
func (b *Button) apply(e Edge, now time.Time) {
	next, ok := b.rule(e, b.value, b.cfg.SelectCeiling)
	if !ok {
		return
	}
	b.value = next
	b.pending = true
	if b.cfg.Span == Oneshot {
		b.armed = true
		b.deadline = now.Add(b.cfg.OneshotDuration)
	}
}

// Poll returns the value to report at now, if there is one.
//
// A transition is reported at most once and never twice in a row with the
// same value. Under Oneshot span a 0 follows once the deadline has passed,
// unless a newer transition re-armed it first.
func (b *Button) Poll(now time.Time) (int, bool) {
	if b.pending {
		b.pending = false
		if b.value == b.lastReported {
			return 0, false
		}
		b.lastReported = b.value
		return b.value, true
	}
	if b.armed && b.cfg.Span == Oneshot && !now.Before(b.deadline) {
		b.armed = false
		if b.lastReported == ValueCleared {
			return 0, false
		}
		b.lastReported = ValueCleared
		return ValueCleared, true
	}
	return 0, false
}

// PollEdge is Poll at the button's clock.
func (b *Button) PollEdge() (int, bool) {
	return b.Poll(b.clock())
}

// CurrentValue returns the output value regardless of what has been reported.
func (b *Button) CurrentValue() int {
	return b.value
}

// StableLevel returns the last accepted raw level.
func (b *Button) StableLevel() Level {
	return b.filter.stable
}

// Phase returns where the button is in its reporting cycle.
func (b *Button) Phase() Phase {
	switch {
	case b.pending:
		return EdgePending
	case b.armed:
		return AutoCloseArmed
	}
	return Idle
}
