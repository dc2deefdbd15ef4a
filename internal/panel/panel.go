package panel

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/anybutton/internal/button"
)

// ErrUnknownButton is returned for a name the panel does not hold.
var ErrUnknownButton = errors.New("panel: unknown button")

type entry struct {
	name    string
	btn     *button.Button
	reports int
	clears  int
}

// Panel holds buttons in a fixed order matching the GPIO lines.
type Panel struct {
	entries       []*entry
	byName        map[string]*entry
	startTime     time.Time
	lastHeartbeat time.Time
}

// New creates a panel. Names must be unique and non-empty.
// The startTime is used for calculating uptime in heartbeat events.
func New(specs []Spec, startTime time.Time) (*Panel, error) {
	if len(specs) == 0 {
		return nil, errors.New("panel: no buttons")
	}
	p := &Panel{
		byName:        make(map[string]*entry, len(specs)),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, errors.New("panel: button with empty name")
		}
		if _, dup := p.byName[s.Name]; dup {
			return nil, fmt.Errorf("panel: duplicate button %q", s.Name)
		}
		b, err := button.New(s.Config)
		if err != nil {
			return nil, fmt.Errorf("button %q: %w", s.Name, err)
		}
		e := &entry{name: s.Name, btn: b}
		p.entries = append(p.entries, e)
		p.byName[s.Name] = e
	}
	return p, nil
}

// Len returns the number of buttons.
func (p *Panel) Len() int {
	return len(p.entries)
}

// Process feeds one sample to every button and returns what they report.
// Events are ordered as the buttons are.
func (p *Panel) Process(input Input) ([]Event, error) {
	if len(input.Levels) != len(p.entries) {
		return nil, fmt.Errorf("panel: got %d levels for %d buttons", len(input.Levels), len(p.entries))
	}

	var events []Event
	for i, e := range p.entries {
		if err := e.btn.Sample(button.LevelOf(input.Levels[i]), input.Time); err != nil {
			return events, fmt.Errorf("button %q: %w", e.name, err)
		}
		if ev, ok := e.poll(input.Time); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

// Tick polls every button without a new sample, so oneshot clears fire
// even when no GPIO read succeeded.
func (p *Panel) Tick(now time.Time) []Event {
	var events []Event
	for _, e := range p.entries {
		if ev, ok := e.poll(now); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (e *entry) poll(now time.Time) (Event, bool) {
	v, ok := e.btn.Poll(now)
	if !ok {
		return Event{}, false
	}
	e.reports++
	kind := EventValue
	if v == button.ValueCleared {
		kind = EventCleared
		e.clears++
	}
	return Event{Timestamp: now, Button: e.name, Kind: kind, Value: v}, true
}

// Button returns the named button for reconfiguration.
func (p *Panel) Button(name string) (*button.Button, error) {
	e, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownButton, name)
	}
	return e.btn, nil
}

// Reset resets the named button.
func (p *Panel) Reset(name string) error {
	b, err := p.Button(name)
	if err != nil {
		return err
	}
	b.Reset()
	return nil
}

// ResetAll resets every button.
func (p *Panel) ResetAll() {
	for _, e := range p.entries {
		e.btn.Reset()
	}
}

// States returns a snapshot of every button in panel order.
func (p *Panel) States() []ButtonState {
	out := make([]ButtonState, len(p.entries))
	for i, e := range p.entries {
		cfg := e.btn.Config()
		out[i] = ButtonState{
			Name:    e.name,
			Kind:    cfg.Kind,
			Mode:    cfg.Mode,
			Span:    cfg.Span,
			Value:   e.btn.CurrentValue(),
			Level:   e.btn.StableLevel(),
			Phase:   e.btn.Phase(),
			Reports: e.reports,
			Clears:  e.clears,
		}
	}
	return out
}

// Reports returns the total number of values reported since startup.
func (p *Panel) Reports() int {
	n := 0
	for _, e := range p.entries {
		n += e.reports
	}
	return n
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (p *Panel) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(p.lastHeartbeat) < interval {
		return nil
	}

	p.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(p.startTime),
		Reports:   p.Reports(),
	}
}
