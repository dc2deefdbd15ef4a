package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/anybutton/internal/button"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func cfg(kind button.InputKind, mode button.OutputMode, span button.Span) button.Config {
	c := button.DefaultConfig()
	c.Kind = kind
	c.Mode = mode
	c.Span = span
	c.OneshotDuration = 100 * time.Millisecond
	return c
}

// setupPanel returns a panel with a direct push button "door" and a
// select push button "mode".
func setupPanel(t *testing.T) *Panel {
	t.Helper()
	p, err := New([]Spec{
		{Name: "door", Config: cfg(button.Push, button.Direct, button.Persistent)},
		{Name: "mode", Config: cfg(button.Push, button.Select, button.Persistent)},
	}, startTime)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func process(t *testing.T, p *Panel, at time.Duration, levels ...bool) []Event {
	t.Helper()
	events, err := p.Process(Input{Levels: levels, Time: startTime.Add(at)})
	if err != nil {
		t.Fatalf("Process at %v: %v", at, err)
	}
	return events
}

func TestNewPanel(t *testing.T) {
	p := setupPanel(t)
	if p.Len() != 2 {
		t.Errorf("Len: got %d, want 2", p.Len())
	}
	states := p.States()
	if states[0].Name != "door" || states[1].Name != "mode" {
		t.Errorf("order: got %q, %q", states[0].Name, states[1].Name)
	}
	for _, s := range states {
		if s.Value != button.ValueCleared {
			t.Errorf("%s: initial value %d, want 0", s.Name, s.Value)
		}
		if s.Phase != button.Idle {
			t.Errorf("%s: initial phase %s, want IDLE", s.Name, s.Phase)
		}
	}
}

func TestNewPanelErrors(t *testing.T) {
	good := cfg(button.Push, button.Direct, button.Persistent)
	bad := good
	bad.SelectCeiling = 0

	tests := []struct {
		name  string
		specs []Spec
	}{
		{"empty", nil},
		{"no name", []Spec{{Config: good}}},
		{"duplicate", []Spec{{Name: "a", Config: good}, {Name: "a", Config: good}}},
		{"invalid config", []Spec{{Name: "a", Config: bad}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.specs, startTime); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := New([]Spec{{Name: "a", Config: bad}}, startTime)
	if !errors.Is(err, button.ErrInvalidConfig) {
		t.Errorf("expected wrapped ErrInvalidConfig, got %v", err)
	}
}

func TestProcessEmitsEvents(t *testing.T) {
	p := setupPanel(t)

	events := process(t, p, 0, true, false)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Button != "door" || e.Value != button.ValueOn || e.Kind != EventValue {
		t.Errorf("unexpected event: %+v", e)
	}
	if !e.Timestamp.Equal(startTime) {
		t.Errorf("timestamp: got %v, want %v", e.Timestamp, startTime)
	}

	events = process(t, p, 10*time.Millisecond, true, true)
	if len(events) != 1 || events[0].Button != "mode" || events[0].Value != 1 {
		t.Fatalf("unexpected events: %+v", events)
	}

	// Release of the select button is not reported.
	events = process(t, p, 20*time.Millisecond, false, false)
	if len(events) != 1 || events[0].Button != "door" || events[0].Value != button.ValueOff {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestProcessSimultaneousEventsInOrder(t *testing.T) {
	p := setupPanel(t)

	events := process(t, p, 0, true, true)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Button != "door" || events[1].Button != "mode" {
		t.Errorf("order: got %s, %s", events[0].Button, events[1].Button)
	}
}

func TestProcessLevelCountMismatch(t *testing.T) {
	p := setupPanel(t)
	_, err := p.Process(Input{Levels: []bool{true}, Time: startTime})
	if err == nil {
		t.Fatal("expected error for level count mismatch")
	}
}

func TestProcessDebounce(t *testing.T) {
	p := setupPanel(t)

	process(t, p, 0, true, false)
	// Within the default 5ms window: dropped.
	if events := process(t, p, 2*time.Millisecond, false, false); len(events) != 0 {
		t.Errorf("expected no events within debounce, got %+v", events)
	}
	if events := process(t, p, 6*time.Millisecond, false, false); len(events) != 1 {
		t.Errorf("expected release after debounce, got %+v", events)
	}
}

func TestOneshotClearedEvent(t *testing.T) {
	p, err := New([]Spec{
		{Name: "bell", Config: cfg(button.Toggle, button.Direct, button.Oneshot)},
	}, startTime)
	if err != nil {
		t.Fatal(err)
	}

	events := process(t, p, 0, true)
	if len(events) != 1 || events[0].Value != button.ValueOn {
		t.Fatalf("unexpected events: %+v", events)
	}

	if events := p.Tick(startTime.Add(50 * time.Millisecond)); len(events) != 0 {
		t.Errorf("expected nothing before deadline, got %+v", events)
	}

	events = p.Tick(startTime.Add(110 * time.Millisecond))
	if len(events) != 1 {
		t.Fatalf("expected cleared event, got %+v", events)
	}
	if events[0].Kind != EventCleared || events[0].Value != 0 {
		t.Errorf("unexpected cleared event: %+v", events[0])
	}

	if events := process(t, p, 200*time.Millisecond, true); len(events) != 0 {
		t.Errorf("expected no further events, got %+v", events)
	}

	s := p.States()[0]
	if s.Reports != 2 || s.Clears != 1 {
		t.Errorf("counts: reports=%d clears=%d, want 2 and 1", s.Reports, s.Clears)
	}
}

func TestResetByName(t *testing.T) {
	p := setupPanel(t)
	process(t, p, 0, true, true)

	if err := p.Reset("mode"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	states := p.States()
	if states[0].Value != button.ValueOn {
		t.Errorf("door should be untouched, got %d", states[0].Value)
	}
	if states[1].Value != button.ValueCleared {
		t.Errorf("mode should be reset, got %d", states[1].Value)
	}

	if err := p.Reset("nope"); !errors.Is(err, ErrUnknownButton) {
		t.Errorf("expected ErrUnknownButton, got %v", err)
	}
}

func TestResetAll(t *testing.T) {
	p := setupPanel(t)
	process(t, p, 0, true, true)
	p.ResetAll()

	for _, s := range p.States() {
		if s.Value != button.ValueCleared || s.Level != button.LevelLow {
			t.Errorf("%s not reset: %+v", s.Name, s)
		}
	}
}

func TestButtonReconfigure(t *testing.T) {
	p := setupPanel(t)

	b, err := p.Button("door")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Configure(button.Push, button.Select, button.Persistent); err != nil {
		t.Fatal(err)
	}
	events := process(t, p, 0, true, false)
	if len(events) != 1 || events[0].Value != 1 {
		t.Errorf("expected select value 1, got %+v", events)
	}
	if p.States()[0].Mode != button.Select {
		t.Errorf("mode not updated")
	}
}

func TestCheckHeartbeatDisabledWithZeroInterval(t *testing.T) {
	p := setupPanel(t)

	if hb := p.CheckHeartbeat(startTime.Add(15*time.Minute), 0); hb != nil {
		t.Error("should not return heartbeat when interval is 0 (disabled)")
	}
	if hb := p.CheckHeartbeat(startTime.Add(15*time.Minute), -1*time.Minute); hb != nil {
		t.Error("should not return heartbeat when interval is negative")
	}
}

func TestCheckHeartbeatBeforeInterval(t *testing.T) {
	p := setupPanel(t)
	if hb := p.CheckHeartbeat(startTime.Add(14*time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat before interval")
	}
}

func TestCheckHeartbeatAtInterval(t *testing.T) {
	p := setupPanel(t)
	process(t, p, 0, true, true)

	checkTime := startTime.Add(15 * time.Minute)
	hb := p.CheckHeartbeat(checkTime, 15*time.Minute)
	if hb == nil {
		t.Fatal("should return heartbeat at interval")
	}
	if !hb.Timestamp.Equal(checkTime) {
		t.Errorf("timestamp: got %v, want %v", hb.Timestamp, checkTime)
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("uptime: got %v, want 15m", hb.Uptime)
	}
	if hb.Reports != 2 {
		t.Errorf("reports: got %d, want 2", hb.Reports)
	}
}

func TestCheckHeartbeatUpdatesLastTime(t *testing.T) {
	p := setupPanel(t)

	first := startTime.Add(15 * time.Minute)
	if hb := p.CheckHeartbeat(first, 15*time.Minute); hb == nil {
		t.Fatal("expected first heartbeat")
	}
	if hb := p.CheckHeartbeat(first.Add(time.Minute), 15*time.Minute); hb != nil {
		t.Error("should not return heartbeat immediately after the last one")
	}
	if hb := p.CheckHeartbeat(first.Add(15*time.Minute), 15*time.Minute); hb == nil {
		t.Error("expected second heartbeat one interval later")
	}
}
