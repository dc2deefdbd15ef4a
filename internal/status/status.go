// Package status provides a thread-safe status tracker for the anybutton daemon.
// It is written by the poll loop and read by HTTP handlers and system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/anybutton/internal/indicator"
	"github.com/sweeney/anybutton/internal/panel"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	ClientID    string
	HTTPPort    string
}

// IndicatorState is the LED as last seen by the poll loop.
type IndicatorState struct {
	Present bool
	Active  bool
	Color   indicator.Color
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Buttons       []panel.ButtonState
	Reports       int
	Indicator     IndicatorState
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the button states and total report count.
// Called from runLoop on every tick; the slice is copied.
func (t *Tracker) Update(buttons []panel.ButtonState, reports int) {
	cp := make([]panel.ButtonState, len(buttons))
	copy(cp, buttons)

	t.mu.Lock()
	t.snap.Buttons = cp
	t.snap.Reports = reports
	t.mu.Unlock()
}

// SetIndicator records the LED pattern state.
func (t *Tracker) SetIndicator(color indicator.Color, active bool) {
	t.mu.Lock()
	t.snap.Indicator = IndicatorState{Present: true, Active: active, Color: color}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
