// Package indicator flashes an RGB status LED in the background.
//
// A Scheduler owns its timers and its current color; create one per LED.
// Patterns are timer driven and never block the caller, except Oneshot
// with wait set.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Color is a bitmask of LED channels.
type Color uint8

const (
	Blue  Color = 0b001
	Green Color = 0b010
	Red   Color = 0b100

	Off   Color = 0
	White       = Red | Green | Blue
)

// Colors lists the single channels in bit order from high to low.
var Colors = []Color{Red, Green, Blue}

func (c Color) String() string {
	if c == Off {
		return "off"
	}
	var parts []string
	names := map[Color]string{Red: "red", Green: "green", Blue: "blue"}
	for _, ch := range Colors {
		if c&ch != 0 {
			parts = append(parts, names[ch])
		}
	}
	if rest := c &^ White; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "+")
}

// ParseColor accepts a channel name, a "+" separated combination
// ("red+blue"), or one of the mixed names yellow, cyan, magenta, white.
func ParseColor(s string) (Color, error) {
	var c Color
	for _, part := range strings.Split(strings.ToLower(strings.TrimSpace(s)), "+") {
		switch strings.TrimSpace(part) {
		case "red":
			c |= Red
		case "green":
			c |= Green
		case "blue":
			c |= Blue
		case "yellow":
			c |= Red | Green
		case "cyan":
			c |= Green | Blue
		case "magenta":
			c |= Red | Blue
		case "white":
			c |= White
		case "off", "none":
		default:
			return Off, fmt.Errorf("indicator: unknown color %q", s)
		}
	}
	return c, nil
}

// Driver switches LED channels. Implementations must be safe to call from
// timer goroutines.
type Driver interface {
	Set(c Color, on bool) error
	Close() error
}

// ErrInvalidPattern is returned for durations a pattern cannot run with.
var ErrInvalidPattern = errors.New("indicator: invalid pattern")

// Scheduler runs at most one LED pattern at a time.
type Scheduler struct {
	driver Driver

	// opMu serializes pattern changes; mu guards the fields below.
	opMu   sync.Mutex
	mu     sync.Mutex
	color  Color
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Scheduler driving d. The LED is switched off.
func New(d Driver) *Scheduler {
	s := &Scheduler{driver: d}
	s.set(White, false)
	return s
}

// Blink lights c for on at the start of every cycle until stopped or
// replaced by another pattern.
func (s *Scheduler) Blink(c Color, on, cycle time.Duration) error {
	if on <= 0 || cycle <= 0 || on > cycle {
		return fmt.Errorf("%w: blink on=%v cycle=%v", ErrInvalidPattern, on, cycle)
	}
	ctx, done := s.start(c)
	go func() {
		defer close(done)
		defer s.set(c, false)

		ticker := time.NewTicker(cycle)
		defer ticker.Stop()
		for {
			if !s.flash(ctx, c, on) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// Oneshot lights c once for on. With wait set it returns only after the
// flash has ended, ctx is done, or another pattern replaced it.
func (s *Scheduler) Oneshot(ctx context.Context, c Color, on time.Duration, wait bool) error {
	if on <= 0 {
		return fmt.Errorf("%w: oneshot on=%v", ErrInvalidPattern, on)
	}
	runCtx, done := s.start(c)
	go func() {
		defer close(done)
		s.flash(runCtx, c, on)
		s.finish(done)
	}()
	if !wait {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the running pattern, if any, and switches every channel off.
func (s *Scheduler) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
	s.set(White, false)
}

// Active reports whether a pattern is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Color returns the color of the running pattern, Off if none.
func (s *Scheduler) Color() Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Off
	}
	return s.color
}

// Close stops any pattern and closes the driver.
func (s *Scheduler) Close() error {
	s.Stop()
	return s.driver.Close()
}

// start cancels the previous pattern, switches the LED off and registers
// a new one.
func (s *Scheduler) start(c Color) (context.Context, chan struct{}) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.set(White, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.color = c
	s.active = true
	s.cancel = cancel
	s.done = done
	return ctx, done
}

// stopLocked cancels the running pattern and waits for its goroutine.
// s.opMu and s.mu must be held. s.mu is released while waiting; pattern
// goroutines only take it in finish, which gives up once its pattern is no
// longer current.
func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	done := s.done
	s.cancel = nil
	s.done = nil
	s.active = false
	s.mu.Unlock()
	<-done
	s.mu.Lock()
}

// finish marks a self-terminating pattern as ended if it is still current.
func (s *Scheduler) finish(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.cancel = nil
	s.done = nil
	s.active = false
}

// flash lights c for on. It returns false if ctx ended first.
func (s *Scheduler) flash(ctx context.Context, c Color, on time.Duration) bool {
	s.set(c, true)
	t := time.NewTimer(on)
	defer t.Stop()
	select {
	case <-ctx.Done():
		s.set(c, false)
		return false
	case <-t.C:
		s.set(c, false)
		return true
	}
}

func (s *Scheduler) set(c Color, on bool) {
	if err := s.driver.Set(c, on); err != nil {
		log.Printf("indicator: set %s on=%v: %v", c, on, err)
	}
}
