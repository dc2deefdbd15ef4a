//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/anybutton/internal/indicator"
)

// LEDWriter drives an RGB indicator LED through three output lines.
type LEDWriter struct {
	chip  *gpiocdev.Chip
	lines map[indicator.Color]*gpiocdev.Line
}

// NewLEDWriter requests the wired color lines as outputs, initially off.
func NewLEDWriter(chipName string, pins LEDPins) (*LEDWriter, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	w := &LEDWriter{chip: chip, lines: make(map[indicator.Color]*gpiocdev.Line)}
	for _, p := range []struct {
		color  indicator.Color
		offset int
	}{
		{indicator.Red, pins.Red},
		{indicator.Green, pins.Green},
		{indicator.Blue, pins.Blue},
	} {
		if p.offset < 0 {
			continue
		}
		opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
		if pins.ActiveLow {
			opts = append(opts, gpiocdev.AsActiveLow)
		}
		line, err := chip.RequestLine(p.offset, opts...)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", p.color, p.offset, err)
		}
		w.lines[p.color] = line
	}
	if len(w.lines) == 0 {
		w.Close()
		return nil, fmt.Errorf("no indicator pins configured")
	}
	return w, nil
}

// Set switches every color in c on or off. Unwired colors are ignored.
func (w *LEDWriter) Set(c indicator.Color, on bool) error {
	v := 0
	if on {
		v = 1
	}
	var errs []error
	for _, color := range indicator.Colors {
		if c&color == 0 {
			continue
		}
		line, ok := w.lines[color]
		if !ok {
			continue
		}
		if err := line.SetValue(v); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", color, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("led errors: %v", errs)
	}
	return nil
}

// Close switches the LED off and releases the lines.
func (w *LEDWriter) Close() error {
	var errs []error

	for color, line := range w.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("switch off %s: %w", color, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", color, err))
		}
	}
	w.lines = nil
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
