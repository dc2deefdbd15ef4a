//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// NewRealReader requests every line as an input on the named chip.
func NewRealReader(chipName string, lines []Line) (*RealReader, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no input lines configured")
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealReader{chip: chip}
	for _, l := range lines {
		line, err := chip.RequestLine(l.Offset, inputOptions(l)...)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request input pin %d: %w", l.Offset, err)
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

func inputOptions(l Line) []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	switch l.Bias {
	case BiasPullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case BiasNone:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	default:
		opts = append(opts, gpiocdev.WithPullDown)
	}
	if l.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	return opts
}

// Read returns the logical level of every line.
// The kernel applies ActiveLow, so 1 is always active.
func (r *RealReader) Read() ([]bool, error) {
	out := make([]bool, len(r.lines))
	for i, line := range r.lines {
		v, err := line.Value()
		if err != nil {
			return nil, fmt.Errorf("read pin %d: %w", line.Offset(), err)
		}
		out[i] = v == 1
	}
	return out, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	for _, line := range r.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", line.Offset(), err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", line.Offset(), err))
		}
	}
	r.lines = nil
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
