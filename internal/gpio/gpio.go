// Package gpio provides GPIO input reading and LED output with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"strings"
)

// Reader reads GPIO input states.
type Reader interface {
	// Read returns one logical level per configured line, in line order.
	// true means active (pressed / switched on), after ActiveLow inversion.
	Read() ([]bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Bias selects the internal pull resistor of an input line.
type Bias string

const (
	BiasNone     Bias = "none"
	BiasPullUp   Bias = "pull-up"
	BiasPullDown Bias = "pull-down"
)

// ParseBias accepts "none", "pull-up" or "pull-down". Empty means pull-down,
// matching the Pi boot default.
func ParseBias(s string) (Bias, error) {
	switch Bias(strings.ToLower(strings.TrimSpace(s))) {
	case "", BiasPullDown:
		return BiasPullDown, nil
	case BiasPullUp:
		return BiasPullUp, nil
	case BiasNone:
		return BiasNone, nil
	}
	return "", fmt.Errorf("gpio: unknown bias %q", s)
}

// Line describes one input line.
type Line struct {
	Offset    int  // line offset on the chip (BCM number on a Pi)
	ActiveLow bool // raw low reads as active, e.g. a button to ground with pull-up
	Bias      Bias
}

// DefaultChip is the GPIO chip on Raspberry Pi 4 and earlier.
const DefaultChip = "gpiochip0"

// LEDPins are the line offsets of an RGB indicator LED. A negative offset
// leaves that color unwired.
type LEDPins struct {
	Red       int
	Green     int
	Blue      int
	ActiveLow bool // common-anode LED: driving the line low lights it
}
