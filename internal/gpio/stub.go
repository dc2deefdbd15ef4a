//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/anybutton/internal/indicator"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chip string, lines []Line) (*RealReader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() ([]bool, error) {
	return nil, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// LEDWriter is not available on non-Linux platforms.
type LEDWriter struct{}

// NewLEDWriter returns an error on non-Linux platforms.
func NewLEDWriter(chip string, pins LEDPins) (*LEDWriter, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (w *LEDWriter) Set(c indicator.Color, on bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *LEDWriter) Close() error {
	return nil
}
