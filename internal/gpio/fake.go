package gpio

import (
	"errors"
	"sync"

	"github.com/sweeney/anybutton/internal/indicator"
)

// FakeReader is a test double that returns scripted GPIO values.
type FakeReader struct {
	// Samples contains scripted levels to return, one slice per Read.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single GPIO reading (already in logical form).
type Sample []bool

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() ([]bool, error) {
	if f.ReadError != nil {
		return nil, f.ReadError
	}

	if len(f.Samples) == 0 {
		return nil, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	out := make([]bool, len(sample))
	copy(out, sample)
	return out, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// LEDCall is one recorded FakeWriter.Set call.
type LEDCall struct {
	Color indicator.Color
	On    bool
}

// FakeWriter records LED output for test assertions.
// It is safe for concurrent use since the indicator drives it from timers.
type FakeWriter struct {
	mu     sync.Mutex
	calls  []LEDCall
	lit    indicator.Color
	closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Set records the call and updates the lit colors.
func (f *FakeWriter) Set(c indicator.Color, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.calls = append(f.calls, LEDCall{Color: c, On: on})
	if on {
		f.lit |= c
	} else {
		f.lit &^= c
	}
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeWriter) Calls() []LEDCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]LEDCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lit returns the colors currently switched on.
func (f *FakeWriter) Lit() indicator.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lit
}

// Closed reports whether Close was called.
func (f *FakeWriter) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
