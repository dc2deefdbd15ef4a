package indicator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	c  Color
	on bool
}

// recorder is an in-memory Driver.
type recorder struct {
	mu     sync.Mutex
	calls  []call
	lit    Color
	closed bool
	err    error

	offDelay time.Duration // slows every switch-off
}

func (r *recorder) Set(c Color, on bool) error {
	if !on && r.offDelay > 0 {
		time.Sleep(r.offDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{c, on})
	if on {
		r.lit |= c
	} else {
		r.lit &^= c
	}
	return r.err
}

func (r *recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *recorder) Lit() Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lit
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) onCount(c Color) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, cl := range r.calls {
		if cl.on && cl.c == c {
			n++
		}
	}
	return n
}

func TestNewSwitchesOff(t *testing.T) {
	r := &recorder{}
	s := New(r)

	require.Len(t, r.calls, 1)
	assert.Equal(t, call{White, false}, r.calls[0])
	assert.False(t, s.Active())
	assert.Equal(t, Off, s.Color())
}

func TestOneshotLightsOnce(t *testing.T) {
	r := &recorder{}
	s := New(r)

	require.NoError(t, s.Oneshot(context.Background(), Green, 20*time.Millisecond, false))
	assert.Equal(t, Green, s.Color())

	require.Eventually(t, func() bool { return !s.Active() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Off, r.Lit())
	assert.Equal(t, 1, r.onCount(Green))
	assert.Equal(t, Off, s.Color())
}

func TestOneshotWaitBlocksUntilDone(t *testing.T) {
	r := &recorder{}
	s := New(r)

	start := time.Now()
	require.NoError(t, s.Oneshot(context.Background(), Red, 30*time.Millisecond, true))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, Off, r.Lit())
	assert.False(t, s.Active())
}

func TestOneshotWaitHonoursContext(t *testing.T) {
	r := &recorder{}
	s := New(r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Oneshot(ctx, Blue, time.Hour, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The flash keeps running until stopped.
	assert.True(t, s.Active())
	s.Stop()
	assert.False(t, s.Active())
	assert.Equal(t, Off, r.Lit())
}

func TestBlinkRepeats(t *testing.T) {
	r := &recorder{}
	s := New(r)

	require.NoError(t, s.Blink(Blue, 5*time.Millisecond, 15*time.Millisecond))
	require.Eventually(t, func() bool { return r.onCount(Blue) >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Active())
	assert.Equal(t, Blue, s.Color())

	s.Stop()
	assert.False(t, s.Active())
	assert.Equal(t, Off, r.Lit())

	n := r.onCount(Blue)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, n, r.onCount(Blue), "blink continued after Stop")
}

func TestNewPatternReplacesOld(t *testing.T) {
	r := &recorder{}
	s := New(r)

	require.NoError(t, s.Blink(Red, 5*time.Millisecond, 10*time.Millisecond))
	require.NoError(t, s.Oneshot(context.Background(), Green, time.Hour, false))

	n := r.onCount(Red)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, r.onCount(Red), "old blink still running")
	assert.Equal(t, Green, r.Lit())
	assert.Equal(t, Green, s.Color())

	s.Stop()
	assert.Equal(t, Off, r.Lit())
}

func TestConcurrentPatternsThenStop(t *testing.T) {
	for round := 0; round < 20; round++ {
		r := &recorder{offDelay: 200 * time.Microsecond}
		s := New(r)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Blink(Red, time.Millisecond, 2*time.Millisecond))
			}()
		}
		wg.Wait()
		s.Stop()

		n := r.callCount()
		time.Sleep(20 * time.Millisecond)
		require.Equal(t, n, r.callCount(), "round %d: driver still switched after Stop", round)
		assert.False(t, s.Active())
		assert.Equal(t, Off, r.Lit())
	}
}

func TestStopDuringStartLeavesLEDOff(t *testing.T) {
	r := &recorder{offDelay: 200 * time.Microsecond}
	s := New(r)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Oneshot(context.Background(), Blue, time.Hour, false))
	}()
	go func() {
		defer wg.Done()
		s.Stop()
	}()
	wg.Wait()

	// Whichever ran last decides; the LED and the scheduler must agree.
	if s.Active() {
		assert.Equal(t, Blue, s.Color())
		assert.Eventually(t, func() bool { return r.Lit() == Blue }, time.Second, time.Millisecond)
	} else {
		assert.Equal(t, Off, r.Lit())
	}
	s.Stop()
	assert.Equal(t, Off, r.Lit())
}

func TestStopWithoutPattern(t *testing.T) {
	r := &recorder{}
	s := New(r)
	s.Stop()
	s.Stop()
	assert.False(t, s.Active())
	assert.Equal(t, Off, r.Lit())
}

func TestInvalidPatterns(t *testing.T) {
	s := New(&recorder{})

	assert.ErrorIs(t, s.Blink(Red, 0, time.Second), ErrInvalidPattern)
	assert.ErrorIs(t, s.Blink(Red, time.Second, 0), ErrInvalidPattern)
	assert.ErrorIs(t, s.Blink(Red, 2*time.Second, time.Second), ErrInvalidPattern)
	assert.ErrorIs(t, s.Oneshot(context.Background(), Red, -time.Second, false), ErrInvalidPattern)
	assert.False(t, s.Active())
}

func TestDriverErrorsDoNotStopPattern(t *testing.T) {
	r := &recorder{err: errors.New("bus error")}
	s := New(r)

	require.NoError(t, s.Oneshot(context.Background(), Red, 5*time.Millisecond, true))
	assert.Equal(t, 1, r.onCount(Red))
}

func TestIndependentSchedulers(t *testing.T) {
	r1, r2 := &recorder{}, &recorder{}
	s1, s2 := New(r1), New(r2)

	require.NoError(t, s1.Oneshot(context.Background(), Red, time.Hour, false))
	require.NoError(t, s2.Oneshot(context.Background(), Blue, time.Hour, false))
	s1.Stop()

	assert.False(t, s1.Active())
	assert.True(t, s2.Active())
	assert.Equal(t, Blue, r2.Lit())
	s2.Stop()
}

func TestCloseStopsAndClosesDriver(t *testing.T) {
	r := &recorder{}
	s := New(r)
	require.NoError(t, s.Blink(Green, 5*time.Millisecond, 10*time.Millisecond))

	require.NoError(t, s.Close())
	assert.True(t, r.closed)
	assert.False(t, s.Active())
	assert.Equal(t, Off, r.Lit())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"red", Red},
		{"Green", Green},
		{" blue ", Blue},
		{"red+blue", Red | Blue},
		{"yellow", Red | Green},
		{"cyan", Green | Blue},
		{"magenta", Red | Blue},
		{"white", White},
		{"off", Off},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseColor("purple")
	assert.Error(t, err)
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "off", Off.String())
	assert.Equal(t, "red", Red.String())
	assert.Equal(t, "red+green+blue", White.String())
	assert.Equal(t, "green+blue", (Green | Blue).String())
}
