package button

import "time"

// filter drops samples that arrive within window of the last accepted one.
// Only accepted samples move last; a dropped sample does not restart the
// window, so bounce chatter faster than the window cannot hold off a real
// edge forever. Dropped samples are not latched either: the next accepted
// sample is compared against the stable level, not against anything seen
// in between.
type filter struct {
	window time.Duration
	stable Level
	last   time.Time // zero until the first sample is accepted
}

// accept returns the edge produced by the sample, if any.
func (f *filter) accept(level Level, now time.Time) (Edge, bool) {
	if !f.last.IsZero() && elapsed(f.last, now) < f.window {
		return Edge{}, false
	}
	f.last = now
	if level == f.stable {
		return Edge{}, false
	}
	e := Edge{From: f.stable, To: level}
	f.stable = level
	return e, true
}

func (f *filter) reset() {
	f.stable = LevelLow
	f.last = time.Time{}
}

// elapsed is now-since, saturating at zero if the clock went backwards.
func elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return d
}
