// Package clock drives the simulation's fixed-period rounds.
package clock

import "time"

// DefaultPeriod is the round period used when none is configured.
const DefaultPeriod = 50 * time.Millisecond

// Timer is a repeating countdown advanced by externally supplied deltas.
type Timer struct {
	period  time.Duration
	elapsed time.Duration

	fired int
}

// NewTimer returns a repeating timer. Non-positive periods fall back to
// DefaultPeriod.
func NewTimer(period time.Duration) *Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Timer{period: period}
}

func (t *Timer) Period() time.Duration  { return t.period }
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// Tick advances the countdown by delta. Completions are counted and the
// remainder carries over into the next period.
func (t *Timer) Tick(delta time.Duration) {
	t.fired = 0
	if delta <= 0 {
		return
	}
	t.elapsed += delta
	if t.elapsed < t.period {
		return
	}
	t.fired = int(t.elapsed / t.period)
	t.elapsed %= t.period
}

// Finished reports whether the countdown completed during the last Tick.
func (t *Timer) Finished() bool { return t.fired > 0 }

// TimesFinished reports how many periods completed during the last Tick.
func (t *Timer) TimesFinished() int { return t.fired }

// Reset rewinds the countdown.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.fired = 0
}
