package hal

import "time"

type hostClock struct {
	fixed time.Duration
	now   func() time.Time

	last   time.Time
	delta  time.Duration
	frames uint64
}

func newHostClock(fixed time.Duration) *hostClock {
	return &hostClock{fixed: fixed, now: time.Now}
}

func (c *hostClock) Delta() time.Duration { return c.delta }
func (c *hostClock) Frames() uint64       { return c.frames }

// step starts a new frame. The first wall-clock frame has a zero delta.
func (c *hostClock) step() {
	c.frames++
	if c.fixed > 0 {
		c.delta = c.fixed
		return
	}

	now := c.now()
	if c.last.IsZero() {
		c.last = now
		c.delta = 0
		return
	}
	c.delta = now.Sub(c.last)
	c.last = now
}
