package renderer

import "time"

// maxFrameGap is the longest gap between two frames treated as elapsed time. A longer gap
// is a pause (hidden window, debugger) and contributes nothing.
const maxFrameGap = 500 * time.Millisecond

// clock turns frame timestamps into a clamped delta and an accumulated total.
type clock struct {
	started bool
	last    time.Duration
	delta   time.Duration
	total   time.Duration
}

// Tick advances the clock to now. The first tick only records the timestamp.
func (c *clock) Tick(now time.Duration) {
	if !c.started {
		c.started = true
		c.last = now
		c.delta = 0
		return
	}
	gap := now - c.last
	c.last = now
	if gap < 0 || gap > maxFrameGap {
		gap = 0
	}
	c.delta = gap
	c.total += gap
}

// Delta returns the last clamped frame delta.
func (c *clock) Delta() time.Duration { return c.delta }

// DeltaSeconds returns the last clamped frame delta in seconds.
func (c *clock) DeltaSeconds() float32 { return float32(c.delta.Seconds()) }

// TotalSeconds returns the accumulated time in seconds.
func (c *clock) TotalSeconds() float32 { return float32(c.total.Seconds()) }

// TotalMillis returns the accumulated time in milliseconds.
func (c *clock) TotalMillis() float64 {
	return float64(c.total) / float64(time.Millisecond)
}
