package timing

import (
	"fmt"
	"time"
)

// Clock converts wall time into emulator ticks. Ticks executed beyond the
// requested amount are subtracted from the next request.
type Clock struct {
	freq    int
	toRun   int
	overrun int
}

// NewClock returns a clock running at freq Hz.
func NewClock(freq int) *Clock {
	if freq <= 1 {
		panic(fmt.Sprintf("timing: invalid clock frequency %d", freq))
	}
	return &Clock{freq: freq}
}

// Freq returns the clock frequency in Hz.
func (c *Clock) Freq() int {
	return c.freq
}

// TicksToRun returns how many ticks cover d, always at least 1.
func (c *Clock) TicksToRun(d time.Duration) int {
	if d <= 0 {
		panic(fmt.Sprintf("timing: invalid duration %s", d))
	}
	c.toRun = int(float64(c.freq)*d.Seconds()) - c.overrun
	if c.toRun < 1 {
		c.toRun = 1
	}
	return c.toRun
}

// TicksExecuted records the ticks actually run after a TicksToRun call.
func (c *Clock) TicksExecuted(n int) {
	if n > c.toRun {
		c.overrun = n - c.toRun
	} else {
		c.overrun = 0
	}
}
