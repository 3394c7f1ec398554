// Package daisy implements the Z80 interrupt daisy chain.
//
// Each interrupt source owns a Channel. Once per tick the owning chip (or
// the host) runs Arbitrate over its channels in priority order. The IEIO
// line enters active from the CPU side and every channel that has
// interrupt business pending clears it for everything downstream.
package daisy

import (
	"fmt"

	"github.com/valerio/go-chips/chips/bus"
)

// State is the interrupt state of a channel.
type State uint8

const (
	Idle State = iota
	Needed
	Requested
	Serviced
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Needed:
		return "needed"
	case Requested:
		return "requested"
	case Serviced:
		return "serviced"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Channel is one interrupt source in the chain.
type Channel struct {
	// Enabled gates Trigger, a disabled channel never raises an interrupt.
	Enabled bool
	// Vector is placed on the data bus when the CPU acknowledges.
	Vector uint8

	state State
}

// State returns the current interrupt state.
func (c *Channel) State() State {
	return c.state
}

// Trigger moves an idle, enabled channel to Needed.
func (c *Channel) Trigger() {
	if c.Enabled && c.state == Idle {
		c.state = Needed
	}
}

// Cancel drops an interrupt that has not been acknowledged yet.
func (c *Channel) Cancel() {
	if c.state == Needed || c.state == Requested {
		c.state = Idle
	}
}

// Reset returns the channel to Idle, keeping Enabled and Vector.
func (c *Channel) Reset() {
	c.state = Idle
}

// Tick runs one arbitration step for this channel.
func (c *Channel) Tick(pins bus.Pins) bus.Pins {
	if pins&bus.IEIO == 0 {
		return pins
	}

	if c.state != Idle {
		switch c.state {
		case Serviced:
			// only the channel under service is released, a requested
			// channel keeps waiting for its acknowledge
			if pins&bus.RETI != 0 {
				c.state = Idle
			}
		case Needed:
			c.state = Requested
		case Requested:
			if pins&(bus.M1|bus.IORQ) == bus.M1|bus.IORQ {
				pins = bus.SetData(pins, c.Vector)
				c.state = Serviced
			}
		}
	}

	if c.state != Idle {
		pins &^= bus.IEIO
	}
	if c.state == Requested {
		pins |= bus.INT
	}
	return pins
}

// Arbitrate runs one pass over channels, index 0 has the highest priority.
// The caller decides whether IEIO enters active.
func Arbitrate(pins bus.Pins, channels []*Channel) bus.Pins {
	for _, c := range channels {
		pins = c.Tick(pins)
	}
	return pins
}

// SetVectorBase assigns base + 2k to channel k.
func SetVectorBase(channels []*Channel, base uint8) {
	for i, c := range channels {
		c.Vector = base + uint8(2*i)
	}
}

// Pending reports whether any channel waits for an acknowledge.
func Pending(channels []*Channel) bool {
	for _, c := range channels {
		if c.state == Requested {
			return true
		}
	}
	return false
}
