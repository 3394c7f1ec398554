// Package ctc emulates the Z80 CTC counter/timer circuit.
package ctc

import (
	"github.com/valerio/go-chips/chips/bus"
	"github.com/valerio/go-chips/chips/daisy"
)

// CTC specific pins.
const (
	CE      bus.Pins = 1 << 44
	CS0     bus.Pins = 1 << 45
	CS1     bus.Pins = 1 << 46
	CLKTRG0 bus.Pins = 1 << 47
	CLKTRG1 bus.Pins = 1 << 48
	CLKTRG2 bus.Pins = 1 << 49
	CLKTRG3 bus.Pins = 1 << 50
	ZCTO0   bus.Pins = 1 << 51
	ZCTO1   bus.Pins = 1 << 52
	ZCTO2   bus.Pins = 1 << 53
)

// CSRange selects the channel addressed by an I/O request.
var CSRange = bus.Range{Shift: 45, Width: 2}

// Layout lists the lines reserved by the CTC.
var Layout = bus.Layout{
	Family: "ctc",
	Lines: map[string]bus.Pins{
		"CE": CE, "CS0": CS0, "CS1": CS1,
		"CLKTRG0": CLKTRG0, "CLKTRG1": CLKTRG1, "CLKTRG2": CLKTRG2, "CLKTRG3": CLKTRG3,
		"ZCTO0": ZCTO0, "ZCTO1": ZCTO1, "ZCTO2": ZCTO2,
	},
}

// Control register bits.
const (
	CtrlEI           = 1 << 7
	CtrlModeCounter  = 1 << 6
	CtrlPrescale256  = 1 << 5
	CtrlEdgeRising   = 1 << 4
	CtrlTriggerWait  = 1 << 3
	CtrlConstFollows = 1 << 2
	CtrlReset        = 1 << 1
	CtrlControl      = 1 << 0
)

const NumChannels = 4

// Channel is one counter/timer channel.
type Channel struct {
	Control     uint8
	Constant    uint8
	DownCounter uint8
	Prescaler   uint8

	triggerEdge       bool
	waitingForTrigger bool
	extTrigger        bool
	prescalerMask     uint8

	Int daisy.Channel
}

// Waiting reports whether a timer waits for its external trigger.
func (c *Channel) Waiting() bool {
	return c.waitingForTrigger
}

// CTC holds the four channels of the chip.
type CTC struct {
	Chn [NumChannels]Channel

	chain [NumChannels]*daisy.Channel
}

// New returns a CTC in its reset state.
func New() *CTC {
	c := &CTC{}
	for i := range c.Chn {
		c.chain[i] = &c.Chn[i].Int
	}
	c.Reset()
	return c
}

// Reset puts every channel into the software reset state. Interrupt
// vectors survive a reset.
func (c *CTC) Reset() {
	for i := range c.Chn {
		chn := &c.Chn[i]
		vector := chn.Int.Vector
		*chn = Channel{
			Control:       CtrlReset,
			prescalerMask: 0x0F,
		}
		chn.Int.Vector = vector
	}
}

// Channels returns the interrupt channels in priority order.
func (c *CTC) Channels() []*daisy.Channel {
	return c.chain[:]
}

// IORQ performs a register read or write when the chip is selected.
// RD wins when both RD and WR are set.
func (c *CTC) IORQ(pins bus.Pins) bus.Pins {
	if pins&(CE|bus.IORQ|bus.M1) != CE|bus.IORQ {
		return pins
	}
	id := int(bus.Get(pins, CSRange))
	if pins&bus.RD != 0 {
		return bus.SetData(pins, c.Chn[id].DownCounter)
	}
	return c.write(pins, id, bus.Data(pins))
}

func (c *CTC) write(pins bus.Pins, id int, data uint8) bus.Pins {
	chn := &c.Chn[id]
	switch {
	case chn.Control&CtrlConstFollows != 0:
		chn.Control &^= CtrlConstFollows | CtrlReset
		chn.Constant = data
		// a new constant takes effect right away, even on a running timer
		if chn.Control&CtrlModeCounter == 0 && chn.Control&CtrlTriggerWait != 0 {
			chn.waitingForTrigger = true
		} else {
			chn.DownCounter = chn.Constant
		}
	case data&CtrlControl != 0:
		old := chn.Control
		chn.Control = data
		chn.Int.Enabled = data&CtrlEI != 0
		chn.triggerEdge = data&CtrlEdgeRising != 0
		if data&CtrlPrescale256 != 0 {
			chn.prescalerMask = 0xFF
		} else {
			chn.prescalerMask = 0x0F
		}
		// changing the trigger slope counts as an active edge
		if (old^data)&CtrlEdgeRising != 0 {
			pins = c.activeEdge(pins, id)
		}
	default:
		// only channel 0 takes the vector, the rest follow at +2 each
		if id == 0 {
			daisy.SetVectorBase(c.chain[:], data&0xF8)
		}
	}
	return pins
}

func (c *CTC) counterZero(pins bus.Pins, id int) bus.Pins {
	chn := &c.Chn[id]
	if chn.Control&CtrlEI != 0 {
		chn.Int.Trigger()
	}
	// channel 3 has no ZCTO pin
	if id < 3 {
		pins |= ZCTO0 << id
	}
	chn.DownCounter = chn.Constant
	return pins
}

func (c *CTC) activeEdge(pins bus.Pins, id int) bus.Pins {
	chn := &c.Chn[id]
	if chn.Control&CtrlModeCounter != 0 {
		chn.DownCounter--
		if chn.DownCounter == 0 {
			pins = c.counterZero(pins, id)
		}
	} else if chn.waitingForTrigger {
		chn.waitingForTrigger = false
		chn.DownCounter = chn.Constant
	}
	return pins
}

// Tick advances the counters and timers by one clock.
func (c *CTC) Tick(pins bus.Pins) bus.Pins {
	pins &^= ZCTO0 | ZCTO1 | ZCTO2
	for id := range c.Chn {
		chn := &c.Chn[id]
		if chn.waitingForTrigger || chn.Control&CtrlModeCounter != 0 {
			trg := pins&(CLKTRG0<<id) != 0
			if trg != chn.extTrigger {
				chn.extTrigger = trg
				if chn.triggerEdge == trg {
					pins = c.activeEdge(pins, id)
				}
			}
		} else if chn.Control&(CtrlModeCounter|CtrlReset|CtrlConstFollows) == 0 {
			chn.Prescaler--
			if chn.Prescaler&chn.prescalerMask == 0 {
				chn.DownCounter--
				if chn.DownCounter == 0 {
					pins = c.counterZero(pins, id)
				}
			}
		}
	}
	return pins
}

// Int runs the interrupt daisy chain over the four channels.
func (c *CTC) Int(pins bus.Pins) bus.Pins {
	return daisy.Arbitrate(pins, c.chain[:])
}
