// Package pio emulates the Z80 PIO parallel input/output chip.
package pio

import (
	"github.com/valerio/go-chips/chips/bus"
	"github.com/valerio/go-chips/chips/daisy"
)

// PIO specific pins.
const (
	CE    bus.Pins = 1 << 40
	BASEL bus.Pins = 1 << 41 // inactive: port A, active: port B
	CDSEL bus.Pins = 1 << 42 // inactive: data, active: control
	ARDY  bus.Pins = 1 << 43
	BRDY  bus.Pins = 1 << 44
	ASTB  bus.Pins = 1 << 45
	BSTB  bus.Pins = 1 << 46
)

var (
	PARange = bus.Range{Shift: 48, Width: 8}
	PBRange = bus.Range{Shift: 56, Width: 8}
)

// Layout lists the lines reserved by the PIO.
var Layout = bus.Layout{
	Family: "pio",
	Lines: map[string]bus.Pins{
		"CE": CE, "BASEL": BASEL, "CDSEL": CDSEL,
		"ARDY": ARDY, "BRDY": BRDY, "ASTB": ASTB, "BSTB": BSTB,
		"PA": PARange.Mask(), "PB": PBRange.Mask(),
	},
}

const (
	PortA = iota
	PortB
	NumPorts
)

// Operating modes.
const (
	ModeOutput uint8 = iota
	ModeInput
	ModeBidirectional
	ModeBitControl
)

// Interrupt control word bits.
const (
	IntCtrlEI          = 1 << 7
	IntCtrlAndOr       = 1 << 6
	IntCtrlHighLow     = 1 << 5
	IntCtrlMaskFollows = 1 << 4
)

// Port is one 8-bit I/O port.
type Port struct {
	Input      uint8
	Output     uint8
	Mode       uint8
	IOSelect   uint8
	IntControl uint8
	IntMask    uint8

	expectIOSelect bool
	expectIntMask  bool
	bctrlMatch     bool

	// Int is the interrupt source of the port. Each port has its own vector.
	Int daisy.Channel
}

// PIO is the two port chip.
type PIO struct {
	Port        [NumPorts]Port
	ResetActive bool
	Pins        bus.Pins

	chain [NumPorts]*daisy.Channel
}

// New returns a PIO in its reset state.
func New() *PIO {
	p := &PIO{}
	for i := range p.Port {
		p.chain[i] = &p.Port[i].Int
	}
	p.Reset()
	return p
}

// Reset puts both ports into input mode with interrupts disabled.
func (p *PIO) Reset() {
	for i := range p.Port {
		port := &p.Port[i]
		port.Mode = ModeInput
		port.Output = 0
		port.IOSelect = 0
		port.IntControl &^= IntCtrlEI
		port.IntMask = 0xFF
		port.expectIntMask = false
		port.expectIOSelect = false
		port.bctrlMatch = false
		port.Int.Enabled = false
		port.Int.Reset()
	}
	p.ResetActive = true
}

// Channels returns the interrupt channels in priority order, port A first.
func (p *PIO) Channels() []*daisy.Channel {
	return p.chain[:]
}

func (port *Port) syncEnabled() {
	port.Int.Enabled = port.IntControl&IntCtrlEI != 0
}

func (p *PIO) writeCtrl(id int, data uint8) {
	p.ResetActive = false
	port := &p.Port[id]
	switch {
	case port.expectIOSelect:
		port.IOSelect = data
		port.syncEnabled()
		port.expectIOSelect = false
	case port.expectIntMask:
		port.IntMask = data
		port.syncEnabled()
		port.expectIntMask = false
	case data&0x01 == 0:
		// writing the vector also enables interrupts, as MAME does
		port.Int.Vector = data
		port.IntControl |= IntCtrlEI
		port.Int.Enabled = true
	case data&0x0F == 0x0F:
		port.Mode = data >> 6
		if port.Mode == ModeBitControl {
			port.expectIOSelect = true
			port.Int.Enabled = false
			port.bctrlMatch = false
		}
	case data&0x0F == 0x07:
		port.IntControl = data & 0xF0
		if data&IntCtrlMaskFollows != 0 {
			port.expectIntMask = true
			port.Int.Enabled = false
			port.Int.Cancel()
			port.bctrlMatch = false
		} else {
			port.syncEnabled()
		}
	case data&0x0F == 0x03:
		port.IntControl = (data & IntCtrlEI) | (port.IntControl &^ IntCtrlEI)
		port.syncEnabled()
	}
}

func (p *PIO) readCtrl() uint8 {
	return (p.Port[PortA].IntControl & 0xC0) | (p.Port[PortB].IntControl >> 4)
}

func (p *PIO) writeData(id int, data uint8) {
	port := &p.Port[id]
	switch port.Mode {
	case ModeOutput, ModeInput, ModeBitControl:
		port.Output = data
	}
}

func portRange(id int) bus.Range {
	if id == PortB {
		return PBRange
	}
	return PARange
}

func (p *PIO) readData(id int, pins bus.Pins) uint8 {
	port := &p.Port[id]
	in := uint8(bus.Get(pins, portRange(id)))
	switch port.Mode {
	case ModeOutput:
		return port.Output
	case ModeInput:
		port.Input = in
		return in
	case ModeBitControl:
		port.Input = in
		return (port.Input & port.IOSelect) | (port.Output &^ port.IOSelect)
	}
	return 0xFF
}

func (p *PIO) outputPins(pins bus.Pins) bus.Pins {
	for id := range p.Port {
		port := &p.Port[id]
		var data uint8
		switch port.Mode {
		case ModeOutput:
			data = port.Output
		case ModeBitControl:
			// input lines read as 1
			data = port.IOSelect | (port.Output &^ port.IOSelect)
		default:
			data = 0xFF
		}
		pins = bus.Set(pins, portRange(id), uint64(data))
	}
	return pins
}

func (p *PIO) iorq(pins bus.Pins) bus.Pins {
	id := PortA
	if pins&BASEL != 0 {
		id = PortB
	}
	if pins&bus.RD != 0 {
		if pins&CDSEL != 0 {
			return bus.SetData(pins, p.readCtrl())
		}
		return bus.SetData(pins, p.readData(id, pins))
	}
	if pins&CDSEL != 0 {
		p.writeCtrl(id, bus.Data(pins))
	} else {
		p.writeData(id, bus.Data(pins))
	}
	return pins
}

// Tick handles a register access if the chip is selected, drives the port
// lines and runs the interrupt daisy chain.
func (p *PIO) Tick(pins bus.Pins) bus.Pins {
	if pins&(CE|bus.IORQ|bus.M1) == CE|bus.IORQ {
		pins = p.iorq(pins)
	}
	pins = p.outputPins(pins)
	pins = daisy.Arbitrate(pins, p.chain[:])
	p.Pins = pins
	return pins
}

// WritePort drives a port from the outside. In bit control mode this
// evaluates the port's interrupt condition and raises an interrupt when it
// starts matching.
func (p *PIO) WritePort(id int, data uint8) {
	port := &p.Port[id]
	if port.Mode != ModeBitControl {
		return
	}
	port.Input = data
	val := (port.Input & port.IOSelect) | (port.Output &^ port.IOSelect)
	mask := ^port.IntMask
	val &= mask

	var match bool
	switch port.IntControl & (IntCtrlAndOr | IntCtrlHighLow) {
	case 0: // OR, active low
		match = val != mask
	case IntCtrlHighLow: // OR, active high
		match = val != 0
	case IntCtrlAndOr: // AND, active low
		match = val == 0
	case IntCtrlAndOr | IntCtrlHighLow: // AND, active high
		match = val == mask
	}
	if !port.bctrlMatch && match && port.IntControl&IntCtrlEI != 0 {
		port.Int.Trigger()
	}
	port.bctrlMatch = match
}
