package bench

import (
	"github.com/valerio/go-chips/chips/bus"
)

// CPU is the bus master driving a board. It receives the pins as the board
// left them after the previous tick and returns the CPU output lines for
// the next one.
type CPU interface {
	Tick(pins bus.Pins) bus.Pins
}

// Cycle is one bus cycle issued by HostCPU.
type Cycle struct {
	Ctrl bus.Pins
	Addr uint16
	Data uint8
}

// Out is an I/O write cycle.
func Out(port uint16, data uint8) Cycle {
	return Cycle{Ctrl: bus.IORQ | bus.WR, Addr: port, Data: data}
}

// In is an I/O read cycle.
func In(port uint16) Cycle {
	return Cycle{Ctrl: bus.IORQ | bus.RD, Addr: port}
}

// Store is a memory write cycle.
func Store(addr uint16, data uint8) Cycle {
	return Cycle{Ctrl: bus.MREQ | bus.WR, Addr: addr, Data: data}
}

// Load is a memory read cycle.
func Load(addr uint16) Cycle {
	return Cycle{Ctrl: bus.MREQ | bus.RD, Addr: addr}
}

// Ack is an acknowledged interrupt.
type Ack struct {
	Tick   uint64
	Vector uint8
}

type cpuState uint8

const (
	cpuIdle cpuState = iota
	cpuAck
	cpuHandler
)

// HostCPU stands in for an instruction decoder. It runs queued bus cycles,
// acknowledges interrupts while enabled and leaves each handler with RETI
// after HandlerTicks ticks. It does not honour WAIT.
type HostCPU struct {
	HandlerTicks int
	// IFF is the interrupt enable flip-flop, cleared on acknowledge and set
	// again by RETI.
	IFF bool

	// Acks lists every acknowledged interrupt, Reads the data of every
	// completed read cycle.
	Acks  []Ack
	Reads []uint8

	queue     []Cycle
	state     cpuState
	countdown int
	pendingRD bool
	ticks     uint64
}

// NewHostCPU returns an idle CPU with interrupts enabled.
func NewHostCPU(handlerTicks int) *HostCPU {
	if handlerTicks < 1 {
		handlerTicks = 1
	}
	return &HostCPU{HandlerTicks: handlerTicks, IFF: true}
}

// Queue appends bus cycles, one is issued per idle tick.
func (c *HostCPU) Queue(cycles ...Cycle) {
	c.queue = append(c.queue, cycles...)
}

// Busy reports whether cycles are still queued or a handler is running.
func (c *HostCPU) Busy() bool {
	return len(c.queue) > 0 || c.state != cpuIdle
}

// Reset drops queued cycles and any handler in progress. Recorded acks and
// reads are kept.
func (c *HostCPU) Reset() {
	c.queue = nil
	c.state = cpuIdle
	c.countdown = 0
	c.pendingRD = false
	c.IFF = true
}

func (c *HostCPU) Tick(pins bus.Pins) bus.Pins {
	c.ticks++

	if c.pendingRD {
		c.Reads = append(c.Reads, bus.Data(pins))
		c.pendingRD = false
	}

	switch c.state {
	case cpuAck:
		c.Acks = append(c.Acks, Ack{Tick: c.ticks, Vector: bus.Data(pins)})
		c.state = cpuHandler
		c.countdown = c.HandlerTicks
		return 0
	case cpuHandler:
		c.countdown--
		if c.countdown > 0 {
			return 0
		}
		c.state = cpuIdle
		c.IFF = true
		return bus.RETI
	}

	if c.IFF && pins&bus.INT != 0 {
		c.IFF = false
		c.state = cpuAck
		// nothing drives a vector: the data bus floats high
		return bus.Make(bus.M1|bus.IORQ, 0, 0xFF)
	}

	if len(c.queue) == 0 {
		return 0
	}
	cyc := c.queue[0]
	c.queue = c.queue[1:]
	c.pendingRD = cyc.Ctrl&bus.RD != 0
	return bus.Make(cyc.Ctrl, cyc.Addr, cyc.Data)
}
