package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-chips/chips/bus"
)

func TestHostCPUCycles(t *testing.T) {
	cpu := NewHostCPU(4)
	cpu.Queue(Out(0x7F00, 0x10), Load(0x1234))

	pins := cpu.Tick(0)
	assert.Equal(t, bus.Make(bus.IORQ|bus.WR, 0x7F00, 0x10), pins)

	pins = cpu.Tick(0)
	assert.Equal(t, bus.Make(bus.MREQ|bus.RD, 0x1234, 0), pins)

	// the board answered the read
	assert.Zero(t, cpu.Tick(bus.SetData(pins, 0x5A)))
	assert.Equal(t, []uint8{0x5A}, cpu.Reads)
	assert.False(t, cpu.Busy())
}

func TestHostCPUInterrupt(t *testing.T) {
	cpu := NewHostCPU(3)

	ack := cpu.Tick(bus.INT)
	assert.Equal(t, bus.M1|bus.IORQ, ack&bus.CtrlMask)
	assert.False(t, cpu.IFF)

	// vector placed by the daisy chain
	assert.Zero(t, cpu.Tick(bus.SetData(ack, 0xE4)))
	assert.Equal(t, []Ack{{Tick: 2, Vector: 0xE4}}, cpu.Acks)

	// INT is ignored inside the handler
	assert.Zero(t, cpu.Tick(bus.INT))
	assert.Zero(t, cpu.Tick(bus.INT))
	assert.Equal(t, bus.RETI, cpu.Tick(bus.INT))
	assert.True(t, cpu.IFF)

	assert.Equal(t, bus.M1|bus.IORQ, cpu.Tick(bus.INT)&bus.CtrlMask)
}

func TestHostCPUReset(t *testing.T) {
	cpu := NewHostCPU(0)
	assert.Equal(t, 1, cpu.HandlerTicks)

	cpu.Queue(Store(0, 1), Store(1, 2))
	cpu.Tick(bus.INT)
	cpu.Reset()
	assert.False(t, cpu.Busy())
	assert.True(t, cpu.IFF)
	assert.Zero(t, cpu.Tick(0))
}
