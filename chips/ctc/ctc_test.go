package ctc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chips/chips/bus"
	"github.com/valerio/go-chips/chips/daisy"
)

func selectChannel(id int) bus.Pins {
	return bus.Set(0, bus.Range{Shift: 45, Width: 2}, uint64(id))
}

func write(c *CTC, id int, data uint8) bus.Pins {
	return c.IORQ(bus.Make(CE|bus.IORQ|bus.WR, 0, data) | selectChannel(id))
}

func read(c *CTC, id int) uint8 {
	return bus.Data(c.IORQ(bus.Make(CE|bus.IORQ|bus.RD, 0, 0) | selectChannel(id)))
}

func TestReset(t *testing.T) {
	c := New()
	for i := range c.Chn {
		assert.Equal(t, uint8(CtrlReset), c.Chn[i].Control)
		assert.Equal(t, daisy.Idle, c.Chn[i].Int.State())
	}

	fresh := New()
	c.Reset()
	assert.Equal(t, fresh.Chn, c.Chn)
}

func TestTimerMode(t *testing.T) {
	c := New()
	write(c, 0, CtrlEI|CtrlControl|CtrlConstFollows)
	write(c, 0, 2)
	assert.Equal(t, uint8(2), read(c, 0))

	var pulses, ticks int
	for i := 0; i < 64; i++ {
		pins := c.Tick(0)
		ticks++
		if pins&ZCTO0 != 0 {
			pulses++
			if pulses == 1 {
				assert.Equal(t, 32, ticks, "prescaler 16 times constant 2")
			}
		}
	}
	assert.Equal(t, 2, pulses)
	assert.Equal(t, daisy.Needed, c.Chn[0].Int.State())
}

func TestTimerPrescaler256(t *testing.T) {
	c := New()
	write(c, 1, CtrlControl|CtrlPrescale256|CtrlConstFollows)
	write(c, 1, 1)

	var fired int
	for i := 1; i <= 512; i++ {
		if c.Tick(0)&ZCTO1 != 0 {
			fired = i
			break
		}
	}
	assert.Equal(t, 256, fired)
	assert.Equal(t, daisy.Idle, c.Chn[1].Int.State(), "interrupts disabled")
}

func TestTimerWaitsForTrigger(t *testing.T) {
	c := New()
	write(c, 2, CtrlControl|CtrlTriggerWait|CtrlEdgeRising|CtrlConstFollows)
	write(c, 2, 1)
	require.True(t, c.Chn[2].Waiting())

	for i := 0; i < 100; i++ {
		assert.Zero(t, c.Tick(0)&ZCTO2)
	}

	c.Tick(CLKTRG2)
	assert.False(t, c.Chn[2].Waiting())

	var fired bool
	for i := 0; i < 16; i++ {
		if c.Tick(CLKTRG2)&ZCTO2 != 0 {
			fired = true
		}
	}
	assert.True(t, fired)
}

func TestCounterMode(t *testing.T) {
	c := New()
	write(c, 3, CtrlEI|CtrlControl|CtrlModeCounter|CtrlConstFollows)
	write(c, 3, 3)

	// falling edges count by default
	pins := bus.Pins(0)
	for i := 0; i < 3; i++ {
		c.Tick(pins | CLKTRG3)
		pins = c.Tick(pins)
	}
	assert.Zero(t, pins&(ZCTO0|ZCTO1|ZCTO2), "channel 3 has no ZCTO pin")
	assert.Equal(t, daisy.Needed, c.Chn[3].Int.State())
	assert.Equal(t, uint8(3), read(c, 3), "reloaded")
}

func TestReprogramTakesEffectImmediately(t *testing.T) {
	c := New()
	write(c, 0, CtrlControl|CtrlConstFollows)
	write(c, 0, 100)
	for i := 0; i < 20; i++ {
		c.Tick(0)
	}
	require.Equal(t, uint8(99), read(c, 0))

	write(c, 0, CtrlControl|CtrlConstFollows)
	write(c, 0, 5)
	assert.Equal(t, uint8(5), read(c, 0), "running count is replaced, not finished")
}

func TestInterruptVectors(t *testing.T) {
	c := New()
	write(c, 0, 0xE6)
	for i := range c.Chn {
		assert.Equal(t, uint8(0xE0+2*i), c.Chn[i].Int.Vector)
	}

	// vectors written to other channels are ignored
	write(c, 2, 0x10)
	assert.Equal(t, uint8(0xE4), c.Chn[2].Int.Vector)

	for i := range c.Chn {
		write(c, i, CtrlEI|CtrlControl|CtrlConstFollows)
		write(c, i, 1)
	}
	// channel 3 fires, served vector is base + 6
	c.Chn[3].Int.Trigger()
	c.Int(bus.IEIO)
	pins := c.Int(bus.IEIO | bus.M1 | bus.IORQ)
	assert.Equal(t, uint8(0xE6), bus.Data(pins))
	c.Reset()
	assert.Equal(t, uint8(0xE6), c.Chn[3].Int.Vector, "vectors survive reset")
}

func TestIORQIgnoredWithoutChipEnable(t *testing.T) {
	c := New()
	pins := c.IORQ(bus.Make(bus.IORQ|bus.WR, 0, CtrlControl|CtrlEI))
	assert.Equal(t, uint8(CtrlReset), c.Chn[0].Control)

	// interrupt acknowledge cycles are not register accesses
	c.IORQ(bus.Make(CE|bus.IORQ|bus.M1, 0, CtrlControl|CtrlEI))
	assert.Equal(t, uint8(CtrlReset), c.Chn[0].Control)
	assert.Equal(t, uint8(CtrlControl|CtrlEI), bus.Data(pins))
}

func TestLayout(t *testing.T) {
	assert.Empty(t, bus.Collisions(bus.CPULayout, Layout))
	assert.Equal(t, CS0|CS1, CSRange.Mask())
}

func TestChannelSelect(t *testing.T) {
	c := New()
	for id := 0; id < NumChannels; id++ {
		pins := bus.Set(CE|bus.IORQ|bus.WR, CSRange, uint64(id))
		c.IORQ(bus.SetData(pins, CtrlControl|CtrlConstFollows|CtrlReset))
		c.IORQ(bus.SetData(pins, uint8(0x10+id)))
	}
	for id := 0; id < NumChannels; id++ {
		assert.Equal(t, uint8(0x10+id), c.Chn[id].Constant, "channel %d", id)
	}
}
