package daisy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-chips/chips/bus"
)

const ack = bus.M1 | bus.IORQ

func newChannels(n int) []*Channel {
	chs := make([]*Channel, n)
	for i := range chs {
		chs[i] = &Channel{Enabled: true}
	}
	return chs
}

func TestTrigger(t *testing.T) {
	t.Run("disabled channel ignores trigger", func(t *testing.T) {
		c := &Channel{}
		c.Trigger()
		assert.Equal(t, Idle, c.State())
	})

	t.Run("enabled channel becomes needed", func(t *testing.T) {
		c := &Channel{Enabled: true}
		c.Trigger()
		assert.Equal(t, Needed, c.State())
	})

	t.Run("cancel drops pending request", func(t *testing.T) {
		c := &Channel{Enabled: true}
		c.Trigger()
		c.Tick(bus.IEIO)
		assert.Equal(t, Requested, c.State())
		c.Cancel()
		assert.Equal(t, Idle, c.State())
	})
}

func TestFullCycle(t *testing.T) {
	c := &Channel{Enabled: true, Vector: 0x40}
	c.Trigger()

	pins := c.Tick(bus.IEIO)
	assert.Equal(t, Requested, c.State())
	assert.NotZero(t, pins&bus.INT)
	assert.Zero(t, pins&bus.IEIO)

	pins = c.Tick(bus.IEIO | ack)
	assert.Equal(t, Serviced, c.State())
	assert.Equal(t, uint8(0x40), bus.Data(pins))
	assert.Zero(t, pins&bus.INT)
	assert.Zero(t, pins&bus.IEIO, "serviced channel keeps blocking downstream")

	pins = c.Tick(bus.IEIO)
	assert.Equal(t, Serviced, c.State())

	pins = c.Tick(bus.IEIO | bus.RETI)
	assert.Equal(t, Idle, c.State())
	assert.NotZero(t, pins&bus.IEIO)
}

func TestPriority(t *testing.T) {
	chs := newChannels(2)
	a, b := chs[0], chs[1]
	a.Trigger()
	b.Trigger()

	pins := Arbitrate(bus.IEIO, chs)
	assert.Equal(t, Requested, a.State())
	assert.Equal(t, Needed, b.State(), "B is blocked while A holds the chain")
	assert.NotZero(t, pins&bus.INT)

	// acknowledge and service A, B stays needed the whole time
	pins = Arbitrate(bus.IEIO|ack, chs)
	assert.Equal(t, Serviced, a.State())
	assert.Equal(t, Needed, b.State())

	Arbitrate(bus.IEIO, chs)
	assert.Equal(t, Needed, b.State())

	// RETI releases A; B only moves once A is idle
	Arbitrate(bus.IEIO|bus.RETI, chs)
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, Requested, b.State())

	pins = Arbitrate(bus.IEIO|ack, chs)
	assert.Equal(t, Serviced, b.State())
	assert.Equal(t, uint8(0), bus.Data(pins))
}

func TestRetiReleasesOnlyServicedChannel(t *testing.T) {
	chs := newChannels(2)
	a, b := chs[0], chs[1]

	b.Trigger()
	Arbitrate(bus.IEIO, chs)
	Arbitrate(bus.IEIO|ack, chs)
	assert.Equal(t, Serviced, b.State())

	// a higher priority request arrives while B is being serviced
	a.Trigger()
	Arbitrate(bus.IEIO, chs)
	assert.Equal(t, Requested, a.State())

	// the RETI ending B's handler is not seen by B since A blocks the chain,
	// and A keeps waiting for its own acknowledge
	Arbitrate(bus.IEIO|bus.RETI, chs)
	assert.Equal(t, Requested, a.State())
	assert.Equal(t, Serviced, b.State())
}

func TestInactiveChainSkipsChannels(t *testing.T) {
	chs := newChannels(2)
	chs[0].Trigger()

	pins := Arbitrate(0, chs)
	assert.Equal(t, Needed, chs[0].State())
	assert.Zero(t, pins&bus.INT)
}

func TestVectorBase(t *testing.T) {
	chs := newChannels(4)
	SetVectorBase(chs, 0x10)

	for k, c := range chs {
		c.Trigger()
		// run until this channel is serviced, releasing each in turn
		Arbitrate(bus.IEIO, chs[k:])
		pins := Arbitrate(bus.IEIO|ack, chs[k:])
		assert.Equal(t, uint8(0x10+2*k), bus.Data(pins), "channel %d", k)
		Arbitrate(bus.IEIO|bus.RETI, chs[k:])
		assert.Equal(t, Idle, c.State())
	}
}

func TestPending(t *testing.T) {
	chs := newChannels(3)
	assert.False(t, Pending(chs))
	chs[2].Trigger()
	assert.False(t, Pending(chs), "needed is not yet pending")
	Arbitrate(bus.IEIO, chs)
	assert.True(t, Pending(chs))

	chs[2].Reset()
	assert.False(t, Pending(chs))
}
