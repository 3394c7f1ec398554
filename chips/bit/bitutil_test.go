package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestSetClear(t *testing.T) {
	var v uint8
	for i := uint(0); i < 8; i++ {
		v = Set(i, v)
		assert.True(t, IsSet(i, v))
	}
	assert.Equal(t, uint8(0xFF), v)

	v = Clear(3, v)
	assert.False(t, IsSet(3, v))
	assert.Equal(t, uint8(0xF7), v)

	assert.Equal(t, uint8(0xFF), Toggle(3, v))
	assert.True(t, IsSet(63, Set(63, uint64(0))))
}

func TestField(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		shift uint
		width uint
		want  uint64
	}{
		{"middle bits", 0b11010110, 4, 3, 0b101},
		{"address range", 0x00AB_1234, 0, 16, 0x1234},
		{"data range", 0x00AB_1234, 16, 8, 0xAB},
		{"full width", 0xFFFF_FFFF_FFFF_FFFF, 0, 64, 0xFFFF_FFFF_FFFF_FFFF},
		{"top bit", 1 << 63, 63, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Field(tt.value, tt.shift, tt.width))
		})
	}
}

func TestWithField(t *testing.T) {
	v := WithField(uint64(0xFFFF_FFFF), 16, 8, 0x12)
	assert.Equal(t, uint64(0xFF12_FFFF), v)

	// excess bits of the inserted value do not leak into neighbours
	v = WithField(uint64(0), 4, 4, 0xFF)
	assert.Equal(t, uint64(0xF0), v)
}

func TestEdges(t *testing.T) {
	tests := []struct {
		name    string
		prev    uint8
		cur     uint8
		rising  bool
		falling bool
	}{
		{"low stays low", 0, 0, false, false},
		{"low to high", 0, 1, true, false},
		{"high to low", 1, 0, false, true},
		{"high stays high", 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rising, RisingEdge(tt.cur, tt.prev, 1))
			assert.Equal(t, tt.falling, FallingEdge(tt.cur, tt.prev, 1))
		})
	}

	t.Run("unmasked bits are ignored", func(t *testing.T) {
		assert.False(t, RisingEdge(uint8(0x02), 0x00, 0x01))
		assert.False(t, FallingEdge(uint8(0x00), 0x02, 0x01))
	})
}
