package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(size int, value byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = value
	}
	return b
}

func TestUnmappedReadsOpenBus(t *testing.T) {
	m := New()
	m.MapRAM(0, 0x0000, AddrRange, make([]byte, AddrRange))
	m.UnmapAll()

	for a := 0; a < AddrRange; a++ {
		require.Equal(t, byte(OpenBus), m.Read(uint16(a)), "addr 0x%04X", a)
	}

	// writes to unmapped memory go nowhere
	m.Write(0x1234, 0x00)
	assert.Equal(t, byte(OpenBus), m.Read(0x1234))
	assert.Equal(t, -1, m.VisibleLayer(0x1234>>PageShift))
}

func TestMapRAM(t *testing.T) {
	tests := []struct {
		name  string
		layer int
		addr  uint16
		size  int
	}{
		{"first page", 0, 0x0000, PageSize},
		{"bank at 0x4000", 1, 0x4000, 0x4000},
		{"top of memory", 2, 0xFC00, PageSize},
		{"whole address space", 3, 0x0000, AddrRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			ram := make([]byte, tt.size)
			m.MapRAM(tt.layer, tt.addr, tt.size, ram)

			for off := 0; off < tt.size; off += 97 {
				a := tt.addr + uint16(off)
				m.Write(a, byte(off))
				assert.Equal(t, byte(off), m.Read(a))
				assert.Equal(t, byte(off), ram[off], "write lands in caller storage")
			}
		})
	}
}

func TestLowerLayerWritesInvisible(t *testing.T) {
	m := New()
	top := make([]byte, 0x4000)
	below := make([]byte, 0x4000)
	m.MapRAM(0, 0x8000, 0x4000, top)
	m.MapRAM(1, 0x8000, 0x4000, below)

	m.Write(0x8000, 0x11)
	m.WriteLayer(1, 0x8000, 0x22)

	assert.Equal(t, byte(0x11), m.Read(0x8000))
	assert.Equal(t, byte(0x22), m.ReadLayer(1, 0x8000))
	assert.Equal(t, byte(0x11), m.ReadLayer(0, 0x8000))
	assert.Equal(t, byte(0x00), below[1])
}

func TestMapROM(t *testing.T) {
	m := New()
	rom := filled(0x4000, 0xA5)
	m.MapROM(0, 0xC000, 0x4000, rom)

	for a := 0xC000; a < 0x10000; a += 251 {
		m.Write(uint16(a), 0x00)
		assert.Equal(t, byte(0xA5), m.Read(uint16(a)))
	}
	assert.Equal(t, byte(0xA5), rom[0], "ROM storage never mutated")
	assert.Equal(t, ROM, m.PageKind(0, 0xC000>>PageShift))

	m.WriteLayer(0, 0xC000, 0x00)
	assert.Equal(t, byte(0xA5), m.Read(0xC000))
}

func TestMapRW(t *testing.T) {
	m := New()
	rom := filled(0x4000, 0xEE)
	ram := make([]byte, 0x4000)
	m.MapRW(0, 0x0000, 0x4000, rom, ram)

	m.Write(0x0010, 0x42)
	assert.Equal(t, byte(0xEE), m.Read(0x0010), "reads see ROM")
	assert.Equal(t, byte(0x42), ram[0x10], "writes land in RAM")
	assert.Equal(t, RW, m.PageKind(0, 0))
}

func TestLayerPriority(t *testing.T) {
	m := New()
	ram := make([]byte, 0x4000)
	rom := filled(0x4000, 0x77)
	m.MapRAM(0, 0x0000, 0x4000, ram)
	m.MapROM(1, 0x0000, 0x4000, rom)

	t.Run("ram wins while mapped", func(t *testing.T) {
		m.Write(0x0100, 0x12)
		assert.Equal(t, byte(0x12), m.Read(0x0100))
		assert.Equal(t, 0, m.VisibleLayer(0))
	})

	t.Run("rom after unmapping layer 0", func(t *testing.T) {
		m.UnmapLayer(0)
		assert.Equal(t, byte(0x77), m.Read(0x0100))
		m.Write(0x0100, 0x34)
		assert.Equal(t, byte(0x77), m.Read(0x0100))
		assert.Equal(t, 1, m.VisibleLayer(0))
		assert.Equal(t, byte(OpenBus), m.ReadLayer(0, 0x0100))
	})

	t.Run("mapping again restores ram", func(t *testing.T) {
		m.MapRAM(0, 0x0000, 0x4000, ram)
		assert.Equal(t, byte(0x12), m.Read(0x0100))
	})
}

func TestWrapAround(t *testing.T) {
	m := New()
	ram := make([]byte, 0x2000)
	m.MapRAM(0, 0xF000, 0x2000, ram)

	m.Write(0x0000, 0x5A)
	assert.Equal(t, byte(0x5A), ram[0x1000])
	m.Write(0xF000, 0xA5)
	assert.Equal(t, byte(0xA5), ram[0])
}

func TestWideAccess(t *testing.T) {
	m := New()
	m.MapRAM(0, 0x0000, AddrRange, make([]byte, AddrRange))

	m.Write16(0x1000, 0xBEEF)
	assert.Equal(t, byte(0xEF), m.Read(0x1000))
	assert.Equal(t, byte(0xBE), m.Read(0x1001))
	assert.Equal(t, uint16(0xBEEF), m.Read16(0x1000))

	m.Write16(0xFFFF, 0x1234)
	assert.Equal(t, byte(0x12), m.Read(0x0000), "high byte wraps")

	m.WriteRange(0x2000, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, m.ReadView(0x2000)[:3])
	assert.Len(t, m.ReadView(0x23FF), 1)
}

func TestReadViewUnmapped(t *testing.T) {
	m := New()
	view := m.ReadView(0x1234)
	require.Len(t, view, PageSize-0x234)
	assert.Equal(t, byte(OpenBus), view[0])

	view[0] = 0
	assert.Equal(t, byte(OpenBus), m.Read(0x1234))
	assert.Equal(t, byte(OpenBus), m.Read(0x8234))
	assert.Equal(t, byte(OpenBus), m.ReadView(0x8234)[0])
}

func TestMappingContract(t *testing.T) {
	m := New()
	ram := make([]byte, AddrRange)

	assert.Panics(t, func() { m.MapRAM(0, 0x0001, PageSize, ram) }, "misaligned address")
	assert.Panics(t, func() { m.MapRAM(0, 0x0000, 100, ram) }, "misaligned size")
	assert.Panics(t, func() { m.MapRAM(0, 0x0000, AddrRange+PageSize, make([]byte, 2*AddrRange)) }, "oversized")
	assert.Panics(t, func() { m.MapRAM(NumLayers, 0x0000, PageSize, ram) }, "bad layer")
	assert.Panics(t, func() { m.MapROM(0, 0x0000, 0x4000, make([]byte, 0x3FFF)) }, "short storage")
	assert.Panics(t, func() { m.MapRW(0, 0x0000, PageSize, ram, nil) }, "missing write storage")
	assert.Panics(t, func() { m.UnmapLayer(-1) })
}

func TestInitAfterMapping(t *testing.T) {
	m := New()
	m.MapRAM(2, 0x4000, 0x4000, make([]byte, 0x4000))
	m.Init()

	fresh := New()
	for page := 0; page < NumPages; page++ {
		assert.Equal(t, fresh.VisibleLayer(page), m.VisibleLayer(page))
		for layer := 0; layer < NumLayers; layer++ {
			assert.Equal(t, Unmapped, m.PageKind(layer, page))
		}
	}
	assert.Equal(t, byte(OpenBus), m.Read(0x4000))
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "os.rom")
	require.NoError(t, os.WriteFile(good, filled(0x4000, 0x01), 0o644))

	data, err := LoadImage(good, 0x4000)
	require.NoError(t, err)
	assert.Len(t, data, 0x4000)

	_, err = LoadImage(good, 0x8000)
	assert.ErrorContains(t, err, "expected 32768")

	_, err = LoadImage(filepath.Join(dir, "missing.rom"), 0x4000)
	assert.ErrorContains(t, err, "reading image")
}

func BenchmarkRead(b *testing.B) {
	m := New()
	m.MapRAM(0, 0x0000, AddrRange, make([]byte, AddrRange))
	var sum byte
	for i := 0; i < b.N; i++ {
		sum += m.Read(uint16(i))
	}
	_ = sum
}
