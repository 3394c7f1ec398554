package memory

import (
	"fmt"
)

const (
	PageShift = 10
	PageSize  = 1 << PageShift
	PageMask  = PageSize - 1
	AddrRange = 1 << 16
	AddrMask  = AddrRange - 1
	NumPages  = AddrRange / PageSize
	NumLayers = 4

	// OpenBus is the value read from addresses no layer maps.
	OpenBus = 0xFF
)

// Kind tags what a page view is mapped to.
type Kind uint8

const (
	Unmapped Kind = iota
	RAM
	ROM
	// RW pages read from one buffer and write to another (RAM behind ROM).
	RW
)

func (k Kind) String() string {
	switch k {
	case Unmapped:
		return "unmapped"
	case RAM:
		return "ram"
	case ROM:
		return "rom"
	case RW:
		return "rw"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Page is one 1 KB granule of the address space. The read and write views
// are borrowed from the caller and are exactly PageSize bytes long when the
// page is mapped.
type Page struct {
	Kind  Kind
	read  []byte
	write []byte
}

// Mapped reports whether the page carries a mapping.
func (p Page) Mapped() bool {
	return p.Kind != Unmapped
}

// MMU resolves 16-bit addresses to caller owned storage across four
// priority layers. Layer 0 has the highest priority.
type MMU struct {
	layers    [NumLayers][NumPages]Page
	pageTable [NumPages]Page
	visible   [NumPages]int8

	unmapped [PageSize]byte
	junk     [PageSize]byte
}

// New returns an initialized MMU with nothing mapped.
func New() *MMU {
	m := &MMU{}
	m.Init()
	return m
}

// Init clears every layer and points the whole address space at the open
// bus page.
func (m *MMU) Init() {
	*m = MMU{}
	for i := range m.unmapped {
		m.unmapped[i] = OpenBus
	}
	m.UnmapAll()
}

// updatePage recomputes the CPU visible mapping of a single page. This is
// the only place where layer priority is evaluated.
func (m *MMU) updatePage(page int) {
	for layer := 0; layer < NumLayers; layer++ {
		if p := m.layers[layer][page]; p.Mapped() {
			m.pageTable[page] = p
			m.visible[page] = int8(layer)
			return
		}
	}
	m.pageTable[page] = Page{Kind: Unmapped, read: m.unmapped[:], write: m.junk[:]}
	m.visible[page] = -1
}

func checkLayer(layer int) {
	if layer < 0 || layer >= NumLayers {
		panic(fmt.Sprintf("memory: layer %d out of range", layer))
	}
}

func (m *MMU) mapPages(layer int, addr uint16, size int, kind Kind, read, write []byte) {
	checkLayer(layer)
	if addr&PageMask != 0 {
		panic(fmt.Sprintf("memory: address 0x%04X is not page aligned", addr))
	}
	if size&PageMask != 0 || size < 0 || size > AddrRange {
		panic(fmt.Sprintf("memory: invalid mapping size %d", size))
	}
	if len(read) < size {
		panic(fmt.Sprintf("memory: read storage of %d bytes too small for %d byte mapping", len(read), size))
	}
	if write != nil && len(write) < size {
		panic(fmt.Sprintf("memory: write storage of %d bytes too small for %d byte mapping", len(write), size))
	}

	for offset := 0; offset < size; offset += PageSize {
		// ranges past 0xFFFF wrap around
		page := ((int(addr) + offset) & AddrMask) >> PageShift
		p := Page{Kind: kind, read: read[offset : offset+PageSize : offset+PageSize]}
		if write != nil {
			p.write = write[offset : offset+PageSize : offset+PageSize]
		} else {
			p.write = m.junk[:]
		}
		m.layers[layer][page] = p
		m.updatePage(page)
	}
}

// MapRAM maps storage for reading and writing.
func (m *MMU) MapRAM(layer int, addr uint16, size int, storage []byte) {
	m.mapPages(layer, addr, size, RAM, storage, storage)
}

// MapROM maps storage read-only, writes are discarded.
func (m *MMU) MapROM(layer int, addr uint16, size int, storage []byte) {
	m.mapPages(layer, addr, size, ROM, storage, nil)
}

// MapRW maps separate read and write storage, used for RAM behind ROM.
func (m *MMU) MapRW(layer int, addr uint16, size int, read, write []byte) {
	if write == nil {
		panic("memory: MapRW requires write storage")
	}
	m.mapPages(layer, addr, size, RW, read, write)
}

// UnmapLayer removes every mapping of a layer.
func (m *MMU) UnmapLayer(layer int) {
	checkLayer(layer)
	for page := 0; page < NumPages; page++ {
		m.layers[layer][page] = Page{}
		m.updatePage(page)
	}
}

// UnmapAll removes every mapping of every layer.
func (m *MMU) UnmapAll() {
	for layer := range m.layers {
		for page := range m.layers[layer] {
			m.layers[layer][page] = Page{}
		}
	}
	for page := 0; page < NumPages; page++ {
		m.updatePage(page)
	}
}

func (m *MMU) Read(addr uint16) byte {
	return m.pageTable[addr>>PageShift].read[addr&PageMask]
}

func (m *MMU) Write(addr uint16, value byte) {
	m.pageTable[addr>>PageShift].write[addr&PageMask] = value
}

// Read16 reads a little endian 16-bit value.
func (m *MMU) Read16(addr uint16) uint16 {
	l := m.Read(addr)
	h := m.Read(addr + 1)
	return uint16(h)<<8 | uint16(l)
}

// Write16 writes a little endian 16-bit value.
func (m *MMU) Write16(addr uint16, value uint16) {
	m.Write(addr, uint8(value))
	m.Write(addr+1, uint8(value>>8))
}

// WriteRange copies src into memory starting at addr, wrapping at 0xFFFF.
func (m *MMU) WriteRange(addr uint16, src []byte) {
	for _, b := range src {
		m.Write(addr, b)
		addr++
	}
}

// ReadView returns the CPU visible read storage from addr to the end of
// its page. Unmapped pages get a fresh slice of OpenBus bytes, the shared
// open bus page is never handed out.
func (m *MMU) ReadView(addr uint16) []byte {
	page := addr >> PageShift
	if m.visible[page] < 0 {
		view := make([]byte, PageSize-int(addr&PageMask))
		for i := range view {
			view[i] = OpenBus
		}
		return view
	}
	return m.pageTable[page].read[addr&PageMask:]
}

// ReadLayer reads from a specific layer, ignoring priority.
func (m *MMU) ReadLayer(layer int, addr uint16) byte {
	checkLayer(layer)
	p := m.layers[layer][addr>>PageShift]
	if !p.Mapped() {
		return OpenBus
	}
	return p.read[addr&PageMask]
}

// WriteLayer writes to a specific layer, ignoring priority. Writes to
// unmapped pages are dropped.
func (m *MMU) WriteLayer(layer int, addr uint16, value byte) {
	checkLayer(layer)
	p := m.layers[layer][addr>>PageShift]
	if !p.Mapped() {
		return
	}
	p.write[addr&PageMask] = value
}

// PageKind returns the mapping kind of a page in a layer.
func (m *MMU) PageKind(layer, page int) Kind {
	checkLayer(layer)
	return m.layers[layer][page].Kind
}

// VisibleLayer returns the layer the CPU sees at a page, or -1 if none.
func (m *MMU) VisibleLayer(page int) int {
	return int(m.visible[page])
}
