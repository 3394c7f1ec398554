package debug

import (
	"strings"

	"github.com/valerio/go-chips/chips/memory"
)

// MemoryReader provides read-only access to the mapped address space for debug tools.
// This interface decouples debug tools from the specific MMU implementation
type MemoryReader interface {
	// Read reads the CPU visible byte at addr
	Read(addr uint16) uint8

	// ReadLayer reads a byte from one layer, ignoring priority
	ReadLayer(layer int, addr uint16) uint8

	PageKind(layer, page int) memory.Kind

	// VisibleLayer returns the layer the CPU sees at a page, -1 if unmapped
	VisibleLayer(page int) int
}

// MemoryMap is the mapping state of every page in every layer.
type MemoryMap struct {
	Kinds   [memory.NumLayers][memory.NumPages]memory.Kind
	Visible [memory.NumPages]int
}

// ExtractMemoryMap collects the page kinds of all layers plus the CPU visible layer.
func ExtractMemoryMap(r MemoryReader) *MemoryMap {
	m := &MemoryMap{}
	for layer := 0; layer < memory.NumLayers; layer++ {
		for page := 0; page < memory.NumPages; page++ {
			m.Kinds[layer][page] = r.PageKind(layer, page)
		}
	}
	for page := 0; page < memory.NumPages; page++ {
		m.Visible[page] = r.VisibleLayer(page)
	}
	return m
}

// VisibleKind returns what the CPU sees at a page.
func (m *MemoryMap) VisibleKind(page int) memory.Kind {
	layer := m.Visible[page]
	if layer < 0 {
		return memory.Unmapped
	}
	return m.Kinds[layer][page]
}

// KindRune is the single character used for a page in map rows.
func KindRune(k memory.Kind) rune {
	switch k {
	case memory.RAM:
		return 'R'
	case memory.ROM:
		return 'O'
	case memory.RW:
		return 'W'
	default:
		return '.'
	}
}

// Row renders one layer as one character per page.
func (m *MemoryMap) Row(layer int) string {
	var sb strings.Builder
	for page := 0; page < memory.NumPages; page++ {
		sb.WriteRune(KindRune(m.Kinds[layer][page]))
	}
	return sb.String()
}

// VisibleRow renders the CPU view, each page tagged with its layer number.
func (m *MemoryMap) VisibleRow() string {
	var sb strings.Builder
	for page := 0; page < memory.NumPages; page++ {
		if m.Visible[page] < 0 {
			sb.WriteByte('.')
			continue
		}
		sb.WriteByte(byte('0' + m.Visible[page]))
	}
	return sb.String()
}
