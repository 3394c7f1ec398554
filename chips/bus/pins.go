// Package bus defines the 64-bit pin mask that carries one tick of
// electrical state between chips.
//
// Every chip exposes a tick function that takes the current pin state and
// returns the new one. Chips never hold references to each other; the host
// passes the same value from chip to chip and that is the only way they
// interact.
package bus

import (
	"fmt"
	"strings"

	"github.com/valerio/go-chips/chips/bit"
)

// Pins is the state of all bus lines for one tick. A set bit means the line
// is active, regardless of the physical polarity of the pin.
type Pins uint64

// Shared CPU lines. All Z80-family chips agree on these positions.
const (
	A0 Pins = 1 << iota
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	A8
	A9
	A10
	A11
	A12
	A13
	A14
	A15
	D0
	D1
	D2
	D3
	D4
	D5
	D6
	D7
)

const (
	M1   Pins = 1 << 24
	MREQ Pins = 1 << 25
	IORQ Pins = 1 << 26
	RD   Pins = 1 << 27
	WR   Pins = 1 << 28
	HALT Pins = 1 << 29
	INT  Pins = 1 << 30
	RES  Pins = 1 << 31
	NMI  Pins = 1 << 32
	WAIT Pins = 1 << 33
	RFSH Pins = 1 << 34

	// IEIO combines the IEI and IEO pins of the interrupt daisy chain.
	IEIO Pins = 1 << 37
	// RETI is set by the CPU while it decodes a RETI instruction.
	RETI Pins = 1 << 38
)

// ChipBase is the first bit available for chip-family specific lines.
const ChipBase = 40

const (
	AddrMask Pins = 0xFFFF
	DataMask Pins = 0xFF << 16
	CtrlMask Pins = M1 | MREQ | IORQ | RD | WR | HALT | INT | RES | NMI | WAIT | RFSH
	// CPUMask covers every line shared by all chip families.
	CPUMask Pins = AddrMask | DataMask | CtrlMask | IEIO | RETI
)

// Range is a contiguous group of lines, such as the address or data bus.
type Range struct {
	Shift uint
	Width uint
}

var (
	AddrRange = Range{Shift: 0, Width: 16}
	DataRange = Range{Shift: 16, Width: 8}
)

// Mask returns the lines covered by the range.
func (r Range) Mask() Pins {
	return bit.Mask[Pins](r.Width) << r.Shift
}

// Get extracts the value of a range.
func Get(p Pins, r Range) uint64 {
	return uint64(bit.Field(p, r.Shift, r.Width))
}

// Set returns p with the range replaced by v. Bits of v beyond the range
// width are dropped.
func Set(p Pins, r Range, v uint64) Pins {
	return bit.WithField(p, r.Shift, r.Width, Pins(v))
}

// Addr returns the 16-bit address lines.
func Addr(p Pins) uint16 {
	return uint16(p)
}

// SetAddr returns p with the address lines replaced.
func SetAddr(p Pins, addr uint16) Pins {
	return (p &^ AddrMask) | Pins(addr)
}

// Data returns the 8-bit data lines.
func Data(p Pins) uint8 {
	return uint8(p >> 16)
}

// SetData returns p with the data lines replaced.
func SetData(p Pins, data uint8) Pins {
	return (p &^ DataMask) | Pins(data)<<16
}

// Make builds a pin mask from control lines, an address and a data byte.
func Make(ctrl Pins, addr uint16, data uint8) Pins {
	return ctrl | Pins(data)<<16 | Pins(addr)
}

// FallingEdge reports whether any line in mask went inactive between prev and cur.
func FallingEdge(cur, prev, mask Pins) bool {
	return bit.FallingEdge(cur, prev, mask)
}

// RisingEdge reports whether any line in mask went active between prev and cur.
func RisingEdge(cur, prev, mask Pins) bool {
	return bit.RisingEdge(cur, prev, mask)
}

var ctrlNames = []struct {
	pin  Pins
	name string
}{
	{M1, "M1"}, {MREQ, "MREQ"}, {IORQ, "IORQ"}, {RD, "RD"}, {WR, "WR"},
	{HALT, "HALT"}, {INT, "INT"}, {RES, "RES"}, {NMI, "NMI"}, {WAIT, "WAIT"},
	{RFSH, "RFSH"}, {IEIO, "IEIO"}, {RETI, "RETI"},
}

func (p Pins) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A=%04X D=%02X", Addr(p), Data(p))
	for _, c := range ctrlNames {
		if p&c.pin != 0 {
			sb.WriteByte(' ')
			sb.WriteString(c.name)
		}
	}
	if chip := p >> ChipBase; chip != 0 {
		fmt.Fprintf(&sb, " X=%06X", uint64(chip))
	}
	return sb.String()
}
