// Package crtc emulates the Motorola MC6845 CRT controller and its UMC
// variants.
//
// The CRTC runs on its own bus value: its MA0..MA13 outputs share the
// address line positions and its chip lines overlap the CTC. A host feeds
// its output to the gate array as a second pin mask.
package crtc

import (
	"fmt"

	"github.com/valerio/go-chips/chips/bus"
)

// CRTC pins.
const (
	CS    bus.Pins = 1 << 40 // chip select
	RS    bus.Pins = 1 << 41 // active: data register, inactive: address register
	RW    bus.Pins = 1 << 42 // active: read, inactive: write
	LPSTB bus.Pins = 1 << 43 // light pen strobe

	DE bus.Pins = 1 << 44 // display enable
	VS bus.Pins = 1 << 45 // vsync active
	HS bus.Pins = 1 << 46 // hsync active
)

var (
	MARange = bus.Range{Shift: 0, Width: 14}
	RARange = bus.Range{Shift: 48, Width: 5}
)

// Layout lists the lines reserved by the CRTC.
var Layout = bus.Layout{
	Family: "crtc",
	Lines: map[string]bus.Pins{
		"MA": MARange.Mask(), "CS": CS, "RS": RS, "RW": RW, "LPSTB": LPSTB,
		"DE": DE, "VS": VS, "HS": HS, "RA": RARange.Mask(),
	},
}

// Type selects the chip variant.
type Type uint8

const (
	UM6845 Type = iota
	UM6845R
	MC6845
	numTypes
)

func (t Type) String() string {
	switch t {
	case UM6845:
		return "UM6845"
	case UM6845R:
		return "UM6845R"
	case MC6845:
		return "MC6845"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Register indices.
const (
	RegHTotal = iota
	RegHDisplayed
	RegHSyncPos
	RegSyncWidths
	RegVTotal
	RegVTotalAdjust
	RegVDisplayed
	RegVSyncPos
	RegInterlaceMode
	RegMaxScanlineAddr
	RegCursorStart
	RegCursorEnd
	RegStartAddrHi
	RegStartAddrLo
	RegCursorHi
	RegCursorLo
	RegLightpenHi
	RegLightpenLo
	NumRegs
)

// Registers is the CRTC register file.
type Registers struct {
	HTotal          uint8 // horizontal total (minus 1)
	HDisplayed      uint8
	HSyncPos        uint8
	SyncWidths      uint8 // low nibble hsync width, high nibble vsync width on UM6845
	VTotal          uint8 // vertical total in character rows (minus 1)
	VTotalAdjust    uint8 // end of frame scanline adjust
	VDisplayed      uint8
	VSyncPos        uint8
	InterlaceMode   uint8
	MaxScanlineAddr uint8 // scanlines per row (minus 1)
	CursorStart     uint8
	CursorEnd       uint8
	StartAddrHi     uint8
	StartAddrLo     uint8
	CursorHi        uint8
	CursorLo        uint8
	LightpenHi      uint8
	LightpenLo      uint8
}

func (r *Registers) field(i int) *uint8 {
	switch i {
	case RegHTotal:
		return &r.HTotal
	case RegHDisplayed:
		return &r.HDisplayed
	case RegHSyncPos:
		return &r.HSyncPos
	case RegSyncWidths:
		return &r.SyncWidths
	case RegVTotal:
		return &r.VTotal
	case RegVTotalAdjust:
		return &r.VTotalAdjust
	case RegVDisplayed:
		return &r.VDisplayed
	case RegVSyncPos:
		return &r.VSyncPos
	case RegInterlaceMode:
		return &r.InterlaceMode
	case RegMaxScanlineAddr:
		return &r.MaxScanlineAddr
	case RegCursorStart:
		return &r.CursorStart
	case RegCursorEnd:
		return &r.CursorEnd
	case RegStartAddrHi:
		return &r.StartAddrHi
	case RegStartAddrLo:
		return &r.StartAddrLo
	case RegCursorHi:
		return &r.CursorHi
	case RegCursorLo:
		return &r.CursorLo
	case RegLightpenHi:
		return &r.LightpenHi
	case RegLightpenLo:
		return &r.LightpenLo
	}
	return nil
}

// Reg returns register i, unused register numbers read as 0.
func (r *Registers) Reg(i int) uint8 {
	if f := r.field(i); f != nil {
		return *f
	}
	return 0
}

// SetReg stores register i, writes to unused register numbers are dropped.
func (r *Registers) SetReg(i int, v uint8) {
	if f := r.field(i); f != nil {
		*f = v
	}
}

// some registers are not full width
var regMask = [32]uint8{
	0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0x1F, 0x7F, 0x7F,
	0xF3, 0x1F, 0x7F, 0x1F, 0x3F, 0xFF, 0x3F, 0xFF,
	0x3F, 0xFF,
}

const (
	accessWrite = 1 << 0
	accessRead  = 1 << 1
)

var regAccess = [numTypes][32]uint8{
	UM6845:  {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 3, 3, 3, 2, 2},
	UM6845R: {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 3, 2, 2},
	MC6845:  {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 3, 2, 2},
}

// CRTC is the controller state.
type CRTC struct {
	Type Type
	Sel  uint8
	Registers

	MA          uint16 // memory address
	MARowStart  uint16
	HCtr        uint8
	HSyncCtr    uint8
	VSyncCtr    uint8
	RowCtr      uint8
	ScanlineCtr uint8
	InAdj       bool
	HS          bool
	VS          bool
	HDE         bool
	VDE         bool

	Pins bus.Pins
}

// New returns a cleared CRTC of the given type.
func New(t Type) *CRTC {
	if t >= numTypes {
		panic(fmt.Sprintf("crtc: unknown type %d", t))
	}
	return &CRTC{Type: t}
}

// Reset clears every counter, registers keep their values.
func (c *CRTC) Reset() {
	c.MA = 0
	c.MARowStart = 0
	c.HCtr = 0
	c.HSyncCtr = 0
	c.VSyncCtr = 0
	c.RowCtr = 0
	c.ScanlineCtr = 0
	c.InAdj = false
	c.HS = false
	c.VS = false
	c.HDE = false
	c.VDE = false
}

// IORQ performs a register access when CS is active.
func (c *CRTC) IORQ(pins bus.Pins) bus.Pins {
	if pins&CS == 0 {
		return pins
	}
	if pins&RS != 0 {
		i := int(c.Sel & 0x1F)
		if pins&RW != 0 {
			var val uint8
			if regAccess[c.Type][i]&accessRead != 0 {
				val = c.Reg(i) & regMask[i]
			}
			return bus.SetData(pins, val)
		}
		if regAccess[c.Type][i]&accessWrite != 0 {
			c.SetReg(i, bus.Data(pins)&regMask[i])
		}
		return pins
	}
	if pins&RW != 0 {
		// status register, bit 5 is set during vertical blanking
		var val uint8
		if !c.VDE {
			val = 1 << 5
		}
		return bus.SetData(pins, val)
	}
	c.Sel = bus.Data(pins) & 0x1F
	return pins
}

// Tick advances the controller by one character clock and returns the
// MA, RA, HS, VS and DE outputs.
func (c *CRTC) Tick() bus.Pins {
	if c.HCtr == c.HTotal {
		c.HCtr = 0
	} else {
		c.HCtr++
		c.MA = (c.MA + 1) & 0x3FFF
	}

	if c.HCtr == 0 {
		c.HDE = true
	}
	if c.HCtr == c.HDisplayed {
		c.HDE = false
	}

	if c.HCtr == c.HSyncPos {
		c.HS = true
		c.HSyncCtr = 0
	} else if c.HS {
		// a programmed width of 0 behaves as 16
		c.HSyncCtr = (c.HSyncCtr + 1) & 0x0F
		if c.HSyncCtr == c.SyncWidths&0x0F {
			c.HS = false
		}
	}

	if c.HCtr == 0 {
		c.newScanline()
	}

	out := bus.Set(bus.Pins(c.MA), RARange, uint64(c.ScanlineCtr&0x1F))
	if c.HS {
		out |= HS
	}
	if c.VS {
		out |= VS
	}
	if c.HDE && c.VDE {
		out |= DE
	}
	c.Pins = out
	return out
}

func (c *CRTC) newScanline() {
	needAdj := c.VTotalAdjust != 0
	maxScanline := c.MaxScanlineAddr
	if c.InAdj {
		maxScanline = (c.VTotalAdjust - 1) & 0x1F
	}

	switch {
	case c.ScanlineCtr == maxScanline && ((!needAdj && c.RowCtr == c.VTotal) || c.InAdj):
		// new frame
		c.ScanlineCtr = 0
		c.MARowStart = uint16(c.StartAddrHi)<<8 | uint16(c.StartAddrLo)
		c.RowCtr = 0
		c.InAdj = false
	case !c.InAdj && c.ScanlineCtr == maxScanline:
		// new character row
		c.ScanlineCtr = 0
		c.MARowStart += uint16(c.HDisplayed)
		c.RowCtr = (c.RowCtr + 1) & 0x7F
		if c.RowCtr == c.VTotal && needAdj {
			c.InAdj = true
		}
	default:
		c.ScanlineCtr = (c.ScanlineCtr + 1) & 0x1F
	}

	c.MA = c.MARowStart

	if c.RowCtr == 0 {
		c.VDE = true
	}
	if c.RowCtr == c.VDisplayed {
		c.VDE = false
	}

	if c.RowCtr == c.VSyncPos || c.VS {
		c.VS = true
		c.VSyncCtr = (c.VSyncCtr + 1) & 0x0F
	} else {
		c.VSyncCtr = 0
	}
	// UM6845R and MC6845 have a fixed vsync of 16 lines
	var vSyncWidth uint8
	if c.Type == UM6845 {
		vSyncWidth = (c.SyncWidths >> 4) & 0x0F
	}
	if c.VSyncCtr == vSyncWidth && c.VS {
		c.VS = false
	}
}

// Program writes a full register set through the register interface.
func (c *CRTC) Program(values []uint8) {
	for i, v := range values {
		c.IORQ(bus.SetData(CS, uint8(i)))
		c.IORQ(bus.SetData(CS|RS, v))
	}
}
