// Package gatearray emulates the Amstrad CPC 40010 gate array.
//
// The gate array is ticked at 4 MHz with the CPU pins. It derives the
// 1 MHz CCLK from a 4-phase sequencer, generates the 300 Hz interrupt from
// the CRTC HSYNC, produces the composite SYNC and stretches CPU accesses
// with READY. The CRTC output arrives as a second pin mask.
package gatearray

import (
	"fmt"

	"github.com/valerio/go-chips/chips/bus"
	"github.com/valerio/go-chips/chips/crtc"
)

// Gate array pins on the CPU bus.
const (
	READY = bus.WAIT
	SYNC  = bus.Pins(1) << 41
)

// Layout lists the lines reserved by the gate array on the CPU bus.
var Layout = bus.Layout{
	Family: "gatearray",
	Lines: map[string]bus.Pins{
		"A13": bus.A13, "A14": bus.A14, "A15": bus.A15,
		"D": bus.DataMask, "M1": bus.M1, "MREQ": bus.MREQ, "IORQ": bus.IORQ,
		"RD": bus.RD, "WR": bus.WR, "INT": bus.INT, "READY": READY,
		"SYNC": SYNC,
	},
}

// Config register bits.
const (
	ConfigMode     = 0x03
	ConfigLROMEN   = 1 << 2 // set: lower ROM disabled, RAM visible
	ConfigHROMEN   = 1 << 3 // set: upper ROM disabled, RAM visible
	ConfigIRQReset = 1 << 4 // one-shot, cleared by the next tick
)

// Model is the host system, it selects RAM banking and the palette.
type Model uint8

const (
	CPC6128 Model = iota
	CPC464
	KCCompact
)

func (m Model) String() string {
	switch m {
	case CPC6128:
		return "6128"
	case CPC464:
		return "464"
	case KCCompact:
		return "kcc"
	default:
		return fmt.Sprintf("model(%d)", uint8(m))
	}
}

// BankSwitchFunc re-maps memory after a RAM or ROM configuration change.
type BankSwitchFunc func(ramConfig, romEnable, romSelect uint8)

// Config sets up a gate array.
type Config struct {
	Model      Model
	BankSwitch BankSwitchFunc
}

// Registers are the CPU writable registers.
type Registers struct {
	InkSel uint8 // bit 4 selects the border
	Config uint8
	Border uint8
	Ink    [16]uint8
}

const (
	RegInkSel = 0
	RegConfig = 1
	RegBorder = 2
	RegInk0   = 3
	NumRegs   = RegInk0 + 16
)

// Reg returns a register by index: inksel, config, border, then the 16 inks.
func (r *Registers) Reg(i int) uint8 {
	switch {
	case i == RegInkSel:
		return r.InkSel
	case i == RegConfig:
		return r.Config
	case i == RegBorder:
		return r.Border
	case i >= RegInk0 && i < NumRegs:
		return r.Ink[i-RegInk0]
	}
	panic(fmt.Sprintf("gatearray: register %d out of range", i))
}

// Video is the sync and interrupt generation unit.
type Video struct {
	HSCount  uint8 // 5-bit, counts HSYNCs since the last VSYNC
	IntCount uint8 // 6-bit, counts HSYNCs between interrupts
	ClkCount uint8 // 4-bit, CCLK ticks since HSYNC started
	Mode     uint8 // video mode latched during HSYNC
	Sync     bool
	Intr     bool
}

const (
	hsCountMax = 31
	// intCount wraps when bits 5, 4 and 2 are all set, that is at 52
	intCountWrap = 0x34
)

// GateArray is the chip state.
type GateArray struct {
	Model     Model
	Regs      Registers
	Video     Video
	RAMConfig uint8
	ROMSelect uint8

	// Colors caches the ABGR value of each ink, the border is at index 16.
	Colors [17]uint32

	phase       uint8
	crtcPins    bus.Pins
	colorsDirty bool
	palette     [32]uint32
	bankSwitch  BankSwitchFunc
	Pins        bus.Pins
}

// New initializes a gate array and calls the bank switch callback once so
// memory starts in a defined configuration.
func New(cfg Config) *GateArray {
	if cfg.BankSwitch == nil {
		panic("gatearray: bank switch callback is required")
	}
	ga := &GateArray{
		Model:      cfg.Model,
		bankSwitch: cfg.BankSwitch,
		palette:    Palette(cfg.Model),
	}
	ga.init()
	return ga
}

func (ga *GateArray) init() {
	ga.Regs = Registers{}
	ga.Video = Video{}
	ga.phase = 0
	ga.crtcPins = 0
	ga.Pins = 0
	ga.updateColors()
	ga.bankSwitch(ga.RAMConfig, ga.Regs.Config, ga.ROMSelect)
}

// Reset clears registers, the video unit and the sequencer, then re-runs
// the bank switch callback. RAM configuration and ROM select survive, as on
// the real machine where only the gate array registers are reset.
func (ga *GateArray) Reset() {
	ga.init()
}

// Phase returns the sequencer position (0..3).
func (ga *GateArray) Phase() uint8 {
	return ga.phase
}

// CCLK reports whether the next Tick is on the 1 MHz clock phase. The host
// ticks the CRTC when this is true and passes its pins to Tick.
func (ga *GateArray) CCLK() bool {
	return ga.phase == 1
}

func (ga *GateArray) doBankSwitch() {
	ga.bankSwitch(ga.RAMConfig, ga.Regs.Config, ga.ROMSelect)
}

// IORQ performs a register write. The gate array cannot be read, an IN
// instruction writes the same way an OUT does.
func (ga *GateArray) IORQ(pins bus.Pins) {
	if pins&(bus.M1|bus.IORQ) != bus.IORQ || pins&(bus.RD|bus.WR) == 0 {
		panic(fmt.Sprintf("gatearray: IORQ called outside an I/O cycle: %s", pins))
	}

	if pins&(bus.A14|bus.A15) == bus.A14 {
		data := bus.Data(pins)
		switch data & 0xC0 {
		case 0x00:
			ga.Regs.InkSel = data & 0x1F
		case 0x40:
			if ga.Regs.InkSel&0x10 != 0 {
				ga.Regs.Border = data & 0x1F
			} else {
				ga.Regs.Ink[ga.Regs.InkSel] = data & 0x1F
			}
			ga.colorsDirty = true
		case 0x80:
			romenDirty := (ga.Regs.Config ^ data) & (ConfigLROMEN | ConfigHROMEN)
			ga.Regs.Config = data & 0x1F
			if romenDirty != 0 {
				ga.doBankSwitch()
			}
		case 0xC0:
			if ga.Model == CPC6128 {
				ramDirty := (ga.RAMConfig ^ data) & 7
				ga.RAMConfig = data & 7
				if ramDirty != 0 {
					ga.doBankSwitch()
				}
			}
		}
	}

	// upper ROM select
	if pins&(bus.A13|bus.WR) == bus.WR {
		data := bus.Data(pins)
		dirty := ga.ROMSelect != data
		ga.ROMSelect = data
		if dirty {
			ga.doBankSwitch()
		}
	}
}

func (ga *GateArray) updateColors() {
	for i, ink := range ga.Regs.Ink {
		ga.Colors[i] = ga.palette[ink&0x1F]
	}
	ga.Colors[16] = ga.palette[ga.Regs.Border&0x1F]
	ga.colorsDirty = false
}

// syncIRQ runs the 1 MHz part of the sequencer.
func (ga *GateArray) syncIRQ(crtcPins bus.Pins) {
	v := &ga.Video
	hsFall := bus.FallingEdge(crtcPins, ga.crtcPins, crtc.HS)
	vsRise := bus.RisingEdge(crtcPins, ga.crtcPins, crtc.VS)

	if vsRise {
		v.HSCount = 0
	}
	if hsFall {
		if v.HSCount < hsCountMax {
			v.HSCount++
		}
		prev := v.IntCount
		v.IntCount = (v.IntCount + 1) & 0x3F
		if v.IntCount&intCountWrap == intCountWrap {
			v.IntCount = 0
		}
		// two HSYNCs into VSYNC the counter restarts
		if v.HSCount == 2 {
			v.IntCount = 0
		}
		if prev&0x20 != 0 && v.IntCount&0x20 == 0 {
			v.Intr = true
		}
	}

	if v.ClkCount == 7 {
		v.Mode = ga.Regs.Config & ConfigMode
	}
	if crtcPins&crtc.HS == 0 {
		v.ClkCount = 0
	} else if v.ClkCount < 8 {
		v.ClkCount++
	}

	vSync := v.HSCount < 4
	hSync := v.ClkCount > 2 && v.ClkCount < 7
	v.Sync = hSync != vSync

	ga.crtcPins = crtcPins
}

// Tick runs one 4 MHz sequencer step. crtcPins is the current CRTC output.
// It returns the CPU pins with INT, READY and SYNC updated.
func (ga *GateArray) Tick(pins bus.Pins, crtcPins bus.Pins) bus.Pins {
	if ga.phase == 0 && ga.colorsDirty {
		ga.updateColors()
	}
	if ga.phase == 1 {
		ga.syncIRQ(crtcPins)
	}

	if ga.Regs.Config&ConfigIRQReset != 0 {
		ga.Regs.Config &^= ConfigIRQReset
		ga.Video.IntCount = 0
		ga.Video.Intr = false
	}

	if ga.phase != 0 {
		pins |= READY
	} else {
		pins &^= READY
	}

	if pins&(bus.M1|bus.IORQ) == bus.M1|bus.IORQ {
		ga.phase = 0
		ga.Video.Intr = false
		ga.Video.IntCount &= 0x1F
	} else {
		ga.phase = (ga.phase + 1) & 3
	}

	if ga.Video.Intr {
		pins |= bus.INT
	} else {
		pins &^= bus.INT
	}
	if ga.Video.Sync {
		pins |= SYNC
	} else {
		pins &^= SYNC
	}
	ga.Pins = pins
	return pins
}
