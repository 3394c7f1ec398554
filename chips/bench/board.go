// Package bench wires the chips into a small test board: 128 KB of banked
// RAM, three ROMs behind the MMU, the gate array with a CRTC, and a CTC
// and PIO on the interrupt daisy chain.
//
// I/O ports, decoded on the upper address byte:
//
//	0x7Fxx  gate array (A15 low, A14 high)
//	0xBCxx  CRTC select, 0xBD write, 0xBE status, 0xBF read (A14 low)
//	0xDFxx  upper ROM select (A13 low)
//	0xF8xx  CTC, channel in A1..A0
//	0xF9xx  PIO, A0 selects port B, A1 control
package bench

import (
	"log/slog"

	"github.com/valerio/go-chips/chips/bus"
	"github.com/valerio/go-chips/chips/crtc"
	"github.com/valerio/go-chips/chips/ctc"
	"github.com/valerio/go-chips/chips/daisy"
	"github.com/valerio/go-chips/chips/debug"
	"github.com/valerio/go-chips/chips/gatearray"
	"github.com/valerio/go-chips/chips/memory"
	"github.com/valerio/go-chips/chips/pio"
)

const (
	Freq          = 4000000
	FrameRate     = 50
	TicksPerFrame = Freq / FrameRate

	BankSize = 0x4000
	NumBanks = 8
	ROMSize  = 0x4000

	// upper ROM number mapping the extension ROM on a 6128
	ExtROMSelect = 7

	portCTC = 0xF8
	portPIO = 0xF9

	maxVectors = 16
)

// CRTCDefaults is the standard 50 Hz PAL programming: 64 characters per line,
// 39 rows of 8 lines, 312 lines per frame.
var CRTCDefaults = []uint8{63, 40, 46, 0x8E, 38, 0, 25, 30, 0, 7, 0, 0, 0x30, 0x00}

// 6128 RAM configurations, the bank mapped at 0x0000, 0x4000, 0x8000, 0xC000.
var ramConfigs = [8][4]int{
	{0, 1, 2, 3}, {0, 1, 2, 7}, {4, 5, 6, 7}, {0, 3, 2, 7},
	{0, 4, 2, 3}, {0, 5, 2, 3}, {0, 6, 2, 3}, {0, 7, 2, 3},
}

// BusValues lists the layouts sharing each bus value on the board. The CPU
// value carries the gate array lines, the CTC and PIO each get a copy of
// the CPU lines with their own lines on top, and the CRTC runs on its own.
// Chip lines above bus.ChipBase overlap between families, which is why they
// are split this way.
var BusValues = map[string][]bus.Layout{
	"cpu":  {bus.CPULayout, gatearray.Layout},
	"ctc":  {bus.CPULayout, ctc.Layout},
	"pio":  {bus.CPULayout, pio.Layout},
	"crtc": {crtc.Layout},
}

// Board owns the memory and every chip.
type Board struct {
	Model gatearray.Model
	RAM   [NumBanks][BankSize]byte
	OS    []byte
	BASIC []byte
	Ext   []byte

	MMU  *memory.MMU
	GA   *gatearray.GateArray
	CRTC *crtc.CRTC
	CTC  *ctc.CTC
	PIO  *pio.PIO

	Pins     bus.Pins
	CRTCPins bus.Pins

	Ticks      uint64
	Frames     uint64
	Interrupts uint64
	Vectors    []uint8

	cpu    CPU
	logger *slog.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithModel selects the gate array model, the default is a 6128.
func WithModel(m gatearray.Model) Option { return func(b *Board) { b.Model = m } }

// WithROMs sets the lower, upper and extension ROM images. A nil image is
// replaced by an empty ROM.
func WithROMs(lower, upper, ext []byte) Option {
	return func(b *Board) {
		b.OS, b.BASIC, b.Ext = lower, upper, ext
	}
}

// WithCPU replaces the default HostCPU.
func WithCPU(cpu CPU) Option { return func(b *Board) { b.cpu = cpu } }

func WithLogger(l *slog.Logger) Option { return func(b *Board) { b.logger = l } }

// New builds a board in its power-on state.
func New(opts ...Option) *Board {
	b := &Board{
		Model:  gatearray.CPC6128,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cpu == nil {
		b.cpu = NewHostCPU(64)
	}
	b.OS = romOrEmpty(b.OS)
	b.BASIC = romOrEmpty(b.BASIC)
	b.Ext = romOrEmpty(b.Ext)

	b.MMU = memory.New()
	b.CRTC = crtc.New(crtc.UM6845R)
	b.CTC = ctc.New()
	b.PIO = pio.New()
	b.GA = gatearray.New(gatearray.Config{Model: b.Model, BankSwitch: b.bankSwitch})
	b.CRTC.Program(CRTCDefaults)

	b.logger.Debug("Board created", "model", b.Model)
	return b
}

func romOrEmpty(rom []byte) []byte {
	if len(rom) == ROMSize {
		return rom
	}
	out := make([]byte, ROMSize)
	copy(out, rom)
	return out
}

// CPU returns the bus master.
func (b *Board) CPU() CPU {
	return b.cpu
}

func (b *Board) bankSwitch(ramConfig, romEnable, romSelect uint8) {
	cfg := 0
	if b.Model == gatearray.CPC6128 {
		cfg = int(ramConfig & 7)
	}
	banks := ramConfigs[cfg]

	if romEnable&gatearray.ConfigLROMEN != 0 {
		b.MMU.MapRAM(0, 0x0000, BankSize, b.RAM[banks[0]][:])
	} else {
		b.MMU.MapRW(0, 0x0000, BankSize, b.OS, b.RAM[banks[0]][:])
	}
	b.MMU.MapRAM(0, 0x4000, BankSize, b.RAM[banks[1]][:])
	b.MMU.MapRAM(0, 0x8000, BankSize, b.RAM[banks[2]][:])

	if romEnable&gatearray.ConfigHROMEN != 0 {
		b.MMU.MapRAM(0, 0xC000, BankSize, b.RAM[banks[3]][:])
	} else {
		upper := b.BASIC
		if b.Model == gatearray.CPC6128 && romSelect == ExtROMSelect {
			upper = b.Ext
		}
		b.MMU.MapRW(0, 0xC000, BankSize, upper, b.RAM[banks[3]][:])
	}
}

// Reset puts every chip and the CPU back into the reset state. RAM keeps
// its content.
func (b *Board) Reset() {
	b.GA.Reset()
	b.CRTC.Reset()
	b.CTC.Reset()
	b.PIO.Reset()
	if r, ok := b.cpu.(interface{ Reset() }); ok {
		r.Reset()
	}
	b.Pins = 0
	b.CRTCPins = 0
	b.logger.Info("Board reset", "ticks", b.Ticks)
}

func (b *Board) memAccess(pins bus.Pins) bus.Pins {
	addr := bus.Addr(pins)
	if pins&bus.RD != 0 {
		return bus.SetData(pins, b.MMU.Read(addr))
	}
	if pins&bus.WR != 0 {
		b.MMU.Write(addr, bus.Data(pins))
	}
	return pins
}

// crtcIORQ decodes the CRTC ports: A9 is the read line, A8 the register select.
func (b *Board) crtcIORQ(pins bus.Pins) bus.Pins {
	if pins&bus.A14 != 0 {
		return pins
	}
	cp := crtc.CS | pins&bus.DataMask
	if pins&bus.A8 != 0 {
		cp |= crtc.RS
	}
	if pins&bus.A9 != 0 {
		cp |= crtc.RW
		cp = b.CRTC.IORQ(cp)
		return bus.SetData(pins, bus.Data(cp))
	}
	b.CRTC.IORQ(cp)
	return pins
}

func (b *Board) ctcPins(pins bus.Pins, io bool) bus.Pins {
	cp := pins & bus.CPUMask
	if io && bus.Addr(pins)>>8 == portCTC {
		cp |= ctc.CE
		cp = bus.Set(cp, ctc.CSRange, uint64(bus.Addr(pins)&3))
	}
	// frames are counted on channel 3
	if b.CRTCPins&crtc.VS != 0 {
		cp |= ctc.CLKTRG3
	}
	return cp
}

func (b *Board) pioPins(pins bus.Pins, io bool) bus.Pins {
	pp := pins & bus.CPUMask
	if io && bus.Addr(pins)>>8 == portPIO {
		pp |= pio.CE
		if pins&bus.A0 != 0 {
			pp |= pio.BASEL
		}
		if pins&bus.A1 != 0 {
			pp |= pio.CDSEL
		}
	}
	return pp
}

// Tick runs the board for one 4 MHz clock.
func (b *Board) Tick() {
	pins := b.cpu.Tick(b.Pins) & bus.CPUMask

	if pins&bus.MREQ != 0 {
		pins = b.memAccess(pins)
	}

	io := pins&(bus.M1|bus.IORQ) == bus.IORQ && pins&(bus.RD|bus.WR) != 0
	if io {
		b.GA.IORQ(pins)
		pins = b.crtcIORQ(pins)
	}

	cp := b.CTC.IORQ(b.ctcPins(pins, io))
	cp = b.CTC.Tick(cp)
	pins = cp & bus.CPUMask

	if b.GA.CCLK() {
		b.CRTCPins = b.CRTC.Tick()
	}
	pins = b.GA.Tick(pins, b.CRTCPins)
	if pins&(bus.M1|bus.IORQ) == bus.M1|bus.IORQ {
		b.Interrupts++
	}

	// the CTC sits at the head of the chain, the PIO behind it
	pins = b.CTC.Int(pins | bus.IEIO)
	pins = b.PIO.Tick(b.pioPins(pins, io)) & bus.CPUMask

	if pins&(bus.M1|bus.IORQ) == bus.M1|bus.IORQ {
		b.recordVector(bus.Data(pins))
	}

	b.Pins = pins
	b.Ticks++
	if b.Ticks%TicksPerFrame == 0 {
		b.Frames++
	}
}

func (b *Board) recordVector(v uint8) {
	if len(b.Vectors) == maxVectors {
		copy(b.Vectors, b.Vectors[1:])
		b.Vectors = b.Vectors[:maxVectors-1]
	}
	b.Vectors = append(b.Vectors, v)
}

// Run executes n ticks.
func (b *Board) Run(n int) {
	for i := 0; i < n; i++ {
		b.Tick()
	}
}

// RunFrame executes the ticks of one 50 Hz frame.
func (b *Board) RunFrame() {
	b.Run(TicksPerFrame)
}

// Snapshot collects the state shown by the monitor and written to reports.
func (b *Board) Snapshot() *debug.BoardState {
	ga := b.GA
	s := &debug.BoardState{
		Model:       b.Model.String(),
		Ticks:       b.Ticks,
		Frames:      b.Frames,
		Interrupts:  b.Interrupts,
		LastVectors: append([]uint8(nil), b.Vectors...),
		Memory:      debug.ExtractMemoryMap(b.MMU),
		GateArray: debug.GateArrayState{
			Phase:     ga.Phase(),
			Config:    ga.Regs.Config,
			RAMConfig: ga.RAMConfig,
			ROMSelect: ga.ROMSelect,
			HSCount:   ga.Video.HSCount,
			IntCount:  ga.Video.IntCount,
			Mode:      ga.Video.Mode,
			Intr:      ga.Video.Intr,
			Sync:      ga.Video.Sync,
		},
		CRTC: debug.CRTCState{
			HCtr:        b.CRTC.HCtr,
			RowCtr:      b.CRTC.RowCtr,
			ScanlineCtr: b.CRTC.ScanlineCtr,
			HS:          b.CRTC.HS,
			VS:          b.CRTC.VS,
			DE:          b.CRTCPins&crtc.DE != 0,
		},
	}
	s.Channels = append(s.Channels, channelStates("ctc", b.CTC.Channels())...)
	s.Channels = append(s.Channels, channelStates("pio", b.PIO.Channels())...)
	return s
}

func channelStates(chip string, chs []*daisy.Channel) []debug.ChannelState {
	out := make([]debug.ChannelState, len(chs))
	for i, c := range chs {
		out[i] = debug.ChannelState{
			Chip:    chip,
			Index:   i,
			Enabled: c.Enabled,
			Vector:  c.Vector,
			State:   c.State().String(),
		}
	}
	return out
}
