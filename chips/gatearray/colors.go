package gatearray

// CPC hardware colours as ABGR, indexed by the 5-bit colour number.
var cpcColors = [32]uint32{
	0xff6B7D6E, // #40 white
	0xff6D7D6E, // #41 white
	0xff6BF300, // #42 sea green
	0xff6DF3F3, // #43 pastel yellow
	0xff6B0200, // #44 blue
	0xff6802F0, // #45 purple
	0xff687800, // #46 cyan
	0xff6B7DF3, // #47 pink
	0xff6802F3, // #48 purple
	0xff6BF3F3, // #49 pastel yellow
	0xff0DF3F3, // #4A bright yellow
	0xffF9F3FF, // #4B bright white
	0xff0605F3, // #4C bright red
	0xffF402F3, // #4D bright magenta
	0xff0D7DF3, // #4E orange
	0xffF980FA, // #4F pastel magenta
	0xff680200, // #50 blue
	0xff6BF302, // #51 sea green
	0xff01F002, // #52 bright green
	0xffF2F30F, // #53 bright cyan
	0xff010200, // #54 black
	0xffF4020C, // #55 bright blue
	0xff017802, // #56 green
	0xffF47B0C, // #57 sky blue
	0xff680269, // #58 magenta
	0xff6BF371, // #59 pastel green
	0xff04F571, // #5A lime
	0xffF4F371, // #5B pastel cyan
	0xff01026C, // #5C red
	0xffF2026C, // #5D mauve
	0xff017B6E, // #5E yellow
	0xffF67B6E, // #5F pastel blue
}

// first 32 bytes of the KC Compact colour ROM, bits xx|gg|rr|bb
var kccColorROM = [32]uint8{
	0x15, 0x15, 0x31, 0x3d, 0x01, 0x0d, 0x11, 0x1d,
	0x0d, 0x3d, 0x3c, 0x3f, 0x0c, 0x0f, 0x1c, 0x1f,
	0x01, 0x31, 0x30, 0x33, 0x00, 0x03, 0x10, 0x13,
	0x05, 0x35, 0x34, 0x37, 0x04, 0x07, 0x14, 0x17,
}

var kccColors = func() [32]uint32 {
	var out [32]uint32
	level := func(v uint8) uint32 {
		switch v {
		case 0:
			return 0x00
		case 3:
			return 0xFF
		default:
			return 0x7F
		}
	}
	for i, val := range kccColorROM {
		b := level(val & 0x03)
		r := level((val >> 2) & 0x03)
		g := level((val >> 4) & 0x03)
		out[i] = 0xFF000000 | b<<16 | g<<8 | r
	}
	return out
}()

// Palette returns the hardware colour table of a model.
func Palette(m Model) [32]uint32 {
	if m == KCCompact {
		return kccColors
	}
	return cpcColors
}
