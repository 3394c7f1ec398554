package bus

import (
	"fmt"
	"sort"
)

// Layout names the lines a chip family reserves on the bus.
type Layout struct {
	Family string
	Lines  map[string]Pins
}

// CPULayout describes the lines shared by every Z80-family chip.
var CPULayout = Layout{
	Family: "z80",
	Lines: map[string]Pins{
		"A":    AddrMask,
		"D":    DataMask,
		"M1":   M1,
		"MREQ": MREQ,
		"IORQ": IORQ,
		"RD":   RD,
		"WR":   WR,
		"HALT": HALT,
		"INT":  INT,
		"RES":  RES,
		"NMI":  NMI,
		"WAIT": WAIT,
		"RFSH": RFSH,
		"IEIO": IEIO,
		"RETI": RETI,
	},
}

// Collision is a chip specific line claimed by two families sharing a bus value.
type Collision struct {
	A, B         string
	LineA, LineB string
	Overlap      Pins
}

func (c Collision) String() string {
	return fmt.Sprintf("%s.%s and %s.%s overlap at %#016x", c.A, c.LineA, c.B, c.LineB, uint64(c.Overlap))
}

// Mask returns every line the layout reserves.
func (l Layout) Mask() Pins {
	var m Pins
	for _, p := range l.Lines {
		m |= p
	}
	return m
}

func (l Layout) names() []string {
	names := make([]string, 0, len(l.Lines))
	for n := range l.Lines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Collisions returns every pair of chip specific lines from different
// families that share a bit. Shared CPU lines never collide.
func Collisions(layouts ...Layout) []Collision {
	var out []Collision
	for i := 0; i < len(layouts); i++ {
		for j := i + 1; j < len(layouts); j++ {
			a, b := layouts[i], layouts[j]
			for _, na := range a.names() {
				for _, nb := range b.names() {
					overlap := a.Lines[na] & b.Lines[nb] &^ CPUMask
					if overlap != 0 {
						out = append(out, Collision{A: a.Family, B: b.Family, LineA: na, LineB: nb, Overlap: overlap})
					}
				}
			}
		}
	}
	return out
}
