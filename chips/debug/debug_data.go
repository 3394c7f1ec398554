package debug

// MemorySnapshot contains a copy of CPU visible memory
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// ChannelState is one interrupt source in the daisy chain.
type ChannelState struct {
	Chip    string
	Index   int
	Enabled bool
	Vector  uint8
	State   string
}

// GateArrayState holds the sequencer and video counters.
type GateArrayState struct {
	Phase     uint8
	Config    uint8
	RAMConfig uint8
	ROMSelect uint8
	HSCount   uint8
	IntCount  uint8
	Mode      uint8
	Intr      bool
	Sync      bool
}

// CRTCState holds the CRTC beam position.
type CRTCState struct {
	HCtr        uint8
	RowCtr      uint8
	ScanlineCtr uint8
	HS          bool
	VS          bool
	DE          bool
}

// BoardState is everything the monitor and reports show about a board.
type BoardState struct {
	Model      string
	Ticks      uint64
	Frames     uint64
	Interrupts uint64
	// LastVectors are the most recent acknowledged vectors, oldest first
	LastVectors []uint8

	Memory    *MemoryMap
	GateArray GateArrayState
	CRTC      CRTCState
	Channels  []ChannelState
}
