package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/valerio/go-chips/chips/memory"
)

const bytesPerLine = 16

// SnapshotAt copies up to n CPU visible bytes starting at addr. The copy
// stops at the end of the address space.
func SnapshotAt(r MemoryReader, addr uint16, n int) *MemorySnapshot {
	if left := memory.AddrRange - int(addr); n > left {
		n = left
	}
	if n < 0 {
		n = 0
	}
	s := &MemorySnapshot{StartAddr: addr, Bytes: make([]uint8, n)}
	for i := range s.Bytes {
		s.Bytes[i] = r.Read(addr + uint16(i))
	}
	return s
}

// Dump writes the snapshot as a classic hex dump, 16 bytes per line.
func (s *MemorySnapshot) Dump(w io.Writer) error {
	for off := 0; off < len(s.Bytes); off += bytesPerLine {
		end := off + bytesPerLine
		if end > len(s.Bytes) {
			end = len(s.Bytes)
		}
		var hex strings.Builder
		for _, b := range s.Bytes[off:end] {
			fmt.Fprintf(&hex, " %02X", b)
		}
		if _, err := fmt.Fprintf(w, "%04X:%s\n", int(s.StartAddr)+off, hex.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport writes a plain text report of the board state.
func WriteReport(w io.Writer, s *BoardState) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "model %s  ticks %d  frames %d  interrupts %d\n", s.Model, s.Ticks, s.Frames, s.Interrupts)

	ga := s.GateArray
	fmt.Fprintf(&sb, "gate array: phase %d config %02X ram %d rom %d hscount %d intcount %d mode %d intr %t sync %t\n",
		ga.Phase, ga.Config, ga.RAMConfig, ga.ROMSelect, ga.HSCount, ga.IntCount, ga.Mode, ga.Intr, ga.Sync)

	c := s.CRTC
	fmt.Fprintf(&sb, "crtc: h %d row %d line %d hs %t vs %t de %t\n", c.HCtr, c.RowCtr, c.ScanlineCtr, c.HS, c.VS, c.DE)

	sb.WriteString("daisy chain:\n")
	for _, ch := range s.Channels {
		fmt.Fprintf(&sb, "  %s%d enabled %t vector %02X %s\n", ch.Chip, ch.Index, ch.Enabled, ch.Vector, ch.State)
	}
	if len(s.LastVectors) > 0 {
		sb.WriteString("vectors:")
		for _, v := range s.LastVectors {
			fmt.Fprintf(&sb, " %02X", v)
		}
		sb.WriteByte('\n')
	}

	if s.Memory != nil {
		sb.WriteString("memory map:\n")
		for layer := 0; layer < memory.NumLayers; layer++ {
			fmt.Fprintf(&sb, "  L%d  %s\n", layer, s.Memory.Row(layer))
		}
		fmt.Fprintf(&sb, "  CPU %s\n", s.Memory.VisibleRow())
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// SaveReport writes a timestamped report file into directory, or into the
// current directory when directory is empty. It returns the file path.
func SaveReport(s *BoardState, baseName, directory string) (string, error) {
	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get current directory")
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%06d.txt", baseName, timestamp, s.Frames)
	filePath := filepath.Join(outputDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create file %s", filePath)
	}
	defer file.Close()

	if err := WriteReport(file, s); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", filePath)
	}

	slog.Info("Report saved", "path", filePath, "frame", s.Frames)
	return filePath, nil
}
