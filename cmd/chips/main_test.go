package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chips/chips/bench"
	"github.com/valerio/go-chips/chips/gatearray"
	"github.com/valerio/go-chips/chips/timing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name string
		want gatearray.Model
	}{
		{"6128", gatearray.CPC6128},
		{"", gatearray.CPC6128},
		{"464", gatearray.CPC464},
		{"KCC", gatearray.KCCompact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseModel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseModel("spectrum")
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	l, release, err := newLimiter("adaptive")
	require.NoError(t, err)
	assert.IsType(t, &timing.AdaptiveLimiter{}, l)
	release()

	l, release, err = newLimiter("Ticker")
	require.NoError(t, err)
	require.IsType(t, &timing.TickerLimiter{}, l)
	l.WaitForNextFrame()
	release()

	_, _, err = newLimiter("vsync")
	assert.Error(t, err)
}

func TestLoadROM(t *testing.T) {
	rom, err := loadROM("")
	require.NoError(t, err)
	assert.Nil(t, rom)

	path := filepath.Join(t.TempDir(), "os.rom")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x3E}, bench.ROMSize), 0644))
	rom, err = loadROM(path)
	require.NoError(t, err)
	assert.Len(t, rom, bench.ROMSize)

	_, err = loadROM(filepath.Join(t.TempDir(), "missing.rom"))
	assert.Error(t, err)
}

func TestRunHeadless(t *testing.T) {
	t.Run("requires frames", func(t *testing.T) {
		assert.Error(t, runHeadless(bench.New(), headlessConfig{}))
	})

	t.Run("writes reports", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports")
		board := bench.New()
		require.NoError(t, runHeadless(board, headlessConfig{Frames: 2, ReportInterval: 1, ReportDir: dir}))

		assert.Equal(t, uint64(2), board.Frames)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
