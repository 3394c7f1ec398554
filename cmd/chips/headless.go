package main

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/valerio/go-chips/chips/bench"
	"github.com/valerio/go-chips/chips/debug"
)

type headlessConfig struct {
	Frames         int
	ReportInterval int
	ReportDir      string
}

const progressInterval = 50

func runHeadless(board *bench.Board, cfg headlessConfig) error {
	if cfg.Frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	reportDir := cfg.ReportDir
	if cfg.ReportInterval > 0 {
		if reportDir == "" {
			tempDir, err := os.MkdirTemp("", "chips-reports-*")
			if err != nil {
				return errors.Wrap(err, "failed to create report directory")
			}
			reportDir = tempDir
		} else if err := os.MkdirAll(reportDir, 0755); err != nil {
			return errors.Wrap(err, "failed to create report directory")
		}
	}

	slog.Info("Running headless mode", "frames", cfg.Frames, "report_interval", cfg.ReportInterval, "report_dir", reportDir)

	for i := 1; i <= cfg.Frames; i++ {
		board.RunFrame()

		if cfg.ReportInterval > 0 && i%cfg.ReportInterval == 0 {
			if _, err := debug.SaveReport(board.Snapshot(), "chips", reportDir); err != nil {
				slog.Error("Failed to save report", "frame", i, "error", err)
			}
		}
		if i%progressInterval == 0 {
			slog.Info("Frame progress", "completed", i, "total", cfg.Frames, "interrupts", board.Interrupts)
		}
	}

	slog.Info("Headless execution completed", "frames", cfg.Frames, "ticks", board.Ticks, "interrupts", board.Interrupts)
	return nil
}
