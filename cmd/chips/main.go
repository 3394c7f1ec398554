package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/valerio/go-chips/chips/bench"
	"github.com/valerio/go-chips/chips/gatearray"
	"github.com/valerio/go-chips/chips/memory"
	"github.com/valerio/go-chips/chips/monitor"
	"github.com/valerio/go-chips/chips/statsview"
	"github.com/valerio/go-chips/chips/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "chips"
	app.Description = "A tick driven test board for 8-bit chip emulation"
	app.Usage = "chips [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "model",
			Usage: "Board model: 6128, 464 or kcc",
			Value: "6128",
		},
		cli.StringFlag{
			Name:  "rom-os",
			Usage: "Path to the 16 KB lower ROM image",
		},
		cli.StringFlag{
			Name:  "rom-basic",
			Usage: "Path to the 16 KB upper ROM image",
		},
		cli.StringFlag{
			Name:  "rom-ext",
			Usage: "Path to the 16 KB extension ROM image (upper ROM 7 on a 6128)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without the terminal monitor",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "report-interval",
			Usage: "Write a board report every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "report-dir",
			Usage: "Directory to save reports (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "handler-ticks",
			Usage: "Ticks the host CPU spends in each interrupt handler",
			Value: 64,
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing of the monitor: adaptive or ticker",
			Value: "adaptive",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics over HTTP (needs the statsview build tag)",
		},
		cli.StringFlag{
			Name:  "statsview-addr",
			Usage: "Listen address of the stats server",
			Value: statsview.DefaultAddress,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show debug messages",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running board", "error", err)
		os.Exit(1)
	}
}

func parseModel(name string) (gatearray.Model, error) {
	switch strings.ToLower(name) {
	case "6128", "":
		return gatearray.CPC6128, nil
	case "464":
		return gatearray.CPC464, nil
	case "kcc":
		return gatearray.KCCompact, nil
	}
	return 0, errors.Errorf("unknown model %q", name)
}

// newLimiter returns the frame limiter named on the command line and a
// function releasing it.
func newLimiter(name string) (timing.Limiter, func(), error) {
	switch strings.ToLower(name) {
	case "adaptive", "":
		return timing.NewAdaptiveLimiter(bench.FrameRate), func() {}, nil
	case "ticker":
		l := timing.NewTickerLimiter(bench.FrameRate)
		return l, l.Stop, nil
	}
	return nil, nil, errors.Errorf("unknown limiter %q", name)
}

// loadROM reads an image, an empty path leaves the ROM empty.
func loadROM(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return memory.LoadImage(path, bench.ROMSize)
}

func newBoard(c *cli.Context) (*bench.Board, error) {
	model, err := parseModel(c.String("model"))
	if err != nil {
		return nil, err
	}

	var roms [3][]byte
	for i, flag := range []string{"rom-os", "rom-basic", "rom-ext"} {
		if roms[i], err = loadROM(c.String(flag)); err != nil {
			return nil, errors.Wrapf(err, "--%s", flag)
		}
	}

	return bench.New(
		bench.WithModel(model),
		bench.WithROMs(roms[0], roms[1], roms[2]),
		bench.WithCPU(bench.NewHostCPU(c.Int("handler-ticks"))),
	), nil
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}

	if c.Bool("statsview") {
		if !statsview.Available() {
			slog.Warn("statsview is not available, rebuild with -tags statsview")
		} else {
			statsview.Launch(statsview.Config{Addr: c.String("statsview-addr")}, os.Stderr)
		}
	}

	if c.Bool("headless") {
		// Set up logging before the board so its messages are kept
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))

		board, err := newBoard(c)
		if err != nil {
			return err
		}
		return runHeadless(board, headlessConfig{
			Frames:         c.Int("frames"),
			ReportInterval: c.Int("report-interval"),
			ReportDir:      c.String("report-dir"),
		})
	}

	limiter, release, err := newLimiter(c.String("limiter"))
	if err != nil {
		return err
	}
	defer release()

	board, err := newBoard(c)
	if err != nil {
		return err
	}
	mon := monitor.New(board, monitor.WithLogLevel(level), monitor.WithLimiter(limiter))
	if err := mon.Init(); err != nil {
		return err
	}
	return mon.Run()
}
