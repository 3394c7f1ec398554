// Package monitor is a terminal front end for a bench board: it shows the
// memory map, the gate array and CRTC counters, the daisy chain and the log.
package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/valerio/go-chips/chips/bench"
	"github.com/valerio/go-chips/chips/debug"
	"github.com/valerio/go-chips/chips/memory"
	"github.com/valerio/go-chips/chips/timing"
)

const (
	logLines   = 200
	mapStartY  = 2
	infoStartY = mapStartY + memory.NumLayers + 3
	chanStartY = infoStartY + 4
	helpText   = "space pause  s step  r reset  q quit"

	// longest wall time slice run in one go, a stalled terminal does not
	// turn into a burst of catch-up ticks
	maxSlice = 4 * time.Second / bench.FrameRate
)

// Monitor renders the state of a board. On every limiter tick it runs as
// many board ticks as the wall time since the previous one covers.
type Monitor struct {
	board     *bench.Board
	screen    tcell.Screen
	limiter   timing.Limiter
	clock     *timing.Clock
	logBuffer *LogBuffer
	logLevel  slog.Level

	now  func() time.Time
	last time.Time

	running bool
	paused  bool
	stop    chan os.Signal
}

type Option func(*Monitor)

// WithScreen uses s instead of the terminal, tests pass a simulation screen.
func WithScreen(s tcell.Screen) Option { return func(m *Monitor) { m.screen = s } }

func WithLimiter(l timing.Limiter) Option { return func(m *Monitor) { m.limiter = l } }

// WithPaused starts the monitor with the board stopped.
func WithPaused() Option { return func(m *Monitor) { m.paused = true } }

// WithLogLevel sets the lowest level shown in the log pane.
func WithLogLevel(l slog.Level) Option { return func(m *Monitor) { m.logLevel = l } }

func New(board *bench.Board, opts ...Option) *Monitor {
	m := &Monitor{
		board:     board,
		logBuffer: NewLogBuffer(logLines),
		logLevel:  slog.LevelInfo,
		clock:     timing.NewClock(bench.Freq),
		now:       time.Now,
		stop:      make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.limiter == nil {
		m.limiter = timing.NewAdaptiveLimiter(bench.FrameRate)
	}
	return m
}

// LogBuffer returns the buffer backing the log pane.
func (m *Monitor) LogBuffer() *LogBuffer {
	return m.logBuffer
}

// Init sets up the screen and routes the default logger into the log pane.
func (m *Monitor) Init() error {
	if m.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return errors.Wrap(err, "failed to create terminal screen")
		}
		m.screen = screen
	}
	if err := m.screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize terminal")
	}

	slog.SetDefault(slog.New(NewLogBufferHandler(m.logBuffer, slog.LevelDebug)))

	m.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	m.screen.Clear()
	m.running = true

	signal.Notify(m.stop, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("Monitor initialized", "model", m.board.Model)
	return nil
}

// Run loops until quit is requested. Init must have been called.
func (m *Monitor) Run() error {
	defer m.cleanup()

	m.limiter.Reset()
	m.last = m.now()
	for m.running {
		select {
		case sig := <-m.stop:
			slog.Info("Received signal, stopping", "signal", sig)
			m.running = false
			continue
		default:
		}

		m.pollEvents()
		if !m.running {
			break
		}
		if !m.paused {
			m.runSlice()
		}
		m.draw()
		m.limiter.WaitForNextFrame()
	}
	return nil
}

// runSlice runs the board for the wall time elapsed since the last call.
func (m *Monitor) runSlice() {
	now := m.now()
	elapsed := now.Sub(m.last)
	m.last = now
	if elapsed <= 0 {
		return
	}
	if elapsed > maxSlice {
		elapsed = maxSlice
	}
	n := m.clock.TicksToRun(elapsed)
	m.board.Run(n)
	m.clock.TicksExecuted(n)
}

func (m *Monitor) cleanup() {
	signal.Stop(m.stop)
	if m.screen != nil {
		m.screen.Fini()
	}
}

func (m *Monitor) pollEvents() {
	for m.screen.HasPendingEvent() {
		switch ev := m.screen.PollEvent().(type) {
		case *tcell.EventKey:
			m.handleKey(ev)
		case *tcell.EventResize:
			m.screen.Sync()
		}
	}
}

func (m *Monitor) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		m.running = false
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q':
		m.running = false
	case ' ':
		m.paused = !m.paused
		if !m.paused {
			m.limiter.Reset()
			m.last = m.now()
		}
		slog.Info("Pause toggled", "paused", m.paused)
	case 's':
		m.paused = true
		m.board.RunFrame()
		slog.Debug("Stepped one frame", "frame", m.board.Frames)
	case 'r':
		m.board.Reset()
	}
}

func (m *Monitor) drawText(x, y int, text string, style tcell.Style) {
	w, _ := m.screen.Size()
	for _, ch := range text {
		if x >= w {
			return
		}
		m.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

func kindStyle(r rune) tcell.Style {
	switch r {
	case 'R':
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case 'O':
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case 'W':
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
}

func (m *Monitor) draw() {
	m.screen.Clear()
	s := m.board.Snapshot()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	labelStyle := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	textStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	title := fmt.Sprintf("go-chips  model %s  frame %d  ticks %d", s.Model, s.Frames, s.Ticks)
	if m.paused {
		title += "  [PAUSED]"
	}
	m.drawText(0, 0, title, titleStyle)

	m.drawMemoryMap(s.Memory, labelStyle)
	m.drawCounters(s, labelStyle, textStyle)
	m.drawChannels(s.Channels, labelStyle, textStyle)

	_, h := m.screen.Size()
	logStartY := chanStartY + len(s.Channels) + 2
	m.drawText(0, logStartY-1, "log", labelStyle)
	m.drawLogs(logStartY, h-1)
	m.drawText(0, h-1, helpText, tcell.StyleDefault.Foreground(tcell.ColorGray))

	m.screen.Show()
}

func (m *Monitor) drawMemoryMap(mm *debug.MemoryMap, labelStyle tcell.Style) {
	m.drawText(0, mapStartY, "memory map (1 KB pages)", labelStyle)
	for layer := 0; layer < memory.NumLayers; layer++ {
		y := mapStartY + 1 + layer
		m.drawText(0, y, fmt.Sprintf("L%d", layer), labelStyle)
		for x, r := range mm.Row(layer) {
			m.screen.SetContent(4+x, y, r, nil, kindStyle(r))
		}
	}
	y := mapStartY + 1 + memory.NumLayers
	m.drawText(0, y, "CPU", labelStyle)
	for page, r := range mm.VisibleRow() {
		m.screen.SetContent(4+page, y, r, nil, kindStyle(debug.KindRune(mm.VisibleKind(page))))
	}
}

func (m *Monitor) drawCounters(s *debug.BoardState, labelStyle, textStyle tcell.Style) {
	ga := s.GateArray
	m.drawText(0, infoStartY, "GA", labelStyle)
	m.drawText(5, infoStartY, fmt.Sprintf("phase %d cfg %02X ram %d rom %02X hs %2d int %2d mode %d intr %-5t sync %t",
		ga.Phase, ga.Config, ga.RAMConfig, ga.ROMSelect, ga.HSCount, ga.IntCount, ga.Mode, ga.Intr, ga.Sync), textStyle)

	c := s.CRTC
	m.drawText(0, infoStartY+1, "CRTC", labelStyle)
	m.drawText(5, infoStartY+1, fmt.Sprintf("h %2d row %2d line %d hs %-5t vs %-5t de %t",
		c.HCtr, c.RowCtr, c.ScanlineCtr, c.HS, c.VS, c.DE), textStyle)

	var vecs strings.Builder
	for _, v := range s.LastVectors {
		fmt.Fprintf(&vecs, " %02X", v)
	}
	m.drawText(0, infoStartY+2, "INT", labelStyle)
	m.drawText(5, infoStartY+2, fmt.Sprintf("served %d  vectors%s", s.Interrupts, vecs.String()), textStyle)
}

func (m *Monitor) drawChannels(chs []debug.ChannelState, labelStyle, textStyle tcell.Style) {
	m.drawText(0, chanStartY, "daisy chain", labelStyle)
	for i, ch := range chs {
		style := textStyle
		switch ch.State {
		case "requested":
			style = tcell.StyleDefault.Foreground(tcell.ColorRed)
		case "serviced":
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		}
		m.drawText(2, chanStartY+1+i, fmt.Sprintf("%s%d  en %-5t vec %02X  %s",
			ch.Chip, ch.Index, ch.Enabled, ch.Vector, ch.State), style)
	}
}

func (m *Monitor) drawLogs(startY, endY int) {
	available := endY - startY
	if available <= 0 {
		return
	}

	logs := make([]LogEntry, 0, available)
	for _, entry := range m.logBuffer.GetRecent(available * 2) {
		if entry.Level >= m.logLevel {
			logs = append(logs, entry)
			if len(logs) >= available {
				break
			}
		}
	}

	for i, entry := range logs {
		style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
		switch {
		case entry.Level >= slog.LevelError:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
		case entry.Level >= slog.LevelWarn:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = tcell.StyleDefault.Foreground(tcell.ColorGray)
		}
		m.drawText(0, startY+i, FormatLogEntry(entry), style)
	}
}
