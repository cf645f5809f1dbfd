// Package ui implements the interactive viewer: one bar per temperature
// reading, redrawn every refresh, with keys to switch units, save the
// options and toggle a debug overlay.
package ui

import (
	"context"
	"io"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/luki/proctemp/internal/config"
	"github.com/luki/proctemp/internal/logger"
	"github.com/luki/proctemp/internal/sensor"
)

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type snapshotMsg struct{ buses sensor.BusSet }

type errMsg struct{ err error }

// optionsMsg carries options reloaded from disk.
type optionsMsg struct{ opts config.Options }

// savedMsg reports the outcome of a save once the terminal is back.
type savedMsg struct{ err error }

// ── Model ────────────────────────────────────────────────────────────

// SaveFunc persists options. config.Save is the usual one.
type SaveFunc func(path string, opts config.Options) error

// Config is what the viewer needs to start.
type Config struct {
	Provider sensor.Provider
	Options  config.Options
	Path     string // where S saves the options
	Save     SaveFunc
	Version  string
	Rand     *rand.Rand
}

// Model is the BubbleTea model for the viewer.
type Model struct {
	ctx      context.Context
	provider sensor.Provider
	opts     config.Options
	path     string
	save     SaveFunc
	version  string
	rng      *rand.Rand
	log      zerolog.Logger

	buses sensor.BusSet
	err   error
	rows  int
	cols  int
	debug bool
	done  bool
}

// New creates the initial viewer model.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Save == nil {
		cfg.Save = config.Save
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Model{
		ctx:      ctx,
		provider: cfg.Provider,
		opts:     cfg.Options,
		path:     cfg.Path,
		save:     cfg.Save,
		version:  cfg.Version,
		rng:      cfg.Rand,
		log:      logger.WithComponent("ui"),
	}
}

// Options returns the options as currently set in the viewer.
func (m Model) Options() config.Options { return m.opts }

// Done reports whether the user asked to quit.
func (m Model) Done() bool { return m.done }

// ── Commands ─────────────────────────────────────────────────────────

func (m Model) tick() tea.Cmd {
	refresh := m.opts.Refresh
	if refresh <= 0 || refresh > config.MaxRefresh {
		refresh = config.MaxRefresh
	}
	return tea.Tick(refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) poll() tea.Msg {
	bs, err := sensor.Scan(m.ctx, m.provider)
	if err != nil {
		return errMsg{err}
	}
	return snapshotMsg{buses: bs}
}

// terminalAction runs fn with the terminal handed back to the shell,
// the way the viewer leaves and re-enters raw mode.
type terminalAction struct {
	fn func() error
}

func (a terminalAction) Run() error {
	if a.fn == nil {
		return nil
	}
	return a.fn()
}

func (terminalAction) SetStdin(io.Reader)  {}
func (terminalAction) SetStdout(io.Writer) {}
func (terminalAction) SetStderr(io.Writer) {}

func (m Model) saveAction() terminalAction {
	path, opts, save := m.path, m.opts, m.save
	return terminalAction{fn: func() error { return save(path, opts) }}
}

func (m Model) saveCmd() tea.Cmd {
	return tea.Exec(m.saveAction(), func(err error) tea.Msg {
		return savedMsg{err: err}
	})
}

func reinitCmd() tea.Cmd {
	return tea.Sequence(tea.Exec(terminalAction{}, nil), tea.ClearScreen)
}

// ── Init / Update ────────────────────────────────────────────────────

// Init starts the first poll. Each later poll is scheduled one refresh
// after the previous result, so polls never overlap.
func (m Model) Init() tea.Cmd {
	return m.poll
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			m.done = true
			return m, tea.Quit
		case "s", "S":
			return m, m.saveCmd()
		case "t", "T":
			m.opts.Fahrenheit = !m.opts.Fahrenheit
		case "!":
			m.debug = !m.debug
			m.log.Info().Bool("debug", m.debug).Msg("debug mode toggled")
			return m, reinitCmd()
		}

	case tea.WindowSizeMsg:
		if msg.Height != m.rows || msg.Width != m.cols {
			m.rows, m.cols = msg.Height, msg.Width
			return m, tea.ClearScreen
		}

	case tickMsg:
		return m, m.poll

	case snapshotMsg:
		m.buses = msg.buses
		if m.debug {
			m.buses = jitter(msg.buses, m.rng)
		}
		m.err = nil
		return m, m.tick()

	case errMsg:
		m.err = msg.err
		m.log.Error().Err(msg.err).Msg("sensor poll failed")
		return m, m.tick()

	case savedMsg:
		if msg.err != nil {
			// shown until the next poll succeeds
			m.err = msg.err
			m.log.Error().Err(msg.err).Str("path", m.path).Msg("failed to save options")
		} else {
			m.log.Info().Str("path", m.path).Msg("options saved")
		}
		return m, tea.ClearScreen

	case optionsMsg:
		m.opts = msg.opts
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.done || m.rows == 0 || m.cols == 0 {
		return ""
	}
	return m.frame().render()
}

func (m Model) frame() *canvas {
	return draw(frame{
		rows:       m.rows,
		cols:       m.cols,
		fahrenheit: m.opts.Fahrenheit,
		debug:      m.debug,
		version:    m.version,
		err:        m.err,
		buses:      m.buses,
	})
}
