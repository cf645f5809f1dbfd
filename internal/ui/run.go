package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/proctemp/internal/config"
	"github.com/luki/proctemp/internal/logger"
)

// Run launches the viewer and blocks until the user quits or ctx is
// done. While it runs, edits to the options file are applied live. It
// returns the options as they were when the viewer closed.
func Run(ctx context.Context, cfg Config) (config.Options, error) {
	log := logger.WithComponent("ui")

	p := tea.NewProgram(
		New(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			log.Warn().Err(err).Msg("cannot create config directory")
		}
		w, err := config.NewWatcher(cfg.Path, func(o config.Options) {
			p.Send(optionsMsg{opts: o})
		})
		if err == nil {
			if err = w.Start(); err != nil {
				w.Stop()
			}
		}
		if err != nil {
			// the viewer works without hot reload
			log.Warn().Err(err).Str("path", cfg.Path).Msg("config hot reload disabled")
		} else {
			defer w.Stop()
		}
	}

	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return cfg.Options, nil
	}
	if err != nil {
		return cfg.Options, fmt.Errorf("viewer: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Options(), nil
	}
	return cfg.Options, nil
}
