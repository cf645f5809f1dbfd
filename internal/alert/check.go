package alert

import (
	"context"
	"fmt"

	"github.com/luki/proctemp/internal/sensor"
	"github.com/luki/proctemp/internal/severity"
)

// Commands are the shell commands run per severity. Empty means none.
type Commands struct {
	High     string
	Critical string
}

// For returns the command configured for level.
func (c Commands) For(level severity.Level) string {
	switch level {
	case severity.High:
		return c.High
	case severity.Critical:
		return c.Critical
	default:
		return ""
	}
}

// Checker samples the sensors once, classifies the snapshot and runs the
// matching command.
type Checker struct {
	Provider sensor.Provider
	Commands Commands
	Exec     *Executor

	// GPUs restricts the check to PCI buses. Otherwise PCI buses are
	// left out.
	GPUs bool

	// Force, when non-zero, is used instead of sampling.
	Force severity.Level
}

// Check returns the current severity and runs at most one command for it.
// A LaunchError is returned together with the severity that caused it.
func (c *Checker) Check(ctx context.Context) (severity.Level, error) {
	level, err := c.level(ctx)
	if err != nil {
		return severity.Normal, err
	}
	return level, c.Dispatch(ctx, level)
}

func (c *Checker) level(ctx context.Context) (severity.Level, error) {
	if c.Force != severity.Normal {
		c.Exec.log.Debug().Stringer("severity", c.Force).Msg("severity forced, skipping sensors")
		return c.Force, nil
	}

	bs, err := sensor.Scan(ctx, c.Provider)
	if err != nil {
		return severity.Normal, err
	}
	bs = bs.Filter(func(b sensor.Bus) bool { return b.IsPCI() == c.GPUs })
	level := severity.Classify(bs)
	c.Exec.log.Debug().Int("buses", len(bs)).Stringer("severity", level).Msg("sampled")
	return level, nil
}

// Dispatch runs the command configured for level. Normal runs nothing.
func (c *Checker) Dispatch(ctx context.Context, level severity.Level) error {
	if level == severity.Normal {
		return nil
	}
	cmd := c.Commands.For(level)
	if cmd == "" {
		c.Exec.log.Info().Stringer("severity", level).Msg("no command configured")
		return nil
	}
	return c.Exec.Execute(ctx, cmd)
}

// ExitCode maps a check result to the process exit status: the severity
// level, or -1 when the check failed.
func ExitCode(level severity.Level, err error) int {
	if err != nil {
		return -1
	}
	return int(level)
}

// ParseForce validates a --debug value: 0 samples normally, 1 and 2
// force high and critical.
func ParseForce(n int) (severity.Level, error) {
	level, err := severity.Parse(n)
	if err != nil {
		return severity.Normal, fmt.Errorf("debug level: %w", err)
	}
	return level, nil
}
