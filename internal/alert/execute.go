// Package alert runs the user's alert commands when the sensor snapshot
// reaches the high or critical severity.
package alert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/luki/proctemp/internal/logger"
)

// LaunchError reports that an alert command could not be started. The
// command's own exit status is never an error.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Runner starts a shell command and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// Shell runs commands through the platform shell, sh -c or cmd /C.
type Shell struct{}

// Run starts command and waits for it. It fails only when the shell
// cannot be started.
func (Shell) Run(ctx context.Context, command string) error {
	cmd := shellCommand(ctx, command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return &LaunchError{Command: command, Err: err}
	}

	log := logger.WithComponent("alert")
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Debug().Str("cmd", command).Int("exit_code", exitErr.ExitCode()).Msg("command finished")
		} else {
			log.Warn().Err(err).Str("cmd", command).Msg("command did not finish cleanly")
		}
	}
	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// Executor logs and runs alert commands.
type Executor struct {
	runner Runner
	log    zerolog.Logger
}

// NewExecutor returns an Executor using r, or Shell when r is nil.
func NewExecutor(r Runner) *Executor {
	if r == nil {
		r = Shell{}
	}
	return &Executor{runner: r, log: logger.WithComponent("alert")}
}

// Execute logs command and runs it to completion.
func (e *Executor) Execute(ctx context.Context, command string) error {
	e.log.Info().Str("cmd", command).Msgf("executing '%s'", command)
	if err := e.runner.Run(ctx, command); err != nil {
		var launchErr *LaunchError
		if !errors.As(err, &launchErr) {
			err = &LaunchError{Command: command, Err: err}
		}
		return err
	}
	return nil
}
