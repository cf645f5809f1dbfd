// Package stress loads a component for a while so its sensors have
// something to show.
package stress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/luki/proctemp/internal/logger"
)

// Targets lists what can be stressed and how.
var Targets = []struct {
	Name string
	Desc string
}{
	{"cpu", "All CPU cores (stress-ng --cpu, built-in burner otherwise)"},
	{"gpu", "GPU rendering (glmark2 or glxgears)"},
	{"disk", "Sequential I/O on a temp directory (fio)"},
	{"all", "Everything at once"},
}

// ErrUnknownTarget is returned for targets not in Targets.
var ErrUnknownTarget = errors.New("unknown stress target")

// Runner runs stress jobs, writing progress to Out.
type Runner struct {
	Out io.Writer

	lookPath func(string) (string, error)
}

// New returns a Runner printing to out.
func New(out io.Writer) *Runner {
	return &Runner{Out: out, lookPath: exec.LookPath}
}

// Run stresses target for d, or until ctx is done.
func (r *Runner) Run(ctx context.Context, target string, d time.Duration) error {
	if d <= 0 {
		d = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	log := logger.WithComponent("stress")
	log.Info().Str("target", target).Dur("duration", d).Msg("starting")

	var err error
	switch target {
	case "cpu":
		err = r.cpu(ctx, d)
	case "gpu":
		err = r.gpu(ctx)
	case "disk":
		err = r.disk(ctx, d)
	case "all":
		err = r.all(ctx, d)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("stress failed")
		return err
	}
	fmt.Fprintln(r.Out, "  done")
	return nil
}

func (r *Runner) has(tool string) bool {
	_, err := r.lookPath(tool)
	return err == nil
}

func (r *Runner) cpu(ctx context.Context, d time.Duration) error {
	cpus := runtime.NumCPU()
	if !r.has("stress-ng") {
		fmt.Fprintf(r.Out, "  stress-ng not found, burning %d cores\n", cpus)
		burn(ctx, cpus)
		return nil
	}
	secs := strconv.Itoa(max(int(d.Seconds()), 1))
	fmt.Fprintf(r.Out, "  stress-ng --cpu %d --timeout %ss\n", cpus, secs)
	return r.command(ctx, "stress-ng", "--cpu", strconv.Itoa(cpus), "--timeout", secs+"s")
}

// burn keeps n goroutines busy until ctx is done.
func burn(ctx context.Context, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			x := 0.0
			for ctx.Err() == nil {
				for j := 0; j < 1<<16; j++ {
					x += 1.1
					x *= 0.9
				}
			}
		}()
	}
	wg.Wait()
}

func (r *Runner) gpu(ctx context.Context) error {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		fmt.Fprintln(r.Out, "  note: needs a graphical session (DISPLAY or WAYLAND_DISPLAY)")
	}
	switch {
	case r.has("glmark2"):
		fmt.Fprintln(r.Out, "  glmark2 (OpenGL rendering benchmark)")
		return r.command(ctx, "glmark2", "--run-forever")
	case r.has("glxgears"):
		fmt.Fprintln(r.Out, "  glxgears (OpenGL rendering)")
		return r.command(ctx, "glxgears")
	default:
		return errors.New("no GPU stress tool found (install glmark2)")
	}
}

func (r *Runner) disk(ctx context.Context, d time.Duration) error {
	if !r.has("fio") {
		return errors.New("fio not found")
	}
	dir, err := os.MkdirTemp("", "proctemp-stress-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	secs := strconv.Itoa(max(int(d.Seconds()), 1))
	fmt.Fprintf(r.Out, "  fio sequential I/O in %s for %ss\n", dir, secs)
	return r.command(ctx, "fio",
		"--name=disk-stress",
		"--directory="+dir,
		"--rw=readwrite",
		"--bs=128k",
		"--size=512M",
		"--numjobs=2",
		"--iodepth=8",
		"--ioengine=libaio",
		"--direct=1",
		"--runtime="+secs,
		"--time_based",
		"--group_reporting",
	)
}

// lockedWriter serializes writes from concurrent jobs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (r *Runner) all(ctx context.Context, d time.Duration) error {
	r = &Runner{Out: &lockedWriter{w: r.Out}, lookPath: r.lookPath}
	jobs := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"CPU", func(ctx context.Context) error { return r.cpu(ctx, d) }},
		{"GPU", r.gpu},
		{"disk", func(ctx context.Context) error { return r.disk(ctx, d) }},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Fprintf(r.Out, "-- starting %s stress\n", j.name)
			if err := j.fn(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.name, err)
			}
		}()
	}
	wg.Wait()

	// one missing tool should not fail the whole run
	for _, err := range errs {
		if err != nil {
			fmt.Fprintf(r.Out, "  skipped %v\n", err)
		}
	}
	return nil
}

// command runs a tool until it exits or ctx is done. Interrupting it is
// not an error, and neither is exit status 1, which stress tools report
// on timeout.
func (r *Runner) command(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Out
	cmd.Stderr = r.Out
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = 200 * time.Millisecond

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
