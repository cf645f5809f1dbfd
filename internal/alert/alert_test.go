package alert

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/goleak"

	"github.com/luki/proctemp/internal/logger"
	"github.com/luki/proctemp/internal/sensor"
	"github.com/luki/proctemp/internal/severity"
)

func init() {
	logger.Init(logger.Config{Level: "disabled"})
}

// fakeRunner records commands instead of running them.
type fakeRunner struct {
	mu    sync.Mutex
	cmds  []string
	err   error
	calls chan string
}

func (f *fakeRunner) Run(_ context.Context, command string) error {
	f.mu.Lock()
	f.cmds = append(f.cmds, command)
	f.mu.Unlock()
	if f.calls != nil {
		f.calls <- command
	}
	return f.err
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cmds...)
}

func reading(cur float64) sensor.BusSet {
	return sensor.BusSet{{
		Name:  "ISA adapter",
		Chips: []sensor.Chip{{Name: "coretemp", Temperatures: []sensor.Temperature{{Current: cur, High: 70, Critical: 90}}}},
	}}
}

func TestCheck(t *testing.T) {
	cmds := Commands{High: "notify", Critical: "shutdown-now"}

	tests := []struct {
		name    string
		current float64
		want    severity.Level
		ran     []string
	}{
		{"normal", 55, severity.Normal, nil},
		{"high", 75, severity.High, []string{"notify"}},
		{"critical", 95, severity.Critical, []string{"shutdown-now"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			c := &Checker{
				Provider: sensor.NewStatic(reading(tt.current)),
				Commands: cmds,
				Exec:     NewExecutor(r),
			}
			level, err := c.Check(context.Background())
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if level != tt.want {
				t.Errorf("severity: got %v, want %v", level, tt.want)
			}
			if got := r.commands(); len(got) != len(tt.ran) || (len(got) == 1 && got[0] != tt.ran[0]) {
				t.Errorf("commands: got %v, want %v", got, tt.ran)
			}
			if code := ExitCode(level, err); code != int(tt.want) {
				t.Errorf("exit code: got %d, want %d", code, tt.want)
			}
		})
	}
}

func TestCheckEmptyCommandSkipped(t *testing.T) {
	r := &fakeRunner{}
	c := &Checker{
		Provider: sensor.NewStatic(reading(95)),
		Commands: Commands{High: "notify"},
		Exec:     NewExecutor(r),
	}
	level, err := c.Check(context.Background())
	if err != nil || level != severity.Critical {
		t.Fatalf("got %v, %v", level, err)
	}
	if got := r.commands(); len(got) != 0 {
		t.Errorf("expected no commands, got %v", got)
	}
}

func TestCheckGPUFilter(t *testing.T) {
	bs := append(reading(55), sensor.Bus{
		Name:  "PCI adapter",
		ID:    1,
		Chips: []sensor.Chip{{Name: "amdgpu", Temperatures: []sensor.Temperature{{Current: 99, High: 80, Critical: 95}}}},
	})

	c := &Checker{Provider: sensor.NewStatic(bs), Exec: NewExecutor(&fakeRunner{})}
	if level, _ := c.Check(context.Background()); level != severity.Normal {
		t.Errorf("CPU buses: got %v, want normal", level)
	}
	c.GPUs = true
	if level, _ := c.Check(context.Background()); level != severity.Critical {
		t.Errorf("GPU buses: got %v, want critical", level)
	}
}

func TestCheckForced(t *testing.T) {
	r := &fakeRunner{}
	c := &Checker{
		Provider: &failingProvider{},
		Commands: Commands{High: "notify"},
		Exec:     NewExecutor(r),
		Force:    severity.High,
	}
	level, err := c.Check(context.Background())
	if err != nil || level != severity.High {
		t.Fatalf("got %v, %v", level, err)
	}
	if got := r.commands(); len(got) != 1 || got[0] != "notify" {
		t.Errorf("commands: got %v", got)
	}
}

type failingProvider struct{ sensor.Static }

func (*failingProvider) Buses(context.Context) ([]int, error) {
	return nil, &sensor.ProviderError{Op: "test", Err: errors.New("no sensors")}
}

func TestCheckProviderError(t *testing.T) {
	c := &Checker{Provider: &failingProvider{}, Exec: NewExecutor(&fakeRunner{})}
	level, err := c.Check(context.Background())
	var perr *sensor.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if code := ExitCode(level, err); code != -1 {
		t.Errorf("exit code: got %d, want -1", code)
	}
}

func TestExecuteWrapsLaunchFailure(t *testing.T) {
	e := NewExecutor(&fakeRunner{err: errors.New("fork failed")})
	err := e.Execute(context.Background(), "notify")
	var launchErr *LaunchError
	if !errors.As(err, &launchErr) || launchErr.Command != "notify" {
		t.Errorf("expected LaunchError for notify, got %v", err)
	}
}

func TestShellIgnoresExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sh not available")
	}
	if err := (Shell{}).Run(context.Background(), "exit 3"); err != nil {
		t.Errorf("exit status should not be an error: %v", err)
	}
}

func TestParseForce(t *testing.T) {
	if l, err := ParseForce(2); err != nil || l != severity.Critical {
		t.Errorf("got %v, %v", l, err)
	}
	if _, err := ParseForce(5); err == nil {
		t.Error("expected error for 5")
	}
}

func TestWatchKeepsGoingAfterFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &fakeRunner{err: errors.New("fork failed"), calls: make(chan string, 4)}
	c := &Checker{
		Provider: sensor.NewStatic(reading(75)),
		Commands: Commands{High: "notify"},
		Exec:     NewExecutor(r),
	}
	mock := clock.NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Watch(ctx, mock, 10*time.Second)
	}()

	waitCommand(t, r.calls)
	mock.Add(10 * time.Second)
	waitCommand(t, r.calls)
	mock.Add(10 * time.Second)
	waitCommand(t, r.calls)

	cancel()
	<-done

	if got := len(r.commands()); got != 3 {
		t.Errorf("expected 3 runs, got %d", got)
	}
}

func waitCommand(t *testing.T, calls <-chan string) {
	t.Helper()
	select {
	case cmd := <-calls:
		if cmd != "notify" {
			t.Errorf("got command %q", cmd)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the alert command")
	}
}
