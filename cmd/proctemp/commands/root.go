package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luki/proctemp/internal/config"
	"github.com/luki/proctemp/internal/logger"
	"github.com/luki/proctemp/internal/sensor"
)

// Build information, set with -ldflags "-X".
var (
	Version   = "1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	cfgFile   string
	source    string
	hwmonRoot string
	nvidia    bool
	drives    bool
	logLevel  string

	// loaded in PersistentPreRunE
	opts     config.Options
	optsPath string
)

// rootCmd runs the viewer when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "proctemp",
	Short: "Hardware temperature monitor",
	Long: `proctemp reads the machine's temperature and fan sensors and either
draws them as live bar graphs in the terminal or runs a command when a
reading crosses its high or critical threshold.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runView,
}

// UnknownOptionError reports an invalid command line.
type UnknownOptionError struct {
	Command string
	Err     error
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *UnknownOptionError) Unwrap() error { return e.Err }

// exitError carries a specific process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Close()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	logger.Error().Err(err).Msg("command failed")

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(os.Stderr, "proctemp:", exit.err)
		}
		return exit.code
	}

	fmt.Fprintln(os.Stderr, "proctemp:", err)
	var optErr *UnknownOptionError
	if errors.As(err, &optErr) {
		fmt.Fprintf(os.Stderr, "Run 'proctemp %s --help' for usage.\n", optErr.Command)
		if optErr.Command == alertCmd.Name() {
			return -1
		}
	}
	return 1
}

func init() {
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "options file (default is "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "sensor backend: auto, lmsensors, hwmon or gopsutil (default from options)")
	rootCmd.PersistentFlags().StringVar(&hwmonRoot, "hwmon-root", sensor.DefaultHwmonRoot, "sysfs hwmon directory")
	rootCmd.PersistentFlags().BoolVar(&nvidia, "nvidia", false, "add NVIDIA GPUs via nvidia-smi (lmsensors backend)")
	rootCmd.PersistentFlags().BoolVar(&drives, "drives", false, "add SATA drives via smartctl (lmsensors backend)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default from options)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UnknownOptionError{Command: cmd.Name(), Err: err}
	})

	rootCmd.SetVersionTemplate(`proctemp {{.Version}}
`)
}

// setup loads the options file and starts logging. The viewer owns the
// terminal, so it logs to a file only.
func setup(cmd *cobra.Command, _ []string) error {
	optsPath = cfgFile
	if optsPath == "" {
		optsPath = config.DefaultPath()
	}

	var loadErr error
	opts, loadErr = config.Load(optsPath)

	lc := opts.Logging
	if logLevel != "" {
		lc.Level = logLevel
	}
	if isView(cmd) {
		lc.Console = false
		if lc.FilePath == "" {
			lc.FilePath = filepath.Join(filepath.Dir(optsPath), "proctemp.log")
		}
	}
	if err := logger.Init(lc); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	if loadErr != nil {
		logger.Warn().Err(loadErr).Msg("using default options")
	}
	logger.Debug().
		Str("version", Version).
		Str("config", optsPath).
		Bool("fahrenheit", opts.Fahrenheit).
		Dur("refresh", opts.Refresh).
		Msg("options loaded")
	return nil
}

func isView(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == viewCmd
}

// openProvider opens the configured sensor backend.
func openProvider(gpus bool) (sensor.Provider, error) {
	name := source
	if name == "" {
		name = opts.Source
	}
	if name == "" || name == sensor.BackendAuto {
		name = sensor.Detect(hwmonRoot)
	}

	p, err := sensor.Open(name, sensor.Options{
		GPUs:      nvidia || gpus,
		Drives:    drives,
		HwmonRoot: hwmonRoot,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", name).Msg("sensor backend selected")
	return p, nil
}
