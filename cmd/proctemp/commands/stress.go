package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luki/proctemp/internal/stress"
)

var stressCmd = &cobra.Command{
	Use:   "stress <target> [duration]",
	Short: "Load a component so its temperatures rise",
	Example: `  proctemp stress cpu 30s
  proctemp stress gpu 2m
  proctemp stress all 60`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: stressTargetNames(),
	RunE:      runStress,
}

func init() {
	rootCmd.AddCommand(stressCmd)

	var sb strings.Builder
	sb.WriteString("Targets:\n")
	for _, t := range stress.Targets {
		fmt.Fprintf(&sb, "  %-8s  %s\n", t.Name, t.Desc)
	}
	sb.WriteString("\nDuration: e.g. '60' (seconds), '2m', '30s' (default: 60s). Ctrl+C stops early.")
	stressCmd.Long = sb.String()
}

func stressTargetNames() []string {
	names := make([]string, len(stress.Targets))
	for i, t := range stress.Targets {
		names[i] = t.Name
	}
	return names
}

// parseDuration accepts Go durations and plain seconds.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

func runStress(cmd *cobra.Command, args []string) error {
	target := strings.ToLower(args[0])

	d := time.Minute
	if len(args) > 1 {
		var err error
		if d, err = parseDuration(args[1]); err != nil {
			return &UnknownOptionError{Command: cmd.Name(), Err: err}
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stressing: %s for %s\n", target, d)
	fmt.Fprintln(out, "Press Ctrl+C to stop early")
	fmt.Fprintln(out)

	return stress.New(out).Run(cmd.Context(), target, d)
}
