package commands

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/luki/proctemp/internal/alert"
	"github.com/luki/proctemp/internal/logger"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Run a command when temperatures cross their thresholds",
	Long: `Samples the sensors once and runs --high_cmd when any reading is above
its high threshold, or --critical_cmd when any is above its critical
threshold. The exit status is the severity: 0 normal, 1 high, 2 critical,
-1 on error. With --watch the check repeats until interrupted.`,
	Example: `  proctemp alert -i 'notify-send "CPU is hot"' -c 'systemctl poweroff'
  proctemp alert -g -c 'nvidia-smi -pl 150'
  proctemp alert --watch 30s -i 'logger hot'`,
	Args: cobra.NoArgs,
	RunE: runAlert,
}

func init() {
	rootCmd.AddCommand(alertCmd)

	alertCmd.Flags().StringP("high_cmd", "i", "", "command to run at high severity")
	alertCmd.Flags().StringP("critical_cmd", "c", "", "command to run at critical severity")
	alertCmd.Flags().IntP("debug", "d", 0, "force severity 1 or 2 without reading sensors")
	alertCmd.Flags().BoolP("gpus", "g", false, "check GPUs (PCI buses) instead of the rest")
	alertCmd.Flags().Duration("watch", 0, "repeat the check at this interval")
}

func runAlert(cmd *cobra.Command, _ []string) error {
	highCmd, _ := cmd.Flags().GetString("high_cmd")
	critCmd, _ := cmd.Flags().GetString("critical_cmd")
	debug, _ := cmd.Flags().GetInt("debug")
	gpus, _ := cmd.Flags().GetBool("gpus")
	watch, _ := cmd.Flags().GetDuration("watch")

	log := logger.WithComponent("alert")
	log.Info().
		Str("version", Version).
		Str("high_cmd", highCmd).
		Str("critical_cmd", critCmd).
		Int("debug", debug).
		Bool("gpus", gpus).
		Msg("proctemp alert")

	force, err := alert.ParseForce(debug)
	if err != nil {
		return &exitError{code: -1, err: err}
	}

	p, err := openProvider(gpus)
	if err != nil {
		return &exitError{code: -1, err: err}
	}

	checker := &alert.Checker{
		Provider: p,
		Commands: alert.Commands{High: highCmd, Critical: critCmd},
		Exec:     alert.NewExecutor(nil),
		GPUs:     gpus,
		Force:    force,
	}

	if watch > 0 {
		checker.Watch(cmd.Context(), clock.New(), max(watch, time.Second))
		return nil
	}

	level, err := checker.Check(cmd.Context())
	code := alert.ExitCode(level, err)
	if err != nil {
		log.Error().Err(err).Msg("check failed")
	} else {
		log.Info().Stringer("severity", level).Msg("check complete")
	}
	if code == 0 {
		return nil
	}
	return &exitError{code: code, err: err}
}
