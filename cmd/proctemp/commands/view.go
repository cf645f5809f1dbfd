package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luki/proctemp/internal/sensor"
	"github.com/luki/proctemp/internal/ui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show live temperature bars (default)",
	Long: `Draws every temperature reading as a coloured bar, refreshed about once a
second. Keys: T switches between Celsius and Fahrenheit, S saves the
options, ! toggles debug mode, Q quits.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
	p, err := openProvider(false)
	if err != nil {
		return err
	}

	// a backend that cannot be read at startup is fatal; later failures
	// are shown on screen and retried
	if _, err := sensor.Scan(cmd.Context(), p); err != nil {
		return fmt.Errorf("read sensors: %w", err)
	}

	_, err = ui.Run(cmd.Context(), ui.Config{
		Provider: p,
		Options:  opts,
		Path:     optsPath,
		Version:  Version,
	})
	return err
}
