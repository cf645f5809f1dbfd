package commands

import (
	"github.com/spf13/cobra"

	"github.com/luki/proctemp/internal/export"
	"github.com/luki/proctemp/internal/sensor"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print one sensor snapshot",
	Long:  `Reads every sensor once and prints the snapshot as text, CSV, JSON or YAML.`,
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("format", "f", "text", "output format (text, csv, json, yaml)")
	scanCmd.Flags().Bool("fahrenheit", false, "show Fahrenheit in text output (default from options)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return &UnknownOptionError{Command: cmd.Name(), Err: err}
	}

	fahrenheit := opts.Fahrenheit
	if cmd.Flags().Changed("fahrenheit") {
		fahrenheit, _ = cmd.Flags().GetBool("fahrenheit")
	}

	p, err := openProvider(false)
	if err != nil {
		return err
	}
	bs, err := sensor.Scan(cmd.Context(), p)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), bs, format, fahrenheit)
}
