// ABOUTME: Sweep command for the daily task reset
// ABOUTME: Clears yesterday's tasks on every map, once or on a schedule

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reset tasks on maps whose local day has ended",
	Long: `Reset every map whose last reset was before midnight in its time zone.

Without --once, keeps running and sweeps on the configured interval.

Examples:
  willow sweep --once
  willow sweep`,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		ctx, cancel := signalContext()
		defer cancel()

		if once {
			reset, err := maps.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			color.Green("✓ Swept maps")
			fmt.Fprintf(cmd.OutOrStdout(), "  %d reset\n", reset)
			return nil
		}

		interval, err := cfg.GetSweepInterval()
		if err != nil {
			return err
		}
		return maps.RunSweeper(ctx, interval)
	},
}

func init() {
	sweepCmd.Flags().Bool("once", false, "sweep a single time and exit")

	rootCmd.AddCommand(sweepCmd)
}
