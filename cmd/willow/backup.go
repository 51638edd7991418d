// ABOUTME: Backup command for exporting the tasklist to YAML
// ABOUTME: Creates portable snapshots that import can restore on any backend

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/storage"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of the tasklist",
	Long: `Create a YAML backup file containing every task.

The backup file can be used to:
- Move the tasklist to another backend
- Restore after a bad resettasklist
- Seed a fresh install

Examples:
  willow backup --output tasks.yaml
  willow backup -o ~/backups/tasks-$(date +%Y%m%d).yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		all := tasks.Tasks()
		data, err := storage.ExportToYAML(all)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		if output == "" {
			output = fmt.Sprintf("tasks-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := storage.AtomicWrite(output, data); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}

		color.Green("Backup created: %s", output)
		fmt.Fprintf(cmd.OutOrStdout(), "  %d tasks\n", len(all))
		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: tasks-YYYYMMDD-HHMMSS.yaml)")

	rootCmd.AddCommand(backupCmd)
}
