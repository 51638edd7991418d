// ABOUTME: Import command for restoring the tasklist from a YAML backup
// ABOUTME: Adds tasks from a snapshot, skipping ones the tasklist already has

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from a YAML backup",
	Long: `Import tasks from a backup written by 'willow backup'.

Tasks whose quest is already known are skipped.

Examples:
  willow import tasks.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := storage.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}

		snapshot, err := storage.ImportFromYAML(data)
		if err != nil {
			return fmt.Errorf("failed to parse backup: %w", err)
		}

		added, skipped := 0, 0
		for _, t := range snapshot {
			task, err := tasks.AddTask(t.Reward, t.Quest, t.Shiny)
			if errors.Is(err, models.ErrDuplicateTask) {
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", t, err)
			}
			for _, nick := range t.Nicknames {
				if err := tasks.AddNickname(task.ID, nick); err != nil {
					return fmt.Errorf("failed to import nickname %s: %w", nick, err)
				}
			}
			added++
		}

		color.Green("✓ Imported %d tasks", added)
		if skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d already known\n", skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
