// ABOUTME: Tasks commands for managing the shared tasklist
// ABOUTME: Lists, adds, deletes, nicknames and resets research tasks

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/ui"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"t"},
	Short:   "Manage the research tasklist",
}

var tasksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all known tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := tasks.Tasks()
		if len(all) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks known. Use 'willow tasks add' to add one.")
			return nil
		}
		for _, task := range all {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatTask(task))
		}
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <reward> <quest> [shiny]",
	Short: "Add a research task",
	Long: `Add a research task to the shared tasklist.

Examples:
  willow tasks add Pikachu "Catch 10 Pokemon"
  willow tasks add "Rare Candy" "Win 3 raids" true`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		shiny := false
		if len(args) == 3 {
			v, err := strconv.ParseBool(args[2])
			if err != nil {
				return fmt.Errorf("shiny should be either 'true' or 'false'")
			}
			shiny = v
		}

		task, err := tasks.AddTask(args[0], args[1], shiny)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		color.Green("✓ Added task")
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ui.FormatTask(task))
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:     "delete <task>",
	Aliases: []string{"rm"},
	Short:   "Delete a task by quest, nickname or reward",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := tasks.FindTask(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := tasks.RemoveTask(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		color.Green("✓ Deleted %s", task)
		return nil
	},
}

var tasksNicknameCmd = &cobra.Command{
	Use:   "nickname <task> <nickname>",
	Short: "Add a nickname to a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := tasks.FindTask(args[0])
		if err != nil {
			return err
		}
		nickname := strings.Join(args[1:], " ")
		if err := tasks.AddNickname(task.ID, nickname); err != nil {
			return fmt.Errorf("failed to add nickname: %w", err)
		}
		color.Green("✓ %s is now also known as %s", task.Reward, nickname)
		return nil
	},
}

var tasksResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Back up and clear the tasklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := tasks.BackupAndClear(time.Now())
		if err != nil {
			return fmt.Errorf("failed to reset tasklist: %w", err)
		}
		color.Green("✓ Tasklist cleared")
		fmt.Fprintf(cmd.OutOrStdout(), "  backup: %s\n", path)
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksNicknameCmd)
	tasksCmd.AddCommand(tasksResetCmd)

	rootCmd.AddCommand(tasksCmd)
}
