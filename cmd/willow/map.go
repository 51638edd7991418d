// ABOUTME: Map commands for inspecting community maps
// ABOUTME: Lists known maps, shows stops and exports the GeoJSON document

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/storage"
	"github.com/harper/willow/internal/taskmap"
	"github.com/harper/willow/internal/ui"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Inspect community maps",
}

var mapListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List servers with saved maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		servers, err := maps.Servers()
		if err != nil {
			return fmt.Errorf("failed to list maps: %w", err)
		}
		if len(servers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No maps yet. Add a stop from chat to create one.")
			return nil
		}
		for _, id := range servers {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var mapShowCmd = &cobra.Command{
	Use:   "show <server>",
	Short: "Show a map's stops and their tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return maps.With(args[0], func(m *taskmap.Taskmap) error {
			zone := m.TimeZone()
			if zone == "" {
				zone = "UTC"
			}
			fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(args[0]),
				color.New(color.Faint).Sprintf("(%s, reset %s)", zone, ui.FormatRelativeTime(m.LastReset())))

			stops := m.Stops()
			if len(stops) == 0 {
				fmt.Fprintln(out, "  no stops")
				return nil
			}
			for _, stop := range stops {
				label := ""
				if stop.HasTask() {
					label = engine.TaskLabel(stop.Task)
				}
				fmt.Fprintf(out, "  %s\n", ui.FormatStop(stop, label))
			}
			return nil
		})
	},
}

var mapExportCmd = &cobra.Command{
	Use:   "export <server>",
	Short: "Export a map as GeoJSON",
	Long: `Export a map as the GeoJSON document the web map renders.

Examples:
  willow map export home
  willow map export home -o home.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		var data []byte
		err := maps.With(args[0], func(m *taskmap.Taskmap) error {
			var err error
			data, err = m.Document().ToJSONIndent()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to export map: %w", err)
		}

		if output == "" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := storage.AtomicWrite(output, data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintln(os.Stderr, color.GreenString("✓ Exported %s to %s", args[0], output))
		return nil
	},
}

func init() {
	mapExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	mapCmd.AddCommand(mapListCmd)
	mapCmd.AddCommand(mapShowCmd)
	mapCmd.AddCommand(mapExportCmd)

	rootCmd.AddCommand(mapCmd)
}
