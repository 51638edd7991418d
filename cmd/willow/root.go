// ABOUTME: Root Cobra command and shared application state
// ABOUTME: Loads config, opens the tasklist store and builds the map registry and chat engine

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/chat"
	"github.com/harper/willow/internal/config"
	"github.com/harper/willow/internal/registry"
	"github.com/harper/willow/internal/storage"
	"github.com/harper/willow/internal/tasklist"
)

var (
	cfg    *config.Config
	logger *log.Logger
	store  storage.TaskStore
	tasks  *tasklist.Tasklist
	maps   *registry.Registry
	engine *chat.Engine
)

var rootCmd = &cobra.Command{
	Use:   "willow",
	Short: "Field research task tracker for community maps",
	Long: `
██╗    ██╗██╗██╗     ██╗      ██████╗ ██╗    ██╗
██║    ██║██║██║     ██║     ██╔═══██╗██║    ██║
██║ █╗ ██║██║██║     ██║     ██║   ██║██║ █╗ ██║
██║███╗██║██║██║     ██║     ██║   ██║██║███╗██║
╚███╔███╔╝██║███████╗███████╗╚██████╔╝╚███╔███╔╝
 ╚══╝╚══╝ ╚═╝╚══════╝╚══════╝ ╚═════╝  ╚══╝╚══╝

      Track which stop has which research task today

Examples:
  willow chat --server home
  willow tasks add Pikachu "Catch 10 Pokemon"
  willow map show home
  willow mcp --sweep`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return openApp(loaded)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// openApp wires the application state for c. Logs go to stderr so the MCP
// transport keeps stdout.
func openApp(c *config.Config) error {
	var err error
	logger, err = c.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	store, err = c.OpenTaskStore()
	if err != nil {
		return fmt.Errorf("failed to open tasklist store: %w", err)
	}
	tasks, err = tasklist.Open(store)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to load tasklist: %w", err)
	}

	maps, err = registry.New(c.MapsDir(), c.GetMapCacheSize(), logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to open maps: %w", err)
	}

	engine = chat.New(tasks, maps, chat.Options{
		Prefix:       c.GetPrefix(),
		MapURL:       c.MapURL,
		MaintainerID: c.MaintainerID,
		Logger:       logger,
	})
	cfg = c
	return nil
}

func closeApp() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
