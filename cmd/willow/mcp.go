// ABOUTME: MCP serve command
// ABOUTME: Starts the MCP server for AI agent integration, optionally with the reset sweeper

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harper/willow/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(engine, tasks, maps)
		if err != nil {
			return err
		}

		sweep, _ := cmd.Flags().GetBool("sweep")
		interval, err := cfg.GetSweepInterval()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			return server.Serve(ctx)
		})
		if sweep {
			g.Go(func() error {
				return maps.RunSweeper(ctx, interval)
			})
		}
		return g.Wait()
	},
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func init() {
	mcpCmd.Flags().Bool("sweep", false, "reset stale maps in the background while serving")

	rootCmd.AddCommand(mcpCmd)
}
