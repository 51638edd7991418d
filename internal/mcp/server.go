// ABOUTME: MCP server initialization and configuration
// ABOUTME: Exposes the chat engine, tasklist and maps to AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/willow/internal/chat"
	"github.com/harper/willow/internal/registry"
	"github.com/harper/willow/internal/tasklist"
)

// Server wraps MCP server with the chat engine it drives.
type Server struct {
	mcp    *mcp.Server
	engine *chat.Engine
	tasks  *tasklist.Tasklist
	maps   *registry.Registry
}

// NewServer creates MCP server with all capabilities.
func NewServer(engine *chat.Engine, tasks *tasklist.Tasklist, maps *registry.Registry) (*Server, error) {
	if engine == nil || tasks == nil || maps == nil {
		return nil, fmt.Errorf("engine, tasklist and registry are required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "willow",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		engine: engine,
		tasks:  tasks,
		maps:   maps,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
