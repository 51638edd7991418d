// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Chat messages, structured commands and read-only task and map views

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/willow/internal/chat"
	"github.com/harper/willow/internal/models"
	"github.com/harper/willow/internal/taskmap"
)

func (s *Server) registerTools() {
	s.registerSendMessageTool()
	s.registerRunCommandTool()
	s.registerListTasksTool()
	s.registerGetMapTool()
}

// ReplyOutput is the engine's reply to a message or command.
type ReplyOutput struct {
	Kind        string      `json:"kind"`
	Text        string      `json:"text,omitempty"`
	Cards       []chat.Card `json:"cards,omitempty"`
	AckPrevious bool        `json:"ack_previous,omitempty"`
}

func replyOutput(r chat.Reply) ReplyOutput {
	return ReplyOutput{
		Kind:        r.Kind.String(),
		Text:        r.Text,
		Cards:       r.Cards,
		AckPrevious: r.AckPrevious,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// SendMessageInput defines input for send_message tool.
type SendMessageInput struct {
	ServerID string `json:"server_id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	Admin    bool   `json:"admin,omitempty"`
}

func (s *Server) registerSendMessageTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "send_message",
		Description: "Deliver one chat message to the bot exactly as a user typed it. Prefixed text runs a command; " +
			"a stop name followed by a task name from the same author assigns the task.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"server_id": map[string]interface{}{
					"type":        "string",
					"description": "Community the message was sent in",
				},
				"author_id": map[string]interface{}{
					"type":        "string",
					"description": "Who sent the message",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw message text (e.g., '?addstop Clock Tower 42.46 -76.51')",
				},
				"admin": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the author administers the server",
				},
			},
			"required": []string{"server_id", "author_id", "text"},
		},
	}, s.handleSendMessage)
}

func (s *Server) handleSendMessage(_ context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, ReplyOutput, error) {
	if strings.TrimSpace(input.AuthorID) == "" {
		return nil, ReplyOutput{}, fmt.Errorf("author_id is required")
	}
	reply := s.engine.Handle(chat.Message{
		ServerID: input.ServerID,
		AuthorID: input.AuthorID,
		Text:     input.Text,
		Admin:    input.Admin,
	})
	output := replyOutput(reply)
	return jsonResult(output), output, nil
}

// RunCommandInput defines input for run_command tool.
type RunCommandInput struct {
	ServerID string   `json:"server_id"`
	AuthorID string   `json:"author_id"`
	Admin    bool     `json:"admin,omitempty"`
	Command  string   `json:"command"`
	Args     []string `json:"args,omitempty"`
}

func (s *Server) registerRunCommandTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "run_command",
		Description: "Run one bot command with already split arguments, e.g. command 'settask' with args ['Pikachu', 'Clock Tower'].",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"server_id": map[string]interface{}{
					"type":        "string",
					"description": "Community the command applies to",
				},
				"author_id": map[string]interface{}{
					"type":        "string",
					"description": "Who issued the command",
				},
				"admin": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the author administers the server",
				},
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Command name without prefix (e.g., 'addstop', 'listtasks')",
				},
				"args": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Positional arguments",
				},
			},
			"required": []string{"author_id", "command"},
		},
	}, s.handleRunCommand)
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcp.CallToolRequest, input RunCommandInput) (*mcp.CallToolResult, ReplyOutput, error) {
	if strings.TrimSpace(input.Command) == "" {
		return nil, ReplyOutput{}, fmt.Errorf("command is required")
	}
	reply := s.engine.Execute(chat.Invocation{
		ServerID: input.ServerID,
		AuthorID: input.AuthorID,
		Admin:    input.Admin,
		Command:  input.Command,
		Args:     input.Args,
	})
	output := replyOutput(reply)
	return jsonResult(output), output, nil
}

// TaskOutput is one tasklist entry.
type TaskOutput struct {
	ID        string   `json:"id"`
	Reward    string   `json:"reward"`
	Quest     string   `json:"quest"`
	Shiny     bool     `json:"shiny,omitempty"`
	Nicknames []string `json:"nicknames,omitempty"`
}

// ListTasksOutput defines output for list_tasks tool.
type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

// ListTasksInput defines input for list_tasks tool.
type ListTasksInput struct{}

func (s *Server) registerListTasksTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List every research task the bot knows.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, s.handleListTasks)
}

func (s *Server) listTasks() ListTasksOutput {
	tasks := s.tasks.Tasks()
	output := ListTasksOutput{Tasks: make([]TaskOutput, len(tasks)), Count: len(tasks)}
	for i, t := range tasks {
		output.Tasks[i] = TaskOutput{
			ID:        t.ID.String(),
			Reward:    t.Reward,
			Quest:     t.Quest,
			Shiny:     t.Shiny,
			Nicknames: t.Nicknames,
		}
	}
	return output
}

func (s *Server) handleListTasks(_ context.Context, _ *mcp.CallToolRequest, _ ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	output := s.listTasks()
	return jsonResult(output), output, nil
}

// GetMapInput defines input for get_map tool.
type GetMapInput struct {
	ServerID string `json:"server_id"`
}

// StopOutput is one stop on a map.
type StopOutput struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Nicknames []string `json:"nicknames,omitempty"`
	Task      string   `json:"task,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Shadow    string   `json:"shadow,omitempty"`
}

// MapOutput defines output for get_map tool.
type MapOutput struct {
	ServerID  string       `json:"server_id"`
	TimeZone  string       `json:"timezone,omitempty"`
	LastReset string       `json:"last_reset"`
	Stops     []StopOutput `json:"stops"`
	Count     int          `json:"count"`
}

func (s *Server) registerGetMapTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_map",
		Description: "Show one community's stops with their current tasks and shadow sightings.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"server_id": map[string]interface{}{
					"type":        "string",
					"description": "Community whose map to show",
				},
			},
			"required": []string{"server_id"},
		},
	}, s.handleGetMap)
}

func (s *Server) mapOutput(serverID string) (MapOutput, error) {
	output := MapOutput{ServerID: serverID}
	err := s.maps.With(serverID, func(m *taskmap.Taskmap) error {
		output.TimeZone = m.TimeZone()
		output.LastReset = m.LastReset().Format(time.RFC3339)
		for _, stop := range m.Stops() {
			output.Stops = append(output.Stops, s.stopOutput(stop))
		}
		return nil
	})
	if err != nil {
		return MapOutput{}, err
	}
	output.Count = len(output.Stops)
	return output, nil
}

func (s *Server) stopOutput(stop *models.Stop) StopOutput {
	out := StopOutput{
		Name:      stop.Name,
		Latitude:  stop.Location.Latitude,
		Longitude: stop.Location.Longitude,
		Nicknames: stop.Nicknames,
		Icon:      stop.Icon,
		Shadow:    stop.Shadow,
	}
	if stop.HasTask() {
		out.Task = s.engine.TaskLabel(stop.Task)
	}
	return out
}

func (s *Server) handleGetMap(_ context.Context, _ *mcp.CallToolRequest, input GetMapInput) (*mcp.CallToolResult, MapOutput, error) {
	output, err := s.mapOutput(input.ServerID)
	if err != nil {
		return nil, MapOutput{}, fmt.Errorf("failed to load map: %w", err)
	}
	return jsonResult(output), output, nil
}
