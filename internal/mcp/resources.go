// ABOUTME: MCP resource definitions
// ABOUTME: Provides the tasklist and each map's GeoJSON document read-only

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/willow/internal/taskmap"
)

const (
	tasklistURI     = "willow://tasklist"
	mapURIPrefix    = "willow://maps/"
	geoJSONMIMEType = "application/geo+json"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        tasklistURI,
		Description: "Every known research task",
		URI:         tasklistURI,
		MIMEType:    "application/json",
	}, s.handleTasklistResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "map",
		Description: "A community's map as the GeoJSON document the web view renders",
		URITemplate: mapURIPrefix + "{server_id}",
		MIMEType:    geoJSONMIMEType,
	}, s.handleMapResource)
}

func (s *Server) handleTasklistResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	jsonBytes, _ := json.MarshalIndent(s.listTasks(), "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      tasklistURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}

func (s *Server) handleMapResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	serverID := strings.TrimPrefix(uri, mapURIPrefix)
	if serverID == uri || serverID == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	var doc []byte
	err := s.maps.With(serverID, func(m *taskmap.Taskmap) error {
		var err error
		doc, err = m.Document().ToJSONIndent()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: geoJSONMIMEType,
				Text:     string(doc),
			},
		},
	}, nil
}
