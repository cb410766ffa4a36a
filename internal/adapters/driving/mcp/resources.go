package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for brahma resources.
	uriScheme = "brahma://"

	statusURI = uriScheme + "status"
)

// statusInfo is the JSON body of the status resource.
// It never includes the credential.
type statusInfo struct {
	Ready      bool       `json:"ready"`
	Provider   string     `json:"provider"`
	Workspace  string     `json:"workspace"`
	IndexDir   string     `json:"index_dir"`
	Model      string     `json:"model,omitempty"`
	Dimensions int        `json:"dimensions,omitempty"`
	Chunks     int        `json:"chunks"`
	Documents  int        `json:"documents"`
	BuiltAt    *time.Time `json:"built_at,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         statusURI,
		Name:        "status",
		Description: "Index readiness, active provider and index size",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleStatusResource returns the index status as JSON.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Engine.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	info := statusInfo{
		Ready:     status.Ready,
		Provider:  status.Config.Provider.String(),
		Workspace: status.Config.WorkspaceDir,
		IndexDir:  status.Config.IndexDir,
	}
	if m := status.Manifest; m != nil {
		info.Model = m.Model
		info.Dimensions = m.Dimensions
		info.Chunks = m.Chunks
		info.Documents = m.Documents
		builtAt := m.BuiltAt
		info.BuiltAt = &builtAt
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
