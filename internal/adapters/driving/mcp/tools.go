package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages to retrieve (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	Degraded  bool     `json:"degraded"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct{}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	Files        int      `json:"files"`
	Documents    int      `json:"documents"`
	Segments     int      `json:"segments"`
	Chunks       int      `json:"chunks"`
	Embedded     int      `json:"embedded"`
	Reused       int      `json:"reused"`
	Skipped      int      `json:"skipped"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
	ElapsedMS    int64    `json:"elapsed_ms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the documents in the brahma workspace, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the brahma index from the workspace documents",
	}, s.handleReindex)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)

	var (
		result *domain.QueryResult
		err    error
	)
	if a, ok := s.ports.Engine.(topKAnswerer); ok && input.K > 0 {
		result, err = a.Answer(ctx, question, input.K)
	} else {
		result, err = s.ports.Engine.AnswerQuestion(ctx, question)
	}
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    result.Answer,
		Sources:   make([]string, len(result.Sources)),
		Degraded:  result.Degraded,
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	for i, src := range result.Sources {
		output.Sources[i] = src.String()
	}

	return nil, output, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	report, err := s.ports.Engine.Reindex(ctx)
	if err != nil {
		return nil, ReindexOutput{}, err
	}

	output := ReindexOutput{
		Files:     report.Files,
		Documents: report.Documents,
		Segments:  report.Segments,
		Chunks:    report.Chunks,
		Embedded:  report.Embedded,
		Reused:    report.Reused,
		Skipped:   report.Skipped,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}
	for _, skipped := range report.SkippedFiles {
		output.SkippedFiles = append(output.SkippedFiles, skipped.Error())
	}

	return nil, output, nil
}
