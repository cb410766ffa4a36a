// Package mcp provides an MCP (Model Context Protocol) server adapter for brahma.
// It lets AI assistants ask questions about the local documents and trigger a reindex.
package mcp

import "errors"

// ErrMissingEngine is returned when the engine is not provided.
var ErrMissingEngine = errors.New("mcp: engine is required")
