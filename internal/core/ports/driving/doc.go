// Package driving defines what the command line, chat screen, MCP server and
// folder watcher may ask of brahma: build the index, answer a question,
// report status, and change settings.
//
// internal/core/services provides the implementations.
package driving
