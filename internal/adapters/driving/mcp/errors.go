// Package mcp provides an MCP (Model Context Protocol) server adapter for
// assetchat. It lets AI assistants ask questions about the maintenance
// dataset and search its records.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// ErrMissingIndexService is returned when the index service is not provided.
var ErrMissingIndexService = errors.New("mcp: index service is required")
