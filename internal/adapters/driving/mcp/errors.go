// Package mcp provides an MCP (Model Context Protocol) server adapter for llmdump.
// It lets AI assistants inspect and refine the current session and export it.
package mcp

import "errors"

// ErrMissingCurationService is returned when the curation service is not provided.
var ErrMissingCurationService = errors.New("mcp: curation service is required")
