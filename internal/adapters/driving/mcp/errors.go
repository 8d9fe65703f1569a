// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Paragraf. It lets AI assistants search the indexed tax-law corpus and ask
// grounded questions against it.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
