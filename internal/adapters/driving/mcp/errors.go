// Package mcp provides an MCP (Model Context Protocol) server adapter for docchat.
// It lets AI assistants retrieve passages from the document collection and
// ask grounded questions.
package mcp

import "errors"

// ErrMissingIngestionService is returned when the ingestion service is not provided.
var ErrMissingIngestionService = errors.New("mcp: ingestion service is required")

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
