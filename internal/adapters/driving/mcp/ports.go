package mcp

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingestion builds the collection before the first query.
	Ingestion driving.IngestionService

	// Retrieval ranks records against a question.
	Retrieval driving.RetrievalService

	// Chat answers questions. The ask tool is registered only when set.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
