package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docchat resources.
	uriScheme = "docchat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the collection state.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Readiness and the last ingestion report of the document collection",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// Template for document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of an indexed document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// statusInfo is the JSON body of the status resource.
type statusInfo struct {
	State      string        `json:"state"`
	Collection string        `json:"collection,omitempty"`
	Records    int           `json:"records"`
	Indexed    []string      `json:"indexed,omitempty"`
	Skipped    []skippedInfo `json:"skipped,omitempty"`
}

type skippedInfo struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// handleStatusResource returns the readiness state and ingestion report.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := statusInfo{State: s.ports.Ingestion.State().String()}

	if collection := s.ports.Ingestion.Collection(); collection != nil {
		info.Collection = collection.Name()
		count, err := collection.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting records: %w", err)
		}
		info.Records = count
	}
	if report := s.ports.Ingestion.Report(); report != nil {
		info.Indexed = report.Indexed
		for _, skipped := range report.Skipped {
			info.Skipped = append(info.Skipped, skippedInfo{Name: skipped.Name, Error: fmt.Sprint(skipped.Err)})
		}
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

// handleDocumentContentResource returns the text of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract documentId from URI: docchat://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	collection := s.ports.Ingestion.Collection()
	if collection == nil {
		return nil, domain.ErrNotReady
	}

	record, err := collection.Get(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     record.Text,
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like docchat://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
