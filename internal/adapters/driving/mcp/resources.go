package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

const uriScheme = "assetchat://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "summary",
		Name:        "summary",
		Description: "Dataset-wide statistics: record counts and breakdowns by status, category, entity and more",
		MIMEType:    "text/plain",
	}, s.summaryHandler(domain.DocTypeGlobalSummary))

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "customers",
		Name:        "customers",
		Description: "Every customer in the dataset",
		MIMEType:    "text/plain",
	}, s.summaryHandler(domain.DocTypeCustomersSummary))

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Size, model and fingerprint of the vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// summaryHandler serves the text of a summary document.
func (s *Server) summaryHandler(docType domain.DocType) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		doc, ok := s.ports.Index.Summary(docType)
		if !ok {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     doc.Text,
			}},
		}, nil
	}
}

func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Index.Stats()
	info := struct {
		Documents   int    `json:"documents"`
		Dimensions  int    `json:"dimensions"`
		Model       string `json:"model"`
		Fingerprint string `json:"fingerprint"`
	}{stats.Documents, stats.Dimensions, stats.Model, stats.Fingerprint}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
