package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSearchK is the number of records search returns when unset.
const DefaultSearchK = 10

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about assets, work orders, invoices or vendors"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue; omit to start a new conversation"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar records for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of records to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is one matching record.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Type       string  `json:"type"`
	Key        string  `json:"key,omitempty"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

// ResetInput is the input schema for the reset_session tool.
type ResetInput struct {
	SessionID string `json:"session_id" jsonschema:"session to discard"`
}

// ResetOutput is the output schema for the reset_session tool.
type ResetOutput struct {
	Closed bool `json:"closed"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask",
		Description: "Answer a question about the asset maintenance dataset. " +
			"Pass the returned session_id to ask follow-up questions.",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the dataset records most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Discard a conversation and its history",
	}, s.handleReset)
}

// handleAsk answers within the given session. A failed answer still
// returns the apology text so the client can show it; the cause is
// reported as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	conv := s.ports.Sessions.GetOrCreate(input.SessionID)
	answer, err := conv.Ask(ctx, input.Question)
	out := AskOutput{Answer: answer, SessionID: conv.ID()}
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: answer}},
		}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = DefaultSearchK
	}

	results, err := s.ports.Index.Query(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("searching records: %w", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].ID,
			Type:       string(results[i].Type),
			Key:        results[i].Key,
			Similarity: results[i].Similarity,
			Text:       results[i].Text,
		}
	}

	return nil, output, nil
}

func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResetInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	if _, err := s.ports.Sessions.Get(input.SessionID); err != nil {
		return nil, ResetOutput{}, err
	}
	s.ports.Sessions.Close(input.SessionID)
	return nil, ResetOutput{Closed: true}, nil
}
