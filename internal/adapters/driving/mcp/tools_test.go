package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

func newTestServer(t *testing.T, chat *mockChat, index *mockIndex) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Sessions: newSessions(chat), Index: index})
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockChat{}, &mockIndex{})

	_, first, err := server.handleAsk(ctx, nil, AskInput{Question: "how many assets?"})
	require.NoError(t, err)
	assert.Equal(t, "HOW MANY ASSETS? after 0", first.Answer)
	require.NotEmpty(t, first.SessionID)

	_, second, err := server.handleAsk(ctx, nil, AskInput{Question: "and pumps?", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "AND PUMPS? after 2", second.Answer, "the session keeps history")

	_, other, err := server.handleAsk(ctx, nil, AskInput{Question: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, other.SessionID)
}

func TestServer_handleAsk_Errors(t *testing.T) {
	ctx := context.Background()

	server := newTestServer(t, &mockChat{}, &mockIndex{})
	_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "  "})
	assert.ErrorContains(t, err, "question is required")

	server = newTestServer(t, &mockChat{err: errors.New("llm down")}, &mockIndex{})
	result, out, err := server.handleAsk(ctx, nil, AskInput{Question: "why?"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Equal(t, domain.ApologyMessage, out.Answer)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, domain.ApologyMessage, text.Text)
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("maps results", func(t *testing.T) {
		index := &mockIndex{results: []domain.ScoredDocument{{
			Document:   domain.Document{ID: "asset:MPT-001", Type: domain.DocTypeAsset, Key: "MPT-001", Text: "ASSET RECORD"},
			Similarity: 0.91,
		}}}
		server := newTestServer(t, &mockChat{}, index)

		_, out, err := server.handleSearch(ctx, nil, SearchInput{Query: "pump", K: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, index.lastK)
		require.Equal(t, 1, out.Count)
		assert.Equal(t, SearchResultOutput{
			DocumentID: "asset:MPT-001",
			Type:       "asset",
			Key:        "MPT-001",
			Similarity: 0.91,
			Text:       "ASSET RECORD",
		}, out.Results[0])
	})

	t.Run("default k", func(t *testing.T) {
		index := &mockIndex{}
		server := newTestServer(t, &mockChat{}, index)
		_, out, err := server.handleSearch(ctx, nil, SearchInput{Query: "pump"})
		require.NoError(t, err)
		assert.Equal(t, DefaultSearchK, index.lastK)
		assert.Zero(t, out.Count)
	})

	t.Run("index error", func(t *testing.T) {
		server := newTestServer(t, &mockChat{}, &mockIndex{err: domain.ErrIndexNotFound})
		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "pump"})
		assert.ErrorIs(t, err, domain.ErrIndexNotFound)
	})
}

func TestServer_handleReset(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockChat{}, &mockIndex{})

	_, asked, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})
	require.NoError(t, err)

	_, out, err := server.handleReset(ctx, nil, ResetInput{SessionID: asked.SessionID})
	require.NoError(t, err)
	assert.True(t, out.Closed)

	_, _, err = server.handleReset(ctx, nil, ResetInput{SessionID: asked.SessionID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
