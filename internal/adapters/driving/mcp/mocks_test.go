package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/core/services"
)

// mockChat echoes the question and the number of prior turns.
type mockChat struct {
	err error
}

func (m *mockChat) Answer(_ context.Context, q string, history []domain.Turn, _ domain.AnswerOptions) (string, error) {
	if m.err != nil {
		return domain.ApologyMessage, m.err
	}
	return fmt.Sprintf("%s after %d", strings.ToUpper(q), len(history)), nil
}

func (m *mockChat) Mode() domain.ChatMode { return domain.ChatModeRAG }

// mockIndex is a mock implementation of driving.IndexService.
type mockIndex struct {
	results   []domain.ScoredDocument
	err       error
	summaries map[domain.DocType]domain.Document
	lastK     int
}

func (m *mockIndex) Query(_ context.Context, _ string, k int) ([]domain.ScoredDocument, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockIndex) Summary(t domain.DocType) (domain.Document, bool) {
	doc, ok := m.summaries[t]
	return doc, ok
}

func (m *mockIndex) Rebuild(context.Context, []domain.Document) error { return nil }

func (m *mockIndex) Stats() domain.IndexStats {
	return domain.IndexStats{Documents: 12, Dimensions: 64, Model: "tfidf", Fingerprint: "abc"}
}

func newSessions(chat driving.ChatService) *services.SessionManager {
	return services.NewSessionManager(chat, domain.AnswerOptions{})
}
