package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// ContextSeparator joins documents in the assembled context.
const ContextSeparator = "\n\n---\n\n"

// documentRetriever is the part of the index the assembler needs.
type documentRetriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error)
	Summary(docType domain.DocType) (domain.Document, bool)
}

// AssembledContext is the retrieval outcome for one question.
type AssembledContext struct {
	// Question is the normalised question.
	Question string

	// Intents are the question's classified intents.
	Intents domain.IntentSet

	// Documents are the context documents in final order.
	Documents []domain.Document

	// Text is the documents joined with ContextSeparator.
	Text string
}

// ContextAssembler retrieves documents for a question and applies the
// summary injection policy.
type ContextAssembler struct {
	index documentRetriever
}

// NewContextAssembler creates an assembler over the given index.
func NewContextAssembler(index documentRetriever) *ContextAssembler {
	return &ContextAssembler{index: index}
}

// Assemble normalises and classifies the question, retrieves the top k
// documents and injects the summary documents the intent calls for.
func (a *ContextAssembler) Assemble(ctx context.Context, question string, k int) (*AssembledContext, error) {
	normalized := NormalizeQuestion(question)
	intents := ClassifyIntent(normalized)

	logger.Section("Context Assembly")
	logger.Debug("Normalised question: %q", normalized)
	logger.Debug("Intents: %s", intents)

	hits, err := a.index.Query(ctx, normalized, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}
	docs := make([]domain.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
		logger.Debug("  %2d. %s (%.4f)", i+1, h.ID, h.Similarity)
	}

	global, hasGlobal := a.index.Summary(domain.DocTypeGlobalSummary)
	customers, hasCustomers := a.index.Summary(domain.DocTypeCustomersSummary)

	var globalPtr, customersPtr *domain.Document
	if hasGlobal {
		globalPtr = &global
	}
	if hasCustomers {
		customersPtr = &customers
	}
	docs = InjectSummaries(docs, intents, mentionsCustomers(normalized), globalPtr, customersPtr)

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	logger.Info("Context: %d documents", len(docs))

	return &AssembledContext{
		Question:  normalized,
		Intents:   intents,
		Documents: docs,
		Text:      strings.Join(texts, ContextSeparator),
	}, nil
}

// InjectSummaries applies the summary policy to retrieved documents, in
// order:
//
//  1. count questions get the global summary at position 0, plus a copy at
//     the end when no other copy follows position 0;
//  2. list questions about customers get the customers summary moved or
//     inserted at position 0;
//  3. other questions get the global summary appended when absent.
//
// A nil summary is never injected. The input slice is not modified.
func InjectSummaries(docs []domain.Document, intents domain.IntentSet, aboutCustomers bool,
	global, customers *domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	copy(out, docs)

	isCount := intents.Has(domain.IntentCount)

	if isCount && global != nil {
		if len(out) == 0 || out[0].ID != global.ID {
			out = append([]domain.Document{*global}, out...)
		}
		if indexOf(out[1:], global.ID) < 0 {
			out = append(out, *global)
		}
	}

	if intents.Has(domain.IntentList) && aboutCustomers && customers != nil {
		rest := make([]domain.Document, 0, len(out))
		for _, d := range out {
			if d.ID != customers.ID {
				rest = append(rest, d)
			}
		}
		out = append([]domain.Document{*customers}, rest...)
	}

	if !isCount && global != nil && indexOf(out, global.ID) < 0 {
		out = append(out, *global)
	}

	return out
}

func indexOf(docs []domain.Document, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}
