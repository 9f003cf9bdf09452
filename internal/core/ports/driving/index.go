package driving

import (
	"context"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// IndexService exposes the document index.
type IndexService interface {
	// Query returns the k documents most similar to text.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error)

	// Summary returns the summary document of the given type, if indexed.
	Summary(docType domain.DocType) (domain.Document, bool)

	// Rebuild embeds docs into a fresh index, persists it and makes it active.
	Rebuild(ctx context.Context, docs []domain.Document) error

	// Stats describes the active index.
	Stats() domain.IndexStats
}
