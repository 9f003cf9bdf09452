package driven

import (
	"context"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// RecordSource loads every dataset collection.
//
// A missing data directory is fatal (domain.ErrLoad). A missing collection
// file yields an empty collection. A file that cannot be decoded yields an
// empty collection and a *domain.ParseError in Dataset.Problems.
type RecordSource interface {
	Load(ctx context.Context) (*domain.Dataset, error)

	// Dir returns the data directory being read.
	Dir() string
}

// FileWatcher reports changes to the data directory.
type FileWatcher interface {
	// Watch emits one event per settled burst of changes until ctx is done.
	Watch(ctx context.Context, dir string) (<-chan WatchEvent, error)
}

// WatchEvent describes a settled burst of file changes.
type WatchEvent struct {
	// Files are the changed collection files.
	Files []string
}
