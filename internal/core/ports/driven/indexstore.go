package driven

import (
	"context"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// IndexStore persists built vector indexes between runs.
type IndexStore interface {
	// Load reads the persisted snapshot.
	// Returns domain.ErrIndexNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Save replaces the persisted snapshot. A partially written snapshot
	// must never be visible to Load.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Path returns the storage location.
	Path() string
}
