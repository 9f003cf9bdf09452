package driven

import "context"

// VectorIndex provides similarity search over document vectors.
//
// Search ranks by descending cosine similarity, breaks ties by insertion
// order and returns each ID at most once. An index is immutable once it is
// published for queries; rebuilding produces a new index.
type VectorIndex interface {
	// Add inserts a vector for the given document ID.
	Add(ctx context.Context, id string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	// It returns min(k, Len()) hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors in the index.
	Len() int

	// Dimensions returns the vector length the index accepts.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched document.
	ID string

	// Similarity is the cosine similarity score.
	Similarity float64
}

// VectorIndexFactory creates an empty index for vectors of the given length.
type VectorIndexFactory func(dimensions int) VectorIndex
