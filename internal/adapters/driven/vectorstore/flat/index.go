// Package flat provides an exact, in-memory vector index.
//
// Every query scores every vector, which keeps results exact and
// reproducible for datasets of a few hundred thousand documents.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a brute-force cosine similarity index.
type Index struct {
	dims int

	mu    sync.RWMutex
	ids   []string
	vecs  [][]float32
	norms []float64
	seen  map[string]struct{}
}

// New creates an empty index for vectors of length dims.
func New(dims int) *Index {
	return &Index{dims: dims, seen: make(map[string]struct{})}
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dims int) driven.VectorIndex {
	return New(dims)
}

// Add inserts a vector. IDs must be unique.
func (x *Index) Add(_ context.Context, id string, embedding []float32) error {
	if len(embedding) != x.dims {
		return fmt.Errorf("vector for %s has %d dimensions, index expects %d", id, len(embedding), x.dims)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, dup := x.seen[id]; dup {
		return fmt.Errorf("duplicate id %s", id)
	}
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	x.seen[id] = struct{}{}
	x.ids = append(x.ids, id)
	x.vecs = append(x.vecs, vec)
	x.norms = append(x.norms, norm(vec))
	return nil
}

// Search returns the min(k, Len()) most similar vectors, best first. Equal
// scores keep insertion order.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dims {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), x.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	qn := norm(query)
	type scored struct {
		pos   int
		score float64
	}
	all := make([]scored, len(x.vecs))
	for i, v := range x.vecs {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		all[i] = scored{pos: i, score: cosine(query, v, qn, x.norms[i])}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	k = min(k, len(all))
	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{ID: x.ids[all[i].pos], Similarity: all[i].score}
	}
	return hits, nil
}

// Len returns the number of vectors in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Dimensions returns the vector length the index accepts.
func (x *Index) Dimensions() int {
	return x.dims
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector is all zeros.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
