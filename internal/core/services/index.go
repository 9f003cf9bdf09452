package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// DefaultEmbedBatchSize is the number of documents embedded per request.
const DefaultEmbedBatchSize = 32

// indexState is one immutable, queryable index. Replacing the active index
// swaps the whole state.
type indexState struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	docs     map[string]domain.Document
	stats    domain.IndexStats
}

// IndexService builds, persists, loads and queries the document index.
type IndexService struct {
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	newIndex  driven.VectorIndexFactory
	batchSize int

	active atomic.Pointer[indexState]
}

// NewIndexService creates an index service. store may be nil, in which case
// the index lives only in memory.
func NewIndexService(embedder driven.EmbeddingService, store driven.IndexStore, newIndex driven.VectorIndexFactory) *IndexService {
	return &IndexService{
		embedder:  embedder,
		store:     store,
		newIndex:  newIndex,
		batchSize: DefaultEmbedBatchSize,
	}
}

// SetBatchSize overrides the embedding batch size.
func (s *IndexService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Open makes an index over docs active, loading the persisted index when it
// matches and rebuilding otherwise. Load problems are logged and never
// returned; only a failed rebuild is.
func (s *IndexService) Open(ctx context.Context, docs []domain.Document) error {
	logger.Section("Vector Index")
	embedder, err := s.prepare(docs)
	if err != nil {
		return err
	}

	fingerprint := Fingerprint(docs)
	if s.store != nil {
		snap, err := s.store.Load(ctx)
		if err == nil {
			err = checkSnapshot(embedder, snap, fingerprint)
		}
		if err == nil {
			state, buildErr := s.stateFromVectors(ctx, embedder, docs, snap.Vectors, fingerprint, false)
			if buildErr == nil {
				s.active.Store(state)
				logger.Info("Loaded %d vectors from %s", len(snap.Vectors), s.store.Path())
				return nil
			}
			err = buildErr
		}
		if errors.Is(err, domain.ErrIndexNotFound) {
			logger.Info("No persisted index at %s, building", s.store.Path())
		} else {
			logger.Warn("Rebuilding index: %v", err)
		}
	}

	return s.build(ctx, embedder, docs, fingerprint)
}

// Rebuild embeds docs into a fresh index, persists it and swaps it in.
// Queries in flight, and every query after a failed rebuild, keep using the
// previous index together with the embedder it was built with.
func (s *IndexService) Rebuild(ctx context.Context, docs []domain.Document) error {
	embedder, err := s.prepare(docs)
	if err != nil {
		return err
	}
	return s.build(ctx, embedder, docs, Fingerprint(docs))
}

func (s *IndexService) build(ctx context.Context, embedder driven.EmbeddingService, docs []domain.Document,
	fingerprint string) error {
	vectors, err := embedAll(ctx, embedder, docs, s.batchSize)
	if err != nil {
		return err
	}

	state, err := s.stateFromVectors(ctx, embedder, docs, vectors, fingerprint, true)
	if err != nil {
		return err
	}
	s.active.Store(state)
	logger.Info("Built index: %d documents, %d dimensions", state.stats.Documents, state.stats.Dimensions)

	if s.store == nil {
		return nil
	}
	snap := &domain.IndexSnapshot{
		Model:       state.stats.Model,
		Dimensions:  state.stats.Dimensions,
		Fingerprint: fingerprint,
		Documents:   docs,
		Vectors:     vectors,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		logger.Warn("Index built but not persisted to %s: %v", s.store.Path(), err)
	}
	return nil
}

// prepare returns the embedder for an index over docs. Corpus-dependent
// embedders are fitted to every document; the configured one is untouched.
func (s *IndexService) prepare(docs []domain.Document) (driven.EmbeddingService, error) {
	p, ok := s.embedder.(driven.CorpusPreparer)
	if !ok {
		return s.embedder, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	fitted, err := p.Prepare(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare corpus: %w", domain.ErrEmbedding, err)
	}
	return fitted, nil
}

func embedAll(ctx context.Context, embedder driven.EmbeddingService, docs []domain.Document,
	batchSize int) ([][]float32, error) {
	vectors := make([][]float32, 0, len(docs))
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		texts := make([]string, end-start)
		for i, d := range docs[start:end] {
			texts[i] = d.Text
		}
		batch, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embed documents %d-%d: %w", domain.ErrEmbedding, start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: embed documents %d-%d: got %d vectors for %d texts",
				domain.ErrEmbedding, start, end-1, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
		logger.Debug("Embedded %d/%d documents", end, len(docs))
	}
	return vectors, nil
}

func (s *IndexService) stateFromVectors(ctx context.Context, embedder driven.EmbeddingService,
	docs []domain.Document, vectors [][]float32, fingerprint string, rebuilt bool) (*indexState, error) {
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: %d vectors for %d documents", domain.ErrIndex, len(vectors), len(docs))
	}

	dims := embedder.Dimensions()
	if len(vectors) > 0 {
		if dims == 0 {
			dims = len(vectors[0])
		}
	}

	index := s.newIndex(dims)
	byID := make(map[string]domain.Document, len(docs))
	for i, d := range docs {
		if len(vectors[i]) != dims {
			return nil, fmt.Errorf("%w: document %s has %d dimensions, expected %d",
				domain.ErrIndex, d.ID, len(vectors[i]), dims)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate document id %s", domain.ErrIndex, d.ID)
		}
		if err := index.Add(ctx, d.ID, vectors[i]); err != nil {
			return nil, fmt.Errorf("%w: add %s: %w", domain.ErrIndex, d.ID, err)
		}
		byID[d.ID] = d
	}

	return &indexState{
		embedder: embedder,
		vectors:  index,
		docs:     byID,
		stats: domain.IndexStats{
			Documents:   len(docs),
			Dimensions:  dims,
			Model:       embedder.ModelName(),
			Fingerprint: fingerprint,
			Rebuilt:     rebuilt,
		},
	}, nil
}

func checkSnapshot(embedder driven.EmbeddingService, snap *domain.IndexSnapshot, fingerprint string) error {
	if snap.Model != embedder.ModelName() {
		return fmt.Errorf("%w: built with model %q, configured model is %q",
			domain.ErrIndexIncompatible, snap.Model, embedder.ModelName())
	}
	if dims := embedder.Dimensions(); dims > 0 && snap.Dimensions != dims {
		return fmt.Errorf("%w: %d dimensions, embedder produces %d",
			domain.ErrIndexIncompatible, snap.Dimensions, dims)
	}
	if snap.Fingerprint != fingerprint {
		return fmt.Errorf("%w: dataset changed since the index was built", domain.ErrIndexIncompatible)
	}
	return nil
}

// Query returns the k documents most similar to text, best first.
func (s *IndexService) Query(ctx context.Context, text string, k int) ([]domain.ScoredDocument, error) {
	state := s.active.Load()
	if state == nil {
		return nil, fmt.Errorf("%w: no index has been built", domain.ErrIndex)
	}
	if k <= 0 {
		return nil, nil
	}

	vec, err := state.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}

	hits, err := state.vectors.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrIndex, err)
	}

	out := make([]domain.ScoredDocument, 0, len(hits))
	for _, h := range hits {
		doc, ok := state.docs[h.ID]
		if !ok {
			continue
		}
		out = append(out, domain.ScoredDocument{Document: doc, Similarity: h.Similarity})
	}
	return out, nil
}

// Summary returns the summary document of the given type, if indexed.
func (s *IndexService) Summary(docType domain.DocType) (domain.Document, bool) {
	state := s.active.Load()
	if state == nil {
		return domain.Document{}, false
	}
	var id string
	switch docType {
	case domain.DocTypeGlobalSummary:
		id = GlobalSummaryID
	case domain.DocTypeCustomersSummary:
		id = CustomersSummaryID
	default:
		return domain.Document{}, false
	}
	doc, ok := state.docs[id]
	return doc, ok
}

// Stats describes the active index.
func (s *IndexService) Stats() domain.IndexStats {
	state := s.active.Load()
	if state == nil {
		return domain.IndexStats{}
	}
	return state.stats
}

// Fingerprint identifies a document set. Any change to an ID, type or text
// changes the fingerprint.
func Fingerprint(docs []domain.Document) string {
	h := sha256.New()
	for _, d := range docs {
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
		h.Write([]byte(d.Type))
		h.Write([]byte{0})
		h.Write([]byte(d.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
