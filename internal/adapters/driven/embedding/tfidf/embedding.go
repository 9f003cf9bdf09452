// Package tfidf provides an offline embedding service. It learns a TF-IDF
// vocabulary from the document corpus and needs no network or model files.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusPreparer   = (*EmbeddingService)(nil)
)

// ModelName identifies TF-IDF vectors in persisted indexes.
const ModelName = "tfidf"

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 8192

// ErrNotPrepared is returned when embedding with an unfitted embedder.
var ErrNotPrepared = errors.New("tfidf: embedder not prepared")

// tokenPattern keeps identifiers such as "MPT-001" or "INV_1001" whole.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[-_.'][\p{L}\p{N}]+)*`)

// Config holds configuration for the TF-IDF embedder.
type Config struct {
	// MaxFeatures caps the vocabulary; the most frequent terms are kept.
	MaxFeatures int
}

// EmbeddingService is a TF-IDF vectoriser. Vectors are L2-normalised so
// cosine similarity equals the dot product. A fitted embedder is never
// modified, so it is safe for concurrent use.
type EmbeddingService struct {
	maxFeatures int
	stopwords   map[string]struct{}
	vocabulary  map[string]int
	idf         []float64
}

// NewEmbeddingService creates an unfitted TF-IDF embedder. Use Fit or
// Prepare to get one that can embed.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultMaxFeatures
	}
	return &EmbeddingService{
		maxFeatures: cfg.MaxFeatures,
		stopwords:   defaultStopwords(),
	}
}

// Prepare implements driven.CorpusPreparer.
func (s *EmbeddingService) Prepare(corpus []string) (driven.EmbeddingService, error) {
	fitted, err := s.Fit(corpus)
	if err != nil {
		return nil, err
	}
	return fitted, nil
}

// Fit returns a new embedder with the vocabulary and IDF weights learned
// from corpus. The result depends only on the corpus, so the same
// documents always give the same vectors.
func (s *EmbeddingService) Fit(corpus []string) (*EmbeddingService, error) {
	if len(corpus) == 0 {
		return nil, errors.New("tfidf: empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range s.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, errors.New("tfidf: no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > s.maxFeatures {
		terms = terms[:s.maxFeatures]
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		// smoothed IDF
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	return &EmbeddingService{
		maxFeatures: s.maxFeatures,
		stopwords:   s.stopwords,
		vocabulary:  vocabulary,
		idf:         idf,
	}, nil
}

// Embed computes the TF-IDF vector for text. Text with no known terms
// embeds to the zero vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if s.idf == nil {
		return nil, ErrNotPrepared
	}

	tf := make(map[int]int)
	total := 0
	for _, tok := range s.tokenize(text) {
		if idx, ok := s.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}

	weights := make([]float64, len(s.idf))
	var norm float64
	for idx, count := range tf {
		w := float64(count) / float64(total) * s.idf[idx]
		weights[idx] = w
		norm += w * w
	}

	vec := make([]float32, len(weights))
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vocabulary size, or 0 before fitting.
func (s *EmbeddingService) Dimensions() int {
	return len(s.idf)
}

// ModelName returns "tfidf".
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize lowercases text and splits it into terms. Compound identifiers
// also contribute their parts, so "mpt" matches "MPT-001".
func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := s.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
		if strings.ContainsAny(tok, "-_.'") {
			for _, part := range strings.FieldsFunc(tok, func(r rune) bool {
				return r == '-' || r == '_' || r == '.' || r == '\''
			}) {
				if _, stop := s.stopwords[part]; !stop {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this",
		"that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during", "before", "after", "above",
		"below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now",
		"what", "which", "who", "how", "me", "my", "do", "does", "there", "all", "any",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
