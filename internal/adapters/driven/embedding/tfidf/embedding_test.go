package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"ASSET RECORD\nassetId: MPT-001\ndescription: Main pump",
	"ASSET RECORD\nassetId: GEN-7\ndescription: Diesel generator",
	"INVOICE RECORD\ninvoiceNumber: INV-1001\nVendor: Pump Parts Ltd",
}

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func fitted(t *testing.T, cfg Config, texts []string) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(cfg).Fit(texts)
	require.NoError(t, err)
	return svc
}

func TestEmbed_RequiresFit(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	_, err := svc.Embed(context.Background(), "pump")
	assert.ErrorIs(t, err, ErrNotPrepared)
	assert.Zero(t, svc.Dimensions())
}

func TestFit_Errors(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	_, err := svc.Fit(nil)
	assert.Error(t, err)
	_, err = svc.Fit([]string{"the and of"})
	assert.Error(t, err)
}

func TestFit_LeavesReceiverUnchanged(t *testing.T) {
	first := fitted(t, Config{}, corpus)
	dims := first.Dimensions()

	second, err := first.Fit([]string{"one completely different corpus"})
	require.NoError(t, err)
	assert.NotEqual(t, dims, second.Dimensions())
	assert.Equal(t, dims, first.Dimensions())

	vec, err := first.Embed(context.Background(), "main pump")
	require.NoError(t, err)
	assert.Len(t, vec, dims)
}

func TestPrepare_ReturnsFittedEmbedder(t *testing.T) {
	base := NewEmbeddingService(Config{})
	emb, err := base.Prepare(corpus)
	require.NoError(t, err)
	assert.NotSame(t, base, emb)
	assert.Positive(t, emb.Dimensions())
	assert.Zero(t, base.Dimensions())
	assert.Equal(t, ModelName, emb.ModelName())
}

func TestEmbed_NormalisedAndDeterministic(t *testing.T) {
	svc := fitted(t, Config{}, corpus)

	a, err := svc.Embed(context.Background(), corpus[0])
	require.NoError(t, err)
	assert.Len(t, a, svc.Dimensions())
	assert.InDelta(t, 1.0, math.Sqrt(cosine(a, a)), 1e-5)

	other := fitted(t, Config{}, corpus)
	b, err := other.Embed(context.Background(), corpus[0])
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_IdentifiersMatch(t *testing.T) {
	svc := fitted(t, Config{}, corpus)

	vecs, err := svc.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)

	q, err := svc.Embed(context.Background(), "tell me about mpt-001")
	require.NoError(t, err)
	assert.Greater(t, cosine(q, vecs[0]), cosine(q, vecs[1]))
	assert.Greater(t, cosine(q, vecs[0]), cosine(q, vecs[2]))

	q, err = svc.Embed(context.Background(), "generator")
	require.NoError(t, err)
	assert.Greater(t, cosine(q, vecs[1]), cosine(q, vecs[0]))
}

func TestEmbed_UnknownTermsGiveZeroVector(t *testing.T) {
	svc := fitted(t, Config{}, corpus)

	vec, err := svc.Embed(context.Background(), "zebra")
	require.NoError(t, err)
	assert.Zero(t, cosine(vec, vec))
}

func TestFit_MaxFeatures(t *testing.T) {
	svc := fitted(t, Config{MaxFeatures: 3}, corpus)
	assert.Equal(t, 3, svc.Dimensions())
	assert.Contains(t, svc.vocabulary, "record", "the most frequent terms are kept")
}

func TestTokenize(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t,
		[]string{"work", "orders", "mpt-001", "mpt", "001"},
		svc.tokenize("Work orders for the MPT-001?"))
}

func TestEmbedBatch_Cancelled(t *testing.T) {
	svc := fitted(t, Config{}, corpus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.EmbedBatch(ctx, corpus)
	assert.ErrorIs(t, err, context.Canceled)
}
