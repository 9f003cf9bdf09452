package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

type fakeEmbedder struct {
	errs     []error
	calls    int
	prepared []string
}

func (f *fakeEmbedder) next() error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return []float32{1}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return 1 }
func (f *fakeEmbedder) ModelName() string          { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

type preparingFake struct {
	fakeEmbedder
}

func (p *preparingFake) Prepare(texts []string) (driven.EmbeddingService, error) {
	p.prepared = texts
	return &fakeEmbedder{}, nil
}

func TestWrap_ZeroRateIsPassThrough(t *testing.T) {
	inner := &fakeEmbedder{}
	assert.Same(t, inner, Wrap(inner, Config{}))
	assert.IsType(t, &EmbeddingService{}, Wrap(inner, Config{RequestsPerSecond: 1}))
}

func TestEmbeddingService_Throttles(t *testing.T) {
	inner := &fakeEmbedder{}
	svc := New(inner, Config{RequestsPerSecond: 20})

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := svc.Embed(context.Background(), "q")
		require.NoError(t, err)
	}
	// the first token is free, the other four wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, 5, inner.calls)
}

func TestEmbeddingService_RetriesRateLimited(t *testing.T) {
	inner := &fakeEmbedder{errs: []error{
		errors.New("status 429: Too Many Requests"),
		errors.New("rate limit exceeded"),
	}}
	svc := New(inner, Config{RequestsPerSecond: 1000, Backoff: time.Millisecond})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbeddingService_GivesUp(t *testing.T) {
	limited := errors.New("429")
	inner := &fakeEmbedder{errs: []error{limited, limited, limited}}
	svc := New(inner, Config{RequestsPerSecond: 1000, MaxRetries: 2, Backoff: time.Millisecond})

	_, err := svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, limited)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbeddingService_OtherErrorsNotRetried(t *testing.T) {
	boom := errors.New("connection refused")
	inner := &fakeEmbedder{errs: []error{boom}}
	svc := New(inner, Config{RequestsPerSecond: 1000, Backoff: time.Millisecond})

	_, err := svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inner.calls)
}

func TestEmbeddingService_CancelledWait(t *testing.T) {
	svc := New(&fakeEmbedder{}, Config{RequestsPerSecond: 0.001})
	_, err := svc.Embed(context.Background(), "first token")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "second")
	assert.Error(t, err)
}

func TestEmbeddingService_ForwardsPrepare(t *testing.T) {
	inner := &preparingFake{}
	svc := New(inner, Config{RequestsPerSecond: 1})
	fitted, err := svc.Prepare([]string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, inner.prepared)
	require.IsType(t, &EmbeddingService{}, fitted)
	assert.NotSame(t, svc, fitted)
	assert.Same(t, svc.limiter, fitted.(*EmbeddingService).limiter)
	assert.Same(t, inner, svc.inner, "the wrapper itself is not refitted")

	plain := New(&fakeEmbedder{}, Config{RequestsPerSecond: 1})
	same, err := plain.Prepare([]string{"x"})
	require.NoError(t, err)
	assert.Same(t, plain, same)
	assert.Equal(t, "fake", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}
