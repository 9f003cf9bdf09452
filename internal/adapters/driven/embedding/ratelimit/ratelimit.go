// Package ratelimit throttles an embedding service with a token bucket and
// retries requests the provider rejected for exceeding its rate limit.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusPreparer   = (*EmbeddingService)(nil)
)

// Default retry settings.
const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 2 * time.Second
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default 1).
	BurstSize int

	// MaxRetries is how often a rate-limited request is retried.
	MaxRetries int

	// Backoff is the first retry delay; it doubles on every retry.
	Backoff time.Duration
}

// EmbeddingService wraps another embedding service with throttling.
type EmbeddingService struct {
	inner      driven.EmbeddingService
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// Wrap returns inner throttled to cfg.RequestsPerSecond. A non-positive
// rate returns inner unchanged.
func Wrap(inner driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		return inner
	}
	return New(inner, cfg)
}

// New creates a throttled embedding service.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &EmbeddingService{
		inner:      inner,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
}

// Embed waits for a token, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := s.do(ctx, func() error {
		var err error
		vec, err = s.inner.Embed(ctx, text)
		return err
	})
	return vec, err
}

// EmbedBatch waits for a token, then embeds texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := s.do(ctx, func() error {
		var err error
		vecs, err = s.inner.EmbedBatch(ctx, texts)
		return err
	})
	return vecs, err
}

func (s *EmbeddingService) do(ctx context.Context, call func() error) error {
	delay := s.backoff
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		err := call()
		if err == nil || !IsRateLimited(err) || attempt >= s.maxRetries {
			return err
		}
		logger.Warn("Embedding provider rate limited, retrying in %s", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// Prepare fits the wrapped service when it learns from the corpus. The
// fitted service shares this wrapper's limiter.
func (s *EmbeddingService) Prepare(texts []string) (driven.EmbeddingService, error) {
	p, ok := s.inner.(driven.CorpusPreparer)
	if !ok {
		return s, nil
	}
	fitted, err := p.Prepare(texts)
	if err != nil {
		return nil, err
	}
	clone := *s
	clone.inner = fitted
	return &clone, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service without consuming a token.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}

// IsRateLimited reports whether err looks like an HTTP 429 from a provider.
func IsRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
