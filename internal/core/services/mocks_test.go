package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

// hashEmbedder is a deterministic bag-of-words embedder for tests.
type hashEmbedder struct {
	dims     int
	model    string
	failNext error
	calls    int
}

func newHashEmbedder(dims int) *hashEmbedder {
	return &hashEmbedder{dims: dims, model: "hash-test"}
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failNext != nil {
		err := e.failNext
		e.failNext = nil
		return nil, err
	}
	vec := make([]float32, e.dims)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

func (e *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *hashEmbedder) Dimensions() int            { return e.dims }
func (e *hashEmbedder) ModelName() string          { return e.model }
func (e *hashEmbedder) Ping(context.Context) error { return nil }
func (e *hashEmbedder) Close() error               { return nil }

// preparingEmbedder records Prepare calls and hands out a fresh embedder per
// corpus. failFitted makes the next fitted embedder fail its first request.
type preparingEmbedder struct {
	*hashEmbedder
	corpus     []string
	fitted     []*hashEmbedder
	failFitted error
}

func (e *preparingEmbedder) Prepare(texts []string) (driven.EmbeddingService, error) {
	e.corpus = texts
	fitted := &hashEmbedder{dims: e.dims, model: e.model, failNext: e.failFitted}
	e.failFitted = nil
	e.fitted = append(e.fitted, fitted)
	return fitted, nil
}

// mockLLM returns a canned response and records prompts.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	block    bool
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	templates map[string]string
}

func newMockPromptStore() *mockPromptStore {
	tmpl := "HISTORY:\n{conversation_history}\nQUESTION: {question}\nCONTEXT:\n{context}"
	return &mockPromptStore{templates: map[string]string{
		driven.PromptAnswerRAG:     tmpl,
		driven.PromptAnswerSummary: "SUMMARY " + tmpl,
	}}
}

func (p *mockPromptStore) Load(name string) (string, error) {
	t, ok := p.templates[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return t, nil
}

func (p *mockPromptStore) Reload() {}

// mockIndexStore keeps one snapshot in memory.
type mockIndexStore struct {
	snap    *domain.IndexSnapshot
	loadErr error
	saveErr error
	saves   int
}

func (s *mockIndexStore) Load(context.Context) (*domain.IndexSnapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.snap == nil {
		return nil, domain.ErrIndexNotFound
	}
	return s.snap, nil
}

func (s *mockIndexStore) Save(_ context.Context, snap *domain.IndexSnapshot) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snap = snap
	return nil
}

func (s *mockIndexStore) Path() string { return "mock://index" }

// mockChat is a scripted ChatService.
type mockChat struct {
	mu       sync.Mutex
	answer   string
	err      error
	received [][]domain.Turn
	opts     []domain.AnswerOptions
}

func (c *mockChat) Answer(_ context.Context, q string, history []domain.Turn, opts domain.AnswerOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, history)
	c.opts = append(c.opts, opts)
	if c.err != nil {
		return domain.ApologyMessage, c.err
	}
	return c.answer + ": " + q, nil
}

func (c *mockChat) Mode() domain.ChatMode { return domain.ChatModeRAG }

var errBoom = errors.New("boom")
