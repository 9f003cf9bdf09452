package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/core/services"
)

type mockChat struct {
	err      error
	lastOpts domain.AnswerOptions
}

func (m *mockChat) Answer(_ context.Context, q string, history []domain.Turn, opts domain.AnswerOptions) (string, error) {
	m.lastOpts = opts
	if m.err != nil {
		return domain.ApologyMessage, m.err
	}
	return fmt.Sprintf("answer to %q after %d turns", q, len(history)), nil
}

func (m *mockChat) Mode() domain.ChatMode { return domain.ChatModeRAG }

type mockIndex struct {
	stats   domain.IndexStats
	results []domain.ScoredDocument
	lastK   int
}

func (m *mockIndex) Query(_ context.Context, _ string, k int) ([]domain.ScoredDocument, error) {
	m.lastK = k
	return m.results, nil
}

func (m *mockIndex) Summary(domain.DocType) (domain.Document, bool) { return domain.Document{}, false }

func (m *mockIndex) Rebuild(context.Context, []domain.Document) error { return nil }

func (m *mockIndex) Stats() domain.IndexStats { return m.stats }

type mockRuntime struct {
	chat      *mockChat
	index     *mockIndex
	sessions  *services.SessionManager
	dataDir   string
	llm       bool
	reloadErr error
	reloads   int
	closed    bool
}

func newMockRuntime() *mockRuntime {
	chat := &mockChat{}
	return &mockRuntime{
		chat:     chat,
		index:    &mockIndex{stats: domain.IndexStats{Documents: 42, Dimensions: 8, Model: "tfidf", Fingerprint: "abc123"}},
		sessions: services.NewSessionManager(chat, domain.AnswerOptions{K: 50}),
		dataDir:  "JsonData",
		llm:      true,
	}
}

func (r *mockRuntime) Chat() driving.ChatService { return r.chat }
func (r *mockRuntime) Sessions() driving.SessionService { return r.sessions }
func (r *mockRuntime) Index() driving.IndexService { return r.index }
func (r *mockRuntime) Documents() []domain.Document { return nil }
func (r *mockRuntime) DataDir() string { return r.dataDir }
func (r *mockRuntime) LLMAvailable() bool { return r.llm }

func (r *mockRuntime) Close() error {
	r.closed = true
	return nil
}

func (r *mockRuntime) Reload(context.Context) error {
	r.reloads++
	if r.reloadErr != nil {
		return r.reloadErr
	}
	r.index.stats.Documents++
	return nil
}

type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings()}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) SetDataDir(dir string) error {
	m.settings.Data.Dir = dir
	return nil
}

func (m *mockSettings) SetChatMode(mode domain.ChatMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: chat mode %q", domain.ErrInvalidInput, mode)
	}
	m.settings.ChatMode = mode
	return nil
}

func (m *mockSettings) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: key}
	return nil
}

func (m *mockSettings) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: key}
	return nil
}

func (m *mockSettings) SetRetrievalK(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}
	m.settings.Retrieval.K = k
	return nil
}

func (m *mockSettings) Validate() error { return m.validateErr }
func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error { return m.pingErr }
func (m *mockSettings) ValidateLLMConfig() error { return m.pingErr }

type mockWatcher struct {
	events chan driven.WatchEvent
	dir    string
}

func (w *mockWatcher) Watch(_ context.Context, dir string) (<-chan driven.WatchEvent, error) {
	w.dir = dir
	return w.events, nil
}

// install wires rt and settings into the command tree for one test.
func install(t *testing.T, rt *mockRuntime, settings *mockSettings, watcher driven.FileWatcher) *[]StartOptions {
	t.Helper()
	var starts []StartOptions
	s := &Services{Watcher: watcher}
	if settings != nil {
		s.Settings = settings
	}
	if rt != nil {
		s.Start = func(_ context.Context, opts StartOptions) (Runtime, error) {
			starts = append(starts, opts)
			return rt, nil
		}
	}
	setServices(s)
	t.Cleanup(func() { setServices(nil) })
	return &starts
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	askJSON, askK, askTemperature, askMaxTokens, queryK = false, 0, 0, 0, 10

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetContexts(rootCmd)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return buf.String(), err
}

// resetContexts clears the contexts cobra cached on the command tree so the
// next ExecuteContext call propagates its own context to subcommands.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil makes cobra inherit the parent context again
	for _, c := range cmd.Commands() {
		resetContexts(c)
	}
}
