package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

// mapConfigStore is an in-memory ConfigStore.
type mapConfigStore struct {
	values  map[string]any
	failSet error
}

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{values: make(map[string]any)}
}

func (m *mapConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mapConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mapConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mapConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mapConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mapConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mapConfigStore) Set(key string, value any) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.values[key] = value
	return nil
}

func (m *mapConfigStore) Save() error  { return nil }
func (m *mapConfigStore) Load() error  { return nil }
func (m *mapConfigStore) Path() string { return "memory" }

type mockAIConfigValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIConfigValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func newTestSettings(env map[string]string) (*SettingsService, *mapConfigStore, *mockAIConfigValidator) {
	store := newMapConfigStore()
	validator := &mockAIConfigValidator{}
	svc := NewSettingsService(store, validator)
	svc.getenv = func(name string) string { return env[name] }
	return svc, store, validator
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	got, err := svc.Get()
	require.NoError(t, err)
	want := domain.DefaultAppSettings()
	assert.Equal(t, &want, got)
	assert.Equal(t, want, svc.GetDefaults())
}

func TestSettingsService_SaveAndGet(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	in := domain.DefaultAppSettings()
	in.Data.Dir = "/srv/data"
	in.Embedding = domain.EmbeddingSettings{
		Provider:          domain.AIProviderOllama,
		Model:             "nomic-embed-text",
		BaseURL:           "http://gpu:11434",
		RequestsPerSecond: 2.5,
	}
	in.LLM = domain.LLMSettings{Provider: domain.AIProviderGroq, Model: "llama-3.1-8b-instant", APIKey: "gsk-test"}
	in.Retrieval.K = 12
	in.Generation = domain.GenerationSettings{Temperature: 0, MaxTokens: 512, Timeout: 30 * time.Second}
	in.ChatMode = domain.ChatModeSummary

	require.NoError(t, svc.Save(&in))
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, &in, got, "an explicit zero temperature survives the round trip")
}

func TestSettingsService_EnvironmentKeys(t *testing.T) {
	svc, store, _ := newTestSettings(map[string]string{"GROQ_API_KEY": "from-env"})

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderGroq, "", ""))
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.LLM.APIKey)
	assert.Equal(t, "llama-3.1-8b-instant", got.LLM.Model)
	_, stored := store.Get(keyLLMAPIKey)
	assert.False(t, stored, "environment keys are not written to the config file")

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderGroq, "", "explicit"))
	assert.Equal(t, "explicit", store.GetString(keyLLMAPIKey))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		apiKey   string
		wantErr  string
	}{
		{"ollama needs no key", domain.AIProviderOllama, "", ""},
		{"openai with key", domain.AIProviderOpenAI, "sk-test", ""},
		{"openai without key", domain.AIProviderOpenAI, "", "API key required"},
		{"local cannot generate", domain.AIProviderLocal, "", "does not support text generation"},
		{"unknown provider", "mystery", "", "invalid LLM provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestSettings(nil)
			err := svc.SetLLMProvider(tt.provider, "", tt.apiKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, got.LLM.Provider)
			assert.Equal(t, domain.DefaultLLMModels()[tt.provider], got.LLM.Model)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", got.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", got.Embedding.BaseURL)

	err = svc.SetEmbeddingProvider(domain.AIProviderGroq, "", "key")
	assert.ErrorContains(t, err, "does not support embeddings")

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk"))
	got, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", got.Embedding.Model)
	assert.Empty(t, got.Embedding.BaseURL)
}

func TestSettingsService_Setters(t *testing.T) {
	svc, _, _ := newTestSettings(nil)

	require.NoError(t, svc.SetDataDir("/data/json"))
	require.NoError(t, svc.SetRetrievalK(7))
	require.NoError(t, svc.SetChatMode(domain.ChatModeSummary))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/data/json", got.Data.Dir)
	assert.Equal(t, 7, got.Retrieval.K)
	assert.Equal(t, domain.ChatModeSummary, got.ChatMode)

	assert.ErrorIs(t, svc.SetDataDir(""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetRetrievalK(0), domain.ErrInvalidInput)
	assert.Error(t, svc.SetChatMode("verbose"))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*SettingsService)
		wantErr error
	}{
		{
			name:    "defaults lack an LLM",
			setup:   func(*SettingsService) {},
			wantErr: domain.ErrLLMUnavailable,
		},
		{
			name: "configured",
			setup: func(s *SettingsService) {
				_ = s.SetLLMProvider(domain.AIProviderOllama, "", "")
			},
		},
		{
			name: "rag needs a usable embedding provider",
			setup: func(s *SettingsService) {
				_ = s.SetLLMProvider(domain.AIProviderOllama, "", "")
				settings, _ := s.Get()
				settings.Embedding.Provider = domain.AIProviderOpenAI
				_ = s.Save(settings)
			},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name: "summary mode ignores embeddings",
			setup: func(s *SettingsService) {
				_ = s.SetLLMProvider(domain.AIProviderOllama, "", "")
				_ = s.SetChatMode(domain.ChatModeSummary)
				settings, _ := s.Get()
				settings.Embedding.Provider = domain.AIProviderOpenAI
				_ = s.Save(settings)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestSettings(nil)
			tt.setup(svc)
			err := svc.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettingsService_SaveError(t *testing.T) {
	svc, store, _ := newTestSettings(nil)
	store.failSet = errors.New("disk full")

	settings := domain.DefaultAppSettings()
	err := svc.Save(&settings)
	assert.ErrorContains(t, err, "save data.dir")
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	svc, _, validator := newTestSettings(nil)
	require.NoError(t, svc.SetLLMProvider(domain.AIProviderOllama, "llama3.2", ""))

	require.NoError(t, svc.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, domain.AIProviderLocal, validator.embedding.Provider)

	validator.llmErr = errors.New("connection refused")
	assert.ErrorContains(t, svc.ValidateLLMConfig(), "connection refused")
	assert.Equal(t, "llama3.2", validator.llm.Model)

	noValidator := NewSettingsService(newMapConfigStore(), nil)
	assert.NoError(t, noValidator.ValidateLLMConfig())
}
