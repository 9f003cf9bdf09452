package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir           = "data.dir"
	keyIndexPath         = "data.index_path"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedRate         = "embedding.requests_per_second"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyRetrievalK        = "retrieval.k"
	keyHistoryTurns      = "retrieval.history_turns"
	keyTemperature       = "generation.temperature"
	keyMaxTokens         = "generation.max_tokens"
	keyGenerationTimeout = "generation.timeout_seconds"
	keyChatMode          = "chat.mode"
)

// apiKeyEnv maps providers to the environment variables that supply a key
// when none is stored in the config file.
var apiKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderGroq:      "GROQ_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Data: domain.DataSettings{
			Dir:       s.getString(keyDataDir, defaults.Data.Dir),
			IndexPath: s.getString(keyIndexPath, defaults.Data.IndexPath),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			K:            s.getInt(keyRetrievalK, defaults.Retrieval.K),
			HistoryTurns: s.getInt(keyHistoryTurns, defaults.Retrieval.HistoryTurns),
		},
		Generation: domain.GenerationSettings{
			Temperature: s.getFloat(keyTemperature, defaults.Generation.Temperature),
			MaxTokens:   s.getInt(keyMaxTokens, defaults.Generation.MaxTokens),
			Timeout:     s.getSeconds(keyGenerationTimeout, defaults.Generation.Timeout),
		},
		ChatMode: s.getChatMode(defaults.ChatMode),
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set, so keys supplied through the
// environment are not copied into the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Data.Dir},
		{keyIndexPath, settings.Data.IndexPath},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedRate, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyRetrievalK, settings.Retrieval.K},
		{keyHistoryTurns, settings.Retrieval.HistoryTurns},
		{keyTemperature, settings.Generation.Temperature},
		{keyMaxTokens, settings.Generation.MaxTokens},
		{keyGenerationTimeout, int(settings.Generation.Timeout / time.Second)},
		{keyChatMode, string(settings.ChatMode)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.envAPIKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetDataDir updates the dataset directory.
func (s *SettingsService) SetDataDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: data directory is empty", domain.ErrInvalidInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Data.Dir = dir
	return s.Save(settings)
}

// SetChatMode updates the answer strategy.
func (s *SettingsService) SetChatMode(mode domain.ChatMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid chat mode: %s", mode)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.ChatMode = mode
	return s.Save(settings)
}

// SetRetrievalK updates the number of documents retrieved per question.
func (s *SettingsService) SetRetrievalK(k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Retrieval.K = k
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = defaultBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !containsProvider(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}
	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = defaultBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the settings can start a chat.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.ChatMode.IsValid() {
		return fmt.Errorf("invalid chat mode: %s", settings.ChatMode)
	}
	if settings.Data.Dir == "" {
		return fmt.Errorf("%w: data directory is not set", domain.ErrInvalidInput)
	}
	if settings.Retrieval.K <= 0 {
		return fmt.Errorf("%w: retrieval.k must be positive", domain.ErrInvalidInput)
	}
	if settings.ChatMode == domain.ChatModeRAG && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("chat mode %q requires an embedding provider: %w",
			settings.ChatMode.Description(), domain.ErrEmbeddingUnavailable)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("answering questions requires an LLM provider: %w", domain.ErrLLMUnavailable)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	name, ok := apiKeyEnv[provider]
	if !ok {
		return ""
	}
	return s.getenv(name)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getChatMode(defaultVal domain.ChatMode) domain.ChatMode {
	mode := domain.ChatMode(s.configStore.GetString(keyChatMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

// defaultBaseURL keeps a custom endpoint for Ollama and clears it for
// cloud providers, whose adapters know their own endpoints.
func defaultBaseURL(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}
