package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in TF-IDF embedder. It needs no network.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local TF-IDF (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChatMode selects the answer strategy once at startup.
type ChatMode string

// Available chat modes.
const (
	// ChatModeRAG retrieves documents per question.
	ChatModeRAG ChatMode = "rag"

	// ChatModeSummary answers from the dataset summaries only.
	ChatModeSummary ChatMode = "summary"
)

// IsValid returns true if the chat mode is recognised.
func (m ChatMode) IsValid() bool {
	return m == ChatModeRAG || m == ChatModeSummary
}

// Description returns a human-readable description of the mode.
func (m ChatMode) Description() string {
	switch m {
	case ChatModeRAG:
		return "Retrieval (top-K documents per question)"
	case ChatModeSummary:
		return "Summary only (dataset statistics)"
	default:
		return unknownDescription
	}
}

// AllChatModes returns the selectable chat modes.
func AllChatModes() []ChatMode {
	return []ChatMode{ChatModeRAG, ChatModeSummary}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Groq/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// DataSettings locates the dataset and the persisted index.
type DataSettings struct {
	// Dir is the directory holding the collection JSON files.
	Dir string

	// IndexPath is the SQLite file the vector index is persisted to.
	IndexPath string
}

// RetrievalSettings tunes context assembly.
type RetrievalSettings struct {
	// K is the number of documents retrieved per question.
	K int

	// HistoryTurns is how many recent turns the model sees.
	HistoryTurns int
}

// GenerationSettings tunes the answer generator.
type GenerationSettings struct {
	Temperature float64
	MaxTokens   int

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Data       DataSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Retrieval  RetrievalSettings
	Generation GenerationSettings
	ChatMode   ChatMode
}

// Default setting values.
const (
	DefaultDataDir        = "JsonData"
	DefaultIndexPath      = "data/index.db"
	DefaultK              = 50
	DefaultHistoryTurns   = 10
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2000
	DefaultGenerationWait = 60 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the offline TF-IDF provider; the LLM is left
// unconfigured until the user runs the settings wizard.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Data: DataSettings{
			Dir:       DefaultDataDir,
			IndexPath: DefaultIndexPath,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
		LLM: LLMSettings{},
		Retrieval: RetrievalSettings{
			K:            DefaultK,
			HistoryTurns: DefaultHistoryTurns,
		},
		Generation: GenerationSettings{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     DefaultGenerationWait,
		},
		ChatMode: ChatModeRAG,
	}
}

// AnswerDefaults returns the per-answer defaults derived from the settings.
func (s AppSettings) AnswerDefaults() AnswerOptions {
	return AnswerOptions{
		K:           s.Retrieval.K,
		Temperature: s.Generation.Temperature,
		MaxTokens:   s.Generation.MaxTokens,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGroq,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "tfidf",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
