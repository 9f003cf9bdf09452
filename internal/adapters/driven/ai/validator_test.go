package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

func TestConfigValidator(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderLocal}))
	assert.Error(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}))

	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: "", Model: "test-model"}))
	assert.Error(t, v.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  ollamaServer(t, http.StatusUnauthorized),
	}))
}
