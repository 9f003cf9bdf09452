package cli

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: "****"},
		{name: "eight characters or fewer", input: "12345678", expected: "****"},
		{name: "openai key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "anthropic key", input: "sk-ant-REDACTED", expected: "sk-a...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{name: "empty input returns default", input: "", maxVal: 3, defaultVal: 1, expected: 1},
		{name: "whitespace returns default", input: "   ", maxVal: 3, defaultVal: 2, expected: 2},
		{name: "padded choice is trimmed", input: " 2 \r", maxVal: 3, defaultVal: 1, expected: 2},
		{name: "upper bound is valid", input: "4", maxVal: 4, defaultVal: 1, expected: 4},
		{name: "above range returns default", input: "5", maxVal: 4, defaultVal: 1, expected: 1},
		{name: "zero returns default", input: "0", maxVal: 4, defaultVal: 3, expected: 3},
		{name: "provider name is not a choice", input: "openai", maxVal: 4, defaultVal: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseChoice(tt.input, tt.maxVal, tt.defaultVal))
		})
	}
}

func TestReadLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  llama3.2 \r\nsecond\nlast"))
	assert.Equal(t, "llama3.2", readLine(reader))
	assert.Equal(t, "second", readLine(reader))
	assert.Equal(t, "last", readLine(reader))
	assert.Empty(t, readLine(reader))
}

func TestReadPassword_FallsBackToLine(t *testing.T) {
	in := strings.NewReader(" sk-secret \n")
	assert.Equal(t, "sk-secret", readPassword(in, bufio.NewReader(in)))
}

// runProviderPrompt drives one interactive provider prompt against a fresh
// settings mock.
func runProviderPrompt(t *testing.T, configure func(*cobra.Command, *bufio.Reader) error,
	input string) (*mockSettings, string, error) {
	t.Helper()
	settings := newMockSettings()
	prev := settingsService
	settingsService = settings
	t.Cleanup(func() { settingsService = prev })

	out := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(input))
	err := configure(cmd, bufio.NewReader(cmd.InOrStdin()))
	return settings, out.String(), err
}

func TestConfigureEmbeddingProvider_ChoiceSelectsProvider(t *testing.T) {
	providers := domain.AllEmbeddingProviders()
	defaults := domain.DefaultEmbeddingModels()

	tests := []struct {
		name      string
		input     string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantError bool
	}{
		{name: "default choice keeps the offline embedder", input: "\n\n", provider: providers[0], model: defaults[providers[0]]},
		{name: "second choice with custom model", input: "2\nnomic-embed-text\n", provider: providers[1], model: "nomic-embed-text"},
		{name: "hosted provider reads a key", input: "3\n\nsk-test-key\n", provider: providers[2], model: defaults[providers[2]], apiKey: "sk-test-key"},
		{name: "hosted provider without key", input: "3\n\n\n", wantError: true},
		{name: "out of range falls back to the first provider", input: "9\n\n", provider: providers[0], model: defaults[providers[0]]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, out, err := runProviderPrompt(t, configureEmbeddingProvider, tt.input)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "API key is required")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.settings.Embedding.Provider)
			assert.Equal(t, tt.model, settings.settings.Embedding.Model)
			assert.Equal(t, tt.apiKey, settings.settings.Embedding.APIKey)
			assert.Contains(t, out, "Embedding provider configured: "+tt.provider.Description())
		})
	}
}

func TestConfigureLLMProvider_ChoiceSelectsProvider(t *testing.T) {
	providers := domain.AllLLMProviders()
	defaults := domain.DefaultLLMModels()

	for i, p := range providers {
		t.Run(string(p), func(t *testing.T) {
			input := strconv.Itoa(i+1) + "\n\n"
			if p.RequiresAPIKey() {
				input += "key-" + string(p) + "\n"
			}

			settings, out, err := runProviderPrompt(t, configureLLMProvider, input)
			require.NoError(t, err)
			assert.Equal(t, p, settings.settings.LLM.Provider)
			assert.Equal(t, defaults[p], settings.settings.LLM.Model)
			if p.RequiresAPIKey() {
				assert.Equal(t, "key-"+string(p), settings.settings.LLM.APIKey)
			} else {
				assert.Empty(t, settings.settings.LLM.APIKey)
			}
			assert.Contains(t, out, "Validating configuration... OK")
		})
	}
}
