package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorContains(t, err, "API key")

	svc, err := NewLLMService(Config{APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestNewGroqService(t *testing.T) {
	_, err := NewGroqService(Config{})
	assert.ErrorContains(t, err, "groq")

	svc, err := NewGroqService(Config{APIKey: "gsk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGroqModel, svc.ModelName())
}

func TestGenerate(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[
			{"index":0,"message":{"role":"assistant","content":"Asset MPT-001 has 2 work orders."},"finish_reason":"stop"}
		]}`))
	})

	answer, err := svc.Generate(t.Context(), "prompt text", driven.GenerateOptions{MaxTokens: 2000, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Asset MPT-001 has 2 work orders.", answer)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "prompt text", got.Messages[0].Content)
}

func TestGenerate_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	})

	_, err := svc.Generate(t.Context(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	require.Contains(t, raw, "temperature")
	assert.InDelta(t, 0, raw["temperature"], 1e-6)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, "Rate limit reached"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.Generate(t.Context(), "q", driven.GenerateOptions{})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	ok := true
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`))
	})

	assert.NoError(t, svc.Ping(t.Context()))
	ok = false
	assert.ErrorContains(t, svc.Ping(t.Context()), "Invalid API key")
	assert.NoError(t, svc.Close())
}
