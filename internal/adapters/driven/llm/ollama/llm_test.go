package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultTimeout, svc.client.Timeout)

	svc = NewLLMService(Config{BaseURL: "http://gpu-box:11434/", Model: "mistral"})
	assert.Equal(t, "http://gpu-box:11434", svc.baseURL)
	assert.Equal(t, "mistral", svc.ModelName())
}

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"There are 3 assets.","done":true}`))
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	answer, err := svc.Generate(t.Context(), "How many assets?", driven.GenerateOptions{MaxTokens: 200, Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "There are 3 assets.", answer)

	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, "How many assets?", got["prompt"])
	assert.Equal(t, false, got["stream"])
	opts := got["options"].(map[string]any)
	assert.InDelta(t, 200.0, opts["num_predict"], 0)
	assert.Contains(t, opts, "temperature", "zero temperature is sent explicitly")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusNotFound, `{"error":"model not found"}`, "status 404"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "out of memory"},
		{"bad json", http.StatusOK, `not json`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(t.Context(), "q", driven.GenerateOptions{})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	assert.NoError(t, svc.Ping(t.Context()))

	status = http.StatusInternalServerError
	assert.ErrorContains(t, svc.Ping(t.Context()), "500")
	assert.NoError(t, svc.Close())
}
