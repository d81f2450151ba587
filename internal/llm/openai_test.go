package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIOracle(t *testing.T) {
	_, err := newOpenAIOracle(Config{})
	require.Error(t, err)

	oracle, err := newOpenAIOracle(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, openAIDefaultModel, oracle.model)
	assert.Equal(t, DefaultMaxTokens, oracle.maxTokens)
	assert.InDelta(t, DefaultTemperature, oracle.temperature, 1e-6)

	oracle, err = newOpenAIOracle(Config{APIKey: "test-key", Temperature: temperature(0)})
	require.NoError(t, err)
	assert.Positive(t, oracle.temperature, "zero must survive omitempty")
	assert.InDelta(t, 0, oracle.temperature, 1e-30)
}

func temperature(t float64) *float64 { return &t }

func TestWithDefaultsTemperature(t *testing.T) {
	got := Config{}.withDefaults("m")
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, DefaultTemperature, *got.Temperature, 1e-9)

	got = Config{Temperature: temperature(0)}.withDefaults("m")
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)

	got = Config{Temperature: temperature(0.7)}.withDefaults("m")
	assert.InDelta(t, 0.7, *got.Temperature, 1e-9)
}

func TestOpenAIOracleCategorize(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " Food & Dining \n"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	oracle, err := newOpenAIOracle(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL + "/v1",
		Model:        "gpt-4o",
		SystemPrompt: "you categorize",
	})
	require.NoError(t, err)

	category, err := oracle.Categorize(context.Background(), []string{"debit", "starbucks", "coffee"})
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", category)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "you categorize", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "debit, starbucks, coffee", got.Messages[1].Content)
}

func TestOpenAIOracleErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantErr error
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"boom","type":"server_error"}}`,
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id":"chatcmpl-1","choices":[]}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "blank content",
			status:  http.StatusOK,
			body:    `{"id":"chatcmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`,
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			oracle, err := newOpenAIOracle(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})
			require.NoError(t, err)

			_, err = oracle.Categorize(context.Background(), []string{"debit", "coffee"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
