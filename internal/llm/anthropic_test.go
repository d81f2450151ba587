package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicOracle(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantModel string
		wantErr   bool
	}{
		{
			name:      "defaults",
			config:    Config{APIKey: "test-key"},
			wantModel: anthropicDefaultModel,
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "claude-3-5-haiku-latest",
				Temperature: temperature(0.5),
				MaxTokens:   20,
			},
			wantModel: "claude-3-5-haiku-latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle, err := newAnthropicOracle(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, oracle.model)
			assert.Equal(t, anthropicBaseURL, oracle.baseURL)
			assert.Equal(t, DefaultPrompt(), oracle.systemPrompt)
		})
	}
}

func TestAnthropicOracleCategorize(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  Cleaning\n"}]}`))
	}))
	defer server.Close()

	oracle, err := newAnthropicOracle(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		SystemPrompt: "categorize please",
	})
	require.NoError(t, err)

	category, err := oracle.Categorize(context.Background(), []string{"debit", "internet", "banking", "e-transfer", "amy", "farrish"})
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", category)

	assert.Equal(t, anthropicDefaultModel, got.Model)
	assert.Equal(t, "categorize please", got.System)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, DefaultTemperature, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "debit, internet, banking, e-transfer, amy, farrish", got.Messages[0].Content)
}

func TestAnthropicOracleErrors(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		body   string
		status int
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"type":"rate_limit_error"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.ErrorIs(t, err, common.ErrRateLimit)
			},
		},
		{
			name:   "server error is retryable",
			status: http.StatusInternalServerError,
			body:   `{"error":{"type":"api_error"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, common.IsRetryable(err))
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error":{"type":"invalid_request_error"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.Contains(t, err.Error(), "status 400")
				assert.False(t, common.IsRetryable(err))
			},
		},
		{
			name:   "no text content",
			status: http.StatusOK,
			body:   `{"content":[]}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
		{
			name:   "invalid JSON",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.Contains(t, err.Error(), "failed to parse response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			oracle, err := newAnthropicOracle(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = oracle.Categorize(context.Background(), []string{"debit", "coffee"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
