package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/tally/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLedger = `2024-01-02,Internet Banking E-TRANSFER 010494743526 Amy Farrish,120.00,
2024-01-03,STARBUCKS COFFEE 4821,4.50,
2024-01-04,SALARY DEPOSIT ACME,,2500.00
2024-01-05,Internet Banking E-TRANSFER 010494799999 Amy Farrish,120.00,
`

// newOllamaServer answers like Ollama's generate endpoint, picking a
// category from the tokens in the prompt.
func newOllamaServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
			return
		}

		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		category := "Other"
		switch {
		case strings.Contains(req.Prompt, "starbucks"):
			category = "Food & Dining"
		case strings.Contains(req.Prompt, "farrish"):
			category = "Cleaning"
		case strings.Contains(req.Prompt, "salary"):
			category = "Salary"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": category, "done": true})
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func ollamaConfig(t *testing.T, dir, baseURL string, count int) string {
	t.Helper()
	return writeFile(t, dir, "config.yaml", `
logging:
  level: error
llm:
  oracles:
    - provider: ollama
      base_url: `+baseURL+`
      count: `+strconv.Itoa(count)+`
`)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCategorizeCSVToCSV(t *testing.T) {
	dir := t.TempDir()
	server, calls := newOllamaServer(t, http.StatusOK)
	cfg := ollamaConfig(t, dir, server.URL, 3)
	input := writeFile(t, dir, "in.csv", testLedger)
	output := filepath.Join(dir, "out", "tagged.csv")

	out, err := execute(t, "--config", cfg, "categorize", input, output, "--no-progress")
	require.NoError(t, err)

	assert.Contains(t, out, "Categorization Complete")
	assert.Contains(t, out, "Transactions: 4")
	assert.Contains(t, out, "Groups: 3")
	assert.Contains(t, out, "Oracle calls: 9")
	assert.Contains(t, out, "Wrote 4 transactions to")
	assert.Equal(t, int32(9), calls.Load())

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, `Date,Description,Debit Amount,Credit Amount,Category
2024-01-02,Internet Banking E-TRANSFER 010494743526 Amy Farrish,120.00,,Cleaning
2024-01-05,Internet Banking E-TRANSFER 010494799999 Amy Farrish,120.00,,Cleaning
2024-01-03,STARBUCKS COFFEE 4821,4.50,,Food & Dining
2024-01-04,SALARY DEPOSIT ACME,,2500.00,Salary
`, string(written))
}

func TestCategorizeCSVToSQLite(t *testing.T) {
	dir := t.TempDir()
	server, _ := newOllamaServer(t, http.StatusOK)
	cfg := ollamaConfig(t, dir, server.URL, 1)
	input := writeFile(t, dir, "in.csv", testLedger)
	output := filepath.Join(dir, "ledger.db")

	_, err := execute(t, "--config", cfg, "categorize", input, output, "--no-progress")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "tokens", output, "--groups")
	require.NoError(t, err)
	assert.Contains(t, out, "3 groups")
}

func TestCategorizeOracleFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	server, _ := newOllamaServer(t, http.StatusInternalServerError)
	cfg := ollamaConfig(t, dir, server.URL, 2)
	input := writeFile(t, dir, "in.csv", testLedger)
	output := filepath.Join(dir, "tagged.csv")

	_, err := execute(t, "--config", cfg, "categorize", input, output, "--no-progress")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrClassificationFailed)
	assert.Contains(t, err.Error(), "categorization aborted; nothing was written")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "no output may be written after an oracle failure")
}

func TestCategorizeUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	cfg := ollamaConfig(t, dir, "http://127.0.0.1:1", 1)

	_, err := execute(t, "--config", cfg, "categorize", filepath.Join(dir, "in.xlsx"), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestCategorizeRequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "categorize", "only-input.csv")
	require.Error(t, err)
}

func TestTokensCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := ollamaConfig(t, dir, "http://127.0.0.1:1", 1)
	input := writeFile(t, dir, "in.csv", testLedger)

	out, err := execute(t, "--config", cfg, "tokens", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Tokens for 4 transactions")
	assert.Contains(t, out, "e-transfer")
	assert.Contains(t, out, "starbucks")

	out, err = execute(t, "--config", cfg, "tokens", input, "--groups")
	require.NoError(t, err)
	assert.Contains(t, out, "3 groups")
	assert.Contains(t, out, "(2 transactions)")
}

func TestVersionCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := ollamaConfig(t, dir, "http://127.0.0.1:1", 1)

	out, err := execute(t, "--config", cfg, "version")
	require.NoError(t, err)
	assert.Equal(t, "tally dev\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := ollamaConfig(t, dir, "http://127.0.0.1:1", 1)

	_, err := execute(t, "--config", cfg, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestBadOracleSettingsOnlyAffectCategorize(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", `
logging:
  level: error
llm:
  oracles:
    - model: gpt-4o
`)
	input := writeFile(t, dir, "in.csv", testLedger)

	out, err := execute(t, "--config", cfg, "version")
	require.NoError(t, err)
	assert.Equal(t, "tally dev\n", out)

	_, err = execute(t, "--config", cfg, "tokens", input)
	require.NoError(t, err)

	_, err = execute(t, "--config", cfg, "categorize", input, filepath.Join(dir, "out.csv"), "--no-progress")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, err.Error(), "llm.oracles[0]")
}
