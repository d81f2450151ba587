// Package config turns viper state into the settings tally runs with.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/spf13/viper"
)

// Provider names accepted in oracle settings.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// apiKeyEnv lists the conventional environment variable per provider.
var apiKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Settings is the fully resolved configuration of one invocation. It is
// built once at startup and passed down explicitly.
type Settings struct {
	Logging    LoggingSettings
	Sheets     SheetsSettings
	Plaid      PlaidSettings
	SimpleFIN  SimpleFINSettings
	PromptFile string
}

// LoggingSettings selects the slog handler.
type LoggingSettings struct {
	Level  string
	Format string
}

// OracleSettings describes one categorization oracle. Count repeats the
// same oracle so several independent answers come from one entry. A nil
// Temperature leaves the provider default in place.
type OracleSettings struct {
	Provider    string   `mapstructure:"provider"`
	APIKey      string   `mapstructure:"api_key"`
	Model       string   `mapstructure:"model"`
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
	RateLimit   int      `mapstructure:"rate_limit"`
	Count       int      `mapstructure:"count"`
}

// PlaidSettings holds Plaid credentials and the import window.
type PlaidSettings struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
	Days        int
}

// SimpleFINSettings holds SimpleFIN bridge access and the import window.
type SimpleFINSettings struct {
	AccessURL  string
	SetupToken string
	StateFile  string
	Days       int
}

// SheetsSettings holds Google Sheets credentials and the target document.
type SheetsSettings struct {
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetName          string
}

// DefaultOracles is the oracle set used when none is configured: one
// OpenAI model and two Anthropic models.
func DefaultOracles() []OracleSettings {
	return []OracleSettings{
		{Provider: ProviderOpenAI, Count: 1},
		{Provider: ProviderAnthropic, Count: 2},
	}
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("plaid.environment", "sandbox")
	v.SetDefault("plaid.days", 30)
	v.SetDefault("simplefin.days", 30)
	v.SetDefault("sheets.spreadsheet_name", "Categorized Ledger")
	v.SetDefault("sheets.sheet_name", "Transactions")
}

// Load resolves every setting except the oracle list, which LoadOracles
// handles.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		PromptFile: ExpandPath(v.GetString("llm.prompt_file")),
		Plaid: PlaidSettings{
			ClientID:    v.GetString("plaid.client_id"),
			Secret:      v.GetString("plaid.secret"),
			Environment: v.GetString("plaid.environment"),
			AccessToken: v.GetString("plaid.access_token"),
			Days:        v.GetInt("plaid.days"),
		},
		SimpleFIN: SimpleFINSettings{
			AccessURL:  firstNonEmpty(v.GetString("simplefin.access_url"), os.Getenv("SIMPLEFIN_ACCESS_URL")),
			SetupToken: firstNonEmpty(v.GetString("simplefin.setup_token"), os.Getenv("SIMPLEFIN_TOKEN")),
			StateFile:  ExpandPath(v.GetString("simplefin.state_file")),
			Days:       v.GetInt("simplefin.days"),
		},
		Sheets: SheetsSettings{
			ServiceAccountPath: firstNonEmpty(v.GetString("sheets.service_account_path"), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")),
			ClientID:           firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
			ClientSecret:       firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
			RefreshToken:       firstNonEmpty(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")),
			SpreadsheetID:      firstNonEmpty(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")),
			SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
			SheetName:          v.GetString("sheets.sheet_name"),
		},
	}
	s.Sheets.ServiceAccountPath = ExpandPath(s.Sheets.ServiceAccountPath)

	return s, nil
}

// LoadOracles resolves the llm.oracles list from v. Only commands that query
// oracles call it, so a bad entry does not break the others. Provider API
// keys missing from an entry fall back to llm.<provider>_api_key and then to
// the provider's conventional environment variable.
func LoadOracles(v *viper.Viper) ([]OracleSettings, error) {
	var oracles []OracleSettings
	if err := v.UnmarshalKey("llm.oracles", &oracles); err != nil {
		return nil, fmt.Errorf("%w: llm.oracles: %w", common.ErrInvalidConfig, err)
	}
	if len(oracles) == 0 {
		oracles = DefaultOracles()
	}

	for i := range oracles {
		o := &oracles[i]
		o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
		if o.Provider == "" {
			return nil, fmt.Errorf("%w: llm.oracles[%d]: provider is required", common.ErrMissingConfig, i)
		}
		if o.APIKey == "" {
			o.APIKey = v.GetString("llm." + o.Provider + "_api_key")
		}
		if o.APIKey == "" {
			if env, ok := apiKeyEnv[o.Provider]; ok {
				o.APIKey = os.Getenv(env)
			}
		}
	}
	return oracles, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
