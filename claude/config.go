package claude

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"medclarify/domain"
)

const (
	// DefaultAPIURL is the Messages API endpoint
	DefaultAPIURL = "https://api.anthropic.com/v1/messages"

	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultMaxTokens  = 4096
	DefaultAPIVersion = "2023-06-01"

	// DefaultTimeout for API requests
	DefaultTimeout = 2 * time.Minute
)

// Environment variables read by LoadConfig.
const (
	EnvAPIKey         = "ANTHROPIC_API_KEY"
	EnvAPIKeyFallback = "CLAUDE_API_KEY"
	EnvModel          = "MEDCLARIFY_MODEL"
	EnvMaxTokens      = "MEDCLARIFY_MAX_TOKENS"
	EnvAPIURL         = "MEDCLARIFY_API_URL"
	EnvTimeout        = "MEDCLARIFY_TIMEOUT"
)

// Config is the explicit client configuration. It is resolved once, at
// startup, and injected into NewClient.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int
	APIVersion string
	BaseURL    string
	Timeout    time.Duration
}

// DefaultConfig returns a Config with every field but the API key filled in.
func DefaultConfig() Config {
	return Config{
		Model:      DefaultModel,
		MaxTokens:  DefaultMaxTokens,
		APIVersion: DefaultAPIVersion,
		BaseURL:    DefaultAPIURL,
		Timeout:    DefaultTimeout,
	}
}

// LoadConfig builds a Config from the environment. The returned Config is
// usable for display even when an error is reported.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKeyFallback))
	}

	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.BaseURL = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvMaxTokens)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, domain.ConfigError(fmt.Sprintf("%s must be an integer, got %q", EnvMaxTokens, v), err)
		}
		cfg.MaxTokens = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, domain.ConfigError(fmt.Sprintf("%s must be a duration like 90s, got %q", EnvTimeout, v), err)
		}
		cfg.Timeout = d
	}

	return cfg, cfg.Validate()
}

// Validate reports the first configuration problem, if any.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return domain.ConfigError(fmt.Sprintf("%s or %s environment variable not set", EnvAPIKey, EnvAPIKeyFallback), nil)
	}
	if c.MaxTokens <= 0 {
		return domain.ConfigError(fmt.Sprintf("max tokens must be positive, got %d", c.MaxTokens), nil)
	}
	if c.BaseURL != "" && !validEndpoint(c.BaseURL) {
		return domain.ConfigError(fmt.Sprintf("invalid API URL %q", c.BaseURL), nil)
	}
	return nil
}

// CheckConfig verifies the API configuration is set up
func CheckConfig() error {
	_, err := LoadConfig()
	return err
}

// GetAPIKeyHelp returns help text for setting up the API key
func GetAPIKeyHelp() string {
	return `MedClarify uses the Anthropic Messages API to read and explain your documents.

1. Go to https://console.anthropic.com/settings/keys
2. Create an API key
3. Set the environment variable:

   export ANTHROPIC_API_KEY="your-api-key"

Or create a .env file with:
   ANTHROPIC_API_KEY=your-api-key

Optional settings:
   MEDCLARIFY_MODEL        model name (default claude-sonnet-4-20250514)
   MEDCLARIFY_MAX_TOKENS   response token limit (default 4096)
   MEDCLARIFY_TIMEOUT      request timeout, e.g. 90s (default 2m)`
}
