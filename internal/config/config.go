// Package config provides configuration loading and validation for the CLI.
// Values come from a JSON file, environment variables, and CLI flags, in
// ascending precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the CLI configuration loadable from a JSON file. All fields are
// optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Credentials
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	InstantlyAPIKey string `json:"instantly_api_key,omitempty"`

	// Endpoints
	WorkflowWebhookURL     string `json:"workflow_webhook_url,omitempty" validate:"omitempty,url"`
	NotificationWebhookURL string `json:"notification_webhook_url,omitempty" validate:"omitempty,url"`
	DatabaseURL            string `json:"database_url,omitempty"`

	// Lead input
	LeadSource string `json:"lead_source,omitempty" validate:"omitempty,oneof=generic apollo"`

	// Processing limits
	Workers      int     `json:"workers,omitempty" validate:"omitempty,min=1,max=50"`
	MaxRetries   int     `json:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	RateLimitRPS float64 `json:"rate_limit_rps,omitempty" validate:"omitempty,gt=0"`
	TimeoutSecs  int     `json:"timeout_secs,omitempty" validate:"omitempty,min=1"`

	// Scoring cutoffs
	EnterpriseScore   int `json:"enterprise_score,omitempty" validate:"omitempty,min=0,max=100"`
	ProfessionalScore int `json:"professional_score,omitempty" validate:"omitempty,min=0,max=100"`

	// CampaignIDs maps campaign identifiers to platform campaign IDs.
	CampaignIDs map[string]string `json:"campaign_ids,omitempty"`

	// IcebreakerTemplate steers generated icebreakers; FallbackTemplate is the
	// terminal local template.
	IcebreakerTemplate string `json:"icebreaker_template,omitempty"`
	FallbackTemplate   string `json:"fallback_template,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"`
	Verbose    bool `json:"verbose,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. godotenv
// loading happens earlier, at CLI startup.
func FromEnv() Config {
	return Config{
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		InstantlyAPIKey:        os.Getenv("INSTANTLY_API_KEY"),
		WorkflowWebhookURL:     os.Getenv("WORKFLOW_WEBHOOK_URL"),
		NotificationWebhookURL: os.Getenv("NOTIFICATION_WEBHOOK_URL"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
	}
}

// Validate checks value ranges and cross-field rules. Required fields are
// enforced later, per command, after merging with flags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.EnterpriseScore != 0 && c.ProfessionalScore != 0 && c.ProfessionalScore > c.EnterpriseScore {
		return fmt.Errorf("config error: 'professional_score' must not exceed 'enterprise_score'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Config file values win over environment values this way, and CLI
// flags win over both.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.InstantlyAPIKey == "" {
		result.InstantlyAPIKey = defaults.InstantlyAPIKey
	}
	if result.WorkflowWebhookURL == "" {
		result.WorkflowWebhookURL = defaults.WorkflowWebhookURL
	}
	if result.NotificationWebhookURL == "" {
		result.NotificationWebhookURL = defaults.NotificationWebhookURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LeadSource == "" {
		result.LeadSource = defaults.LeadSource
	}
	if result.IcebreakerTemplate == "" {
		result.IcebreakerTemplate = defaults.IcebreakerTemplate
	}
	if result.FallbackTemplate == "" {
		result.FallbackTemplate = defaults.FallbackTemplate
	}

	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.TimeoutSecs == 0 {
		result.TimeoutSecs = defaults.TimeoutSecs
	}
	if result.EnterpriseScore == 0 {
		result.EnterpriseScore = defaults.EnterpriseScore
	}
	if result.ProfessionalScore == 0 {
		result.ProfessionalScore = defaults.ProfessionalScore
	}

	if len(result.CampaignIDs) == 0 {
		result.CampaignIDs = defaults.CampaignIDs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
