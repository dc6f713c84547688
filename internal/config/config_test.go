package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"instantly_api_key": "key-123",
		"workflow_webhook_url": "https://hooks.example.com/flow",
		"workers": 10,
		"campaign_ids": {"enterprise-direct-pitch": "camp-ent"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "key-123", cfg.InstantlyAPIKey)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, "camp-ent", cfg.CampaignIDs["enterprise-direct-pitch"])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "{not json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{WorkflowWebhookURL: "not a url"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{LeadSource: "linkedin"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Workers: 500}
	assert.Error(t, cfg.Validate())

	cfg = &Config{EnterpriseScore: 60, ProfessionalScore: 80}
	assert.Error(t, cfg.Validate())

	cfg = &Config{
		WorkflowWebhookURL: "https://hooks.example.com/flow",
		LeadSource:         "apollo",
		Workers:            5,
		EnterpriseScore:    80,
		ProfessionalScore:  60,
	}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		InstantlyAPIKey: "from-file",
		Workers:         10,
	}
	defaults := Config{
		InstantlyAPIKey: "from-env",
		GeminiAPIKey:    "env-gemini",
		Workers:         5,
		RateLimitRPS:    2,
		CampaignIDs:     map[string]string{"educational-sequence": "camp-edu"},
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "from-file", merged.InstantlyAPIKey)
	assert.Equal(t, "env-gemini", merged.GeminiAPIKey)
	assert.Equal(t, 10, merged.Workers)
	assert.Equal(t, 2.0, merged.RateLimitRPS)
	assert.Equal(t, "camp-edu", merged.CampaignIDs["educational-sequence"])
}

func TestFromEnv(t *testing.T) {
	t.Setenv("INSTANTLY_API_KEY", "env-key")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := FromEnv()
	assert.Equal(t, "env-key", cfg.InstantlyAPIKey)
	assert.Empty(t, cfg.GeminiAPIKey)
}
