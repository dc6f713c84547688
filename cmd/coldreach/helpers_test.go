package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdery/coldreach/internal/config"
	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/leads"
)

func TestLoadMergedConfig(t *testing.T) {
	t.Setenv("INSTANTLY_API_KEY", "env-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WORKFLOW_WEBHOOK_URL", "")
	t.Setenv("NOTIFICATION_WEBHOOK_URL", "")
	t.Setenv("DATABASE_URL", "")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"workers": 8}`), 0o644))

	cfg, err := loadMergedConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "env-key", cfg.InstantlyAPIKey)

	cfg, err = loadMergedConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.InstantlyAPIKey)

	_, err = loadMergedConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLeadSource(t *testing.T) {
	src, err := leadSource("")
	require.NoError(t, err)
	assert.Equal(t, leads.SourceGeneric, src)

	src, err = leadSource("apollo")
	require.NoError(t, err)
	assert.Equal(t, leads.SourceApollo, src)

	_, err = leadSource("linkedin")
	assert.Error(t, err)
}

func TestScoreThresholds(t *testing.T) {
	defaults := scoreThresholds(config.Config{})
	assert.Equal(t, 80, defaults.Enterprise)
	assert.Equal(t, 60, defaults.Professional)

	custom := scoreThresholds(config.Config{EnterpriseScore: 90, ProfessionalScore: 50})
	assert.Equal(t, 90, custom.Enterprise)
	assert.Equal(t, 50, custom.Professional)
}

func TestResolverOptions(t *testing.T) {
	opts := resolverOptions(config.Config{MaxRetries: 3, TimeoutSecs: 10, Verbose: true})
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 10*time.Second, opts.RequestTimeout)
	assert.True(t, opts.Verbose)
}

func TestBuildResolver_TemplateOnly(t *testing.T) {
	resolver, closer, err := buildResolver(context.Background(), config.Config{})
	require.NoError(t, err)
	defer closer()

	result := resolver.Resolve(context.Background(), leads.Lead{
		FirstName: "Jane",
		Email:     "jane@example.com",
		Company:   "Example Agency",
		Industry:  "Marketing",
	})
	assert.Equal(t, icebreaker.ProviderTemplate, result.Provider)
	assert.Contains(t, result.Text, "Example Agency")
}

func TestBuildResolver_RejectsBadWebhookURL(t *testing.T) {
	_, _, err := buildResolver(context.Background(), config.Config{WorkflowWebhookURL: "not a url"})
	assert.Error(t, err)
}
