package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spdery/coldreach/internal/config"
	"github.com/spdery/coldreach/internal/enrich"
	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/llm"
	"github.com/spdery/coldreach/internal/workflow"
)

// loadMergedConfig loads the optional config file, validates it, and fills
// unset values from the environment.
func loadMergedConfig(configPath string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(config.FromEnv()), nil
}

// resolverOptions maps config values onto the provider chain's retry budget.
func resolverOptions(cfg config.Config) icebreaker.Options {
	opts := icebreaker.Options{
		MaxRetries: cfg.MaxRetries,
		Verbose:    cfg.Verbose,
	}
	if cfg.TimeoutSecs > 0 {
		opts.RequestTimeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return opts
}

// buildResolver assembles the provider chain from whatever is configured:
// workflow webhook first, direct model second, local template always last.
// The returned closer releases the model client, if any.
func buildResolver(ctx context.Context, cfg config.Config) (*icebreaker.Resolver, func(), error) {
	var providers []icebreaker.Provider
	closer := func() {}

	if cfg.WorkflowWebhookURL != "" {
		wf, err := workflow.New(cfg.WorkflowWebhookURL, cfg.IcebreakerTemplate)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, wf)
	}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, nil, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create model client: %w", err)
		}
		closer = func() { _ = client.Close() }

		var snippeter llm.Snippeter
		fetchOpts := enrich.DefaultOptions()
		fetchOpts.UseBrowser = cfg.UseBrowser
		fetchOpts.Verbose = cfg.Verbose
		snippeter = enrich.NewFetcher(fetchOpts)

		providers = append(providers, llm.NewIcebreakerProvider(client, cfg.IcebreakerTemplate, snippeter))
	}

	template := icebreaker.NewTemplateProvider(cfg.FallbackTemplate)
	return icebreaker.NewResolver(resolverOptions(cfg), template, providers...), closer, nil
}

// scoreThresholds maps config cutoffs onto the default campaign identifiers.
func scoreThresholds(cfg config.Config) leads.ScoreThresholds {
	t := leads.DefaultThresholds()
	if cfg.EnterpriseScore > 0 {
		t.Enterprise = cfg.EnterpriseScore
	}
	if cfg.ProfessionalScore > 0 {
		t.Professional = cfg.ProfessionalScore
	}
	return t
}

// leadSource parses the configured CSV convention.
func leadSource(name string) (leads.Source, error) {
	switch name {
	case "", "generic":
		return leads.SourceGeneric, nil
	case "apollo":
		return leads.SourceApollo, nil
	default:
		return "", fmt.Errorf("unknown lead source %q (expected generic or apollo)", name)
	}
}
