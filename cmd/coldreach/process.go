package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spdery/coldreach/internal/config"
	"github.com/spdery/coldreach/internal/instantly"
	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/observability"
	"github.com/spdery/coldreach/internal/pipeline"
)

var processCommand = &cobra.Command{
	Use:   "process",
	Short: "Process a lead CSV end-to-end: icebreakers, scoring, campaign upload",
	Long: `Imports leads from a CSV export, resolves one personalized icebreaker per lead
through the provider fallback chain, scores each lead, and uploads them into
the matching campaign.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values; the environment fills anything left.`,
	RunE: runProcessCmd,
}

var (
	processConfigPath   string
	processCSV          string
	processSource       string
	processWorkers      int
	processMaxRetries   int
	processRateLimit    float64
	processTimeoutSecs  int
	processOutPath      string
	processDryRun       bool
	processUseBrowser   bool
	processVerbose      bool
	processDatabaseURL  string
	processWebhookURL   string
	processGeminiKey    string
	processInstantlyKey string
)

func init() {
	processCommand.Flags().StringVar(&processConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	processCommand.Flags().StringVarP(&processCSV, "csv", "f", "", "Path to the lead CSV file (required)")
	processCommand.Flags().StringVar(&processSource, "source", "", "CSV column convention: generic or apollo")
	processCommand.Flags().IntVar(&processWorkers, "workers", 0, "Number of concurrent workers")
	processCommand.Flags().IntVar(&processMaxRetries, "max-retries", 0, "Extra attempts per provider on transient failures")
	processCommand.Flags().Float64Var(&processRateLimit, "rate-limit", 0, "Global requests per second across workers")
	processCommand.Flags().IntVar(&processTimeoutSecs, "timeout", 0, "Per-request timeout in seconds")
	processCommand.Flags().StringVarP(&processOutPath, "out", "o", "", "Write processed leads to a JSON file")
	processCommand.Flags().BoolVar(&processDryRun, "dry-run", false, "Resolve and score without uploading")
	processCommand.Flags().BoolVar(&processUseBrowser, "use-browser", false, "Use headless browser for JavaScript-rendered websites (requires Chrome)")
	processCommand.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print detailed debug information")

	processCommand.Flags().StringVar(&processWebhookURL, "webhook-url", "", "Workflow webhook URL (optional, defaults to WORKFLOW_WEBHOOK_URL env var)")
	processCommand.Flags().StringVar(&processGeminiKey, "gemini-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	processCommand.Flags().StringVar(&processInstantlyKey, "instantly-key", "", "Instantly API key (optional, defaults to INSTANTLY_API_KEY env var)")
	processCommand.Flags().StringVar(&processDatabaseURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(processCommand)
}

func runProcessCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(processConfigPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("source") {
		cfg.LeadSource = processSource
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = processWorkers
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = processMaxRetries
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimitRPS = processRateLimit
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSecs = processTimeoutSecs
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = processUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = processVerbose
	}
	if cmd.Flags().Changed("webhook-url") {
		cfg.WorkflowWebhookURL = processWebhookURL
	}
	if cmd.Flags().Changed("gemini-key") {
		cfg.GeminiAPIKey = processGeminiKey
	}
	if cmd.Flags().Changed("instantly-key") {
		cfg.InstantlyAPIKey = processInstantlyKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = processDatabaseURL
	}

	// Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{
		Workers:      5,
		MaxRetries:   2,
		RateLimitRPS: 2,
		TimeoutSecs:  30,
	})

	if processCSV == "" {
		return fmt.Errorf("--csv is required")
	}
	source, err := leadSource(cfg.LeadSource)
	if err != nil {
		return err
	}

	resolver, closeResolver, err := buildResolver(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeResolver()

	var uploader pipeline.Uploader
	if !processDryRun {
		if cfg.InstantlyAPIKey == "" {
			return fmt.Errorf("INSTANTLY_API_KEY or --instantly-key is required (or use --dry-run)")
		}
		client, err := instantly.New(cfg.InstantlyAPIKey)
		if err != nil {
			return err
		}
		uploader = client
	}

	printer := observability.NewPrinter(os.Stdout)

	opts := pipeline.Options{
		CSVPath:      processCSV,
		Source:       source,
		Workers:      cfg.Workers,
		RateLimitRPS: cfg.RateLimitRPS,
		Thresholds:   scoreThresholds(cfg),
		CampaignIDs:  cfg.CampaignIDs,
		DryRun:       processDryRun,
		DatabaseURL:  cfg.DatabaseURL,
		Verbose:      cfg.Verbose,
	}
	if cfg.Verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			fmt.Printf("  %-30s score=%-3d campaign=%-25s via %s\n", e.Email, e.Score, e.Campaign, e.Provider)
		}
	}

	runner := pipeline.New(resolver, uploader, opts)
	stats, outcomes, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printer.PrintImportStats(stats.Import)
	printer.PrintRunStats(stats)

	if processOutPath != "" {
		processed := make([]leads.Processed, len(outcomes))
		for i, o := range outcomes {
			processed[i] = o.Processed()
		}
		data, err := json.MarshalIndent(processed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode processed leads: %w", err)
		}
		if err := os.WriteFile(processOutPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", processOutPath, err)
		}
		fmt.Printf("Wrote %d processed leads to %s\n", len(processed), processOutPath)
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "lead %s failed: %v\n", o.Lead.Email, o.Err)
		}
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d leads failed", stats.Failed, stats.Processed)
	}
	return nil
}
