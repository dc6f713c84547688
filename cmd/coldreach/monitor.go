package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spdery/coldreach/internal/instantly"
	"github.com/spdery/coldreach/internal/llm"
	"github.com/spdery/coldreach/internal/monitor"
	"github.com/spdery/coldreach/internal/notify"
	"github.com/spdery/coldreach/internal/observability"
)

var monitorCommand = &cobra.Command{
	Use:   "monitor",
	Short: "Fetch campaign analytics, classify replies, and alert on hot leads",
	Long: `Pulls per-campaign analytics and recent replies from the campaign platform,
computes engagement rates against benchmarks, classifies reply sentiment, and
sends a notification for positive replies when a notification webhook is
configured.`,
	RunE: runMonitorCmd,
}

var (
	monitorConfigPath string
	monitorSinceHours int
	monitorNoNotify   bool
	monitorVerbose    bool
)

func init() {
	monitorCommand.Flags().StringVar(&monitorConfigPath, "config", "", "Path to config.json file")
	monitorCommand.Flags().IntVar(&monitorSinceHours, "since-hours", 24, "Look back this many hours for replies")
	monitorCommand.Flags().BoolVar(&monitorNoNotify, "no-notify", false, "Skip the hot-lead notification even if a webhook is configured")
	monitorCommand.Flags().BoolVarP(&monitorVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(monitorCommand)
}

func runMonitorCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(monitorConfigPath)
	if err != nil {
		return err
	}
	if cfg.InstantlyAPIKey == "" {
		return fmt.Errorf("INSTANTLY_API_KEY is required")
	}

	client, err := instantly.New(cfg.InstantlyAPIKey)
	if err != nil {
		return err
	}

	// Use the model for sentiment when a key is available, keywords otherwise.
	var classifier monitor.Classifier
	if cfg.GeminiAPIKey != "" {
		llmClient, err := llm.NewGeminiClient(ctx, nil, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create model client: %w", err)
		}
		defer func() { _ = llmClient.Close() }()
		classifier = monitor.ModelClassifier(llmClient)
	}

	m := monitor.New(client, classifier)
	since := time.Now().Add(-time.Duration(monitorSinceHours) * time.Hour)
	snap, err := m.Snapshot(ctx, since)
	if err != nil {
		return err
	}

	if monitorVerbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintCampaignMetrics(snap.Campaigns)
		printer.PrintHotLeads(snap.HotLeads)
	} else {
		fmt.Print(snap.Report())
	}

	if !monitorNoNotify && len(snap.HotLeads) > 0 {
		notifier, err := notify.New(cfg.NotificationWebhookURL)
		if err != nil {
			return err
		}
		if notifier.Enabled() {
			// A failed alert should not fail the monitoring cycle.
			if err := notifier.HotLeads(ctx, snap.HotLeads); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: hot-lead notification failed: %v\n", err)
			} else {
				fmt.Printf("Sent hot-lead alert for %d leads\n", len(snap.HotLeads))
			}
		}
	}
	return nil
}
