package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spdery/coldreach/internal/db"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recent processing runs from the database",
	RunE:  runRunsCmd,
}

var (
	runsConfigPath string
	runsStatus     string
	runsLimit      int
	runsShowID     string
)

func init() {
	runsCommand.Flags().StringVar(&runsConfigPath, "config", "", "Path to config.json file")
	runsCommand.Flags().StringVar(&runsStatus, "status", "", "Filter by status (running, completed, failed)")
	runsCommand.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCommand.Flags().StringVar(&runsShowID, "id", "", "Show per-lead results for one run")

	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(runsConfigPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for run history")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if runsShowID != "" {
		return showRun(ctx, database, runsShowID)
	}

	runs, err := database.ListRuns(ctx, db.RunFilters{Status: runsStatus, Limit: runsLimit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Printf("%-38s %-10s %-6s %-6s %-6s %s\n", "ID", "STATUS", "TOTAL", "OK", "FAIL", "SOURCE")
	for _, r := range runs {
		fmt.Printf("%-38s %-10s %-6d %-6d %-6d %s\n", r.ID, r.Status, r.TotalLeads, r.Succeeded, r.Failed, r.SourceFile)
	}
	return nil
}

func showRun(ctx context.Context, database *db.DB, id string) error {
	runID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	fmt.Printf("Run %s (%s)\n", run.ID, run.Status)
	fmt.Printf("Source: %s, %d leads, %d succeeded, %d failed\n\n", run.SourceFile, run.TotalLeads, run.Succeeded, run.Failed)

	results, err := database.ListLeadResults(ctx, runID)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-30s score=%-3d %-25s via %s\n", r.Email, r.Score, r.Campaign, r.Provider)
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "  error: %s\n", r.Error)
		}
	}
	return nil
}
