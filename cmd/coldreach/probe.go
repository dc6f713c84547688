package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spdery/coldreach/internal/leads"
)

var probeCommand = &cobra.Command{
	Use:   "probe",
	Short: "Resolve an icebreaker for a single sample lead",
	Long: `Runs the configured provider chain against one hand-entered lead and prints
which provider produced the icebreaker. Useful for verifying webhook and API
key configuration before a full run.`,
	RunE: runProbeCmd,
}

var (
	probeConfigPath string
	probeFirstName  string
	probeLastName   string
	probeEmail      string
	probeCompany    string
	probeIndustry   string
	probeWebsite    string
	probeTitle      string
	probeVerbose    bool
)

func init() {
	probeCommand.Flags().StringVar(&probeConfigPath, "config", "", "Path to config.json file")
	probeCommand.Flags().StringVar(&probeFirstName, "first-name", "Jane", "Sample lead first name")
	probeCommand.Flags().StringVar(&probeLastName, "last-name", "Doe", "Sample lead last name")
	probeCommand.Flags().StringVar(&probeEmail, "email", "jane@example.com", "Sample lead email")
	probeCommand.Flags().StringVarP(&probeCompany, "company", "c", "Example Agency", "Sample lead company")
	probeCommand.Flags().StringVar(&probeIndustry, "industry", "Marketing", "Sample lead industry")
	probeCommand.Flags().StringVar(&probeWebsite, "website", "", "Sample lead website")
	probeCommand.Flags().StringVar(&probeTitle, "title", "Founder", "Sample lead title")
	probeCommand.Flags().BoolVarP(&probeVerbose, "verbose", "v", false, "Print every provider attempt")

	rootCmd.AddCommand(probeCommand)
}

func runProbeCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadMergedConfig(probeConfigPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || probeVerbose

	resolver, closeResolver, err := buildResolver(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeResolver()

	lead := leads.Lead{
		FirstName: probeFirstName,
		LastName:  probeLastName,
		Email:     probeEmail,
		Company:   probeCompany,
		Industry:  probeIndustry,
		Website:   probeWebsite,
		Title:     probeTitle,
	}
	if err := lead.Validate(); err != nil {
		return fmt.Errorf("invalid sample lead: %w", err)
	}

	result := resolver.Resolve(ctx, lead)

	score := leads.Score(lead)
	thresholds := scoreThresholds(cfg)

	fmt.Printf("Icebreaker: %s\n", result.Text)
	fmt.Printf("Provider:   %s\n", result.Provider)
	fmt.Printf("Score:      %d -> %s\n", score, thresholds.AssignCampaign(score))
	if probeVerbose {
		for _, a := range result.Attempts {
			status := "ok"
			if a.Err != "" {
				status = a.Err
			}
			fmt.Printf("  attempt %s (%d tries): %s\n", a.Provider, a.Tries, status)
		}
	}
	return nil
}
