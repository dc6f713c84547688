package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spdery/coldreach/internal/instantly"
)

var campaignsCommand = &cobra.Command{
	Use:   "campaigns",
	Short: "List campaigns in the workspace",
	RunE:  runCampaignsCmd,
}

var campaignsConfigPath string

func init() {
	campaignsCommand.Flags().StringVar(&campaignsConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(campaignsCommand)
}

func runCampaignsCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(campaignsConfigPath)
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

	campaigns, err := client.ListCampaigns(context.Background())
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		fmt.Println("No campaigns found.")
		return nil
	}

	fmt.Printf("%-38s %-10s %s\n", "ID", "STATUS", "NAME")
	for _, c := range campaigns {
		fmt.Printf("%-38s %-10s %s\n", c.ID, c.Status, c.Name)
	}
	return nil
}
