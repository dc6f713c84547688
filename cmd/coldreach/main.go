// Package main provides the entry point for the coldreach CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coldreach",
	Short: "Cold outreach lead pipeline",
	Long:  "Coldreach imports leads from CSV exports, generates personalized icebreakers through a provider fallback chain, scores and routes leads into campaigns, and monitors campaign performance.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
