package main

import (
	"fmt"
	"os"

	"github.com/clauselens/clauselens/internal/cli"
	"github.com/clauselens/clauselens/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clauselens",
		Short: "ClauseLens CLI - Legal clause analysis",
		Long: `ClauseLens CLI provides commands to analyze legal clauses and ask
follow-up questions against a running clauselensd server.

Environment variables:
  CLAUSELENS_API_TOKEN   API token for authentication (optional for local servers)
  CLAUSELENS_API_URL     API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AnalyzeCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.BatchCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
