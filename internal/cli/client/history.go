package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// AnalysisSummary represents a stored analysis returned by the history API.
type AnalysisSummary struct {
	ID        string         `json:"id"`
	Clause    string         `json:"clause"`
	Facets    AnalysisFacets `json:"facets"`
	CreatedAt string         `json:"created_at"`
}

// SimilarAnalysis is a stored analysis with its similarity to the query.
type SimilarAnalysis struct {
	AnalysisSummary
	Similarity float64 `json:"similarity"`
}

// HistoryCmd creates the history command with subcommands.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored analyses",
		Long:  "Commands for listing, fetching, and searching previously stored analyses. Requires the server to run with a database.",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyGetCmd())
	cmd.AddCommand(historySimilarCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistoryList(cmd, limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")

	return cmd
}

func historyGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistoryGet(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func historySimilarCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "similar <query>",
		Short: "Find stored analyses similar to a query",
		Long:  "Searches stored analyses by embedding similarity to the query text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistorySimilar(cmd, args[0], limit, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")

	return cmd
}

func runHistoryList(cmd *cobra.Command, limit int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/v1/analyses?limit=%d", limit))
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var analyses []AnalysisSummary
	if err := json.Unmarshal(resp.Data, &analyses); err != nil {
		return fmt.Errorf("failed to parse list response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(analyses, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(analyses) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}
	for _, analysis := range analyses {
		fmt.Printf("%s  %s  %s\n", analysis.ID, analysis.CreatedAt, truncateClause(analysis.Clause))
	}
	return nil
}

func runHistoryGet(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/v1/analyses/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var analysis AnalysisSummary
	if err := json.Unmarshal(resp.Data, &analysis); err != nil {
		return fmt.Errorf("failed to parse analysis: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(analysis, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("ID: %s\nCreated: %s\n\nClause:\n  %s\n\n", analysis.ID, analysis.CreatedAt, analysis.Clause)
	printFacets(analysis.Facets)
	return nil
}

func runHistorySimilar(cmd *cobra.Command, query string, limit int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/v1/analyses/similar?q=%s&limit=%d", url.QueryEscape(query), limit))
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	var matches []SimilarAnalysis
	if err := json.Unmarshal(resp.Data, &matches); err != nil {
		return fmt.Errorf("failed to parse search response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(matches, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(matches) == 0 {
		fmt.Println("No similar analyses found.")
		return nil
	}
	for i, match := range matches {
		fmt.Printf("%d. (%.2f) %s\n   ID: %s\n", i+1, match.Similarity, truncateClause(match.Clause), match.ID)
	}
	return nil
}

func truncateClause(clause string) string {
	clause = strings.ReplaceAll(clause, "\n", " ")
	if len(clause) > 80 {
		return clause[:77] + "..."
	}
	return clause
}
