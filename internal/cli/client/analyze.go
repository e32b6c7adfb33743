package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AnalyzeRequest represents the analysis API request.
type AnalyzeRequest struct {
	Clause string `json:"clause"`
}

// RiskyTerm is one flagged term inside an analysis.
type RiskyTerm struct {
	Term        string `json:"term"`
	Severity    string `json:"severity"`
	Explanation string `json:"explanation"`
}

// LegalReference is one cited statute or regulation inside an analysis.
type LegalReference struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Relevance string `json:"relevance"`
}

// AnalysisFacets carries the three analysis outputs for a clause.
type AnalysisFacets struct {
	Explanation     string           `json:"explanation"`
	RiskyTerms      []RiskyTerm      `json:"risky_terms"`
	LegalReferences []LegalReference `json:"legal_references"`
}

// AnalyzeResponse represents the analysis API response.
type AnalyzeResponse struct {
	Clause string         `json:"clause"`
	Facets AnalysisFacets `json:"facets"`
}

// AnalyzeCmd creates the analyze command.
func AnalyzeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "analyze [clause]",
		Short: "Analyze a legal clause",
		Long:  "Runs the three-facet analysis (plain-language explanation, risky terms, legal references) on a clause given as an argument, from --file, or on stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clause, err := readClauseInput(args, file)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAnalyze(cmd, clause, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the clause from a file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, clause string, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/v1/analyses", AnalyzeRequest{Clause: clause})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	var result AnalyzeResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse analysis response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printFacets(result.Facets)
	return nil
}

func printFacets(facets AnalysisFacets) {
	fmt.Println("Explanation:")
	fmt.Printf("  %s\n", facets.Explanation)

	if len(facets.RiskyTerms) > 0 {
		fmt.Println("\nRisky terms:")
		for _, term := range facets.RiskyTerms {
			fmt.Printf("  - %s [%s]\n    %s\n", term.Term, term.Severity, term.Explanation)
		}
	}

	if len(facets.LegalReferences) > 0 {
		fmt.Println("\nLegal references:")
		for _, ref := range facets.LegalReferences {
			fmt.Printf("  - %s: %s\n    %s\n", ref.Title, ref.Relevance, ref.URL)
		}
	}
}

// readClauseInput resolves the clause text from the positional argument, a
// file, or stdin, in that order.
func readClauseInput(args []string, file string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read clause file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("clause text is required (argument, --file, or stdin)")
}
