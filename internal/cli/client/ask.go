package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// FollowupRequest represents the follow-up API request.
type FollowupRequest struct {
	Question string          `json:"question"`
	Clause   string          `json:"clause"`
	Facets   *AnalysisFacets `json:"facets,omitempty"`
}

// RetrievalMetrics describes how the semantic strategy selected context.
type RetrievalMetrics struct {
	ChunksUsed       int     `json:"chunks_used"`
	TotalAvailable   int     `json:"total_available"`
	AverageRelevance float64 `json:"average_relevance"`
	Degraded         bool    `json:"degraded"`
}

// FollowupResponse represents the follow-up API response.
type FollowupResponse struct {
	Answer   string            `json:"answer"`
	Strategy string            `json:"strategy"`
	Metrics  *RetrievalMetrics `json:"metrics,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		clauseFile string
		facetsFile string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a follow-up question about a clause",
		Long:  "Answers a follow-up question about a previously analyzed clause. Passing --facets (the JSON output of analyze) enables semantic retrieval over the analysis content.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clause, err := readClauseInput(nil, clauseFile)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], clause, facetsFile, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&clauseFile, "file", "f", "", "Read the clause from a file")
	cmd.Flags().StringVar(&facetsFile, "facets", "", "JSON file with a prior analysis result (enables retrieval)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runAsk(cmd *cobra.Command, question, clause, facetsFile string, outputJSON bool) error {
	req := FollowupRequest{Question: question, Clause: clause}

	if facetsFile != "" {
		data, err := os.ReadFile(facetsFile)
		if err != nil {
			return fmt.Errorf("failed to read facets file: %w", err)
		}

		// Accept either the bare facets object or the full analyze output.
		var analyzed AnalyzeResponse
		if err := json.Unmarshal(data, &analyzed); err != nil {
			return fmt.Errorf("failed to parse facets file: %w", err)
		}
		if analyzed.Facets.Explanation != "" || len(analyzed.Facets.RiskyTerms) > 0 || len(analyzed.Facets.LegalReferences) > 0 {
			req.Facets = &analyzed.Facets
		} else {
			var facets AnalysisFacets
			if err := json.Unmarshal(data, &facets); err != nil {
				return fmt.Errorf("failed to parse facets file: %w", err)
			}
			req.Facets = &facets
		}
	}

	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/v1/followups", req)
	if err != nil {
		return fmt.Errorf("follow-up failed: %w", err)
	}

	var result FollowupResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse follow-up response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(result.Answer)
	fmt.Printf("\nStrategy: %s\n", result.Strategy)
	if result.Metrics != nil {
		fmt.Printf("Context: %d/%d chunks, avg relevance %.2f", result.Metrics.ChunksUsed, result.Metrics.TotalAvailable, result.Metrics.AverageRelevance)
		if result.Metrics.Degraded {
			fmt.Print(" (degraded)")
		}
		fmt.Println()
	}
	return nil
}
