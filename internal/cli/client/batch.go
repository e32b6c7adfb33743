package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// BatchRequest represents the batch analysis API request.
type BatchRequest struct {
	Clauses []string `json:"clauses"`
	Export  bool     `json:"export,omitempty"`
}

// BatchItemResponse is one clause outcome inside a batch response.
type BatchItemResponse struct {
	Clause string          `json:"clause"`
	Facets *AnalysisFacets `json:"facets,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchResponse represents the batch analysis API response.
type BatchResponse struct {
	Items     []BatchItemResponse `json:"items"`
	ReportKey string              `json:"report_key,omitempty"`
}

// BatchCmd creates the batch command.
func BatchCmd() *cobra.Command {
	var (
		file   string
		export bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze multiple clauses in one request",
		Long:  "Reads clauses from a file (one per line, blank lines separate multi-line clauses) and analyzes up to 10 of them concurrently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runBatch(cmd, file, export, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File with clauses separated by blank lines")
	cmd.Flags().BoolVar(&export, "export", false, "Export the batch report to configured storage")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runBatch(cmd *cobra.Command, file string, export, outputJSON bool) error {
	clauses, err := readClauses(file)
	if err != nil {
		return err
	}
	if len(clauses) == 0 {
		return fmt.Errorf("no clauses found in %s", file)
	}

	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/v1/analyses/batch", BatchRequest{Clauses: clauses, Export: export})
	if err != nil {
		return fmt.Errorf("batch analysis failed: %w", err)
	}

	var result BatchResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse batch response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	for i, item := range result.Items {
		fmt.Printf("=== Clause %d ===\n", i+1)
		if item.Error != "" {
			fmt.Printf("Error: %s\n", item.Error)
		} else if item.Facets != nil {
			printFacets(*item.Facets)
		}
		if i < len(result.Items)-1 {
			fmt.Println()
		}
	}
	if result.ReportKey != "" {
		fmt.Printf("\nReport stored at: %s\n", result.ReportKey)
	}
	return nil
}

// readClauses splits a file into clauses on blank lines.
func readClauses(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open clauses file: %w", err)
	}
	defer f.Close()

	var (
		clauses []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			clauses = append(clauses, strings.Join(current, "\n"))
			current = current[:0]
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clauses file: %w", err)
	}
	flush()

	return clauses, nil
}
