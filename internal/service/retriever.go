package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/metrics"
)

// RetrieveOptions controls relevance-scored context selection.
type RetrieveOptions struct {
	MaxResults         int
	RelevanceThreshold float64
	IncludeLabels      bool
}

// DefaultRetrieveOptions provides the defaults used for follow-up questions.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{
		MaxResults:         3,
		RelevanceThreshold: 0.6,
		IncludeLabels:      true,
	}
}

// RetrievalResult is the selected context for one question.
type RetrievalResult struct {
	Chunks           []domain.Chunk
	Summary          string
	TotalAvailable   int
	AverageRelevance float64
	// Degraded marks a fallback selection made after a provider failure.
	Degraded bool
}

// Retrieve selects the chunks most relevant to a question. The index is
// queried for twice the requested count to leave headroom for threshold
// filtering. A provider failure never surfaces to the caller: the result
// degrades to the first MaxResults chunks in their original order so the
// follow-up flow always has some context.
func Retrieve(ctx context.Context, question string, ix *VectorIndex, opts RetrieveOptions) RetrievalResult {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultRetrieveOptions().MaxResults
	}

	scored, err := ix.Query(ctx, question, 2*opts.MaxResults)
	if err != nil {
		log.Printf("retrieval degraded to positional fallback: %v", err)
		metrics.RetrievalFallbacks.Inc()
		return fallbackResult(ix, opts)
	}

	kept := make([]domain.Chunk, 0, opts.MaxResults)
	total := 0.0
	for _, sc := range scored {
		if sc.Score < opts.RelevanceThreshold {
			continue
		}
		if len(kept) >= opts.MaxResults {
			break
		}
		chunk := sc.Chunk
		chunk.RelevanceScore = sc.Score
		kept = append(kept, chunk)
		total += sc.Score
	}

	avg := 0.0
	if len(kept) > 0 {
		avg = total / float64(len(kept))
	}

	return RetrievalResult{
		Chunks:           kept,
		Summary:          summarizeChunks(kept, opts.IncludeLabels),
		TotalAvailable:   len(ix.Chunks()),
		AverageRelevance: avg,
	}
}

func fallbackResult(ix *VectorIndex, opts RetrieveOptions) RetrievalResult {
	all := ix.Chunks()
	n := opts.MaxResults
	if n > len(all) {
		n = len(all)
	}
	kept := make([]domain.Chunk, n)
	copy(kept, all[:n])

	return RetrievalResult{
		Chunks:           kept,
		Summary:          summarizeChunks(kept, opts.IncludeLabels),
		TotalAvailable:   len(all),
		AverageRelevance: 0,
		Degraded:         true,
	}
}

// summarizeChunks renders the kept chunks as a newline-separated, 1-indexed
// list, each entry optionally prefixed with its category label in uppercase.
func summarizeChunks(chunks []domain.Chunk, includeLabels bool) string {
	lines := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if includeLabels {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(string(chunk.Category)), chunk.Text))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, chunk.Text))
		}
	}
	return strings.Join(lines, "\n")
}
