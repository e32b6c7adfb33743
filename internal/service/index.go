package service

import (
	"context"
	"math"
	"net/http"
	"sort"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/metrics"
)

// VectorIndex is an in-memory semantic index over one chunk set. It lives
// for the lifetime of the process and is never persisted.
type VectorIndex struct {
	chunks     []domain.Chunk
	embeddings [][]float32
	dimension  int
	embedder   llm.Embedder
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk domain.Chunk
	Score float64
}

// BuildIndex embeds every chunk and assembles the index. The build is
// atomic: any provider failure or malformed vector fails the whole build
// and no partial index is returned.
func BuildIndex(ctx context.Context, chunks []domain.Chunk, embedder llm.Embedder) (*VectorIndex, error) {
	embeddings := make([][]float32, 0, len(chunks))
	dimension := 0

	for _, chunk := range chunks {
		metrics.EmbeddingCalls.Inc()
		vec, err := embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, err
		}
		if len(vec) == 0 {
			return nil, domain.NewProviderError("embedding", http.StatusBadGateway, "provider returned an empty vector", nil)
		}
		if dimension == 0 {
			dimension = len(vec)
		} else if len(vec) != dimension {
			return nil, domain.NewProviderError("embedding", http.StatusBadGateway, "provider returned vectors of mixed dimensions", nil)
		}
		embeddings = append(embeddings, vec)
	}

	return &VectorIndex{
		chunks:     chunks,
		embeddings: embeddings,
		dimension:  dimension,
		embedder:   embedder,
	}, nil
}

// Chunks returns the indexed chunk set in its original order.
func (ix *VectorIndex) Chunks() []domain.Chunk {
	return ix.chunks
}

// Query embeds the question and returns up to k nearest chunks ordered by
// descending similarity. Scores are cosine similarity mapped to [0, 1];
// they are only comparable within a single query.
func (ix *VectorIndex) Query(ctx context.Context, question string, k int) ([]ScoredChunk, error) {
	metrics.EmbeddingCalls.Inc()
	queryVec, err := ix.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(queryVec) != ix.dimension {
		return nil, domain.NewProviderError("embedding", http.StatusBadGateway, "query vector dimension mismatch", nil)
	}

	results := make([]ScoredChunk, 0, len(ix.chunks))
	for i, chunk := range ix.chunks {
		score := (1 + cosineSimilarity(queryVec, ix.embeddings[i])) / 2
		results = append(results, ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
