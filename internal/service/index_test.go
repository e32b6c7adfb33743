package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps known texts to fixed vectors and fails on demand.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	failOn   string
	calls    atomic.Int64
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors:  map[string][]float32{},
		fallback: []float32{0.1, 0.1, 0.1},
	}
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.err != nil && (e.failOn == "" || strings.Contains(text, e.failOn)) {
		return nil, e.err
	}
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return e.fallback, nil
}

func indexChunks() []domain.Chunk {
	return []domain.Chunk{
		{Text: "rent is due monthly", SourceIndex: 0, SourceName: "original_clause", Category: domain.ChunkCategoryOriginal},
		{Text: "you pay every month", SourceIndex: 0, SourceName: "simplified_explanation", Category: domain.ChunkCategorySimplified},
		{Text: "late fees apply after five days", SourceIndex: 0, SourceName: "risky_term_late fees", Category: domain.ChunkCategoryRiskyTerms},
	}
}

func TestBuildIndex_Success(t *testing.T) {
	embedder := newStubEmbedder()
	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	require.NoError(t, err)
	assert.Len(t, ix.Chunks(), 3)
	assert.Equal(t, int64(3), embedder.calls.Load())
}

func TestBuildIndex_ProviderErrorFailsWholeBuild(t *testing.T) {
	embedder := newStubEmbedder()
	embedder.err = errors.New("embedding backend down")
	embedder.failOn = "late fees"

	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	assert.Nil(t, ix)
	assert.Error(t, err)
}

func TestBuildIndex_EmptyVectorRejected(t *testing.T) {
	embedder := newStubEmbedder()
	embedder.vectors["rent is due monthly"] = []float32{}

	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	assert.Nil(t, ix)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestBuildIndex_MixedDimensionsRejected(t *testing.T) {
	embedder := newStubEmbedder()
	embedder.vectors["rent is due monthly"] = []float32{1, 0, 0}
	embedder.vectors["you pay every month"] = []float32{1, 0}

	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	assert.Nil(t, ix)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestVectorIndex_QueryOrdersBySimilarity(t *testing.T) {
	embedder := newStubEmbedder()
	embedder.vectors["rent is due monthly"] = []float32{1, 0, 0}
	embedder.vectors["you pay every month"] = []float32{0.9, 0.1, 0}
	embedder.vectors["late fees apply after five days"] = []float32{0, 0, 1}
	embedder.vectors["when is rent due?"] = []float32{1, 0, 0}

	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	require.NoError(t, err)

	results, err := ix.Query(context.Background(), "when is rent due?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "rent is due monthly", results[0].Chunk.Text)
	assert.Equal(t, "you pay every month", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)

	// Scores are cosine mapped into [0, 1].
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestVectorIndex_QueryDimensionMismatch(t *testing.T) {
	embedder := newStubEmbedder()
	ix, err := BuildIndex(context.Background(), indexChunks(), embedder)
	require.NoError(t, err)

	embedder.vectors["odd question"] = []float32{1, 0}
	_, err = ix.Query(context.Background(), "odd question", 3)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 0}))
}
