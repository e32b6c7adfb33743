package repository

import (
	"context"
	"testing"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*AnalysisRepository, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "migrations")
	t.Cleanup(pool.Close)

	return NewAnalysisRepository(pool), pool
}

func storedAnalysis(clause string) *domain.Analysis {
	return &domain.Analysis{
		ID:     uuid.NewString(),
		Clause: clause,
		Facets: domain.AnalysisFacets{
			Explanation: "plain words",
			RiskyTerms: []domain.RiskyTerm{
				{Term: "indemnify", Severity: domain.SeverityHigh, Explanation: "shifts liability"},
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestAnalysisRepository_SaveAndGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	analysis := storedAnalysis("Tenant shall indemnify landlord.")
	require.NoError(t, repo.SaveAnalysis(ctx, analysis, []float32{0.1, 0.2, 0.3}))

	got, err := repo.GetByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.Clause, got.Clause)
	assert.Equal(t, analysis.Facets.Explanation, got.Facets.Explanation)
	require.Len(t, got.Facets.RiskyTerms, 1)
	assert.Equal(t, "indemnify", got.Facets.RiskyTerms[0].Term)
}

func TestAnalysisRepository_SaveWithoutEmbedding(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	analysis := storedAnalysis("clause without embedding")
	require.NoError(t, repo.SaveAnalysis(ctx, analysis, nil))

	got, err := repo.GetByID(ctx, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, "clause without embedding", got.Clause)
}

func TestAnalysisRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}

func TestAnalysisRepository_ListRecent(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	older := storedAnalysis("older clause")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := storedAnalysis("newer clause")

	require.NoError(t, repo.SaveAnalysis(ctx, older, nil))
	require.NoError(t, repo.SaveAnalysis(ctx, newer, nil))

	analyses, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, "newer clause", analyses[0].Clause)
	assert.Equal(t, "older clause", analyses[1].Clause)

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAnalysisRepository_FindSimilar(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	near := storedAnalysis("near clause")
	far := storedAnalysis("far clause")
	noVector := storedAnalysis("no embedding clause")

	require.NoError(t, repo.SaveAnalysis(ctx, near, []float32{1, 0, 0}))
	require.NoError(t, repo.SaveAnalysis(ctx, far, []float32{0, 0, 1}))
	require.NoError(t, repo.SaveAnalysis(ctx, noVector, nil))

	matches, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2, "rows without embeddings are excluded")

	assert.Equal(t, "near clause", matches[0].Analysis.Clause)
	assert.Equal(t, "far clause", matches[1].Analysis.Clause)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
	assert.InDelta(t, 1.0, matches[0].Similarity, 0.001)
}
