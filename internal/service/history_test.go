package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct {
	byID          map[string]*domain.Analysis
	recent        []*domain.Analysis
	matches       []domain.AnalysisMatch
	lastEmbedding []float32
	lastLimit     int
	err           error
}

func (a *stubArchive) GetByID(_ context.Context, id string) (*domain.Analysis, error) {
	if a.err != nil {
		return nil, a.err
	}
	analysis, ok := a.byID[id]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrCodeNotFound, "analysis not found")
	}
	return analysis, nil
}

func (a *stubArchive) ListRecent(_ context.Context, limit int) ([]*domain.Analysis, error) {
	a.lastLimit = limit
	return a.recent, a.err
}

func (a *stubArchive) FindSimilar(_ context.Context, embedding []float32, limit int) ([]domain.AnalysisMatch, error) {
	a.lastEmbedding = embedding
	a.lastLimit = limit
	return a.matches, a.err
}

func TestHistoryService_Get(t *testing.T) {
	archive := &stubArchive{byID: map[string]*domain.Analysis{
		"abc": {ID: "abc", Clause: "stored clause"},
	}}
	svc := NewHistoryService(archive, nil)

	analysis, err := svc.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "stored clause", analysis.Clause)

	_, err = svc.Get(context.Background(), "missing")
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrCodeNotFound, de.Code)
}

func TestHistoryService_ListRecent(t *testing.T) {
	archive := &stubArchive{recent: []*domain.Analysis{{ID: "1"}, {ID: "2"}}}
	svc := NewHistoryService(archive, nil)

	analyses, err := svc.ListRecent(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, analyses, 2)
	assert.Equal(t, 20, archive.lastLimit)
}

func TestHistoryService_FindSimilar(t *testing.T) {
	archive := &stubArchive{matches: []domain.AnalysisMatch{
		{Analysis: domain.Analysis{ID: "1"}, Similarity: 0.92},
	}}
	embedder := newStubEmbedder()
	embedder.vectors["indemnification clauses"] = []float32{0.5, 0.5, 0}
	svc := NewHistoryService(archive, embedder)

	matches, err := svc.FindSimilar(context.Background(), "indemnification clauses", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []float32{0.5, 0.5, 0}, archive.lastEmbedding)
	assert.Equal(t, 5, archive.lastLimit)
}

func TestHistoryService_FindSimilar_EmptyQuery(t *testing.T) {
	svc := NewHistoryService(&stubArchive{}, newStubEmbedder())

	_, err := svc.FindSimilar(context.Background(), "   ", 5)
	require.Error(t, err)
	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.ErrCodeValidation, de.Code)
}

func TestHistoryService_FindSimilar_NoEmbedder(t *testing.T) {
	svc := NewHistoryService(&stubArchive{}, nil)

	_, err := svc.FindSimilar(context.Background(), "query", 5)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestHistoryService_FindSimilar_EmbedFailure(t *testing.T) {
	embedder := newStubEmbedder()
	embedder.err = domain.NewProviderError("embedding", 502, "down", nil)
	svc := NewHistoryService(&stubArchive{}, embedder)

	_, err := svc.FindSimilar(context.Background(), "query", 5)
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))
}
