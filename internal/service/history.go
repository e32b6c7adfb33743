package service

import (
	"context"
	"strings"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/metrics"
)

// AnalysisArchive is the read side of the persistence collaborator.
type AnalysisArchive interface {
	GetByID(ctx context.Context, id string) (*domain.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Analysis, error)
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.AnalysisMatch, error)
}

// HistoryService serves lookups over previously stored analyses.
type HistoryService struct {
	archive  AnalysisArchive
	embedder llm.Embedder
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(archive AnalysisArchive, embedder llm.Embedder) *HistoryService {
	return &HistoryService{archive: archive, embedder: embedder}
}

// Get fetches one stored analysis by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	return s.archive.GetByID(ctx, id)
}

// ListRecent returns the most recently stored analyses.
func (s *HistoryService) ListRecent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	return s.archive.ListRecent(ctx, limit)
}

// FindSimilar embeds the query text and returns stored analyses ranked by
// embedding similarity.
func (s *HistoryService) FindSimilar(ctx context.Context, query string, limit int) ([]domain.AnalysisMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query cannot be empty")
	}
	if s.embedder == nil {
		return nil, domain.ErrMissingCredentials
	}

	metrics.EmbeddingCalls.Inc()
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.archive.FindSimilar(ctx, embedding, limit)
}
