package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// AnalysisRepository persists completed clause analyses and serves
// similarity lookups over their document-level embeddings.
type AnalysisRepository struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates an AnalysisRepository.
func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: pool}
}

// SaveAnalysis inserts an analysis row. The embedding may be nil.
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, analysis *domain.Analysis, embedding []float32) error {
	facets, err := json.Marshal(analysis.Facets)
	if err != nil {
		return fmt.Errorf("failed to marshal facets: %w", err)
	}

	createdAt := analysis.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var vec any
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO analyses (id, clause, facets, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		analysis.ID,
		analysis.Clause,
		facets,
		vec,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetByID fetches one stored analysis.
func (r *AnalysisRepository) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, clause, facets, created_at FROM analyses WHERE id = $1`, id)

	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	return analysis, nil
}

// ListRecent returns the most recently stored analyses.
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, clause, facets, created_at
		 FROM analyses
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*domain.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

// FindSimilar returns stored analyses ranked by cosine similarity to the
// query embedding. Rows without an embedding are excluded.
func (r *AnalysisRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]domain.AnalysisMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, clause, facets, created_at, 1 - (embedding <=> $1) AS similarity
		 FROM analyses
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search analyses: %w", err)
	}
	defer rows.Close()

	var matches []domain.AnalysisMatch
	for rows.Next() {
		var (
			analysis   domain.Analysis
			facets     []byte
			similarity float64
		)
		if err := rows.Scan(&analysis.ID, &analysis.Clause, &facets, &analysis.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal(facets, &analysis.Facets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal facets: %w", err)
		}
		matches = append(matches, domain.AnalysisMatch{Analysis: analysis, Similarity: similarity})
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var (
		analysis domain.Analysis
		facets   []byte
	)
	if err := row.Scan(&analysis.ID, &analysis.Clause, &facets, &analysis.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(facets, &analysis.Facets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal facets: %w", err)
	}
	return &analysis, nil
}
