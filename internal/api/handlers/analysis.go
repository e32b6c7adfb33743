package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clauselens/clauselens/internal/api"
	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/service"
	"github.com/go-chi/chi/v5"
)

type AnalysisService interface {
	Analyze(ctx context.Context, clause string) (domain.AnalysisFacets, error)
	ProcessBatch(ctx context.Context, clauses []string, cfg domain.StrategyConfig) ([]service.BatchItem, error)
}

type HistoryService interface {
	Get(ctx context.Context, id string) (*domain.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Analysis, error)
	FindSimilar(ctx context.Context, query string, limit int) ([]domain.AnalysisMatch, error)
}

type BatchExporter interface {
	ExportBatch(ctx context.Context, items []service.BatchItem) (string, error)
}

type AnalysisHandler struct {
	svc      AnalysisService
	history  HistoryService
	exporter BatchExporter
	strategy domain.StrategyConfig
}

// NewAnalysisHandler creates an AnalysisHandler. History and exporter may be
// nil when no database or report storage is configured.
func NewAnalysisHandler(svc AnalysisService, history HistoryService, exporter BatchExporter, strategy domain.StrategyConfig) *AnalysisHandler {
	return &AnalysisHandler{
		svc:      svc,
		history:  history,
		exporter: exporter,
		strategy: strategy,
	}
}

type AnalyzeRequest struct {
	Clause string `json:"clause"`
}

type AnalyzeResponse struct {
	Clause string                `json:"clause"`
	Facets domain.AnalysisFacets `json:"facets"`
}

type BatchRequest struct {
	Clauses []string `json:"clauses"`
	Export  bool     `json:"export,omitempty"`
}

type BatchItemResponse struct {
	Clause string                 `json:"clause"`
	Facets *domain.AnalysisFacets `json:"facets,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

type BatchResponse struct {
	Items     []BatchItemResponse `json:"items"`
	ReportKey string              `json:"report_key,omitempty"`
}

type AnalysisResponse struct {
	ID        string                `json:"id"`
	Clause    string                `json:"clause"`
	Facets    domain.AnalysisFacets `json:"facets"`
	CreatedAt string                `json:"created_at"`
}

type SimilarAnalysisResponse struct {
	AnalysisResponse
	Similarity float64 `json:"similarity"`
}

func analysisToResponse(a *domain.Analysis) AnalysisResponse {
	return AnalysisResponse{
		ID:        a.ID,
		Clause:    a.Clause,
		Facets:    a.Facets,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Clause == "" {
		api.Error(w, http.StatusBadRequest, "clause is required")
		return
	}

	facets, err := h.svc.Analyze(r.Context(), req.Clause)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AnalyzeResponse{Clause: req.Clause, Facets: facets})
}

func (h *AnalysisHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Clauses) == 0 {
		api.Error(w, http.StatusBadRequest, "clauses is required")
		return
	}

	items, err := h.svc.ProcessBatch(r.Context(), req.Clauses, h.strategy)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := BatchResponse{Items: make([]BatchItemResponse, 0, len(items))}
	for _, item := range items {
		entry := BatchItemResponse{Clause: item.Clause}
		if item.Err != nil {
			entry.Error = domain.UserMessage(item.Err)
		} else {
			facets := item.Facets
			entry.Facets = &facets
		}
		resp.Items = append(resp.Items, entry)
	}

	if req.Export && h.exporter != nil {
		key, err := h.exporter.ExportBatch(r.Context(), items)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		resp.ReportKey = key
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		api.Error(w, http.StatusNotFound, "analysis history is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	analysis, err := h.history.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, analysisToResponse(analysis))
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		api.Error(w, http.StatusNotFound, "analysis history is not configured")
		return
	}

	analyses, err := h.history.ListRecent(r.Context(), queryLimit(r, 20))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]AnalysisResponse, 0, len(analyses))
	for _, analysis := range analyses {
		resp = append(resp, analysisToResponse(analysis))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AnalysisHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		api.Error(w, http.StatusNotFound, "analysis history is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}

	matches, err := h.history.FindSimilar(r.Context(), query, queryLimit(r, 5))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]SimilarAnalysisResponse, 0, len(matches))
	for _, match := range matches {
		resp = append(resp, SimilarAnalysisResponse{
			AnalysisResponse: analysisToResponse(&match.Analysis),
			Similarity:       match.Similarity,
		})
	}
	api.Success(w, http.StatusOK, resp)
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
