package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clauselens/clauselens/internal/api"
	"github.com/clauselens/clauselens/internal/domain"
)

type FollowupService interface {
	AnswerFollowup(ctx context.Context, question, clause string, facets *domain.AnalysisFacets, cfg domain.StrategyConfig) (domain.Answer, error)
}

type FollowupHandler struct {
	svc      FollowupService
	strategy domain.StrategyConfig
}

func NewFollowupHandler(svc FollowupService, strategy domain.StrategyConfig) *FollowupHandler {
	return &FollowupHandler{svc: svc, strategy: strategy}
}

type FollowupRequest struct {
	Question string                 `json:"question"`
	Clause   string                 `json:"clause"`
	Facets   *domain.AnalysisFacets `json:"facets,omitempty"`
}

type FollowupResponse struct {
	Answer   string                   `json:"answer"`
	Strategy string                   `json:"strategy"`
	Metrics  *domain.RetrievalMetrics `json:"metrics,omitempty"`
}

func (h *FollowupHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req FollowupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.Clause == "" {
		api.Error(w, http.StatusBadRequest, "clause is required")
		return
	}

	answer, err := h.svc.AnswerFollowup(r.Context(), req.Question, req.Clause, req.Facets, h.strategy)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, FollowupResponse{
		Answer:   answer.Text,
		Strategy: string(answer.Strategy),
		Metrics:  answer.Metrics,
	})
}
