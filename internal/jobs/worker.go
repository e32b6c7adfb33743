package jobs

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/google/uuid"
)

// AnalysisStore persists completed analyses. The embedding may be nil when
// no embedding provider is configured or the embed call failed.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, analysis *domain.Analysis, embedding []float32) error
}

// SaveWorker drains a queue of completed analyses into the persistence
// collaborator. Persistence is best-effort: a failed save is retried a few
// times and then dropped with a log line, never surfaced to the analysis
// caller.
type SaveWorker struct {
	store      AnalysisStore
	embedder   llm.Embedder
	queue      chan domain.Analysis
	stopChan   chan struct{}
	doneChan   chan struct{}
	maxRetries int
}

// NewSaveWorker creates a SaveWorker with the given queue capacity. The
// embedder may be nil; analyses are then stored without an embedding and
// excluded from similarity lookup.
func NewSaveWorker(store AnalysisStore, embedder llm.Embedder, queueSize int) *SaveWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SaveWorker{
		store:      store,
		embedder:   embedder,
		queue:      make(chan domain.Analysis, queueSize),
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		maxRetries: 3,
	}
}

// Enqueue queues an analysis for persistence without blocking the caller.
// When the queue is full the analysis is dropped.
func (w *SaveWorker) Enqueue(clause string, facets domain.AnalysisFacets) {
	analysis := domain.Analysis{
		ID:        uuid.NewString(),
		Clause:    clause,
		Facets:    facets,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case w.queue <- analysis:
	default:
		log.Printf("save queue full, dropping analysis %s", analysis.ID)
	}
}

// Start begins the worker's drain loop.
func (w *SaveWorker) Start(ctx context.Context) {
	defer close(w.doneChan)

	log.Printf("save worker started (queue capacity %d)", cap(w.queue))

	for {
		select {
		case <-ctx.Done():
			log.Println("save worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.drain(ctx)
			log.Println("save worker stopped: stop signal received")
			return
		case analysis := <-w.queue:
			w.save(ctx, analysis)
		}
	}
}

// Stop gracefully stops the worker after draining queued saves.
func (w *SaveWorker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("save worker shutdown complete")
}

func (w *SaveWorker) drain(ctx context.Context) {
	for {
		select {
		case analysis := <-w.queue:
			w.save(ctx, analysis)
		default:
			return
		}
	}
}

func (w *SaveWorker) save(ctx context.Context, analysis domain.Analysis) {
	embedding := w.embedAnalysis(ctx, analysis)

	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if err = w.store.SaveAnalysis(ctx, &analysis, embedding); err == nil {
			return
		}
		if ctx.Err() != nil {
			break
		}
	}
	log.Printf("failed to save analysis %s after %d attempts: %v", analysis.ID, w.maxRetries+1, err)
}

// embedAnalysis computes the document-level embedding used for similar-
// analysis lookup. Embedding failures degrade to a nil vector.
func (w *SaveWorker) embedAnalysis(ctx context.Context, analysis domain.Analysis) []float32 {
	if w.embedder == nil {
		return nil
	}

	parts := []string{analysis.Clause}
	if analysis.Facets.Explanation != "" {
		parts = append(parts, analysis.Facets.Explanation)
	}

	embedding, err := w.embedder.Embed(ctx, strings.Join(parts, "\n\n"))
	if err != nil {
		log.Printf("failed to embed analysis %s, storing without embedding: %v", analysis.ID, err)
		return nil
	}
	return embedding
}
