package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	saved      []*domain.Analysis
	embeddings [][]float32
	failures   int
	attempts   int
}

func (s *fakeStore) SaveAnalysis(_ context.Context, analysis *domain.Analysis, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return errors.New("transient database failure")
	}
	s.saved = append(s.saved, analysis)
	s.embeddings = append(s.embeddings, embedding)
	return nil
}

func (s *fakeStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func runWorker(t *testing.T, w *SaveWorker) func() {
	t.Helper()
	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()
	return func() {
		w.Stop()
		<-done
	}
}

func TestSaveWorker_EnqueueAndDrain(t *testing.T) {
	store := &fakeStore{}
	worker := NewSaveWorker(store, nil, 8)
	stop := runWorker(t, worker)

	worker.Enqueue("first clause", domain.AnalysisFacets{Explanation: "plain words"})
	worker.Enqueue("second clause", domain.AnalysisFacets{})
	stop()

	require.Equal(t, 2, store.savedCount())
	assert.NotEmpty(t, store.saved[0].ID)
	assert.Equal(t, "first clause", store.saved[0].Clause)
	assert.False(t, store.saved[0].CreatedAt.IsZero())
	assert.Nil(t, store.embeddings[0], "no embedder means no embedding")
}

func TestSaveWorker_RetriesTransientFailures(t *testing.T) {
	store := &fakeStore{failures: 2}
	worker := NewSaveWorker(store, nil, 8)
	stop := runWorker(t, worker)

	worker.Enqueue("clause", domain.AnalysisFacets{})
	stop()

	assert.Equal(t, 1, store.savedCount())
	assert.Equal(t, 3, store.attempts)
}

func TestSaveWorker_GivesUpAfterMaxRetries(t *testing.T) {
	store := &fakeStore{failures: 100}
	worker := NewSaveWorker(store, nil, 8)
	stop := runWorker(t, worker)

	worker.Enqueue("clause", domain.AnalysisFacets{})
	stop()

	assert.Equal(t, 0, store.savedCount())
	assert.Equal(t, 4, store.attempts, "initial attempt plus three retries")
}

func TestSaveWorker_DropsWhenQueueFull(t *testing.T) {
	store := &fakeStore{}
	worker := NewSaveWorker(store, nil, 1)

	// Worker not started yet, so the queue cannot drain between enqueues.
	worker.Enqueue("kept", domain.AnalysisFacets{})
	worker.Enqueue("dropped", domain.AnalysisFacets{})

	stop := runWorker(t, worker)
	stop()

	require.Equal(t, 1, store.savedCount())
	assert.Equal(t, "kept", store.saved[0].Clause)
}

func TestSaveWorker_EmbedsClauseAndExplanation(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	worker := NewSaveWorker(store, embedder, 8)
	stop := runWorker(t, worker)

	worker.Enqueue("clause", domain.AnalysisFacets{Explanation: "plain words"})
	stop()

	require.Equal(t, 1, store.savedCount())
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, store.embeddings[0])
}

func TestSaveWorker_EmbeddingFailureStoresWithoutVector(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("embedding backend down")}
	worker := NewSaveWorker(store, embedder, 8)
	stop := runWorker(t, worker)

	worker.Enqueue("clause", domain.AnalysisFacets{})
	stop()

	require.Equal(t, 1, store.savedCount())
	assert.Nil(t, store.embeddings[0])
}

func TestSaveWorker_DefaultQueueSize(t *testing.T) {
	worker := NewSaveWorker(&fakeStore{}, nil, 0)
	assert.Equal(t, 64, cap(worker.queue))
}
