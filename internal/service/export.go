package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/storage"
	"github.com/google/uuid"
)

// ReportExporter writes batch analysis reports to a storage backend.
type ReportExporter struct {
	store storage.Storage
}

// NewReportExporter creates a ReportExporter.
func NewReportExporter(store storage.Storage) *ReportExporter {
	return &ReportExporter{store: store}
}

// BatchReport is the exported JSON shape of one batch run.
type BatchReport struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Items       []BatchReportItem `json:"items"`
}

// BatchReportItem is one clause outcome inside a report.
type BatchReportItem struct {
	Clause string                 `json:"clause"`
	Facets *domain.AnalysisFacets `json:"facets,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// ExportBatch serializes the batch outcome and writes it to storage,
// returning the object key. Per-item errors are rendered as the
// user-visible notification, never as raw internals.
func (e *ReportExporter) ExportBatch(ctx context.Context, items []BatchItem) (string, error) {
	report := BatchReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Items:       make([]BatchReportItem, 0, len(items)),
	}

	for _, item := range items {
		entry := BatchReportItem{Clause: item.Clause}
		if item.Err != nil {
			entry.Error = domain.UserMessage(item.Err)
		} else {
			facets := item.Facets
			entry.Facets = &facets
		}
		report.Items = append(report.Items, entry)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/batch-%s.json", report.GeneratedAt.Format("2006-01-02"), report.ID)
	if err := e.store.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("failed to store report: %w", err)
	}
	return key, nil
}
