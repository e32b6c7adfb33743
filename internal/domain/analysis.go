package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Severity classifies how risky a flagged contract term is.
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// NormalizeSeverity coerces an arbitrary model-supplied severity string to
// one of the known levels. Unrecognized or missing values become moderate.
func NormalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityModerate
	}
}

// RiskyTerm is one flagged term from the risk-extraction facet.
type RiskyTerm struct {
	Term        string   `json:"term"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

// LegalReference is one related statutory reference from the lookup facet.
type LegalReference struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Relevance string `json:"relevance"`
}

// AnalysisFacets holds the three independent outputs of analyzing one
// clause. The facets are produced together but computed independently;
// a failed facet degrades to its zero value rather than nulling the rest.
type AnalysisFacets struct {
	Explanation     string           `json:"explanation"`
	RiskyTerms      []RiskyTerm      `json:"risky_terms"`
	LegalReferences []LegalReference `json:"legal_references"`
}

// Analysis is a persisted (clause, facets) pair.
type Analysis struct {
	ID        string
	Clause    string
	Facets    AnalysisFacets
	CreatedAt time.Time
}

// AnalysisMatch is a stored analysis ranked by similarity to a query.
type AnalysisMatch struct {
	Analysis   Analysis
	Similarity float64
}

// ValidateRiskyTerm reports whether a model-supplied risky term carries the
// required fields. Severity is normalized separately and never fails.
func ValidateRiskyTerm(t RiskyTerm) bool {
	return strings.TrimSpace(t.Term) != "" && strings.TrimSpace(t.Explanation) != ""
}

// ValidateLegalReference keeps only references whose fields are all present
// and whose URL parses as a well-formed absolute URL.
func ValidateLegalReference(r LegalReference) bool {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Relevance) == "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// Fingerprint derives the cache key identifying a unique (clause, facets)
// pair. Identical inputs always produce the same key, so a rebuilt analysis
// of the same clause reuses its cached semantic index.
func Fingerprint(clause string, facets AnalysisFacets) string {
	h := sha256.New()
	h.Write([]byte(clause))
	h.Write([]byte{0})
	h.Write([]byte(facets.Explanation))
	for _, t := range facets.RiskyTerms {
		fmt.Fprintf(h, "\x00%s\x00%s\x00%s", t.Term, t.Severity, t.Explanation)
	}
	for _, r := range facets.LegalReferences {
		fmt.Fprintf(h, "\x00%s\x00%s\x00%s", r.Title, r.URL, r.Relevance)
	}
	return hex.EncodeToString(h.Sum(nil))
}
