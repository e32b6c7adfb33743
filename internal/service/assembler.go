package service

import (
	"fmt"

	"github.com/clauselens/clauselens/internal/domain"
)

// ContentAssembler turns a clause and its analysis facets into the uniform
// chunk set the semantic index is built over.
type ContentAssembler struct {
	chunker *Chunker
}

// NewContentAssembler creates a ContentAssembler using the given chunk config.
func NewContentAssembler(cfg ChunkConfig) (*ContentAssembler, error) {
	chunker, err := NewChunker(cfg)
	if err != nil {
		return nil, err
	}
	return &ContentAssembler{chunker: chunker}, nil
}

// Assemble produces the full chunk set for one analyzed clause. The clause
// and explanation are chunked; risky terms and legal references become one
// chunk each so every item stays independently retrievable.
func (a *ContentAssembler) Assemble(clause string, facets domain.AnalysisFacets) []domain.Chunk {
	var chunks []domain.Chunk

	idx := 0
	for text := range a.chunker.Chunks(clause) {
		chunks = append(chunks, domain.Chunk{
			Text:        text,
			SourceIndex: idx,
			SourceName:  "original_clause",
			Category:    domain.ChunkCategoryOriginal,
		})
		idx++
	}

	idx = 0
	for text := range a.chunker.Chunks(facets.Explanation) {
		chunks = append(chunks, domain.Chunk{
			Text:        text,
			SourceIndex: idx,
			SourceName:  "simplified_explanation",
			Category:    domain.ChunkCategorySimplified,
		})
		idx++
	}

	for i, term := range facets.RiskyTerms {
		chunks = append(chunks, domain.Chunk{
			Text:        describeRiskyTerm(term),
			SourceIndex: i,
			SourceName:  "risky_term_" + term.Term,
			Category:    domain.ChunkCategoryRiskyTerms,
		})
	}

	for i, ref := range facets.LegalReferences {
		chunks = append(chunks, domain.Chunk{
			Text:        describeLegalReference(ref),
			SourceIndex: i,
			SourceName:  fmt.Sprintf("gov_article_%d", i+1),
			Category:    domain.ChunkCategoryGovArticles,
		})
	}

	return chunks
}

func describeRiskyTerm(t domain.RiskyTerm) string {
	return fmt.Sprintf("The term %q carries %s risk: %s", t.Term, t.Severity, t.Explanation)
}

func describeLegalReference(r domain.LegalReference) string {
	return fmt.Sprintf("%s (%s): %s", r.Title, r.URL, r.Relevance)
}
