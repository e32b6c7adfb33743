package domain

// ChunkCategory identifies which part of an analysis a chunk derives from.
type ChunkCategory string

const (
	ChunkCategoryOriginal    ChunkCategory = "original"
	ChunkCategorySimplified  ChunkCategory = "simplified"
	ChunkCategoryRiskyTerms  ChunkCategory = "risky_terms"
	ChunkCategoryGovArticles ChunkCategory = "government_articles"
)

// Chunk is a retrievable content fragment derived from a clause or one of
// its analysis facets. Chunks are immutable once assembled; a new analysis
// run produces an entirely new chunk set.
type Chunk struct {
	Text        string
	SourceIndex int
	SourceName  string
	Category    ChunkCategory

	// RelevanceScore is populated by a retrieval query and is only
	// meaningful relative to that single query. It is never persisted.
	RelevanceScore float64
}

// ValidateChunk checks that a chunk carries non-empty text and a known category.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return ErrMissingRequiredField
	}
	if c.Text == "" {
		return NewDomainError(ErrCodeValidation, "chunk text cannot be empty")
	}
	if !isValidChunkCategory(c.Category) {
		return NewDomainError(ErrCodeValidation, "invalid chunk category: "+string(c.Category))
	}
	if c.SourceIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk source index cannot be negative")
	}
	return nil
}

func isValidChunkCategory(c ChunkCategory) bool {
	switch c {
	case ChunkCategoryOriginal, ChunkCategorySimplified,
		ChunkCategoryRiskyTerms, ChunkCategoryGovArticles:
		return true
	}
	return false
}
