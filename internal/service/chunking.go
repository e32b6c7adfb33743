package service

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clauselens/clauselens/internal/domain"
)

// ChunkConfig controls how clause text is split into retrievable fragments.
type ChunkConfig struct {
	MaxChunkSize int
	Overlap      int
	// Separators lists split delimiters from most to least preferred.
	// Whitespace is always the implicit last resort.
	Separators []string
}

// DefaultChunkConfig provides sane defaults for chunking legal text.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize: 500,
		Overlap:      50,
		Separators:   []string{"\n\n", "\n", ". ", "; ", ", ", " "},
	}
}

// Validate fails fast on a configuration that could never chunk correctly.
func (c ChunkConfig) Validate() error {
	if c.MaxChunkSize <= 0 {
		return domain.NewDomainError(domain.ErrCodeConfiguration,
			fmt.Sprintf("maxChunkSize must be positive, got %d", c.MaxChunkSize))
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChunkSize {
		return domain.NewDomainError(domain.ErrCodeConfiguration,
			fmt.Sprintf("overlap must satisfy 0 <= overlap < maxChunkSize, got overlap=%d maxChunkSize=%d", c.Overlap, c.MaxChunkSize))
	}
	return nil
}

// Chunker splits text into overlapping fragments, preferring to cut on the
// most natural break available within the size budget.
type Chunker struct {
	cfg ChunkConfig
}

// NewChunker creates a Chunker, validating the configuration before any
// chunking is attempted.
func NewChunker(cfg ChunkConfig) (*Chunker, error) {
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultChunkConfig().Separators
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunks returns a restartable sequence of fragments. No fragment exceeds
// MaxChunkSize runes unless a single whitespace-free token is itself larger,
// in which case the token is emitted whole rather than cut mid-word.
// Consecutive fragments share up to Overlap runes of context.
func (c *Chunker) Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		clean := strings.TrimSpace(text)
		if clean == "" {
			return
		}

		runes := []rune(clean)
		max := c.cfg.MaxChunkSize
		start := 0
		for start < len(runes) {
			end := start + max
			if end >= len(runes) {
				if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
					yield(chunk)
				}
				return
			}

			cut := c.findCut(runes, start, end)
			if cut <= start {
				// Atomic token longer than the budget: extend to the
				// next whitespace and emit it whole.
				cut = end
				for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
					cut++
				}
			}

			if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
				if !yield(chunk) {
					return
				}
			}

			if cut >= len(runes) {
				return
			}

			next := cut
			if c.cfg.Overlap > 0 && cut-start > c.cfg.Overlap {
				next = cut - c.cfg.Overlap
			}
			if next <= start {
				next = cut
			}
			start = next
		}
	}
}

// Split collects the full chunk sequence into a slice.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	for chunk := range c.Chunks(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// findCut locates the best cut position in (start, end], scanning the
// separator list in priority order and taking the last occurrence of the
// first separator that appears inside the window. When no configured
// separator fits, the last whitespace rune in the window is the fallback.
// Returns start only when the window holds a single unbroken token.
func (c *Chunker) findCut(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range c.cfg.Separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}
		// Cut after the separator so it stays with the leading fragment.
		return start + utf8.RuneCountInString(window[:idx+len(sep)])
	}

	for i := end - 1; i > start; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return start
}
