package service

import (
	"strings"
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultChunkConfig().Validate())

	bad := ChunkConfig{MaxChunkSize: 0, Overlap: 0}
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))

	negOverlap := ChunkConfig{MaxChunkSize: 100, Overlap: -1}
	assert.Error(t, negOverlap.Validate())

	overlapTooBig := ChunkConfig{MaxChunkSize: 100, Overlap: 100}
	assert.Error(t, overlapTooBig.Validate())
}

func TestNewChunker_InvalidConfig(t *testing.T) {
	_, err := NewChunker(ChunkConfig{MaxChunkSize: -5})
	require.Error(t, err)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	chunker, err := NewChunker(DefaultChunkConfig())
	require.NoError(t, err)

	chunks := chunker.Split("The tenant shall pay rent monthly.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "The tenant shall pay rent monthly.", chunks[0])
}

func TestChunker_EmptyText(t *testing.T) {
	chunker, err := NewChunker(DefaultChunkConfig())
	require.NoError(t, err)

	assert.Empty(t, chunker.Split(""))
	assert.Empty(t, chunker.Split("   \n\t  "))
}

func TestChunker_RespectsMaxChunkSize(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 40, Overlap: 5})
	require.NoError(t, err)

	text := "First sentence here. Second sentence follows. Third sentence closes the paragraph. Fourth one for good measure."
	chunks := chunker.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 40, "chunk %q", chunk)
	}
}

func TestChunker_PrefersParagraphBreaks(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 60, Overlap: 0})
	require.NoError(t, err)

	text := "First paragraph stays together.\n\nSecond paragraph also stays together."
	chunks := chunker.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph stays together.", chunks[0])
	assert.Equal(t, "Second paragraph also stays together.", chunks[1])
}

func TestChunker_OversizeTokenEmittedWhole(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 10, Overlap: 0})
	require.NoError(t, err)

	token := strings.Repeat("x", 25)
	chunks := chunker.Split(token + " short")
	require.NotEmpty(t, chunks)
	assert.Equal(t, token, chunks[0])
}

func TestChunker_WhitespaceFallbackWithoutSpaceSeparator(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 10, Overlap: 0, Separators: []string{"\n\n"}})
	require.NoError(t, err)

	chunks := chunker.Split("alphabet betagamma more words here")
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10, "chunk %q", chunk)
	}
	assert.Equal(t, []string{"alphabet", "betagamma", "more", "words here"}, chunks)
}

func TestChunker_RoundTripPreservesEveryWord(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 60, Overlap: 15})
	require.NoError(t, err)

	text := "The tenant shall maintain the premises in good repair.\n\n" +
		"Any alterations require the landlord's prior written consent; unauthorized changes must be reversed at the tenant's expense.\n\n" +
		"Upon termination, the security deposit is returned within thirty days, less documented damages."
	chunks := chunker.Split(text)
	require.Greater(t, len(chunks), 1)

	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, word, "word %q lost during chunking", word)
	}
}

func TestChunker_OverlapSharesContext(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 30, Overlap: 10, Separators: []string{" "}})
	require.NoError(t, err)

	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks := chunker.Split(text)
	require.Greater(t, len(chunks), 1)

	// The last word of each chunk reappears inside the next one.
	for i := 1; i < len(chunks); i++ {
		words := strings.Fields(chunks[i-1])
		require.NotEmpty(t, words)
		assert.Contains(t, chunks[i], words[len(words)-1],
			"chunk %d %q should carry over from %q", i, chunks[i], chunks[i-1])
	}
}

func TestChunker_SequenceIsRestartable(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 20, Overlap: 0})
	require.NoError(t, err)

	seq := chunker.Chunks("one two three four five six seven eight nine ten")

	var first, second []string
	for chunk := range seq {
		first = append(first, chunk)
	}
	for chunk := range seq {
		second = append(second, chunk)
	}
	assert.Equal(t, first, second)
}

func TestChunker_EarlyStop(t *testing.T) {
	chunker, err := NewChunker(ChunkConfig{MaxChunkSize: 10, Overlap: 0})
	require.NoError(t, err)

	count := 0
	for range chunker.Chunks(strings.Repeat("word ", 50)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
