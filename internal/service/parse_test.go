package service

import (
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRiskyTerms_DirectJSON(t *testing.T) {
	raw := `[{"term":"indemnify","severity":"high","explanation":"shifts liability"}]`

	terms := decodeRiskyTerms(raw)
	require.Len(t, terms, 1)
	assert.Equal(t, "indemnify", terms[0].Term)
	assert.Equal(t, domain.SeverityHigh, terms[0].Severity)
}

func TestDecodeRiskyTerms_FencedBlock(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" +
		`[{"term":"waiver","severity":"low","explanation":"gives up rights"}]` +
		"\n```\nLet me know if you need more."

	terms := decodeRiskyTerms(raw)
	require.Len(t, terms, 1)
	assert.Equal(t, "waiver", terms[0].Term)
	assert.Equal(t, domain.SeverityLow, terms[0].Severity)
}

func TestDecodeRiskyTerms_EmbeddedArray(t *testing.T) {
	raw := `Sure! The risky terms are [{"term":"penalty [daily]","severity":"high","explanation":"accrues per day"}] as requested.`

	terms := decodeRiskyTerms(raw)
	require.Len(t, terms, 1)
	assert.Equal(t, "penalty [daily]", terms[0].Term)
}

func TestDecodeRiskyTerms_SeverityCoercion(t *testing.T) {
	raw := `[
		{"term":"a","severity":"HIGH","explanation":"x"},
		{"term":"b","severity":"critical","explanation":"y"},
		{"term":"c","explanation":"z"}
	]`

	terms := decodeRiskyTerms(raw)
	require.Len(t, terms, 3)
	assert.Equal(t, domain.SeverityHigh, terms[0].Severity)
	assert.Equal(t, domain.SeverityModerate, terms[1].Severity)
	assert.Equal(t, domain.SeverityModerate, terms[2].Severity)
}

func TestDecodeRiskyTerms_DropsIncompleteItems(t *testing.T) {
	raw := `[
		{"term":"keep me","severity":"low","explanation":"valid"},
		{"term":"","severity":"high","explanation":"no term"},
		{"term":"no explanation","severity":"high"}
	]`

	terms := decodeRiskyTerms(raw)
	require.Len(t, terms, 1)
	assert.Equal(t, "keep me", terms[0].Term)
}

func TestDecodeRiskyTerms_MalformedDegradesToEmpty(t *testing.T) {
	assert.Empty(t, decodeRiskyTerms("I could not find any JSON to give you."))
	assert.Empty(t, decodeRiskyTerms(""))
	assert.Empty(t, decodeRiskyTerms(`{"term":"not an array"}`))
	assert.Empty(t, decodeRiskyTerms("[{broken json"))
	assert.NotNil(t, decodeRiskyTerms("garbage"))
}

func TestDecodeLegalReferences_ValidatesURLs(t *testing.T) {
	raw := `[
		{"title":"Good Ref","url":"https://law.example.com/statute/1","relevance":"on point"},
		{"title":"Relative URL","url":"/statute/2","relevance":"dropped"},
		{"title":"","url":"https://law.example.com/statute/3","relevance":"no title"},
		{"title":"No relevance","url":"https://law.example.com/statute/4","relevance":""}
	]`

	refs := decodeLegalReferences(raw)
	require.Len(t, refs, 1)
	assert.Equal(t, "Good Ref", refs[0].Title)
	assert.Equal(t, "https://law.example.com/statute/1", refs[0].URL)
}

func TestDecodeLegalReferences_MalformedDegradesToEmpty(t *testing.T) {
	assert.Empty(t, decodeLegalReferences("no references today"))
	assert.NotNil(t, decodeLegalReferences("no references today"))
}

func TestFirstTopLevelArray(t *testing.T) {
	candidate, ok := firstTopLevelArray(`prefix [1, [2, 3], "a ] inside"] suffix`)
	require.True(t, ok)
	assert.Equal(t, `[1, [2, 3], "a ] inside"]`, candidate)

	_, ok = firstTopLevelArray("no brackets here")
	assert.False(t, ok)

	_, ok = firstTopLevelArray("[unbalanced")
	assert.False(t, ok)
}
