package fixgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrisk/internal/model"
	"legalrisk/internal/vectorstore"
)

func intPtr(n int) *int { return &n }

func TestRerankBoostsDaysMatch(t *testing.T) {
	matches := []vectorstore.Match{
		{Text: "Notice must be given 30 days in advance.", Similarity: 0.5},
		{Text: "No temporal terms at all here.", Similarity: 0.5},
	}
	params := model.ExtractedParameters{Days: intPtr(30)}

	ranked := rerank(matches, params)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Notice must be given 30 days in advance.", ranked[0].text)
	assert.InDelta(t, 0.6, ranked[0].score, 1e-9)
}

func TestRerankBoostsMutualEitherParty(t *testing.T) {
	matches := []vectorstore.Match{
		{Text: "Either party may terminate upon notice.", Similarity: 0.5},
		{Text: "Only the Company may terminate.", Similarity: 0.5},
	}
	params := model.ExtractedParameters{IsMutual: true}

	ranked := rerank(matches, params)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Either party may terminate upon notice.", ranked[0].text)
	assert.InDelta(t, 0.65, ranked[0].score, 1e-9)
}

func TestRerankBoostsCapLanguage(t *testing.T) {
	matches := []vectorstore.Match{
		{Text: "Liability is limited to a cap of fees paid.", Similarity: 0.5},
		{Text: "No limitation language present.", Similarity: 0.5},
	}
	params := model.ExtractedParameters{HasCap: true}

	ranked := rerank(matches, params)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Liability is limited to a cap of fees paid.", ranked[0].text)
}

func TestRerankWithNoBoostsPreservesOriginalOrderByScore(t *testing.T) {
	matches := []vectorstore.Match{
		{Text: "low", Similarity: 0.2},
		{Text: "high", Similarity: 0.9},
	}
	ranked := rerank(matches, model.ExtractedParameters{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].text)
	assert.Equal(t, "low", ranked[1].text)
}
