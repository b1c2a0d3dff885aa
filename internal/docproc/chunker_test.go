package docproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrisk/internal/config"
)

func TestSplitSentencesProtectsAbbreviations(t *testing.T) {
	text := "Acme Inc. develops software products for enterprises today. " +
		"The terms herein control the relationship between the parties for this discussion."
	spans := splitSentences(text, 10)
	require.Len(t, spans, 2)
	assert.Contains(t, spans[0].text, "Acme Inc. develops software")
	assert.Contains(t, spans[1].text, "The terms herein control")
}

func TestSplitSentencesDropsShortFragments(t *testing.T) {
	text := "Ok. This is a sufficiently long sentence that should survive the minimum length filter."
	spans := splitSentences(text, 20)
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].text, "sufficiently long sentence")
}

func TestPercentileLinearInterpolation(t *testing.T) {
	values := []float64{0.1, 0.5, 0.9}
	assert.InDelta(t, 0.5, percentile(values, 0.5), 1e-9)
	assert.InDelta(t, 0.1, percentile(values, 0), 1e-9)
	assert.InDelta(t, 0.9, percentile(values, 1), 1e-9)
}

func TestPercentileEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 0.5))
}

func TestChunkSingleSentenceDocumentYieldsOneChunk(t *testing.T) {
	text := "This Agreement contains a single long sentence that is the entire contract body for this test."
	cfg := config.ChunkingConfig{MinChunkLen: 10, MaxChunkLen: 800, SimilarityPercentile: 0.75, SentenceMinLen: 10}

	chunks, err := Chunk(context.Background(), text, nil, cfg)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "chunk_001", chunks[0].ID)
	assert.Equal(t, text, chunks[0].Text)
}

func TestChunkSingleSentenceBelowRealMinChunkLenYieldsNoChunks(t *testing.T) {
	text := "OCR FAILED: ocr recognize: tesseract unavailable"
	cfg := config.ChunkingConfig{MinChunkLen: 100, MaxChunkLen: 800, SimilarityPercentile: 0.75, SentenceMinLen: 20}

	chunks, err := Chunk(context.Background(), text, nil, cfg)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestChunkEmptyTextYieldsNoChunks(t *testing.T) {
	cfg := config.ChunkingConfig{MinChunkLen: 10, MaxChunkLen: 800, SimilarityPercentile: 0.75, SentenceMinLen: 10}
	chunks, err := Chunk(context.Background(), "", nil, cfg)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}
