// Semantic chunking via sentence-embedding cosine-similarity breakpoint
// detection, per spec.md §4.1 and the Open Question in spec.md §9: the
// 0.75 "similarity threshold" is a percentile fraction against the array of
// consecutive-sentence cosine similarities, not a fixed cosine cutoff.
// Grounded on original_source/.../document_processor/semantic_chunker.py.
package docproc

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"legalrisk/internal/config"
	"legalrisk/internal/embeddings"
	"legalrisk/internal/model"
)

// protectedAbbreviations are honorifics and corporate suffixes that must not
// trigger a sentence split on their trailing period.
var protectedAbbreviations = []string{
	"Mr.", "Mrs.", "Ms.", "Dr.", "Jr.", "Sr.",
	"Inc.", "LLC.", "Corp.", "Ltd.", "Co.",
}

var sentenceBoundaryRe = regexp.MustCompile(`(?m)([.!?])\s+(?:[A-Z"'])`)

// splitSentences splits text into sentences, protecting abbreviations from
// being mistaken for sentence-ending periods, and drops sentences shorter
// than minLen.
func splitSentences(text string, minLen int) []sentenceSpan {
	placeholder := "\x00PERIOD\x00"
	protected := text
	for _, abbr := range protectedAbbreviations {
		protected = strings.ReplaceAll(protected, abbr, strings.TrimSuffix(abbr, ".")+placeholder)
	}

	var spans []sentenceSpan
	lastEnd := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringIndex(protected, -1) {
		end := loc[0] + 1
		raw := protected[lastEnd:end]
		raw = strings.ReplaceAll(raw, placeholder, ".")
		s := strings.TrimSpace(raw)
		if len(s) >= minLen {
			start := strings.Index(text[lastEnd:], strings.TrimSpace(strings.ReplaceAll(raw, placeholder, ".")))
			if start < 0 {
				start = 0
			} else {
				start += lastEnd
			}
			spans = append(spans, sentenceSpan{text: s, start: start})
		}
		lastEnd = end
	}
	if lastEnd < len(protected) {
		raw := strings.ReplaceAll(protected[lastEnd:], placeholder, ".")
		s := strings.TrimSpace(raw)
		if len(s) >= minLen {
			spans = append(spans, sentenceSpan{text: s, start: lastEnd})
		}
	}
	return spans
}

type sentenceSpan struct {
	text  string
	start int
}

// percentile returns the p-th percentile (p in [0,1]) of values using
// linear interpolation between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Chunk runs the full semantic chunking algorithm over cleaned full text.
func Chunk(ctx context.Context, fullText string, embedder *embeddings.Service, cfg config.ChunkingConfig) ([]model.SemanticChunk, error) {
	sentences := splitSentences(fullText, cfg.SentenceMinLen)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) == 1 {
		c := buildChunk(1, sentences, 0, len(sentences), fullText, cfg)
		if c.Text == "" {
			return nil, nil
		}
		return []model.SemanticChunk{c}, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.text
	}
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("chunker embed sentences: %w", err)
	}

	scores := make([]float64, len(vectors)-1)
	for i := 0; i < len(vectors)-1; i++ {
		scores[i] = embeddings.CosineSimilarity(vectors[i], vectors[i+1])
	}

	threshold := percentile(scores, cfg.SimilarityPercentile)

	var breakpoints []int // sentence index i+1 where a breakpoint starts a new chunk
	for i, score := range scores {
		if score < threshold {
			breakpoints = append(breakpoints, i+1)
		}
	}

	bounds := append([]int{0}, breakpoints...)
	bounds = append(bounds, len(sentences))

	var chunks []model.SemanticChunk
	chunkNum := 1
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		if start >= end {
			continue
		}
		c := buildChunk(chunkNum, sentences, start, end, fullText, cfg)
		if c.Text == "" {
			continue
		}
		chunks = append(chunks, c)
		chunkNum++
	}
	return chunks, nil
}

func buildChunk(num int, sentences []sentenceSpan, from, to int, fullText string, cfg config.ChunkingConfig) model.SemanticChunk {
	var parts []string
	for i := from; i < to; i++ {
		parts = append(parts, sentences[i].text)
	}
	text := strings.Join(parts, " ")

	if len(text) < cfg.MinChunkLen {
		return model.SemanticChunk{}
	}
	if len(text) > cfg.MaxChunkLen {
		text = text[:cfg.MaxChunkLen]
	}

	start := sentences[from].start
	if start < 0 {
		start = 0
	}
	end := start + len(text)
	if end > len(fullText) {
		end = len(fullText)
	}

	preStart := start - 50
	if preStart < 0 {
		preStart = 0
	}
	contextPre := fullText[preStart:start]

	postEnd := end + 50
	if postEnd > len(fullText) {
		postEnd = len(fullText)
	}
	contextPost := fullText[end:postEnd]

	return model.SemanticChunk{
		ID:         fmt.Sprintf("chunk_%03d", num),
		Text:       text,
		Start:      start,
		End:        end,
		WordCount:  len(strings.Fields(text)),
		ContextPre: contextPre,
		ContextPos: contextPost,
	}
}
