// Package fixgen implements S4, the Fix Generator: retrieval-guided
// safe-clause generation. Grounded on
// original_source/.../fix_generator/fix_generator.py.
package fixgen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"legalrisk/internal/model"
	"legalrisk/internal/modelclient"
	"legalrisk/internal/textutil"
	"legalrisk/internal/vectorstore"
)

// Generator drafts a replacement clause for a gated risky chunk.
type Generator struct {
	store  *vectorstore.Store
	client *modelclient.Client
	logger *zap.Logger
}

// New builds a Fix Generator.
func New(store *vectorstore.Store, client *modelclient.Client, logger *zap.Logger) *Generator {
	return &Generator{store: store, client: client, logger: logger}
}

type rankedTemplate struct {
	text  string
	score float64
}

// rerank applies the heuristic boosts from spec.md §4.4 step 3.
func rerank(matches []vectorstore.Match, params model.ExtractedParameters) []rankedTemplate {
	out := make([]rankedTemplate, 0, len(matches))
	for _, m := range matches {
		score := m.Similarity
		lower := strings.ToLower(m.Text)
		if strings.Contains(lower, "days") && params.Days != nil {
			score *= 1.2
		}
		if params.IsMutual && strings.Contains(lower, "either party") {
			score *= 1.3
		}
		if params.HasCap && (strings.Contains(lower, "limited") || strings.Contains(lower, "cap")) {
			score *= 1.2
		}
		out = append(out, rankedTemplate{text: m.Text, score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

// Generate produces a GeneratedFix for one gated risky chunk.
func (g *Generator) Generate(ctx context.Context, riskyText, category string, analysis model.RiskAnalysis) (model.GeneratedFix, error) {
	matches, err := g.store.QueryCategory(ctx, riskyText, category, "", 10)
	if err != nil {
		return model.GeneratedFix{}, fmt.Errorf("fixgen query templates: %w", err)
	}

	var safeOnly []vectorstore.Match
	for _, m := range matches {
		if m.RiskLevel == vectorstore.RiskSafe {
			safeOnly = append(safeOnly, m)
		}
	}

	ranked := rerank(safeOnly, analysis.Parameters)
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	fix, genErr := g.generateStructured(ctx, riskyText, analysis, ranked)
	if genErr != nil {
		if g.logger != nil {
			g.logger.Warn("fix generation failed, using best template", zap.Error(genErr))
		}
		fallbackText := riskyText
		if len(ranked) > 0 {
			fallbackText = ranked[0].text
		}
		fix = model.GeneratedFix{
			SuggestedReplacement: fallbackText,
			EditComment:          "Manual drafting recommended due to generation error.",
		}
	}

	fix.PrecedentCitations = nil
	for i := 0; i < len(ranked) && i < 2; i++ {
		fix.PrecedentCitations = append(fix.PrecedentCitations, textutil.TruncateForContext(ranked[i].text, 25))
	}

	return fix, nil
}

func (g *Generator) generateStructured(ctx context.Context, riskyText string, analysis model.RiskAnalysis, ranked []rankedTemplate) (model.GeneratedFix, error) {
	reasoning := ""
	if analysis.Arbiter != nil {
		reasoning = textutil.TruncateForContext(analysis.Arbiter.Reasoning, 50)
	}
	riskSummary := fmt.Sprintf("Score: %d (%s). %s", analysis.FinalRiskScore, analysis.FinalRiskLevel, reasoning)

	var exemplars []string
	for i := 0; i < len(ranked) && i < 3; i++ {
		exemplars = append(exemplars, ranked[i].text)
	}

	userPrompt := fmt.Sprintf(
		"Original clause:\n%s\n\nRisk summary:\n%s\n\nSafe precedent templates:\n%s\n\nDraft a safer replacement clause, a short edit_comment (<=50 words), 2-3 key_changes, and precedent_citations.",
		riskyText, riskSummary, strings.Join(exemplars, "\n---\n"))

	messages := []modelclient.Message{
		{Role: "system", Content: "You are contract counsel drafting a safer replacement clause that preserves commercial intent while neutralizing the identified risk."},
		{Role: "user", Content: userPrompt},
	}
	schema := modelclient.Schema{Fields: []modelclient.SchemaField{
		{Name: "suggested_replacement", Type: "string", Required: true},
		{Name: "edit_comment", Type: "string", Required: true},
		{Name: "key_changes", Type: "array", Required: false},
		{Name: "precedent_citations", Type: "array", Required: false},
	}}

	var out model.GeneratedFix
	err := g.client.CompleteStructured(ctx, messages, schema, modelclient.ModelSmart, 0.3, 3, &out)
	return out, err
}
