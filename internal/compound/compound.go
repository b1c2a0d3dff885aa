// Package compound implements S5, the Compound Risk Detector: fixed-pattern
// co-occurrence detection, severity escalation over repeated high scores,
// and an LLM synthesis pass for risks neither rule catches. Grounded on
// original_source/.../compound_detector/compound_detector.py.
package compound

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"legalrisk/internal/model"
	"legalrisk/internal/modelclient"
	"legalrisk/internal/textutil"
)

// dangerousPattern is one fixed co-occurrence rule.
type dangerousPattern struct {
	categories []string
	riskType   string
}

var patterns = []dangerousPattern{
	{categories: []string{"Unilateral Termination", "Unlimited Liability"}, riskType: "Termination + Unlimited Liability"},
	{categories: []string{"Unilateral Termination", "Non-Compete"}, riskType: "Termination + Non-Compete Lock-in"},
	{categories: []string{"Unlimited Liability", "Non-Compete"}, riskType: "Unlimited Liability + Restricted Exit"},
}

// Detector runs the three-pass S5 algorithm.
type Detector struct {
	client *modelclient.Client
	logger *zap.Logger
}

// New builds a Compound Risk Detector.
func New(client *modelclient.Client, logger *zap.Logger) *Detector {
	return &Detector{client: client, logger: logger}
}

func severityFromScore(score int) string {
	switch {
	case score >= 85:
		return model.RiskCritical
	case score >= 70:
		return model.RiskHigh
	case score >= 50:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func clampScore(v float64) int {
	if v > 100 {
		return 100
	}
	return int(v)
}

func dedupKey(riskType string, affected []string) string {
	sorted := append([]string(nil), affected...)
	sort.Strings(sorted)
	return riskType + "|" + strings.Join(sorted, ",")
}

// Detect runs the full S5 pipeline. Returns empty when fewer than 2 risk
// analyses are provided.
func (d *Detector) Detect(ctx context.Context, analyses []model.RiskAnalysis, documentText string) ([]model.CompoundRisk, error) {
	if len(analyses) < 2 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var results []model.CompoundRisk

	add := func(r model.CompoundRisk) {
		key := dedupKey(r.RiskType, r.AffectedClauseIDs)
		if seen[key] {
			return
		}
		seen[key] = true
		results = append(results, r)
	}

	relevant := make([]model.RiskAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if a.IsRelevant {
			relevant = append(relevant, a)
		}
	}

	// Pass 1: pattern.
	presentCategories := make(map[string][]model.RiskAnalysis)
	for _, a := range relevant {
		presentCategories[a.Category] = append(presentCategories[a.Category], a)
	}
	for _, p := range patterns {
		allPresent := true
		for _, c := range p.categories {
			if _, ok := presentCategories[c]; !ok {
				allPresent = false
				break
			}
		}
		if !allPresent {
			continue
		}
		var scores []int
		var ids []string
		for _, c := range p.categories {
			for _, a := range presentCategories[c] {
				scores = append(scores, a.FinalRiskScore)
				ids = append(ids, a.ChunkID)
			}
		}
		combined := clampScore(mean(scores) + 15)
		add(model.CompoundRisk{
			RiskType:          p.riskType,
			Severity:          severityFromScore(combined),
			Description:       fmt.Sprintf("Co-occurring clauses in categories %s create a compounding risk.", strings.Join(p.categories, " and ")),
			AffectedClauseIDs: ids,
			CombinedRiskScore: combined,
		})
	}

	// Pass 2: severity escalation.
	highByCategory := make(map[string][]model.RiskAnalysis)
	for _, a := range relevant {
		if a.FinalRiskScore >= 70 {
			highByCategory[a.Category] = append(highByCategory[a.Category], a)
		}
	}
	for category, group := range highByCategory {
		if len(group) < 2 {
			continue
		}
		var scores []int
		var ids []string
		for _, a := range group {
			scores = append(scores, a.FinalRiskScore)
			ids = append(ids, a.ChunkID)
		}
		combined := clampScore(mean(scores) + 10)
		add(model.CompoundRisk{
			RiskType:          fmt.Sprintf("Repeated High-Severity %s", category),
			Severity:          severityFromScore(combined),
			Description:       fmt.Sprintf("%d separate clauses in category %q each scored >=70, indicating a systemic drafting pattern.", len(group), category),
			AffectedClauseIDs: ids,
			CombinedRiskScore: combined,
		})
	}

	// Pass 3: synthesis.
	var synthCandidates []model.RiskAnalysis
	for _, a := range relevant {
		if a.FinalRiskScore >= 50 {
			synthCandidates = append(synthCandidates, a)
		}
	}
	if len(synthCandidates) >= 2 {
		synthesized, err := d.synthesize(ctx, synthCandidates)
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("compound synthesis pass failed, treating as empty", zap.Error(err))
			}
		} else {
			for _, r := range synthesized {
				add(r)
			}
		}
	}

	return results, nil
}

type synthesisResponse struct {
	Risks []model.CompoundRisk `json:"risks"`
}

func (d *Detector) synthesize(ctx context.Context, candidates []model.RiskAnalysis) ([]model.CompoundRisk, error) {
	var lines []string
	for i, a := range candidates {
		reasoning := ""
		if a.Arbiter != nil {
			reasoning = textutil.TruncateForContext(a.Arbiter.Reasoning, 38)
		}
		lines = append(lines, fmt.Sprintf("%d. category=%s score=%d reasoning=%s", i, a.Category, a.FinalRiskScore, reasoning))
	}

	userPrompt := fmt.Sprintf(
		"Flagged clauses:\n%s\n\nIdentify 0-2 compound risks arising from these clauses interacting with each other. Each risk needs risk_type, severity, description, affected_clause_ids (using the indices above), mitigation_advice, and combined_risk_score.",
		strings.Join(lines, "\n"))

	messages := []modelclient.Message{
		{Role: "system", Content: "You are a contract risk analyst looking for systemic risks that emerge only from clauses interacting, not from any single clause."},
		{Role: "user", Content: userPrompt},
	}
	schema := modelclient.Schema{Fields: []modelclient.SchemaField{
		{Name: "risks", Type: "array", Required: true},
	}}

	var out synthesisResponse
	if err := d.client.CompleteStructured(ctx, messages, schema, modelclient.ModelSmart, 0.3, 3, &out); err != nil {
		return nil, err
	}

	for i := range out.Risks {
		out.Risks[i].Severity = severityFromScore(out.Risks[i].CombinedRiskScore)
	}
	return out.Risks, nil
}
