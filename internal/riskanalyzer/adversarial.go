// Package riskanalyzer implements S3, the Adversarial Analyzer: three
// sequential structured-generation calls (Pessimist, Optimist, Arbiter)
// with explicit short-circuit after the Pessimist's relevance verdict.
// Grounded on original_source/.../risk_analyzer/adversarial_analyzer.py.
package riskanalyzer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"legalrisk/internal/model"
	"legalrisk/internal/modelclient"
	"legalrisk/internal/paramextract"
	"legalrisk/internal/textutil"
)

// maxPromptTokens bounds any single free-text field embedded into a prompt.
const maxPromptTokens = 300

// Analyzer runs the three-agent protocol for chunks the category detector
// has flagged for review.
type Analyzer struct {
	client *modelclient.Client
	logger *zap.Logger
}

// New builds an Adversarial Analyzer.
func New(client *modelclient.Client, logger *zap.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger}
}

func truncate(s string) string { return textutil.TruncateForContext(s, maxPromptTokens) }

func joinExemplars(exemplars []string) string {
	if len(exemplars) == 0 {
		return "(none available)"
	}
	lines := make([]string, len(exemplars))
	for i, e := range exemplars {
		lines[i] = fmt.Sprintf("%d. %s", i+1, truncate(e))
	}
	return strings.Join(lines, "\n")
}

func oneLineSummary(exemplars []string) string {
	if len(exemplars) == 0 {
		return "none"
	}
	return textutil.TruncateForContext(strings.Join(exemplars, " | "), 60)
}

// Analyze runs the full S3 protocol for chunk, invoked only when
// detection.NeedsAgentReview.
func (a *Analyzer) Analyze(ctx context.Context, chunk model.SemanticChunk, detection model.CategoryDetection) model.RiskAnalysis {
	clauseText := textutil.SanitizeForLLM(chunk.Text)
	params := paramextract.Extract(chunk.Text)
	paramsFormatted := paramextract.Format(params)

	result := model.RiskAnalysis{
		ChunkID:        chunk.ID,
		Category:       detection.Category,
		Parameters:     params,
		PrecedentTexts: append(append([]string{}, detection.SafeExemplars...), detection.RiskyExemplars...),
	}

	pessimist, err := a.runPessimist(ctx, clauseText, detection, paramsFormatted)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("pessimist agent failed, degrading", zap.String("chunk", chunk.ID), zap.Error(err))
		}
		pessimist = &model.PessimistAnalysis{
			IsRelevant:         true,
			RelevanceReasoning: "agent unavailable; defaulting to relevant for manual review",
			RiskArgument:       "Automated risk assessment unavailable for this clause; manual review recommended.",
		}
	}

	result.IsRelevant = pessimist.IsRelevant
	if !pessimist.IsRelevant {
		result.FinalRiskScore = 0
		result.FinalRiskLevel = model.RiskLow
		return result
	}
	result.Pessimist = pessimist

	optimist, err := a.runOptimist(ctx, clauseText, pessimist, detection, paramsFormatted)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("optimist agent failed, degrading", zap.String("chunk", chunk.ID), zap.Error(err))
		}
		optimist = &model.OptimistAnalysis{
			DefenseArgument: "No specific defense could be generated; clause should be evaluated on its plain terms.",
		}
	}
	result.Optimist = optimist

	arbiter, err := a.runArbiter(ctx, clauseText, detection, pessimist, optimist, paramsFormatted)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("arbiter agent failed, degrading", zap.String("chunk", chunk.ID), zap.Error(err))
		}
		arbiter = &model.ArbiterVerdict{
			RiskScore: 50,
			RiskLevel: model.RiskMedium,
			Reasoning: "manual review required",
		}
	}
	arbiter.RiskLevel = model.RiskLevelFromScore(arbiter.RiskScore)
	result.Arbiter = arbiter
	result.FinalRiskScore = arbiter.RiskScore
	result.FinalRiskLevel = arbiter.RiskLevel

	return result
}

func (a *Analyzer) runPessimist(ctx context.Context, clauseText string, detection model.CategoryDetection, paramsFormatted string) (*model.PessimistAnalysis, error) {
	userPrompt := fmt.Sprintf(pessimistUserPromptTemplate,
		detection.Category, truncate(clauseText), joinExemplars(detection.RiskyExemplars), paramsFormatted)

	messages := []modelclient.Message{
		{Role: "system", Content: pessimistSystemPrompt},
		{Role: "user", Content: userPrompt},
	}
	schema := modelclient.Schema{Fields: []modelclient.SchemaField{
		{Name: "is_relevant", Type: "boolean", Required: true},
		{Name: "relevance_reasoning", Type: "string", Required: true},
		{Name: "risk_argument", Type: "string", Required: true},
		{Name: "key_concerns", Type: "array", Required: false},
	}}

	var out model.PessimistAnalysis
	err := a.client.CompleteStructured(ctx, messages, schema, modelclient.ModelSmart, 0.3, 3, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Analyzer) runOptimist(ctx context.Context, clauseText string, pessimist *model.PessimistAnalysis, detection model.CategoryDetection, paramsFormatted string) (*model.OptimistAnalysis, error) {
	userPrompt := fmt.Sprintf(optimistUserPromptTemplate,
		truncate(clauseText), truncate(pessimist.RiskArgument), joinExemplars(detection.SafeExemplars), paramsFormatted)

	messages := []modelclient.Message{
		{Role: "system", Content: optimistSystemPrompt},
		{Role: "user", Content: userPrompt},
	}
	schema := modelclient.Schema{Fields: []modelclient.SchemaField{
		{Name: "defense_argument", Type: "string", Required: true},
		{Name: "industry_context", Type: "string", Required: false},
		{Name: "mitigating_factors", Type: "array", Required: false},
	}}

	var out model.OptimistAnalysis
	err := a.client.CompleteStructured(ctx, messages, schema, modelclient.ModelSmart, 0.3, 3, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Analyzer) runArbiter(ctx context.Context, clauseText string, detection model.CategoryDetection, pessimist *model.PessimistAnalysis, optimist *model.OptimistAnalysis, paramsFormatted string) (*model.ArbiterVerdict, error) {
	userPrompt := fmt.Sprintf(arbiterUserPromptTemplate,
		detection.Category,
		truncate(clauseText),
		truncate(pessimist.RiskArgument),
		strings.Join(pessimist.KeyConcerns, "; "),
		truncate(optimist.DefenseArgument),
		strings.Join(optimist.MitigatingFactors, "; "),
		oneLineSummary(detection.SafeExemplars),
		oneLineSummary(detection.RiskyExemplars),
		paramsFormatted,
	)

	messages := []modelclient.Message{
		{Role: "system", Content: arbiterSystemPrompt},
		{Role: "user", Content: userPrompt},
	}
	schema := modelclient.Schema{Fields: []modelclient.SchemaField{
		{Name: "risk_score", Type: "number", Required: true},
		{Name: "risk_level", Type: "string", Required: true},
		{Name: "reasoning", Type: "string", Required: true},
		{Name: "key_factors", Type: "array", Required: false},
	}}

	var out model.ArbiterVerdict
	err := a.client.CompleteStructured(ctx, messages, schema, modelclient.ModelSmart, 0.2, 3, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
