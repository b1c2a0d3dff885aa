// Package orchestrator implements analyze_contract: the glue that runs S1
// through S5 for one document and aggregates the AnalysisResult. Grounded
// on original_source/.../services/analyzer.py.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"legalrisk/internal/categorydetector"
	"legalrisk/internal/compound"
	"legalrisk/internal/docproc"
	"legalrisk/internal/fixgen"
	"legalrisk/internal/jobs"
	"legalrisk/internal/metrics"
	"legalrisk/internal/model"
	"legalrisk/internal/riskanalyzer"
)

// minGateScore is the score-filtering threshold from spec.md §4.3: chunks
// below this are dropped from the report even when relevant.
const minGateScore = 50

// Orchestrator ties together the five pipeline stages and the Job Registry.
type Orchestrator struct {
	docProcessor *docproc.Processor
	detector     *categorydetector.Detector
	analyzer     *riskanalyzer.Analyzer
	fixer        *fixgen.Generator
	compoundDet  *compound.Detector
	registry     *jobs.Registry
	logger       *zap.Logger
}

// New wires the orchestrator to its stage implementations and job registry.
func New(
	docProcessor *docproc.Processor,
	detector *categorydetector.Detector,
	analyzer *riskanalyzer.Analyzer,
	fixer *fixgen.Generator,
	compoundDet *compound.Detector,
	registry *jobs.Registry,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		docProcessor: docProcessor,
		detector:     detector,
		analyzer:     analyzer,
		fixer:        fixer,
		compoundDet:  compoundDet,
		registry:     registry,
		logger:       logger,
	}
}

// Submit assigns an analysis id, records the job as processing, and starts
// the analysis on its own goroutine before returning the id.
func (o *Orchestrator) Submit(filename, filePath string) string {
	id := o.registry.Create(filename, filePath)
	go o.runInBackground(id, filePath)
	return id
}

func (o *Orchestrator) runInBackground(id, filePath string) {
	ctx := context.Background()
	result, err := o.AnalyzeContract(ctx, filePath)
	if err != nil {
		if o.logger != nil {
			o.logger.Error("analysis failed", zap.String("analysis_id", id), zap.Error(err))
		}
		_ = o.registry.Fail(ctx, id, err)
		return
	}
	_ = o.registry.Complete(ctx, id, result)
}

// AnalyzeContract runs S1-S5 synchronously for the document at path.
func (o *Orchestrator) AnalyzeContract(ctx context.Context, path string) (model.AnalysisResult, error) {
	s1Start := time.Now()
	doc, err := o.docProcessor.Process(ctx, path)
	metrics.StageLatencySeconds.WithLabelValues("document_processing").Observe(time.Since(s1Start).Seconds())
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("orchestrator S1: %w", err)
	}

	var flaggedAnalyses []model.RiskAnalysis
	var riskyClauses []model.RiskyClause
	chunkByID := make(map[string]model.SemanticChunk, len(doc.Chunks))
	for _, c := range doc.Chunks {
		chunkByID[c.ID] = c
	}

	for _, chunk := range doc.Chunks {
		detection, err := o.detector.Detect(ctx, chunk)
		if err != nil {
			if o.logger != nil {
				o.logger.Warn("S2 detection failed, treating chunk as noise", zap.String("chunk", chunk.ID), zap.Error(err))
			}
			continue
		}
		if !detection.NeedsAgentReview {
			continue
		}

		analysis := o.analyzer.Analyze(ctx, chunk, detection)
		if !analysis.IsRelevant || analysis.FinalRiskScore < minGateScore {
			continue
		}
		flaggedAnalyses = append(flaggedAnalyses, analysis)

		fix, err := o.fixer.Generate(ctx, chunk.Text, detection.Category, analysis)
		if err != nil {
			if o.logger != nil {
				o.logger.Warn("S4 fix generation failed", zap.String("chunk", chunk.ID), zap.Error(err))
			}
		}

		clause := model.RiskyClause{
			ChunkID:      analysis.ChunkID,
			Category:     analysis.Category,
			OriginalText: chunk.Text,
			RiskScore:    analysis.FinalRiskScore,
			RiskLevel:    analysis.FinalRiskLevel,
			SuggestedFix: fix.SuggestedReplacement,
			FixComment:   fix.EditComment,
			KeyChanges:   fix.KeyChanges,
		}
		if analysis.Pessimist != nil {
			clause.RiskArgument = analysis.Pessimist.RiskArgument
		}
		if analysis.Optimist != nil {
			clause.DefenseArgument = analysis.Optimist.DefenseArgument
		}
		if analysis.Arbiter != nil {
			clause.ArbiterReasoning = analysis.Arbiter.Reasoning
		}
		riskyClauses = append(riskyClauses, clause)
		metrics.RiskyClausesFlagged.Inc()
	}

	s5Start := time.Now()
	compoundRisks, err := o.compoundDet.Detect(ctx, flaggedAnalyses, doc.FullText)
	metrics.StageLatencySeconds.WithLabelValues("compound_detection").Observe(time.Since(s5Start).Seconds())
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("S5 compound detection failed, continuing with empty result", zap.Error(err))
		}
		compoundRisks = nil
	}

	return aggregate(doc, riskyClauses, compoundRisks), nil
}

func aggregate(doc docproc.ProcessedDocument, riskyClauses []model.RiskyClause, compoundRisks []model.CompoundRisk) model.AnalysisResult {
	var result model.AnalysisResult

	result.Document.Filename = doc.Metadata.Filename
	result.Document.TotalChunks = doc.TotalChunks
	result.Document.RiskyClausesFound = len(riskyClauses)

	var sum int
	categorySet := make(map[string]bool)
	for _, c := range riskyClauses {
		sum += c.RiskScore
		categorySet[c.Category] = true
	}
	avg := 0.0
	if len(riskyClauses) > 0 {
		avg = float64(sum) / float64(len(riskyClauses))
	}

	result.Summary.AverageRiskScore = avg
	result.Summary.OverallRisk = model.OverallRiskFromAverage(avg)
	result.Summary.CompoundRisksFound = len(compoundRisks)
	for category := range categorySet {
		result.Summary.CategoriesFlagged = append(result.Summary.CategoriesFlagged, category)
	}

	result.RiskyClauses = riskyClauses
	result.CompoundRisks = compoundRisks
	return result
}
