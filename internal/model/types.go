// Package model defines the data records that flow through the contract risk
// pipeline, from raw document bytes to the final analysis result.
package model

import "time"

// DocumentMetadata is produced once by the document processor and is
// immutable for the lifetime of an analysis.
type DocumentMetadata struct {
	Filename         string    `json:"filename"`
	ByteSize         int64     `json:"byte_size"`
	PageCount        int       `json:"page_count"`
	ExtractedAt      time.Time `json:"extracted_at"`
	ContractType     string    `json:"contract_type,omitempty"`
	Parties          []string  `json:"parties,omitempty"`
	EffectiveDate    string    `json:"effective_date,omitempty"`
	MentionedAmounts []string  `json:"mentioned_amounts,omitempty"`
}

// Definition is a term defined somewhere in the contract body.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Section    string `json:"section,omitempty"`
}

// SemanticChunk is the unit of analysis: a semantically coherent span of
// contract text with a stable, source-ordered id.
type SemanticChunk struct {
	ID         string `json:"chunk_id"`
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	WordCount  int    `json:"word_count"`
	ContextPre string `json:"context_pre,omitempty"`
	ContextPos string `json:"context_post,omitempty"`
}

// Zone is the category detector's triage verdict.
type Zone string

const (
	ZoneNoise     Zone = "noise"
	ZoneCourtroom Zone = "courtroom"
	ZoneSafe      Zone = "safe"
)

// CategoryDetection is the S2 output for one chunk.
type CategoryDetection struct {
	Category              string   `json:"category"`
	Confidence            float64  `json:"confidence"`
	SimilarityToPrototype float64  `json:"similarity_to_prototype"`
	Zone                  Zone     `json:"zone"`
	NeedsAgentReview      bool     `json:"needs_agent_review"`
	SafeExemplars         []string `json:"safe_exemplars,omitempty"`
	RiskyExemplars        []string `json:"risky_exemplars,omitempty"`
	DecisionReasoning     string   `json:"decision_reasoning"`
}

// ExtractedParameters is the fixed structural feature record produced by the
// parameter extractor.
type ExtractedParameters struct {
	Days             *int            `json:"days,omitempty"`
	Months           *int            `json:"months,omitempty"`
	Years            *int            `json:"years,omitempty"`
	Amounts          []string        `json:"amounts"`
	HasWrittenNotice bool            `json:"has_written_notice"`
	IsMutual         bool            `json:"is_mutual"`
	RequiresCause    bool            `json:"requires_cause"`
	HasCap           bool            `json:"has_cap"`
	HasCurePeriod    bool            `json:"has_cure_period"`
	RawTextMarkers   map[string]bool `json:"raw_text_markers"`
}

// PessimistAnalysis is Agent 1's structured output.
type PessimistAnalysis struct {
	IsRelevant         bool     `json:"is_relevant"`
	RelevanceReasoning string   `json:"relevance_reasoning"`
	RiskArgument       string   `json:"risk_argument"`
	KeyConcerns        []string `json:"key_concerns"`
}

// OptimistAnalysis is Agent 2's structured output.
type OptimistAnalysis struct {
	DefenseArgument   string   `json:"defense_argument"`
	IndustryContext   string   `json:"industry_context"`
	MitigatingFactors []string `json:"mitigating_factors"`
}

// ArbiterVerdict is Agent 3's structured output.
type ArbiterVerdict struct {
	RiskScore  int      `json:"risk_score"`
	RiskLevel  string   `json:"risk_level"`
	Reasoning  string   `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
}

// Risk levels, canonically derived from a numeric score — never trusted
// verbatim from a model response.
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// RiskLevelFromScore applies the canonical {0-25,26-50,51-75,76-100} mapping.
func RiskLevelFromScore(score int) string {
	switch {
	case score <= 25:
		return RiskLow
	case score <= 50:
		return RiskMedium
	case score <= 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskAnalysis binds one chunk's S2 detection and S3 verdict.
type RiskAnalysis struct {
	ChunkID         string               `json:"chunk_id"`
	Category        string               `json:"category"`
	IsRelevant      bool                 `json:"is_relevant"`
	Pessimist       *PessimistAnalysis   `json:"pessimist,omitempty"`
	Optimist        *OptimistAnalysis    `json:"optimist,omitempty"`
	Arbiter         *ArbiterVerdict      `json:"arbiter,omitempty"`
	Parameters      ExtractedParameters  `json:"parameters"`
	PrecedentTexts  []string             `json:"precedent_texts,omitempty"`
	FinalRiskScore  int                  `json:"final_risk_score"`
	FinalRiskLevel  string               `json:"final_risk_level"`
}

// GeneratedFix is the S4 output for one gated risky clause.
type GeneratedFix struct {
	SuggestedReplacement string   `json:"suggested_replacement"`
	EditComment          string   `json:"edit_comment"`
	KeyChanges           []string `json:"key_changes"`
	PrecedentCitations   []string `json:"precedent_citations"`
}

// CompoundRisk is one systemic vulnerability found by S5.
type CompoundRisk struct {
	RiskType          string   `json:"risk_type"`
	Severity          string   `json:"severity"`
	Description       string   `json:"description"`
	AffectedClauseIDs []string `json:"affected_clause_ids"`
	MitigationAdvice  string   `json:"mitigation_advice"`
	CombinedRiskScore int      `json:"combined_risk_score"`
}

// RiskyClause is the report-facing projection of one flagged chunk.
type RiskyClause struct {
	ChunkID       string   `json:"chunk_id"`
	Category      string   `json:"category"`
	OriginalText  string   `json:"original_text"`
	RiskScore     int      `json:"risk_score"`
	RiskLevel     string   `json:"risk_level"`
	RiskArgument  string   `json:"risk_argument"`
	DefenseArgument string `json:"defense_argument"`
	ArbiterReasoning string `json:"arbiter_reasoning"`
	SuggestedFix  string   `json:"suggested_fix"`
	FixComment    string   `json:"fix_comment"`
	KeyChanges    []string `json:"key_changes"`
}

// AnalysisResult is the top-level wire contract produced by the orchestrator.
type AnalysisResult struct {
	Document struct {
		Filename          string `json:"filename"`
		TotalChunks       int    `json:"total_chunks"`
		RiskyClausesFound int    `json:"risky_clauses_found"`
	} `json:"document"`
	Summary struct {
		OverallRisk        string   `json:"overall_risk"`
		AverageRiskScore   float64  `json:"average_risk_score"`
		CompoundRisksFound int      `json:"compound_risks_found"`
		CategoriesFlagged  []string `json:"categories_flagged"`
	} `json:"summary"`
	RiskyClauses  []RiskyClause  `json:"risky_clauses"`
	CompoundRisks []CompoundRisk `json:"compound_risks"`
}

// OverallRiskFromAverage applies the canonical {>=75,>=60,>=40,else} mapping
// used for the top-level summary (distinct from RiskLevelFromScore, which
// buckets a single clause's score).
func OverallRiskFromAverage(avg float64) string {
	switch {
	case avg >= 75:
		return RiskCritical
	case avg >= 60:
		return RiskHigh
	case avg >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// JobStatus is the Job Registry's terminal/non-terminal state.
type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobRecord tracks one background analysis from upload to completion.
type JobRecord struct {
	AnalysisID string          `json:"analysis_id"`
	Status     JobStatus       `json:"status"`
	Progress   int             `json:"progress"`
	Filename   string          `json:"filename"`
	FilePath   string          `json:"file_path"`
	Data       *AnalysisResult `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}
