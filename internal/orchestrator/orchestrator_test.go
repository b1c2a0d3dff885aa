package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legalrisk/internal/docproc"
	"legalrisk/internal/model"
)

func TestAggregateZeroRiskyClausesYieldsLowOverallRisk(t *testing.T) {
	doc := docproc.ProcessedDocument{TotalChunks: 5}
	result := aggregate(doc, nil, nil)

	assert.Equal(t, 0, result.Document.RiskyClausesFound)
	assert.Equal(t, 0.0, result.Summary.AverageRiskScore)
	assert.Equal(t, model.RiskLow, result.Summary.OverallRisk)
	assert.Empty(t, result.Summary.CategoriesFlagged)
}

func TestAggregateComputesAverageAndOverallRisk(t *testing.T) {
	doc := docproc.ProcessedDocument{TotalChunks: 3}
	clauses := []model.RiskyClause{
		{Category: "Unilateral Termination", RiskScore: 80},
		{Category: "Unlimited Liability", RiskScore: 60},
	}

	result := aggregate(doc, clauses, nil)

	assert.Equal(t, 2, result.Document.RiskyClausesFound)
	assert.Equal(t, 70.0, result.Summary.AverageRiskScore)
	assert.Equal(t, model.RiskHigh, result.Summary.OverallRisk)
	assert.ElementsMatch(t, []string{"Unilateral Termination", "Unlimited Liability"}, result.Summary.CategoriesFlagged)
}

func TestAggregateCountsCompoundRisks(t *testing.T) {
	doc := docproc.ProcessedDocument{}
	compounds := []model.CompoundRisk{{RiskType: "Termination + Unlimited Liability"}}

	result := aggregate(doc, nil, compounds)
	assert.Equal(t, 1, result.Summary.CompoundRisksFound)
}

func TestAggregateDedupsCategorySet(t *testing.T) {
	doc := docproc.ProcessedDocument{}
	clauses := []model.RiskyClause{
		{Category: "Non-Compete", RiskScore: 60},
		{Category: "Non-Compete", RiskScore: 70},
	}

	result := aggregate(doc, clauses, nil)
	assert.Equal(t, []string{"Non-Compete"}, result.Summary.CategoriesFlagged)
}
