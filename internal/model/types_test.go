package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelFromScoreMapping(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, RiskLow}, {25, RiskLow},
		{26, RiskMedium}, {50, RiskMedium},
		{51, RiskHigh}, {75, RiskHigh},
		{76, RiskCritical}, {100, RiskCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RiskLevelFromScore(c.score), "score %d", c.score)
	}
}

func TestOverallRiskFromAverageMapping(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{0, RiskLow}, {39.9, RiskLow},
		{40, RiskMedium}, {59.9, RiskMedium},
		{60, RiskHigh}, {74.9, RiskHigh},
		{75, RiskCritical}, {100, RiskCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, OverallRiskFromAverage(c.avg), "avg %.1f", c.avg)
	}
}
