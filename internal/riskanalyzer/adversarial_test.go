package riskanalyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinExemplarsEmptyReturnsPlaceholder(t *testing.T) {
	assert.Equal(t, "(none available)", joinExemplars(nil))
}

func TestJoinExemplarsNumbersEachLine(t *testing.T) {
	out := joinExemplars([]string{"first clause", "second clause"})
	assert.True(t, strings.HasPrefix(out, "1. first clause"))
	assert.Contains(t, out, "2. second clause")
}

func TestOneLineSummaryEmptyReturnsNone(t *testing.T) {
	assert.Equal(t, "none", oneLineSummary(nil))
}

func TestOneLineSummaryJoinsAndTruncates(t *testing.T) {
	out := oneLineSummary([]string{"alpha", "beta"})
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
}

func TestTruncateRespectsMaxPromptTokens(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	out := truncate(long)
	assert.LessOrEqual(t, len(out), maxPromptTokens*4+len("..."))
}
