package paramextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDaysAmountsAndFlags(t *testing.T) {
	text := "Either party may terminate this Agreement upon 30 days written notice for cause. " +
		"Damages shall not exceed $10,000 in aggregate."

	params := Extract(text)

	require.NotNil(t, params.Days)
	assert.Equal(t, 30, *params.Days)
	assert.True(t, params.HasWrittenNotice)
	assert.True(t, params.IsMutual)
	assert.True(t, params.RequiresCause)
	assert.True(t, params.HasCap)
	assert.False(t, params.HasCurePeriod)
	assert.Contains(t, params.Amounts, "$10,000")
}

func TestExtractIsPure(t *testing.T) {
	text := "Company may terminate this Agreement at any time without cause or notice."
	first := Extract(text)
	second := Extract(text)
	assert.Equal(t, first, second)
}

func TestExtractNoMatches(t *testing.T) {
	params := Extract("This is a benign confidentiality clause with no structural markers.")
	assert.Nil(t, params.Days)
	assert.Nil(t, params.Months)
	assert.Nil(t, params.Years)
	assert.False(t, params.IsMutual)
	assert.False(t, params.HasCap)
}
