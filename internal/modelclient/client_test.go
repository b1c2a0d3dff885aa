package modelclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrisk/internal/config"
	"legalrisk/internal/tracing"
)

func TestCheckBudgetRejectsOverBudgetRequest(t *testing.T) {
	c := New(config.ModelClientConfig{AffordableTokens: 10}, nil, nil)
	err := c.checkBudget([]Message{{Role: "user", Content: "a fairly long message that costs more than ten tokens"}}, 50)

	var credErr *InsufficientCreditsError
	require.ErrorAs(t, err, &credErr)
}

func TestCheckBudgetAllowsWithinBudgetRequest(t *testing.T) {
	c := New(config.ModelClientConfig{AffordableTokens: 10000}, nil, nil)
	err := c.checkBudget([]Message{{Role: "user", Content: "short"}}, 50)
	assert.NoError(t, err)
}

func TestCompleteWithZeroAffordableTokensNeverCallsNetwork(t *testing.T) {
	cfg := config.ModelClientConfig{
		AffordableTokens: 0,
		Primary: config.ProviderConfig{
			Name:    "groq",
			BaseURL: "http://127.0.0.1:1", // would refuse connections if dialed
			Models:  map[string][]string{"fast": {"some-model"}},
		},
	}
	c := New(cfg, tracing.NoOp, nil)

	_, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, ModelFast, 0.2, 10)

	var credErr *InsufficientCreditsError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, int64(0), c.Stats().TotalCalls)
}

func TestNewDefaultsToNoOpTracerWhenNil(t *testing.T) {
	c := New(config.ModelClientConfig{AffordableTokens: 10000}, nil, nil)
	assert.NotNil(t, c.tracer)
}
