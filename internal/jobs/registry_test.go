package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalrisk/internal/model"
)

func TestCreateStartsProcessingAtProgress10(t *testing.T) {
	r := New(nil, nil)
	id := r.Create("contract.pdf", "/tmp/contract.pdf")

	status, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, model.JobProcessing, status.Status)
	assert.Equal(t, 10, status.Progress)
	assert.Equal(t, "contract.pdf", status.Filename)
}

func TestUpdateProgressIsMonotonic(t *testing.T) {
	r := New(nil, nil)
	id := r.Create("contract.pdf", "/tmp/contract.pdf")
	ctx := context.Background()

	require.NoError(t, r.UpdateProgress(ctx, id, 50))
	require.NoError(t, r.UpdateProgress(ctx, id, 30)) // should not regress

	status, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, 50, status.Progress)
}

func TestUpdateProgressUnknownIDReturnsNotFound(t *testing.T) {
	r := New(nil, nil)
	err := r.UpdateProgress(context.Background(), "does-not-exist", 50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultWhileProcessingReturnsStillProcessing(t *testing.T) {
	r := New(nil, nil)
	id := r.Create("contract.pdf", "/tmp/contract.pdf")

	_, err := r.Result(id)
	assert.ErrorIs(t, err, ErrStillProcessing)
}

func TestCompleteTransitionsToTerminalState(t *testing.T) {
	r := New(nil, nil)
	id := r.Create("contract.pdf", "/tmp/contract.pdf")
	ctx := context.Background()

	var want model.AnalysisResult
	want.Summary.AverageRiskScore = 42
	require.NoError(t, r.Complete(ctx, id, want))

	status, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)

	got, err := r.Result(id)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFailTransitionsToTerminalStateWithError(t *testing.T) {
	r := New(nil, nil)
	id := r.Create("contract.pdf", "/tmp/contract.pdf")
	ctx := context.Background()

	require.NoError(t, r.Fail(ctx, id, assert.AnError))

	status, err := r.Status(id)
	require.NoError(t, err)
	assert.Equal(t, model.JobFailed, status.Status)
	assert.Equal(t, assert.AnError.Error(), status.Error)

	_, err = r.Result(id)
	assert.EqualError(t, err, assert.AnError.Error())
}

func TestStatusUnknownIDReturnsNotFound(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Status("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
