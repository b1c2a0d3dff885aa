package modelclient

import "errors"

// TransientModelError wraps a recoverable failure (timeout, 5xx, 429, empty
// choices) that the caller should retry or fall back on.
type TransientModelError struct {
	Model       string
	Err         error
	RateLimited bool
}

func (e *TransientModelError) Error() string {
	return "transient model error (" + e.Model + "): " + e.Err.Error()
}

func (e *TransientModelError) Unwrap() error { return e.Err }

// InsufficientCreditsError is unrecoverable: the caller must fail the job
// immediately and stop issuing further model calls.
type InsufficientCreditsError struct {
	Reason string
}

func (e *InsufficientCreditsError) Error() string {
	return "insufficient credits: " + e.Reason
}

// StructuredParseError is raised after exhausting structured-output retries.
type StructuredParseError struct {
	RawResponse string
	Err         error
}

func (e *StructuredParseError) Error() string {
	return "structured output parse failed: " + e.Err.Error()
}

func (e *StructuredParseError) Unwrap() error { return e.Err }

// ErrAllModelsFailed is returned when both providers' model lists are
// exhausted without a successful completion.
var ErrAllModelsFailed = errors.New("all models failed across primary and fallback providers")
