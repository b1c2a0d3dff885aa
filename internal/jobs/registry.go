// Package jobs implements the Job Registry: an in-memory map from analysis
// id to lifecycle state, with progress mirrored to Redis for cross-process
// visibility. Grounded on legal-gateway/main.go + worker.go's job-status
// update pattern and original_source/.../api/routes/analysis.py's
// status/progress/terminal-state lifecycle.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"legalrisk/internal/metrics"
	"legalrisk/internal/model"
)

// ErrNotFound is returned when an analysis id is unknown to the registry.
var ErrNotFound = errors.New("job not found")

// ErrStillProcessing is returned by Result when the job has not reached a
// terminal state.
var ErrStillProcessing = errors.New("job still processing")

// Registry owns all JobRecords for one process.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*model.JobRecord
	redis *redis.Client
	logger *zap.Logger
}

// New builds a Job Registry. redisClient may be nil, in which case progress
// is visible only within this process (spec.md §9: "in-memory registry is
// acceptable for single-process deployment").
func New(redisClient *redis.Client, logger *zap.Logger) *Registry {
	return &Registry{
		jobs:  make(map[string]*model.JobRecord),
		redis: redisClient,
		logger: logger,
	}
}

// Create assigns a new analysis id, stores a JobRecord in "processing" at
// progress 10, and returns the id.
func (r *Registry) Create(filename, filePath string) string {
	id := uuid.NewString()
	record := &model.JobRecord{
		AnalysisID: id,
		Status:     model.JobProcessing,
		Progress:   10,
		Filename:   filename,
		FilePath:   filePath,
	}

	r.mu.Lock()
	r.jobs[id] = record
	r.mu.Unlock()

	metrics.JobsInFlight.Inc()
	r.mirror(context.Background(), record)
	return id
}

// UpdateProgress is called by the owning worker; progress is monotonic.
func (r *Registry) UpdateProgress(ctx context.Context, id string, progress int) error {
	r.mu.Lock()
	record, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if progress > record.Progress {
		record.Progress = progress
	}
	snapshot := *record
	r.mu.Unlock()

	r.mirror(ctx, &snapshot)
	return nil
}

// Complete transitions a job to its terminal "completed" state.
func (r *Registry) Complete(ctx context.Context, id string, result model.AnalysisResult) error {
	r.mu.Lock()
	record, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	record.Status = model.JobCompleted
	record.Progress = 100
	record.Data = &result
	snapshot := *record
	r.mu.Unlock()

	metrics.JobsInFlight.Dec()
	r.mirror(ctx, &snapshot)
	return nil
}

// Fail transitions a job to its terminal "failed" state.
func (r *Registry) Fail(ctx context.Context, id string, cause error) error {
	r.mu.Lock()
	record, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	record.Status = model.JobFailed
	record.Error = cause.Error()
	snapshot := *record
	r.mu.Unlock()

	metrics.JobsInFlight.Dec()
	r.mirror(ctx, &snapshot)
	return nil
}

// Status returns the job's current record.
func (r *Registry) Status(id string) (model.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.jobs[id]
	if !ok {
		return model.JobRecord{}, ErrNotFound
	}
	return *record, nil
}

// Result returns the completed AnalysisResult, ErrStillProcessing while
// running, or the stored failure error.
func (r *Registry) Result(id string) (model.AnalysisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.jobs[id]
	if !ok {
		return model.AnalysisResult{}, ErrNotFound
	}
	switch record.Status {
	case model.JobProcessing:
		return model.AnalysisResult{}, ErrStillProcessing
	case model.JobFailed:
		return model.AnalysisResult{}, errors.New(record.Error)
	default:
		return *record.Data, nil
	}
}

// mirror publishes the job record to Redis for cross-process status reads;
// best-effort only, logged on failure, never fails the caller.
func (r *Registry) mirror(ctx context.Context, record *model.JobRecord) {
	if r.redis == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, "legalrisk:job:"+record.AnalysisID, payload, 0).Err(); err != nil {
		if r.logger != nil {
			r.logger.Warn("failed to mirror job status to redis", zap.String("analysis_id", record.AnalysisID), zap.Error(err))
		}
	}
	if err := r.redis.Publish(ctx, "legalrisk:job:progress", payload).Err(); err != nil {
		if r.logger != nil {
			r.logger.Warn("failed to publish job progress to redis", zap.String("analysis_id", record.AnalysisID), zap.Error(err))
		}
	}
}
