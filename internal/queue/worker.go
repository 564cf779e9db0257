// Package queue drives asynchronous candidate scoring. Jobs are claimed
// oldest-first in fixed-size batches and processed strictly sequentially to
// keep load on the record store and similarity service predictable.
package queue

import (
	"context"
	"sync"
	"time"

	"match-engine/internal/common/config"
	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/combine"
	"match-engine/internal/models"
	"match-engine/internal/store"
)

const jobType = "candidate_scoring"

// Scorer is the unit of work a queue job triggers.
type Scorer interface {
	ScoreCandidate(ctx context.Context, candidateID string) (*combine.CandidateResult, error)
}

// Worker polls the scoring queue and runs jobs through the Scorer.
type Worker struct {
	store  store.Store
	scorer Scorer
	config config.QueueConfig
	logger logger.Logger
	obs    *observability.Observability

	mu      sync.Mutex
	running bool
}

func NewWorker(st store.Store, scorer Scorer, cfg config.QueueConfig, obs *observability.Observability, log logger.Logger) *Worker {
	return &Worker{
		store:  st,
		scorer: scorer,
		config: cfg,
		logger: log,
		obs:    obs,
	}
}

// Run polls until the context is done. Each tick processes at most one batch;
// a tick that fires while a batch is still in flight is skipped.
func (w *Worker) Run(ctx context.Context) {
	interval := time.Duration(w.config.PollInterval) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("scoring queue worker started", map[string]interface{}{
		"pollInterval": interval.String(),
		"batchSize":    w.config.BatchSize,
	})

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scoring queue worker stopped", nil)
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims and runs one batch of pending jobs. The reentrancy
// guard makes overlapping invocations a no-op, so a slow batch is never
// processed concurrently with the next tick's.
func (w *Worker) ProcessBatch(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	jobs, err := w.store.FetchPendingJobs(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("failed to fetch pending jobs", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if len(jobs) == 0 {
		return
	}

	delay := time.Duration(w.config.JobDelay) * time.Millisecond
	for i, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		w.processJob(ctx, job)
		if i < len(jobs)-1 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *models.QueueJob) {
	claimed, err := w.store.MarkJobProcessing(ctx, job.ID)
	if err != nil {
		w.logger.Error("failed to claim job", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
		return
	}
	if claimed == nil {
		// Claimed elsewhere between fetch and update.
		return
	}

	metrics.QueueJobsActive.WithLabelValues(jobType).Inc()
	defer metrics.QueueJobsActive.WithLabelValues(jobType).Dec()

	jobCtx := ctx
	var cancel context.CancelFunc
	if w.config.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, time.Duration(w.config.JobTimeout)*time.Millisecond)
		defer cancel()
	}

	start := time.Now()
	result, err := w.scorer.ScoreCandidate(jobCtx, claimed.CandidateID)
	duration := time.Since(start)

	if err != nil {
		w.failJob(ctx, claimed, err, duration)
		return
	}

	if err := w.store.CompleteJob(ctx, claimed.ID); err != nil {
		w.logger.Error("failed to mark job completed", map[string]interface{}{
			"jobId": claimed.ID,
			"error": err.Error(),
		})
		return
	}

	metrics.QueueJobsCompleted.WithLabelValues(jobType).Inc()
	metrics.QueueJobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
	w.obs.RecordJobProcessed(ctx, "completed")
	w.obs.RecordJobDuration(ctx, duration, "completed")

	w.logger.Info("scoring job completed", map[string]interface{}{
		"jobId":       claimed.ID,
		"candidateId": claimed.CandidateID,
		"attempts":    claimed.Attempts,
		"persisted":   result.Persisted,
		"durationMs":  duration.Milliseconds(),
	})
}

// failJob routes a failed job back to pending for retryable errors with
// attempts remaining, otherwise to the terminal failed state.
func (w *Worker) failJob(ctx context.Context, job *models.QueueJob, jobErr error, duration time.Duration) {
	stdErr := apperrors.Normalize(jobErr)
	terminal := !stdErr.Retryable || job.Attempts >= w.config.MaxAttempts

	message := stdErr.Error()
	if terminal && stdErr.Retryable {
		message = apperrors.NewRetryExhaustedError(job.ID, job.Attempts, stdErr.Error()).Error()
	}

	if err := w.store.FailJob(ctx, job.ID, message, terminal); err != nil {
		w.logger.Error("failed to record job failure", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
		return
	}

	metrics.QueueJobsFailed.WithLabelValues(jobType, string(stdErr.Code)).Inc()
	metrics.QueueJobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
	w.obs.RecordJobProcessed(ctx, "failed")
	w.obs.RecordJobDuration(ctx, duration, "failed")

	w.logger.Warn("scoring job failed", map[string]interface{}{
		"jobId":       job.ID,
		"candidateId": job.CandidateID,
		"attempts":    job.Attempts,
		"terminal":    terminal,
		"errorCode":   string(stdErr.Code),
	})
}
