// Package queue runs render batches in the background and retries cards
// that failed in the rasterizer
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// Job statuses
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Runner renders a batch of cards
type Runner interface {
	RunWithObserver(ctx context.Context, cards []cardformat.CardSpec, obs batch.Observer) batch.Report
}

// Job is a queued batch
type Job struct {
	ID        string        `json:"id"`
	Cards     int           `json:"cards"`
	Status    string        `json:"status"`
	Attempts  int           `json:"attempts"`
	Report    *batch.Report `json:"report,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	specs []cardformat.CardSpec
}

// Queue processes jobs one at a time
type Queue struct {
	jobs       []*Job
	mu         sync.Mutex
	runner     Runner
	observer   batch.Observer
	logger     *slog.Logger
	maxRetries int
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a queue and starts its worker. Cards that fail with a render
// error are retried up to maxRetries times.
func New(runner Runner, observer batch.Observer, maxRetries int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		jobs:       make([]*Job, 0),
		runner:     runner,
		observer:   observer,
		logger:     logger,
		maxRetries: maxRetries,
		interval:   100 * time.Millisecond,
		ctx:        ctx,
		cancel:     cancel,
	}

	q.wg.Add(1)
	go q.worker()

	return q
}

// Enqueue adds a batch and returns its job ID
func (q *Queue) Enqueue(cards []cardformat.CardSpec) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	job := &Job{
		ID:        fmt.Sprintf("job_%d", time.Now().UnixNano()),
		Cards:     len(cards),
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		specs:     cards,
	}
	q.jobs = append(q.jobs, job)
	q.logger.Info("job queued", "job", job.ID, "cards", job.Cards)

	return job.ID
}

func (q *Queue) worker() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processNextJob()
		}
	}
}

func (q *Queue) processNextJob() {
	q.mu.Lock()

	var job *Job
	for _, j := range q.jobs {
		if j.Status == StatusQueued {
			job = j
			job.Status = StatusRunning
			break
		}
	}

	q.mu.Unlock()

	if job == nil {
		return
	}

	rep, attempts := q.runJob(job)

	q.mu.Lock()
	defer q.mu.Unlock()

	job.Attempts = attempts
	job.Report = &rep
	job.specs = nil
	if q.ctx.Err() != nil {
		job.Status = StatusCancelled
		q.logger.Warn("job cancelled", "job", job.ID)
		return
	}
	job.Status = StatusCompleted
	q.logger.Info("job completed",
		"job", job.ID,
		"rendered", rep.Summary.Rendered,
		"failed", rep.Summary.Failed,
		"attempts", attempts)
}

// runJob renders the batch, then re-renders cards that failed in the
// rasterizer until they succeed or retries run out
func (q *Queue) runJob(job *Job) (batch.Report, int) {
	rep := q.runner.RunWithObserver(q.ctx, job.specs, q.observer)
	attempts := 1

	for attempts <= q.maxRetries && q.ctx.Err() == nil {
		var retry []int
		for _, res := range rep.Results {
			if res.Status == batch.StatusFailed && res.ErrorKind == failure.KindRender {
				retry = append(retry, res.Index)
			}
		}
		if len(retry) == 0 {
			break
		}

		q.logger.Warn("retrying failed cards",
			"job", job.ID,
			"cards", len(retry),
			"attempt", attempts+1,
			"max", q.maxRetries+1)

		subset := make([]cardformat.CardSpec, len(retry))
		for i, idx := range retry {
			subset[i] = job.specs[idx]
		}
		again := q.runner.RunWithObserver(q.ctx, subset, nil)
		attempts++

		for _, res := range again.Results {
			res.Index = retry[res.Index]
			rep.Results[res.Index] = res
		}
		rep.FinishedAt = again.FinishedAt
		rep.Finalize()
	}

	return rep, attempts
}

// GetJob returns a copy of a job by ID
func (q *Queue) GetJob(jobID string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == jobID {
			jobCopy := *job
			return &jobCopy
		}
	}

	return nil
}

// GetAllJobs returns copies of every job
func (q *Queue) GetAllJobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, len(q.jobs))
	for i, job := range q.jobs {
		jobCopy := *job
		jobs[i] = &jobCopy
	}

	return jobs
}

// ClearCompleted removes finished jobs
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()

	filtered := make([]*Job, 0)
	for _, job := range q.jobs {
		if job.Status != StatusCompleted && job.Status != StatusCancelled {
			filtered = append(filtered, job)
		}
	}

	q.jobs = filtered
}

// Stop cancels the running job and stops the worker
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()
}
