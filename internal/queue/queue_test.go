package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// fakeRunner fails cards listed in flaky with a render error until they
// have been attempted failures[id] times
type fakeRunner struct {
	mu       sync.Mutex
	calls    int
	attempts map[string]int
	failures map[string]int
	kind     failure.Kind
}

func (f *fakeRunner) RunWithObserver(ctx context.Context, cards []cardformat.CardSpec, obs batch.Observer) batch.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	rep := batch.Report{StartedAt: time.Now()}
	for i, c := range cards {
		f.attempts[c.ID]++
		res := batch.Result{Index: i, ID: c.ID, Status: batch.StatusRendered}
		if f.attempts[c.ID] <= f.failures[c.ID] {
			res.Status = batch.StatusFailed
			res.ErrorKind = f.kind
		}
		rep.Results = append(rep.Results, res)
	}
	rep.FinishedAt = time.Now()
	rep.Finalize()
	return rep
}

func newFake(kind failure.Kind, failures map[string]int) *fakeRunner {
	return &fakeRunner{attempts: make(map[string]int), failures: failures, kind: kind}
}

func cards(ids ...string) []cardformat.CardSpec {
	out := make([]cardformat.CardSpec, len(ids))
	for i, id := range ids {
		out[i] = cardformat.CardSpec{ID: id, Variant: "standard", Output: id + ".jpg"}
	}
	return out
}

func waitFor(t *testing.T, q *Queue, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job := q.GetJob(id)
		if job != nil && (job.Status == StatusCompleted || job.Status == StatusCancelled) {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Job %s did not finish", id)
	return nil
}

func TestQueue_Completes(t *testing.T) {
	f := newFake(failure.KindRender, nil)
	q := New(f, nil, 2, nil)
	defer q.Stop()

	id := q.Enqueue(cards("a", "b"))
	job := waitFor(t, q, id)

	if job.Report == nil || job.Report.Summary.Rendered != 2 {
		t.Fatalf("Expected 2 rendered, got %+v", job.Report)
	}
	if job.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", job.Attempts)
	}
}

func TestQueue_RetriesRenderErrors(t *testing.T) {
	f := newFake(failure.KindRender, map[string]int{"b": 1, "c": 5})
	q := New(f, nil, 2, nil)
	defer q.Stop()

	id := q.Enqueue(cards("a", "b", "c"))
	job := waitFor(t, q, id)

	if job.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", job.Attempts)
	}
	s := job.Report.Summary
	if s.Rendered != 2 || s.Failed != 1 {
		t.Errorf("Expected 2 rendered and 1 failed, got %+v", s)
	}
	if job.Report.Results[2].ID != "c" || job.Report.Results[2].Status != batch.StatusFailed {
		t.Errorf("Expected c to stay failed in place, got %+v", job.Report.Results[2])
	}
	if f.attempts["a"] != 1 {
		t.Errorf("Expected a to render once, got %d", f.attempts["a"])
	}
}

func TestQueue_NoRetryForValidation(t *testing.T) {
	f := newFake(failure.KindValidation, map[string]int{"a": 1})
	q := New(f, nil, 3, nil)
	defer q.Stop()

	job := waitFor(t, q, q.Enqueue(cards("a")))

	if job.Attempts != 1 || f.calls != 1 {
		t.Errorf("Expected no retry for validation errors, got attempts=%d calls=%d", job.Attempts, f.calls)
	}
}

func TestQueue_JobsAndClear(t *testing.T) {
	f := newFake(failure.KindRender, nil)
	q := New(f, nil, 0, nil)
	defer q.Stop()

	if q.GetJob("job_missing") != nil {
		t.Error("Expected nil for unknown job")
	}

	waitFor(t, q, q.Enqueue(cards("a")))
	waitFor(t, q, q.Enqueue(cards("b")))

	if n := len(q.GetAllJobs()); n != 2 {
		t.Errorf("Expected 2 jobs, got %d", n)
	}
	q.ClearCompleted()
	if n := len(q.GetAllJobs()); n != 0 {
		t.Errorf("Expected no jobs after clearing, got %d", n)
	}
}
