package batch

import (
	"sort"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/failure"
)

// Card statuses
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// Result is the outcome of one card
type Result struct {
	Index     int           `json:"index"`
	ID        string        `json:"id"`
	Variant   string        `json:"variant"`
	Output    string        `json:"output"`
	Group     string        `json:"group,omitempty"`
	Status    string        `json:"status"`
	ErrorKind failure.Kind  `json:"error_kind,omitempty"`
	ErrorMsg  string        `json:"error_msg,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Summary counts results by status and failure kind
type Summary struct {
	Total    int                  `json:"total"`
	Rendered int                  `json:"rendered"`
	Failed   int                  `json:"failed"`
	Skipped  int                  `json:"skipped"`
	ByKind   map[failure.Kind]int `json:"by_kind"`
}

// Report is the outcome of a batch
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
	Results    []Result  `json:"results"`
}

// Finalize orders results by input position and computes the summary
func (r *Report) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Index < r.Results[j].Index
	})

	s := Summary{Total: len(r.Results), ByKind: make(map[failure.Kind]int)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusRendered:
			s.Rendered++
		case StatusFailed:
			s.Failed++
			s.ByKind[res.ErrorKind]++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}

// Observer receives batch progress
type Observer interface {
	OnStart(total int)
	OnCardDone(done, total int, res Result)
}

// Observers fans progress out to several observers
type Observers []Observer

func (o Observers) OnStart(total int) {
	for _, obs := range o {
		if obs != nil {
			obs.OnStart(total)
		}
	}
}

func (o Observers) OnCardDone(done, total int, res Result) {
	for _, obs := range o {
		if obs != nil {
			obs.OnCardDone(done, total, res)
		}
	}
}
