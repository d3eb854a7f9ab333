// Package batch renders many cards concurrently and reports per-card
// outcomes without letting one failure abort the rest.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thereceipt/titlecard-engine/internal/card"
	"github.com/thereceipt/titlecard-engine/internal/failure"
	applog "github.com/thereceipt/titlecard-engine/internal/logger"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/internal/rasterizer"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// Options configures a Runner
type Options struct {
	Workers    int
	ScratchDir string
	// Seed drives placement randomness; card i uses Seed+i
	Seed     int64
	Logger   *slog.Logger
	Observer Observer
}

// Runner renders cards through a registry and a rasterizer
type Runner struct {
	registry *card.Registry
	raster   rasterizer.Rasterizer
	metrics  *metrics.Service
	opts     Options
	logger   *slog.Logger
}

// New creates a Runner
func New(reg *card.Registry, raster rasterizer.Rasterizer, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		registry: reg,
		raster:   raster,
		metrics:  metrics.NewService(raster, logger),
		opts:     opts,
		logger:   logger,
	}
}

// Registry returns the variant registry
func (r *Runner) Registry() *card.Registry {
	return r.registry
}

// Run renders every card. Cards not started before ctx is cancelled are
// reported as skipped.
func (r *Runner) Run(ctx context.Context, cards []cardformat.CardSpec) Report {
	return r.RunWithObserver(ctx, cards, r.opts.Observer)
}

// RunWithObserver is Run with a per-call observer
func (r *Runner) RunWithObserver(ctx context.Context, cards []cardformat.CardSpec, obs Observer) Report {
	rep := Report{
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(cards)),
	}
	if obs != nil {
		obs.OnStart(len(cards))
	}

	type job struct {
		index int
		spec  cardformat.CardSpec
	}

	jobs := make(chan job)
	results := make(chan Result, len(cards))

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- r.renderOne(ctx, j.index, j.spec)
			}
		}()
	}

	go func() {
		for i, spec := range cards {
			if ctx.Err() != nil {
				results <- skipped(i, spec)
				continue
			}
			select {
			case jobs <- job{index: i, spec: spec}:
			case <-ctx.Done():
				results <- skipped(i, spec)
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		rep.Results = append(rep.Results, res)
		if obs != nil {
			obs.OnCardDone(done, len(cards), res)
		}
	}

	rep.FinishedAt = time.Now()
	rep.Finalize()
	r.logger.Info("batch finished",
		"total", rep.Summary.Total,
		"rendered", rep.Summary.Rendered,
		"failed", rep.Summary.Failed,
		"skipped", rep.Summary.Skipped,
		"duration", rep.FinishedAt.Sub(rep.StartedAt))
	return rep
}

// RenderOne renders a single card
func (r *Runner) RenderOne(ctx context.Context, spec cardformat.CardSpec) Result {
	return r.renderOne(ctx, 0, spec)
}

// Build produces a card's program without rendering it. The returned
// release function deletes any intermediates the program references.
func (r *Runner) Build(ctx context.Context, spec cardformat.CardSpec) (*program.Program, func() error, error) {
	scratch := program.NewScratch(r.opts.ScratchDir)
	prog, err := r.build(ctx, 0, spec, scratch, r.logger)
	if err != nil {
		_ = scratch.Release()
		return nil, nil, err
	}
	return prog, scratch.Release, nil
}

func (r *Runner) build(ctx context.Context, index int, spec cardformat.CardSpec, scratch *program.Scratch, logger *slog.Logger) (*program.Program, error) {
	prog, _, err := r.buildWith(ctx, index, spec, scratch, logger)
	return prog, err
}

// buildWith also returns the card's archive group
func (r *Runner) buildWith(ctx context.Context, index int, spec cardformat.CardSpec, scratch *program.Scratch, logger *slog.Logger) (*program.Program, string, error) {
	if err := cardformat.Validate(&spec); err != nil {
		return nil, "", failure.Wrap(failure.KindValidation, err)
	}

	font := cardformat.FontFromSpec(spec)
	if err := cardformat.ValidateFont(&font); err != nil {
		return nil, "", failure.Wrap(failure.KindValidation, err)
	}

	rd, err := r.registry.Get(spec.Variant)
	if err != nil {
		return nil, "", err
	}
	group := card.ArchiveGroup(rd, font, spec.Extras, false, rd.Metadata().EpisodeTextFormat)

	env := &card.Env{
		Metrics: r.metrics,
		Scratch: scratch,
		Rand:    rand.New(rand.NewSource(r.opts.Seed + int64(index))),
		Logger:  logger,
	}
	prog, err := rd.Build(ctx, env, spec, font)
	return prog, group, err
}

func (r *Runner) renderOne(ctx context.Context, index int, spec cardformat.CardSpec) (res Result) {
	started := time.Now()
	res = Result{
		Index:   index,
		ID:      spec.ID,
		Variant: spec.Variant,
		Output:  spec.Output,
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	defer func() { res.Duration = time.Since(started) }()

	if ctx.Err() != nil {
		res.Status = StatusSkipped
		return res
	}

	logger := applog.ForCard(r.logger, res.ID, spec.Variant)

	scratch := program.NewScratch(r.opts.ScratchDir)
	defer func() {
		if err := scratch.Release(); err != nil {
			logger.Warn("failed to remove intermediates", "error", err)
		}
	}()

	fail := func(err error, fallback failure.Kind) Result {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			res.Status = StatusSkipped
			logger.Info("card cancelled")
			return res
		}
		err = failure.WithCard(err, res.ID, fallback)
		res.Status = StatusFailed
		res.ErrorKind = failure.KindOf(err)
		res.ErrorMsg = err.Error()
		logger.Error("card failed", "kind", res.ErrorKind, "error", err)
		return res
	}

	prog, group, err := r.buildWith(ctx, index, spec, scratch, logger)
	if err != nil {
		return fail(err, failure.KindRender)
	}
	res.Group = group

	if err := r.raster.Render(ctx, prog); err != nil {
		return fail(failure.Wrap(failure.KindRender, err), failure.KindRender)
	}

	res.Status = StatusRendered
	logger.Debug("card rendered", "output", res.Output, "duration", time.Since(started))
	return res
}

func skipped(index int, spec cardformat.CardSpec) Result {
	return Result{
		Index:   index,
		ID:      spec.ID,
		Variant: spec.Variant,
		Output:  spec.Output,
		Status:  StatusSkipped,
	}
}
