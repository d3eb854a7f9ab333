// Package metrics answers text measurement queries for card layout.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// Aggregation combines per-line dimensions into one box
type Aggregation int

const (
	// Stacked lines sit above each other: max width, summed height
	Stacked Aggregation = iota
	// Concatenated lines sit side by side: summed width, max height
	Concatenated
)

func (a Aggregation) String() string {
	if a == Concatenated {
		return "concatenated"
	}
	return "stacked"
}

// TextMetrics is the measured size of one or more annotations
type TextMetrics struct {
	Width  float64              `json:"width"`
	Height float64              `json:"height"`
	Lines  []program.Dimensions `json:"lines"`
}

// Measurer is the measurement half of the rasterizer contract
type Measurer interface {
	Measure(ctx context.Context, ops []program.AnnotateText) ([]program.Dimensions, error)
}

// Service measures text with one rasterizer round trip per query
type Service struct {
	measurer Measurer
	logger   *slog.Logger
}

// NewService creates a metrics service
func NewService(m Measurer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{measurer: m, logger: logger}
}

// Measure reports the aggregated size of ops
func (s *Service) Measure(ctx context.Context, ops []program.AnnotateText, agg Aggregation) (TextMetrics, error) {
	if len(ops) == 0 {
		return TextMetrics{}, nil
	}
	if err := ctx.Err(); err != nil {
		return TextMetrics{}, failure.Wrap(failure.KindMeasurement, err)
	}

	started := time.Now()
	lines, err := s.measurer.Measure(ctx, ops)
	s.logger.Debug("measured text", "annotations", len(ops), "lines", len(lines), "aggregation", agg, "duration", time.Since(started))
	if err != nil {
		return TextMetrics{}, failure.Wrap(failure.KindMeasurement, fmt.Errorf("measure %q: %w", ops[0].Text, err))
	}
	if len(lines) == 0 {
		return TextMetrics{}, failure.New(failure.KindMeasurement, "no dimensions returned for %q", ops[0].Text)
	}

	return Aggregate(lines, agg), nil
}

// MeasureEach measures independent annotations in one round trip and
// splits the reported lines back per annotation, each stacked.
func (s *Service) MeasureEach(ctx context.Context, ops ...program.AnnotateText) ([]TextMetrics, error) {
	all, err := s.Measure(ctx, ops, Stacked)
	if err != nil {
		return nil, err
	}

	out := make([]TextMetrics, 0, len(ops))
	lines := all.Lines
	for _, op := range ops {
		n := strings.Count(op.Text, "\n") + 1
		if n > len(lines) {
			return nil, failure.New(failure.KindMeasurement, "expected %d more lines for %q, got %d", n, op.Text, len(lines))
		}
		out = append(out, Aggregate(lines[:n:n], Stacked))
		lines = lines[n:]
	}
	return out, nil
}

// Aggregate combines line dimensions
func Aggregate(lines []program.Dimensions, agg Aggregation) TextMetrics {
	m := TextMetrics{Lines: lines}
	for _, l := range lines {
		switch agg {
		case Concatenated:
			m.Width += l.Width
			m.Height = math.Max(m.Height, l.Height)
		default:
			m.Width = math.Max(m.Width, l.Width)
			m.Height += l.Height
		}
	}
	return m
}
