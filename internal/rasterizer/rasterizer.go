// Package rasterizer executes render programs and answers text metric
// queries. Every call is bounded by a timeout.
package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/program"
)

var (
	// ErrUnresolved is returned for programs with unfilled placeholders
	ErrUnresolved = errors.New("program has unresolved operations")
	// ErrTimeout is returned when a call exceeds its timeout
	ErrTimeout = errors.New("rasterizer timed out")
)

// Backend names accepted by New
const (
	BackendMagick = "magick"
	BackendDraft  = "draft"
)

// DefaultTimeout bounds a single call when Options.Timeout is zero
const DefaultTimeout = 60 * time.Second

// Rasterizer is the external compositor contract
type Rasterizer interface {
	// Render executes prog (prelude first) and writes prog.Output
	Render(ctx context.Context, prog *program.Program) error
	// Measure returns the dimensions of every rendered line of every
	// annotation, in order, without producing an image
	Measure(ctx context.Context, ops []program.AnnotateText) ([]program.Dimensions, error)
}

// Options configures a backend
type Options struct {
	Binary  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates the named backend
func New(backend string, opts Options) (Rasterizer, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch backend {
	case BackendMagick, "":
		return NewMagick(opts), nil
	case BackendDraft:
		return NewDraft(opts), nil
	default:
		return nil, fmt.Errorf("unknown rasterizer backend: %s", backend)
	}
}

// callContext bounds one call. A cancelled parent stops new calls from
// starting, but a call already dispatched runs until it completes or its
// own timeout elapses.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	return cctx, cancel, nil
}

func timeoutError(cctx context.Context, err error) error {
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
