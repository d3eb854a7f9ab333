// Package card defines the title card variants and the registry that
// selects them.
package card

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// Card canvas size shared by every variant
const (
	Width  = 3200
	Height = 1800
)

// Canvas is the card size as dimensions
var Canvas = program.Dimensions{Width: Width, Height: Height}

// Renderer turns a card spec into a render program
type Renderer interface {
	Metadata() Metadata
	// Build produces a fully resolved program for spec
	Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error)
	// IsCustomFont reports whether font or extras deviate from the
	// variant's defaults
	IsCustomFont(font cardformat.FontDescriptor, extras cardformat.Extras) bool
	// IsCustomSeasonTitles reports whether season text deviates from the
	// variant's defaults
	IsCustomSeasonTitles(customEpisodeMap bool, episodeTextFormat string) bool
	// ModifyExtras returns a copy of extras with the font-related keys
	// reset to their defaults when customFont is false
	ModifyExtras(extras cardformat.Extras, customFont, customSeasonTitles bool) cardformat.Extras
}

// Env carries the collaborators a Build call may use
type Env struct {
	Metrics *metrics.Service
	Scratch *program.Scratch
	Rand    *rand.Rand
	Logger  *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) rand() *rand.Rand {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(1))
	}
	return e.Rand
}

func (e *Env) scratchPath(ext string) (string, error) {
	if e.Scratch == nil {
		return "", failure.New(failure.KindRender, "no scratch allocator for intermediate files")
	}
	return e.Scratch.Path(ext), nil
}

// base supplies metadata access and the generic classifier
type base struct {
	meta Metadata
}

func (b base) Metadata() Metadata {
	return b.meta.clone()
}

func requireFile(role, path string) error {
	if path == "" {
		return failure.New(failure.KindResourceMissing, "%s image is required", role)
	}
	if _, err := os.Stat(path); err != nil {
		return failure.Wrap(failure.KindResourceMissing, fmt.Errorf("%s image %s: %w", role, path, err))
	}
	return nil
}
