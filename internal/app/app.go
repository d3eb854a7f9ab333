// Package app wires configuration into a ready-to-use renderer stack
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thereceipt/titlecard-engine/internal/archive"
	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/card"
	"github.com/thereceipt/titlecard-engine/internal/config"
	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/logger"
	"github.com/thereceipt/titlecard-engine/internal/rasterizer"
)

// App holds the components every entry point needs
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Runner  *batch.Runner
	Archive *archive.Index

	closer io.Closer
}

// NewLogger builds the configured logger. Without a log file, records go
// to stderr. The closer is nil for stderr.
func NewLogger(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	level := logger.ParseLevel(cfg.Level)
	if cfg.File == "" {
		return logger.New(os.Stderr, level), nil
	}
	return logger.NewFileLogger(cfg.File, level, cfg.MaxSizeMB)
}

// New validates the variant registry, selects the rasterizer backend and
// opens the archive. Registry and backend problems are configuration errors.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	reg, err := card.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	raster, err := rasterizer.New(cfg.Rasterizer.Backend, rasterizer.Options{
		Binary:  cfg.Rasterizer.Binary,
		Timeout: cfg.Rasterizer.Timeout(),
		Logger:  log,
	})
	if err != nil {
		return nil, failure.Wrap(failure.KindConfiguration, err)
	}

	a := &App{
		Config: cfg,
		Logger: log,
		Runner: batch.New(reg, raster, batch.Options{
			Workers:    cfg.Render.Workers,
			ScratchDir: cfg.Render.ScratchDir,
			Seed:       cfg.Render.Seed,
			Logger:     log,
		}),
	}

	if cfg.Archive.Path != "" {
		a.Archive, err = archive.Open(cfg.Archive.Path, log)
		if err != nil {
			return nil, failure.Wrap(failure.KindConfiguration, fmt.Errorf("archive: %w", err))
		}
	}

	log.Info("engine ready",
		"backend", cfg.Rasterizer.Backend,
		"variants", len(reg.List()),
		"workers", cfg.Render.Workers,
		"archive", cfg.Archive.Path != "")
	return a, nil
}

// Observer returns the archive as a batch observer, or nil without one
func (a *App) Observer() batch.Observer {
	if a.Archive == nil {
		return nil
	}
	return a.Archive
}

// SetCloser attaches the log file closer released by Close
func (a *App) SetCloser(c io.Closer) {
	a.closer = c
}

// Close flushes the log file, if any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
