package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/api"
	"github.com/thereceipt/titlecard-engine/internal/app"
	"github.com/thereceipt/titlecard-engine/internal/config"
	"github.com/thereceipt/titlecard-engine/internal/logger"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", getConfigPath(), "Path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	log, closer := app.NewLogger(cfg.Log)

	engine, err := app.New(cfg, log)
	if err != nil {
		logger.Fail(log, "startup failed", "error", err)
		if closer != nil {
			closer.Close()
		}
		os.Exit(1)
	}
	engine.SetCloser(closer)
	defer engine.Close()

	server := api.NewServer(engine.Runner, cfg.Render.MaxRetries, engine.Archive, log)
	defer server.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting API server", "addr", cfg.Server.Addr, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		logger.Fail(log, "server error", "error", err)
		engine.Close()
		os.Exit(1)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed", "error", err)
	}
}

// getConfigPath returns TITLECARD_CONFIG, or config.toml next to the
// executable when that file exists, or config.toml in the working directory
func getConfigPath() string {
	if path := os.Getenv("TITLECARD_CONFIG"); path != "" {
		return path
	}

	if exePath, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exePath), "config.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "config.toml"
}
