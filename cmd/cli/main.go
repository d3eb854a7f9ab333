package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/thereceipt/titlecard-engine/internal/app"
	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/config"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

const (
	defaultServerURL = "http://localhost:12212"
)

func main() {
	var serverURL, configPath string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.StringVar(&configPath, "config", "config.toml", "Path to config.toml")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	args := flag.Args()
	var err error

	switch args[0] {
	case "render":
		if len(args) < 2 {
			err = fmt.Errorf("usage: render <cards.json>")
			break
		}
		err = runLocal(configPath, func(ctx context.Context, engine *app.App) error {
			b, err := cardformat.ParseFile(args[1])
			if err != nil {
				return err
			}
			return renderBatch(ctx, engine, b.Cards)
		})
	case "compose":
		err = runLocal(configPath, func(ctx context.Context, engine *app.App) error {
			spec, err := composeCard(args[1:])
			if err != nil {
				return err
			}
			return renderBatch(ctx, engine, []cardformat.CardSpec{*spec})
		})
	case "plan":
		if len(args) < 2 {
			err = fmt.Errorf("usage: plan <cards.json>")
			break
		}
		err = runLocal(configPath, func(ctx context.Context, engine *app.App) error {
			b, err := cardformat.ParseFile(args[1])
			if err != nil {
				return err
			}
			return writePlan(ctx, engine.Runner, b.Cards, os.Stdout)
		})
	case "variants":
		err = runLocal(configPath, func(ctx context.Context, engine *app.App) error {
			printVariants(engine.Runner.Registry().List())
			return nil
		})
	case "job":
		err = runJobCommand(serverURL, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		err = fmt.Errorf("unknown command: %s", args[0])
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Title Card Engine CLI

Usage:
  titlecard-cli [flags] <command>

Flags:
  -config <path>       Config file (default: config.toml)
  -s, -server <url>    Server URL for job commands (default: %s)

Commands:
  render <cards.json>
    Render every card in a batch file locally

  compose <key:value...>
    Render a single card described on the command line
    Keys are card fields; extra.<name>:<value> sets an extra

  plan <cards.json>
    Print the render program of every card without rendering

  variants
    List the registered card variants

  job submit <cards.json>
    Queue a batch on the server

  job list
    List queued batches

  job status <id>
    Show a queued batch and its report

  help
    Show help message

Examples:
  titlecard-cli render ./season1.json
  titlecard-cli compose variant:standard title:"Pilot" source:./still.jpg output:./s01e01.jpg extra.separator:"|"
  titlecard-cli -config ./draft.toml variants
  titlecard-cli -s http://localhost:8080 job status job_171234

`, defaultServerURL)
}

// runLocal builds the engine from config and runs fn until it returns or
// the process is interrupted
func runLocal(configPath string, fn func(ctx context.Context, engine *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closer := app.NewLogger(cfg.Log)
	engine, err := app.New(cfg, log)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return err
	}
	engine.SetCloser(closer)
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, engine)
}

func renderBatch(ctx context.Context, engine *app.App, cards []cardformat.CardSpec) error {
	var rep batch.Report
	if len(cards) > 1 && isatty.IsTerminal(os.Stdout.Fd()) {
		rep = runWithProgress(ctx, engine, cards)
	} else {
		rep = engine.Runner.RunWithObserver(ctx, cards, engine.Observer())
	}
	printReport(rep)

	switch {
	case rep.Summary.Failed > 0:
		return fmt.Errorf("%d of %d cards failed", rep.Summary.Failed, rep.Summary.Total)
	case rep.Summary.Skipped > 0:
		return fmt.Errorf("%d of %d cards skipped", rep.Summary.Skipped, rep.Summary.Total)
	}
	return nil
}
