package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/jitterball/internal/config"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/injector"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath = kingpin.Flag(
			"config",
			"Path to the YAML configuration file.",
		).Short('c').String()

		logLevel = kingpin.Flag(
			"log.level",
			"Override the log level (debug, info, warn, error).",
		).String()

		duration = kingpin.Flag(
			"duration",
			"Stop after this long. Zero runs until interrupted.",
		).Default("0s").Duration()

		seed = kingpin.Flag(
			"seed",
			"Seed for the perturbation source. Empty seeds from the clock.",
		).String()

		statsInterval = kingpin.Flag(
			"stats.interval",
			"How often to log scheduler statistics. Zero disables.",
		).Default("10s").Duration()
	)

	kingpin.Version(version.Print("jitterball"))
	kingpin.CommandLine.UsageWriter(os.Stdout)
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *seed != "" {
		cfg.Perturb.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error in config:", err)
		os.Exit(1)
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing:", err)
		os.Exit(1)
	}
	defer func() { _ = app.Logger.Sync() }()
	// net/http reports serve errors through the standard logger.
	defer zap.RedirectStdLog(app.Logger.Zap())()

	if err := run(app, *duration, *statsInterval); err != nil {
		app.Logger.Error("Jitterball exited with error", log.Error(err))
		_ = app.Logger.Sync()
		os.Exit(1)
	}
}

// run shows the view until a signal arrives or d elapses, then closes the
// view before stopping telemetry.
func run(app *injector.App, d, statsInterval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	logger := app.Logger.With(log.String("component", "main"))
	logger.Info("Starting jitterball", log.String("version", version.Info()))

	g, gctx := errgroup.WithContext(ctx)

	if app.Telemetry != nil {
		if err := app.Telemetry.Start(gctx); err != nil {
			return fmt.Errorf("start telemetry: %w", err)
		}
	}
	if err := app.View.Appear(gctx); err != nil {
		_ = stopTelemetry(app)
		return fmt.Errorf("show view: %w", err)
	}

	if statsInterval > 0 {
		g.Go(func() error {
			reportStats(gctx, app, statsInterval, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		if err := app.View.Close(); err != nil {
			return fmt.Errorf("close view: %w", err)
		}
		return stopTelemetry(app)
	})

	err := g.Wait()
	s := app.Scheduler.Stats()
	logger.Info("Jitterball stopped",
		log.Uint64("ticks", s.Ticks),
		log.Uint64("nudges", s.Fired),
		log.Uint64("skipped", s.Skipped))
	return err
}

func stopTelemetry(app *injector.App) error {
	if app.Telemetry == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Telemetry.Stop(ctx)
}

func reportStats(ctx context.Context, app *injector.App, every time.Duration, logger log.Log) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := app.Scheduler.Stats()
			b := app.Bus.Metrics()
			logger.Info("Scheduler stats",
				log.Uint64("ticks", s.Ticks),
				log.Uint64("nudges", s.Fired),
				log.Uint64("skipped", s.Skipped),
				log.Int("entities", app.Scene.Len()),
				log.Uint64("events_published", b.Published),
				log.Uint64("event_errors", b.Errors))
		}
	}
}
