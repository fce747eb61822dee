package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skirmish/internal/ai"
	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/sim"
	"github.com/udisondev/skirmish/internal/storage"
)

const ConfigPath = "config/simserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && err != context.Canceled {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("SKIRMISH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	ai.EnableDebugLogging(cfg.DebugAI || logLevel == slog.LevelDebug)

	slog.Info("skirmish server starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate)

	runner, err := sim.NewRunner(cfg, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Database.Enabled() {
		if err := storage.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		recorder, err := storage.NewRecorder(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("creating event recorder: %w", err)
		}
		runner.Events().Subscribe(recorder.Record)

		g.Go(func() error {
			if err := recorder.Run(gctx); err != nil && err != context.Canceled {
				return fmt.Errorf("event recorder: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		slog.Info("starting simulation loop")
		if err := runner.Run(gctx); err != nil && err != context.Canceled {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
