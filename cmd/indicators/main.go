// Package main is the entry point for the streaming indicator engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tathienbao/indicator-engine/internal/config"
	"github.com/tathienbao/indicator-engine/internal/feed"
	"github.com/tathienbao/indicator-engine/internal/metrics"
	"github.com/tathienbao/indicator-engine/internal/persistence"
	"github.com/tathienbao/indicator-engine/internal/stream"
)

// Version information (set by build flags).
var (
	Version   = "0.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	case "compute":
		cmdCompute(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Indicator Engine - Streaming Technical Indicators over OHLCV Bars

Usage:
  indicators <command> [options]

Commands:
  compute    Stream a CSV file through the configured indicators
  run        Run the engine with metrics endpoint until interrupted
  validate   Validate configuration file
  version    Show version information
  help       Show this help message

Examples:
  indicators compute --config config.yaml --data data/MES_5m.csv
  indicators run --config config.yaml
  indicators validate --config config.yaml

Use "indicators <command> --help" for more information about a command.`)
}

func cmdVersion() {
	fmt.Printf("indicator-engine version %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid!")
	fmt.Printf("  Symbol: %s\n", cfg.Feed.Symbol)
	fmt.Printf("  Timeframe: %s\n", cfg.Timeframe())
	fmt.Printf("  Indicators: %d\n", len(cfg.Indicators))
	for _, ic := range cfg.Indicators {
		name := ic.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", ic.Kind, ic.Period)
		}
		fmt.Printf("    - %s (kind=%s period=%d)\n", name, ic.Kind, ic.Period)
	}
}

func cmdCompute(args []string) {
	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	dataPath := fs.String("data", "", "Path to CSV data file (overrides feed.path)")
	verbose := fs.Bool("verbose", false, "Verbose output")
	fs.Parse(args)

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	path := cfg.Feed.Path
	if *dataPath != "" {
		path = *dataPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: --data or feed.path is required")
		fs.Usage()
		os.Exit(1)
	}

	indicators, err := cfg.BuildIndicators()
	if err != nil {
		slog.Error("failed to build indicators", "err", err)
		os.Exit(1)
	}

	repo, cleanup, err := openRepository(cfg)
	if err != nil {
		slog.Error("failed to open repository", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	barFeed := feed.NewCSVFeed(path, cfg.Feed.Symbol,
		feed.WithChannelBuffer(cfg.Feed.ChannelBuffer))

	runner := stream.NewRunner(
		stream.Config{Symbol: cfg.Feed.Symbol},
		barFeed,
		indicators,
		repo,
		logger,
	)

	slog.Info("starting compute",
		"data", path,
		"symbol", cfg.Feed.Symbol,
		"indicators", len(indicators),
	)

	ctx := context.Background()
	if err := runner.Start(ctx); err != nil {
		slog.Error("failed to start runner", "err", err)
		os.Exit(1)
	}
	runner.Wait()

	printSnapshots(runner)
}

func printSnapshots(runner *stream.Runner) {
	fmt.Println("\n=== INDICATOR STATE ===")
	fmt.Printf("Bars processed: %d\n\n", runner.BarCount())

	for _, snap := range runner.Snapshots() {
		ready := "warming up"
		if snap.Ready {
			ready = "ready"
		}
		fmt.Printf("%-16s kind=%-4s period=%-4d source=%-7s %-11s value=%s\n",
			snap.Config.Name,
			snap.Config.Kind,
			snap.Config.Period,
			snap.Config.Source,
			ready,
			snap.Value,
		)
	}
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Path to configuration file")
	fs.Parse(args)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("indicator engine starting",
		"version", Version,
		"symbol", cfg.Feed.Symbol,
		"timeframe", cfg.Timeframe().String(),
	)
	metrics.SetBuildInfo(Version, GitCommit, BuildTime)

	indicators, err := cfg.BuildIndicators()
	if err != nil {
		slog.Error("failed to build indicators", "err", err)
		os.Exit(1)
	}

	repo, cleanup, err := openRepository(cfg)
	if err != nil {
		slog.Error("failed to open repository", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		serverCfg := metrics.DefaultServerConfig()
		serverCfg.Port = cfg.Metrics.Port
		if cfg.Metrics.Path != "" {
			serverCfg.MetricsPath = cfg.Metrics.Path
		}
		metricsServer = metrics.NewServer(serverCfg, logger)
		if err := metricsServer.Start(); err != nil {
			slog.Error("failed to start metrics server", "err", err)
			os.Exit(1)
		}
	}

	barFeed := feed.NewCSVFeed(cfg.Feed.Path, cfg.Feed.Symbol,
		feed.WithReplayRate(cfg.Feed.ReplayPerSec),
		feed.WithChannelBuffer(cfg.Feed.ChannelBuffer))
	defer barFeed.Close()

	runner := stream.NewRunner(
		stream.Config{Symbol: cfg.Feed.Symbol},
		barFeed,
		indicators,
		repo,
		logger,
	)

	if metricsServer != nil {
		metricsServer.RegisterHealthCheck("indicators", func() metrics.Check {
			if runner.AllReady() {
				return metrics.Check{Status: "healthy"}
			}
			return metrics.Check{Status: "unhealthy", Message: "indicators warming up"}
		})
	}

	if err := runner.Start(ctx); err != nil {
		slog.Error("failed to start runner", "err", err)
		os.Exit(1)
	}

	// Run until the feed drains or a shutdown signal arrives.
	done := make(chan struct{})
	go func() {
		runner.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case <-done:
		slog.Info("feed drained")
	}

	runner.Stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown error", "err", err)
		}
	}

	printSnapshots(runner)
	slog.Info("indicator engine shutdown complete", "bars", runner.BarCount())
}

// openRepository opens the configured store, or returns nil when
// persistence is disabled.
func openRepository(cfg *config.Config) (persistence.Repository, func(), error) {
	if !cfg.Persistence.Enabled {
		return nil, func() {}, nil
	}
	repo, err := persistence.NewSQLiteRepository(cfg.Persistence.Path)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}
