package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iitkqc/confession-bot-go/internal/app"
	"github.com/iitkqc/confession-bot-go/internal/config"
	"github.com/iitkqc/confession-bot-go/internal/util"
)

const (
	buildTimeout = 30 * time.Second
	runTimeout   = 20 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	buildCtx, buildCancel := context.WithTimeout(ctx, buildTimeout)
	defer buildCancel()

	container, err := app.Build(buildCtx, cfg, logger)
	if err != nil {
		logger.Error("Service assembly failed", zap.Error(err))
		return err
	}
	defer container.Close()

	logger.Info("Confession bot starting",
		zap.Bool("dry_run", cfg.Pipeline.DryRun),
		zap.Int("max_per_run", cfg.Pipeline.MaxPerRun),
	)

	runCtx, runCancel := context.WithTimeout(ctx, runTimeout)
	defer runCancel()

	if err := container.Pipeline.Run(runCtx); err != nil {
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	logger.Info("Run complete")
	return nil
}
