package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stockdesk/internal/config"
	"stockdesk/internal/daemon"
	"stockdesk/internal/logging"
	"stockdesk/internal/queue"
	"stockdesk/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", slog.Any("error", err))
		os.Exit(1)
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	if err := configureStages(workflowManager, cfg, store, logger); err != nil {
		logger.Error("configure stages", slog.Any("error", err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		logger.Error("create daemon", slog.Any("error", err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", slog.Any("error", err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("stockdeskd shutting down")
}
