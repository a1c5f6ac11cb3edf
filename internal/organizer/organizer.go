package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"stockdesk/internal/config"
	"stockdesk/internal/fileutil"
	"stockdesk/internal/logging"
	"stockdesk/internal/notifications"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
	"stockdesk/internal/stage"
)

const timestampLayout = "20060102_150405"

// Organizer copies script outputs into the per-symbol target directory.
type Organizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time
}

// NewOrganizer constructs the organizer stage handler using default dependencies.
func NewOrganizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	return NewOrganizerWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewOrganizerWithDependencies allows injecting collaborators (used in tests).
func NewOrganizerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Organizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "organizer"))
	}
	return &Organizer{store: store, cfg: cfg, logger: stageLogger, notifier: notifier, now: time.Now}
}

// SetLogger replaces the stage logger.
func (o *Organizer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		o.logger = logger.With(logging.String("component", "organizer"))
	}
}

func (o *Organizer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Organizing"
	}
	item.ProgressMessage = "Preparing report filing"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	if strings.TrimSpace(item.WorkDir) == "" {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate inputs",
			"No work directory recorded for this analysis; rerun the screener and download stages",
			nil,
		)
	}
	if strings.TrimSpace(item.TargetDir) == "" {
		item.TargetDir = o.cfg.Paths.TargetDir
	}
	if strings.TrimSpace(item.TargetDir) == "" {
		return services.Wrap(
			services.ErrConfiguration,
			"organizing",
			"resolve target dir",
			"Target directory not configured; set target_dir in your stockdesk config.toml",
			nil,
		)
	}
	logger.Info(
		"starting organization preparation",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("work_dir", strings.TrimSpace(item.WorkDir)),
	)
	return nil
}

func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	logger.Info(
		"starting organization",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("work_dir", strings.TrimSpace(item.WorkDir)),
	)

	symbolDir := filepath.Join(item.TargetDir, item.Symbol)
	if err := os.MkdirAll(symbolDir, 0o755); err != nil {
		return services.Wrap(services.ErrCopy, "organizing", "ensure symbol dir", fmt.Sprintf("Failed to create %s", symbolDir), err)
	}

	timestamp := o.now().UTC().Format(timestampLayout)
	artifacts := Artifacts()
	step := 80.0 / float64(len(artifacts))
	for i, artifact := range artifacts {
		source, err := findArtifact(item.WorkDir, item.Symbol, artifact)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return services.Wrap(
					services.ErrMissingOutput,
					"organizing",
					"locate "+artifact.Label,
					fmt.Sprintf("Expected %s (%s) not found in %s", artifact.Label, artifact.Pattern(item.Symbol), item.WorkDir),
					err,
				)
			}
			return services.Wrap(services.ErrTransient, "organizing", "locate "+artifact.Label, "Failed to scan work directory", err)
		}

		target, err := nextDestPath(symbolDir, item.Symbol, timestamp, artifact)
		if err != nil {
			return services.Wrap(services.ErrTransient, "organizing", "allocate filename", "Unable to allocate destination filename", err)
		}
		if err := fileutil.CopyFileVerified(source, target); err != nil {
			return services.Wrap(services.ErrCopy, "organizing", "copy "+artifact.Label, fmt.Sprintf("Failed to copy %s into %s", artifact.Label, symbolDir), err)
		}
		artifact.Record(item, target)
		logger.Info(
			"artifact filed",
			logging.String("artifact", artifact.Label),
			logging.String("source", source),
			logging.String("target", target),
		)
		o.updateProgress(ctx, item, fmt.Sprintf("Filed %s", artifact.Label), 10+step*float64(i+1))
	}

	o.updateProgress(ctx, item, "Organization completed", 100)
	item.ProgressMessage = fmt.Sprintf("Reports available in %s", symbolDir)
	logger.Info(
		"organization completed",
		logging.String("report_file", item.ReportFile),
		logging.String("data_file", item.DataFile),
	)

	if o.notifier != nil {
		if err := o.notifier.Publish(ctx, notifications.EventOrganizationCompleted, notifications.Payload{
			"symbol":    item.Symbol,
			"directory": symbolDir,
		}); err != nil {
			logger.Warn("organization notifier failed", logging.Error(err))
		}
		if err := o.notifier.Publish(ctx, notifications.EventAnalysisCompleted, notifications.Payload{"symbol": item.Symbol}); err != nil {
			logger.Warn("completion notifier failed", logging.Error(err))
		}
	}

	return nil
}

// HealthCheck verifies organizer prerequisites such as the target directory.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organizer"
	if o.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(o.cfg.Paths.TargetDir) == "" {
		return stage.Unhealthy(name, "target directory not configured")
	}
	return stage.Healthy(name)
}

func (o *Organizer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, o.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := o.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist organizer progress", logging.Error(err))
		return
	}
	*item = copy
}
