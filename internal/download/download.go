package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"stockdesk/internal/config"
	"stockdesk/internal/logging"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
	"stockdesk/internal/services/histdata"
	"stockdesk/internal/services/runner"
	"stockdesk/internal/stage"
)

const logTailLines = 15

// Downloader runs the external historical data script and records its CSV output.
type Downloader struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client histdata.Service
}

// NewDownloader constructs the download stage handler using default dependencies.
func NewDownloader(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Downloader, error) {
	client, err := histdata.New(cfg.Scripts.Downloader, cfg.Scripts.TimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("downloader client: %w", err)
	}
	return NewDownloaderWithClient(cfg, store, logger, client), nil
}

// NewDownloaderWithClient allows injecting the downloader client (used in tests).
func NewDownloaderWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client histdata.Service) *Downloader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "download"))
	}
	return &Downloader{store: store, cfg: cfg, logger: stageLogger, client: client}
}

// SetLogger replaces the stage logger.
func (d *Downloader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logger.With(logging.String("component", "download"))
	}
}

func (d *Downloader) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	if strings.TrimSpace(item.WorkDir) == "" {
		return services.Wrap(
			services.ErrValidation,
			"downloading",
			"validate inputs",
			"No work directory recorded for this analysis; rerun the screening stage",
			nil,
		)
	}
	if err := os.MkdirAll(item.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "downloading", "ensure work dir", fmt.Sprintf("Failed to create %s", item.WorkDir), err)
	}

	item.SetProgress("Downloading", fmt.Sprintf("Downloading weekly data for %s", item.Symbol), 0)
	logger.Info(
		"download prepared",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("work_dir", item.WorkDir),
	)
	return nil
}

func (d *Downloader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	logger.Info(
		"launching downloader script",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("script", d.cfg.Scripts.Downloader),
	)

	result := d.client.Download(ctx, item.Symbol, item.WorkDir, func(line string) {
		logger.Debug("downloader output", logging.String("line", line))
	})
	item.DownloaderLog = result.LogText()

	if !result.Succeeded() {
		return downloaderFailure(result)
	}

	dataPath, err := newestMatch(item.WorkDir, histdata.OutputPattern(item.Symbol))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(
				services.ErrMissingOutput,
				"downloading",
				"locate data file",
				fmt.Sprintf("Downloader exited cleanly but produced no %s in %s", histdata.OutputPattern(item.Symbol), item.WorkDir),
				err,
			)
		}
		return services.Wrap(services.ErrTransient, "downloading", "locate data file", "Failed to scan work directory", err)
	}

	item.DataFile = dataPath
	item.SetProgressComplete("Downloading", fmt.Sprintf("Data downloaded: %s", filepath.Base(dataPath)))
	logger.Info(
		"download completed",
		logging.String("data_file", dataPath),
		logging.Int("log_lines", len(result.Log)),
	)
	return nil
}

// HealthCheck verifies the downloader script is present and executable.
func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	const name = "download"
	if d.client == nil {
		return stage.Unhealthy(name, "downloader client unavailable")
	}
	if err := d.client.Available(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

func downloaderFailure(result runner.Result) error {
	tail := strings.Join(result.LogTail(logTailLines), "\n")
	message := fmt.Sprintf("Downloader script exited with status %d", result.ExitCode)
	if result.Err != nil && result.ExitCode < 0 {
		message = "Downloader script could not be launched"
	}
	if tail != "" {
		message = fmt.Sprintf("%s\n%s", message, tail)
	}
	return services.Wrap(services.ErrScriptExecution, "downloading", "run downloader", message, result.Err)
}

func newestMatch(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	var (
		newest     string
		newestTime int64
	)
	for _, match := range matches {
		info, statErr := os.Stat(match)
		if statErr != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestTime {
			newest = match
			newestTime = info.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return "", os.ErrNotExist
	}
	return newest, nil
}
