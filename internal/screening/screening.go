package screening

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"stockdesk/internal/config"
	"stockdesk/internal/fileutil"
	"stockdesk/internal/logging"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
	"stockdesk/internal/services/runner"
	"stockdesk/internal/services/screener"
	"stockdesk/internal/stage"
)

const logTailLines = 15

// Screener runs the external screener script and records its report output.
type Screener struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client screener.Service
}

// NewScreener constructs the screening stage handler using default dependencies.
func NewScreener(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Screener, error) {
	client, err := screener.New(cfg.Scripts.Screener, cfg.Scripts.TimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("screener client: %w", err)
	}
	return NewScreenerWithClient(cfg, store, logger, client), nil
}

// NewScreenerWithClient allows injecting the screener client (used in tests).
func NewScreenerWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client screener.Service) *Screener {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "screening"))
	}
	return &Screener{store: store, cfg: cfg, logger: stageLogger, client: client}
}

// SetLogger replaces the stage logger.
func (s *Screener) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String("component", "screening"))
	}
}

func (s *Screener) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	normalized, err := queue.ValidateSymbol(item.Symbol)
	if err != nil {
		return services.Wrap(services.ErrValidation, "screening", "validate symbol", "Ticker symbol is missing or malformed", err)
	}
	item.Symbol = normalized

	if strings.TrimSpace(item.WorkDir) == "" {
		staging := strings.TrimSpace(s.cfg.Paths.StagingDir)
		if staging == "" {
			return services.Wrap(
				services.ErrConfiguration,
				"screening",
				"resolve staging dir",
				"Staging directory not configured; set staging_dir in your stockdesk config.toml",
				nil,
			)
		}
		item.WorkDir = filepath.Join(staging, fmt.Sprintf("%s-%d", item.Symbol, item.ID))
	}
	if err := os.MkdirAll(item.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "screening", "ensure work dir", fmt.Sprintf("Failed to create %s", item.WorkDir), err)
	}

	// Reject a bad target directory up front so neither script runs for a
	// request whose outputs could never be filed.
	targetDir := strings.TrimSpace(item.TargetDir)
	if targetDir == "" {
		targetDir = strings.TrimSpace(s.cfg.Paths.TargetDir)
	}
	if targetDir == "" {
		return services.Wrap(
			services.ErrValidation,
			"screening",
			"validate target dir",
			"Target directory not configured; set target_dir in your stockdesk config.toml",
			nil,
		)
	}
	if err := fileutil.EnsureWritableDir(targetDir); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"screening",
			"validate target dir",
			fmt.Sprintf("Target directory %s is not writable", targetDir),
			err,
		)
	}

	item.SetProgress("Screening", fmt.Sprintf("Generating screener report for %s", item.Symbol), 0)
	logger.Info(
		"screening prepared",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("work_dir", item.WorkDir),
	)
	return nil
}

func (s *Screener) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	logger.Info(
		"launching screener script",
		logging.String(logging.FieldSymbol, item.Symbol),
		logging.String("script", s.cfg.Scripts.Screener),
	)

	result := s.client.Generate(ctx, item.Symbol, item.WorkDir, func(line string) {
		logger.Debug("screener output", logging.String("line", line))
	})
	item.ScreenerLog = result.LogText()

	if !result.Succeeded() {
		return screenerFailure(result)
	}

	reportPath, err := newestMatch(item.WorkDir, screener.OutputPattern(item.Symbol))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(
				services.ErrMissingOutput,
				"screening",
				"locate report",
				fmt.Sprintf("Screener exited cleanly but produced no %s in %s", screener.OutputPattern(item.Symbol), item.WorkDir),
				err,
			)
		}
		return services.Wrap(services.ErrTransient, "screening", "locate report", "Failed to scan work directory", err)
	}

	item.ReportFile = reportPath
	item.SetProgressComplete("Screening", fmt.Sprintf("Report generated: %s", filepath.Base(reportPath)))
	logger.Info(
		"screening completed",
		logging.String("report_file", reportPath),
		logging.Int("log_lines", len(result.Log)),
	)
	return nil
}

// HealthCheck verifies the screener script is present and executable.
func (s *Screener) HealthCheck(ctx context.Context) stage.Health {
	const name = "screening"
	if s.client == nil {
		return stage.Unhealthy(name, "screener client unavailable")
	}
	if err := s.client.Available(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

func screenerFailure(result runner.Result) error {
	tail := strings.Join(result.LogTail(logTailLines), "\n")
	message := fmt.Sprintf("Screener script exited with status %d", result.ExitCode)
	if result.Err != nil && result.ExitCode < 0 {
		message = "Screener script could not be launched"
	}
	if tail != "" {
		message = fmt.Sprintf("%s\n%s", message, tail)
	}
	return services.Wrap(services.ErrScriptExecution, "screening", "run screener", message, result.Err)
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
