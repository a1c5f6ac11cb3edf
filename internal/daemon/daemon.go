package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stockdesk/internal/config"
	"stockdesk/internal/notifications"
	"stockdesk/internal/queue"
	"stockdesk/internal/workflow"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	logPath  string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "stockdeskd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		logPath:  filepath.Join(cfg.Paths.LogDir, "stockdesk.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start launches the workflow manager and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stockdesk daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("stockdesk daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.Any("error", err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("stockdesk daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// ListQueue returns queue items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	if len(statuses) == 0 {
		return d.store.List(ctx)
	}
	return d.store.List(ctx, statuses...)
}

// ClearQueue removes all queue items.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue items.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue items.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// ResetStuck transitions in-flight items back to their stage start for retry.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ResetStuckProcessing(ctx)
}

// RetryFailed resets failed items (optionally a subset) back to pending.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// APIAddr returns the bound API listen address, or "" when the API is disabled.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.workflow.Status(ctx)
	return Status{
		Running:      d.running.Load(),
		Workflow:     summary,
		QueueDBPath:  filepath.Join(d.cfg.Paths.LogDir, "queue.db"),
		LockFilePath: d.lockPath,
	}
}
