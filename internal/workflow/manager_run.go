package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stockdesk/internal/logging"
	"stockdesk/internal/queue"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, logger); err != nil {
			logger.Warn("reclaim stale processing failed; stuck items may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}

		item, err := m.nextItem(ctx)
		if err != nil {
			m.handleNextItemError(ctx, logger, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, logger, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) nextItem(ctx context.Context) (*queue.Item, error) {
	m.mu.RLock()
	statuses := make([]queue.Status, len(m.startStatuses))
	copy(statuses, m.startStatuses)
	m.mu.RUnlock()
	return m.store.NextForStatuses(ctx, statuses...)
}

func (m *Manager) handleNextItemError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
