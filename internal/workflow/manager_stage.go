package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stockdesk/internal/logging"
	"stockdesk/internal/notifications"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
	"stockdesk/internal/stage"
)

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	stg, ok := m.stageForStatus(item.Status)
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithItemID(logging.WithStage(ctx, stg.name), item.ID), requestID)
	stageLogger := logging.WithContext(stageCtx, logger)
	if aware, ok := stg.handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	if err := m.transitionToProcessing(stageCtx, stg, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String(logging.FieldSymbol, item.Symbol),
	)

	handler := stg.handler
	if handler == nil {
		stageLogger.Warn("missing stage handler", logging.String("stage", stg.name))
		item.Status = queue.StatusFailed
		item.ErrorMessage = fmt.Sprintf("stage %s missing handler", stg.name)
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, handler, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted {
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = queue.StatusCompleted.DisplayLabel()
		}
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.String("progress_stage", strings.TrimSpace(item.ProgressStage)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	if stg.processingStatus == "" {
		return errors.New("processing status must not be empty")
	}

	m.setItemProcessingState(item, stg.processingStatus)
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	if m.notifier != nil && stg.startStatus == queue.StatusPending {
		if err := m.notifier.Publish(ctx, notifications.EventAnalysisQueued, notifications.Payload{"symbol": item.Symbol}); err != nil {
			logging.WithContext(ctx, m.logger).Debug("queue start notification failed", logging.Error(err))
		}
	}
	return nil
}

func (m *Manager) setItemProcessingState(item *queue.Item, processing queue.Status) {
	now := time.Now().UTC()
	item.Status = processing
	if item.ProgressStage == "" {
		item.ProgressStage = processing.DisplayLabel()
	}
	if item.ProgressMessage == "" {
		item.ProgressMessage = fmt.Sprintf("%s started", processing.DisplayLabel())
	}
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.LastHeartbeat = &now
}
