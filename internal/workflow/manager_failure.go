package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockdesk/internal/logging"
	"stockdesk/internal/notifications"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String("component", "workflow-manager"))

	message := m.classifyStageFailure(stageName, stageErr)
	item.SetFailed(message)

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(queue.StatusFailed)),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)

	if m.notifier != nil && stageErr != nil {
		contextLabel := fmt.Sprintf("%s (item #%d, %s)", stageName, item.ID, item.Symbol)
		if err := m.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
			"error":   stageErr,
			"context": contextLabel,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}

	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
