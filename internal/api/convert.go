package api

import (
	"sort"

	"stockdesk/internal/queue"
	"stockdesk/internal/workflow"
)

// FromQueueItem converts a queue item into its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}
	converted := QueueItem{
		ID:          item.ID,
		Symbol:      item.Symbol,
		Status:      string(item.Status),
		StatusLabel: item.Status.DisplayLabel(),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage: item.ErrorMessage,
		TargetDir:    item.TargetDir,
		ReportFile:   item.ReportFile,
		DataFile:     item.DataFile,
	}
	if !item.CreatedAt.IsZero() {
		converted.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		converted.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return converted
}

// FromQueueItems converts a slice of queue items.
func FromQueueItems(items []*queue.Item) []QueueItem {
	converted := make([]QueueItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, FromQueueItem(item))
	}
	return converted
}

// FromStatusSummary converts a workflow status summary.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:    summary.Running,
		QueueStats: make(map[string]int, len(summary.QueueStats)),
	}
	for key, value := range summary.QueueStats {
		status.QueueStats[string(key)] = value
	}
	if summary.LastError != "" {
		status.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		converted := FromQueueItem(summary.LastItem)
		status.LastItem = &converted
	}
	names := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		health := summary.StageHealth[name]
		status.StageHealth = append(status.StageHealth, StageHealth{
			Name:   health.Name,
			Ready:  health.Ready,
			Detail: health.Detail,
		})
	}
	return status
}
