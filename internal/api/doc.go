// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal queue models into transport-friendly DTOs
// that the web page and CLI can render without coupling to internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress,
// artifact paths, and error details.
//
// WorkflowStatus: workflow running state, queue stats, stage health, and the
// last processed item.
//
// DaemonStatus: aggregated runtime information for the status endpoint.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with display labels and RFC3339
// timestamps.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus with
// deterministic stage health ordering.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Internal enums
// (queue.Status) are exposed as lowercase strings alongside a human readable
// label. Timestamps use RFC3339 with milliseconds.
package api
