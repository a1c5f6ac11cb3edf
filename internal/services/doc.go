// Package services defines shared utilities consumed by the workflow stage
// handlers and external script integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent user-visible messages and queue statuses.
//   - The runner subpackage that makes external script execution and output
//     streaming testable.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
