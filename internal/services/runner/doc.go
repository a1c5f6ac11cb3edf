// Package runner executes external analysis scripts, streaming their combined
// stdout/stderr line-by-line while capturing the full log into a Result. All
// process-level failures (launch errors, non-zero exits, timeouts) surface
// through the Result so callers classify them once at the stage boundary.
package runner
