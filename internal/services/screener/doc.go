// Package screener wraps the external screener report script behind a small
// client interface so stages and health checks can share one invocation path.
package screener
