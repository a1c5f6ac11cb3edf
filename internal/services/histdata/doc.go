// Package histdata wraps the external historical data downloader script
// behind a small client interface shared by stages and health checks.
package histdata
