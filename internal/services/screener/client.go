package screener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockdesk/internal/fileutil"
	"stockdesk/internal/services/runner"
)

// Service defines the behaviour required by the screening stage.
type Service interface {
	Generate(ctx context.Context, symbol, outputDir string, onLine func(string)) runner.Result
	Available() error
}

// OutputPattern returns the filename glob the screener script is expected to
// produce for a symbol.
func OutputPattern(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + "_report_*.pdf"
}

// Client invokes the external screener report script.
type Client struct {
	script string
	runner *runner.Runner
}

// New constructs a screener client for the configured script path.
func New(script string, timeoutSeconds int, opts ...runner.Option) (*Client, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, errors.New("screener script path required")
	}
	return &Client{script: script, runner: runner.New(timeoutSeconds, opts...)}, nil
}

// Script returns the configured script path.
func (c *Client) Script() string {
	return c.script
}

// Generate runs the screener script for symbol, directing outputs into
// outputDir per the `<script> <symbol> <outputDirectory>` contract.
func (c *Client) Generate(ctx context.Context, symbol, outputDir string, onLine func(string)) runner.Result {
	return c.runner.Run(ctx, c.script, []string{symbol, outputDir}, outputDir, onLine)
}

// Available verifies the script exists and is executable.
func (c *Client) Available() error {
	if err := fileutil.IsExecutableFile(c.script); err != nil {
		return fmt.Errorf("screener script %s: %w", c.script, err)
	}
	return nil
}

var _ Service = (*Client)(nil)
