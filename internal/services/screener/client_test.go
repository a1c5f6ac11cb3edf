package screener

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"stockdesk/internal/services/runner"
)

type stubExecutor struct {
	binary  string
	args    []string
	workDir string
	exit    int
	lines   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, workDir string, onLine func(string)) (int, error) {
	s.binary = binary
	s.args = args
	s.workDir = workDir
	for _, line := range s.lines {
		onLine(line)
	}
	return s.exit, nil
}

func TestNewRequiresScript(t *testing.T) {
	if _, err := New("  ", 30); err == nil {
		t.Fatal("expected error for empty script path")
	}
}

func TestGeneratePassesSymbolAndOutputDir(t *testing.T) {
	exec := &stubExecutor{lines: []string{"screening RELIANCE"}}
	client, err := New("/opt/scripts/screener.sh", 30, runner.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result := client.Generate(context.Background(), "RELIANCE", "/tmp/work", nil)
	if !result.Succeeded() {
		t.Fatalf("expected success, got exit %d err %v", result.ExitCode, result.Err)
	}
	if exec.binary != "/opt/scripts/screener.sh" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	if len(exec.args) != 2 || exec.args[0] != "RELIANCE" || exec.args[1] != "/tmp/work" {
		t.Fatalf("unexpected args %v", exec.args)
	}
	if exec.workDir != "/tmp/work" {
		t.Fatalf("unexpected workDir %q", exec.workDir)
	}
	if len(result.Log) != 1 || result.Log[0] != "screening RELIANCE" {
		t.Fatalf("unexpected log %v", result.Log)
	}
}

func TestAvailable(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "screener.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	client, err := New(script, 30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Available(); err != nil {
		t.Fatalf("Available: %v", err)
	}

	missing, err := New(filepath.Join(dir, "absent.sh"), 30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := missing.Available(); err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestOutputPattern(t *testing.T) {
	if got := OutputPattern(" reliance "); got != "RELIANCE_report_*.pdf" {
		t.Fatalf("unexpected pattern %q", got)
	}
}
