package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockdesk/internal/services/runner"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunStreamsCombinedOutput(t *testing.T) {
	script := writeScript(t, "echo first\necho second >&2\necho third\n")

	var streamed []string
	result := runner.New(30).Run(context.Background(), script, []string{"TCS"}, "", func(line string) {
		streamed = append(streamed, line)
	})

	if !result.Succeeded() {
		t.Fatalf("expected success, got exit=%d err=%v", result.ExitCode, result.Err)
	}
	if len(streamed) != 3 {
		t.Fatalf("expected 3 streamed lines, got %v", streamed)
	}
	if result.LogText() == "" {
		t.Fatal("expected captured log text")
	}
	joined := strings.Join(result.Log, "\n")
	for _, want := range []string{"first", "second", "third"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in log %q", want, joined)
		}
	}
}

func TestRunNonZeroExitIsNotSuccess(t *testing.T) {
	script := writeScript(t, "echo failing >&2\nexit 3\n")

	result := runner.New(30).Run(context.Background(), script, nil, "", nil)
	if result.Succeeded() {
		t.Fatal("expected failure for non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(result.LogText(), "failing") {
		t.Fatalf("expected stderr captured, got %q", result.LogText())
	}
}

func TestRunLaunchFailure(t *testing.T) {
	result := runner.New(5).Run(context.Background(), filepath.Join(t.TempDir(), "missing.sh"), nil, "", nil)
	if result.Succeeded() {
		t.Fatal("expected failure for missing script")
	}
	if result.Err == nil {
		t.Fatal("expected launch error in result")
	}
	if result.ExitCode != -1 {
		t.Fatalf("expected exit code -1, got %d", result.ExitCode)
	}
}

func TestRunEmptyScriptPath(t *testing.T) {
	result := runner.New(5).Run(context.Background(), "  ", nil, "", nil)
	if result.Succeeded() || result.Err == nil {
		t.Fatalf("expected failed result, got %+v", result)
	}
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	workDir := t.TempDir()
	script := writeScript(t, "pwd\n")

	result := runner.New(30).Run(context.Background(), script, nil, workDir, nil)
	if !result.Succeeded() {
		t.Fatalf("expected success, got %+v", result)
	}
	resolved, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		resolved = workDir
	}
	if !strings.Contains(result.LogText(), resolved) && !strings.Contains(result.LogText(), workDir) {
		t.Fatalf("expected working directory %q in output %q", workDir, result.LogText())
	}
}

func TestLogTail(t *testing.T) {
	result := runner.Result{Log: []string{"a", "b", "c", "d"}}
	tail := result.LogTail(2)
	if len(tail) != 2 || tail[0] != "c" || tail[1] != "d" {
		t.Fatalf("unexpected tail: %v", tail)
	}
	if got := result.LogTail(0); len(got) != 4 {
		t.Fatalf("expected full log for n<=0, got %v", got)
	}
}

type stubExecutor struct {
	exitCode int
	lines    []string
}

func (s stubExecutor) Run(ctx context.Context, binary string, args []string, workDir string, onLine func(string)) (int, error) {
	for _, line := range s.lines {
		onLine(line)
	}
	return s.exitCode, nil
}

func TestWithExecutor(t *testing.T) {
	r := runner.New(5, runner.WithExecutor(stubExecutor{exitCode: 0, lines: []string{"stubbed"}}))
	result := r.Run(context.Background(), "/any/script", []string{"X"}, "", nil)
	if !result.Succeeded() {
		t.Fatalf("expected stubbed success, got %+v", result)
	}
	if len(result.Log) != 1 || result.Log[0] != "stubbed" {
		t.Fatalf("unexpected captured log: %v", result.Log)
	}
}
