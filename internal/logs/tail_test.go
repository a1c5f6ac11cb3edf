package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stockdesk/internal/logs"
)

func TestTailFileLastLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stockdesk.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.TailFile(path, 2)
	if err != nil {
		t.Fatalf("TailFile: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset == 0 {
		t.Fatal("expected offset to advance")
	}
}

func TestTailFileMissing(t *testing.T) {
	lines, offset, err := logs.TailFile(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil {
		t.Fatalf("TailFile: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %#v offset %d", lines, offset)
	}
}

func TestFollowDeliversAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stockdesk.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	_, offset, err := logs.TailFile(path, 1)
	if err != nil {
		t.Fatalf("TailFile: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			if line == "later" {
				cancel()
			}
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	f.Close()

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("Follow returned error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
