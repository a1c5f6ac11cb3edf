package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.pdf")
	dst := filepath.Join(dir, "copied.pdf")

	if err := os.WriteFile(src, []byte("pdf-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pdf-bytes" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestCopyFileVerifiedRejectsEmptySource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "empty.csv")
	dst := filepath.Join(dir, "copied.csv")

	if err := os.WriteFile(src, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err == nil {
		t.Fatal("expected error for zero-byte source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected destination absent, stat err=%v", err)
	}
}

func TestCopyFileVerifiedDetectsChangedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.pdf")

	if err := os.WriteFile(src, []byte("pdf-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, size, err := hashFile(src)
	if err != nil {
		t.Fatalf("hashFile failed: %v", err)
	}
	if size != int64(len("pdf-bytes")) {
		t.Fatalf("unexpected size: %d", size)
	}

	if err := os.WriteFile(src, []byte("pdf-bytes2"), 0o644); err != nil {
		t.Fatal(err)
	}
	sum2, _, err := hashFile(src)
	if err != nil {
		t.Fatalf("hashFile failed: %v", err)
	}
	if string(sum) == string(sum2) {
		t.Fatal("expected different hashes for different content")
	}
}

func TestEnsureWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	if err := EnsureWritableDir(dir); err != nil {
		t.Fatalf("EnsureWritableDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory created, err=%v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected probe file cleaned up, found %d entries", len(entries))
	}
}

func TestEnsureWritableDirRejectsFileInPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := EnsureWritableDir(filepath.Join(blocker, "reports")); err == nil {
		t.Fatal("expected error when a path component is a regular file")
	}
}

func TestIsExecutableFile(t *testing.T) {
	dir := t.TempDir()

	script := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := IsExecutableFile(script); err != nil {
		t.Fatalf("expected executable, got %v", err)
	}

	plain := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := IsExecutableFile(plain); err == nil {
		t.Fatal("expected error for non-executable file")
	}

	if err := IsExecutableFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}

	if err := IsExecutableFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
