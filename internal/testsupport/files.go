package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact creates a fake script output file of roughly the requested
// size. The content is deterministic so copy verification has real bytes to
// hash. A size <= 0 produces a one-byte file.
func WriteArtifact(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	var buf bytes.Buffer
	buf.Grow(int(size))
	for int64(buf.Len()) < size {
		buf.WriteString(filepath.Base(path))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes()[:size], 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
