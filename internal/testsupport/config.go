package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"stockdesk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TargetDir = filepath.Join(base, "reports")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Scripts.Screener = filepath.Join(base, "bin", "screener.sh")
	cfgVal.Scripts.Downloader = filepath.Join(base, "bin", "download.sh")
	cfgVal.Scripts.TimeoutSeconds = 30

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithScriptTimeout overrides the script timeout on the test config.
func WithScriptTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scripts.TimeoutSeconds = seconds
	}
}

// WithStubScripts writes screener and downloader stubs that create the output
// files the pipeline expects for any symbol they are invoked with. The
// artifacts carry real bytes so verified copies succeed.
func WithStubScripts() ConfigOption {
	return func(b *configBuilder) {
		writeScript(b, b.cfg.Scripts.Screener,
			"#!/bin/sh\nprintf 'fake pdf for %s\\n' \"$1\" > \"$2/${1}_report_20240102.pdf\"\nprintf 'report ready for %s\\n' \"$1\"\nexit 0\n")
		writeScript(b, b.cfg.Scripts.Downloader,
			"#!/bin/sh\nprintf 'date,close\\n2024-01-02,100\\n' > \"$2/NSE_${1}_weekly_3years_20240102.csv\"\nprintf 'data ready for %s\\n' \"$1\"\nexit 0\n")
	}
}

// WithEmptyArtifactScreener replaces the screener stub with one that exits
// zero but leaves a zero-byte report behind.
func WithEmptyArtifactScreener() ConfigOption {
	return func(b *configBuilder) {
		writeScript(b, b.cfg.Scripts.Screener,
			"#!/bin/sh\ntouch \"$2/${1}_report_20240102.pdf\"\nexit 0\n")
	}
}

// WithFailingScreener replaces the screener stub with one that exits non-zero.
func WithFailingScreener(exitCode int) ConfigOption {
	return func(b *configBuilder) {
		writeScript(b, b.cfg.Scripts.Screener,
			fmt.Sprintf("#!/bin/sh\necho 'screener blew up' >&2\nexit %d\n", exitCode))
	}
}

// WithSilentScreener replaces the screener stub with one that exits zero but
// produces no output file.
func WithSilentScreener() ConfigOption {
	return func(b *configBuilder) {
		writeScript(b, b.cfg.Scripts.Screener, "#!/bin/sh\nexit 0\n")
	}
}

// WithFailingDownloader replaces the downloader stub with one that exits non-zero.
func WithFailingDownloader(exitCode int) ConfigOption {
	return func(b *configBuilder) {
		writeScript(b, b.cfg.Scripts.Downloader,
			fmt.Sprintf("#!/bin/sh\necho 'download failed' >&2\nexit %d\n", exitCode))
	}
}

func writeScript(b *configBuilder, path, body string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("mkdir script dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		b.t.Fatalf("write script %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
