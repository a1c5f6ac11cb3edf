package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockdesk/internal/config"
	"stockdesk/internal/queue"
	"stockdesk/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, opts...)
	// Port zero is never dialable, so commands fall back to the local store.
	cfg.Paths.APIBind = "127.0.0.1:0"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "stockdesk", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ntarget_dir = %q\nstaging_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[scripts]\nscreener = %q\ndownloader = %q\ntimeout_seconds = %d\n",
		cfg.Paths.TargetDir,
		cfg.Paths.StagingDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Scripts.Screener,
		cfg.Scripts.Downloader,
		cfg.Scripts.TimeoutSeconds,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
