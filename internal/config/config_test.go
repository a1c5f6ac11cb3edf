package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockdesk/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "stockdesk", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.TargetDir != filepath.Join(tempHome, "Documents", "StockReports") {
		t.Fatalf("unexpected target dir: %q", cfg.Paths.TargetDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7319" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if !strings.HasPrefix(cfg.Scripts.Screener, tempHome) {
		t.Fatalf("expected screener script path under temp HOME, got %q", cfg.Scripts.Screener)
	}
	if cfg.Scripts.TimeoutSeconds <= 0 {
		t.Fatalf("expected positive script timeout, got %d", cfg.Scripts.TimeoutSeconds)
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.TargetDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stockdesk.toml")

	content := `
[paths]
target_dir = "` + filepath.Join(tempDir, "reports") + `"

[scripts]
screener = "` + filepath.Join(tempDir, "screener.sh") + `"
downloader = "` + filepath.Join(tempDir, "downloader.sh") + `"
timeout_seconds = 30
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.TargetDir != filepath.Join(tempDir, "reports") {
		t.Fatalf("unexpected target dir: %q", cfg.Paths.TargetDir)
	}
	if cfg.Scripts.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout: %d", cfg.Scripts.TimeoutSeconds)
	}
	// Unset sections keep defaults.
	if cfg.Workflow.QueuePollInterval != config.Default().Workflow.QueuePollInterval {
		t.Fatalf("unexpected poll interval: %d", cfg.Workflow.QueuePollInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "missing screener",
			mutate: func(c *config.Config) { c.Scripts.Screener = "" },
			want:   "scripts.screener",
		},
		{
			name:   "missing downloader",
			mutate: func(c *config.Config) { c.Scripts.Downloader = "" },
			want:   "scripts.downloader",
		},
		{
			name:   "zero timeout",
			mutate: func(c *config.Config) { c.Scripts.TimeoutSeconds = 0 },
			want:   "timeout_seconds",
		},
		{
			name:   "missing target dir",
			mutate: func(c *config.Config) { c.Paths.TargetDir = "" },
			want:   "paths.target_dir",
		},
		{
			name: "heartbeat timeout below interval",
			mutate: func(c *config.Config) {
				c.Workflow.HeartbeatInterval = 30
				c.Workflow.HeartbeatTimeout = 20
			},
			want: "heartbeat_timeout",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[scripts]") {
		t.Fatal("expected sample to contain [scripts] section")
	}
}
