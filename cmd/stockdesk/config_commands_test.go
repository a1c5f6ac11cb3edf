package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, env.cfg.Paths.TargetDir)
}

func TestConfigPathPrintsDefaultLocation(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, "config.toml")
	requireContains(t, out, filepath.Join(".config", "stockdesk"))
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
