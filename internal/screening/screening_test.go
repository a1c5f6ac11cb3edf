package screening_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockdesk/internal/logging"
	"stockdesk/internal/screening"
	"stockdesk/internal/services"
	"stockdesk/internal/testsupport"
)

func TestScreeningHappyPath(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts())
	store := testsupport.MustOpenStore(t, cfg)

	handler, err := screening.NewScreener(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, cfg, "RELIANCE")
	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if item.WorkDir == "" {
		t.Fatal("expected work dir to be allocated")
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if item.ReportFile == "" || !strings.Contains(item.ReportFile, "RELIANCE_report_") {
		t.Fatalf("unexpected report file %q", item.ReportFile)
	}
	if !strings.Contains(item.ScreenerLog, "report ready for RELIANCE") {
		t.Fatalf("expected script output captured, got %q", item.ScreenerLog)
	}
}

func TestScreeningScriptFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts(), testsupport.WithFailingScreener(2))
	store := testsupport.MustOpenStore(t, cfg)

	handler, err := screening.NewScreener(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, cfg, "TCS")
	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	execErr := handler.Execute(ctx, item)
	if !errors.Is(execErr, services.ErrScriptExecution) {
		t.Fatalf("expected script execution error, got %v", execErr)
	}
	if !strings.Contains(execErr.Error(), "status 2") {
		t.Fatalf("expected exit status in error, got %v", execErr)
	}
	if !strings.Contains(execErr.Error(), "screener blew up") {
		t.Fatalf("expected log tail in error message, got %v", execErr)
	}
	if strings.Contains(execErr.Error(), "[screener blew up") {
		t.Fatalf("expected tail lines joined, not slice syntax: %v", execErr)
	}
	if !strings.Contains(item.ScreenerLog, "screener blew up") {
		t.Fatalf("expected stderr captured, got %q", item.ScreenerLog)
	}
}

func TestScreeningRejectsUnwritableTargetDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts())
	store := testsupport.MustOpenStore(t, cfg)

	handler, err := screening.NewScreener(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}

	// A regular file in the target position makes every write attempt fail,
	// regardless of the uid the tests run as.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, cfg, "TCS")
	item.TargetDir = filepath.Join(blocker, "reports")

	prepErr := handler.Prepare(ctx, item)
	if !errors.Is(prepErr, services.ErrValidation) {
		t.Fatalf("expected validation error for unwritable target dir, got %v", prepErr)
	}
	if !strings.Contains(prepErr.Error(), "not writable") {
		t.Fatalf("expected target dir detail in error, got %v", prepErr)
	}
	if entries, err := os.ReadDir(item.WorkDir); err == nil && len(entries) > 0 {
		t.Fatalf("expected no files before execution, found %d", len(entries))
	}
}

func TestScreeningMissingOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts(), testsupport.WithSilentScreener())
	store := testsupport.MustOpenStore(t, cfg)

	handler, err := screening.NewScreener(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, cfg, "INFY")
	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	execErr := handler.Execute(ctx, item)
	if !errors.Is(execErr, services.ErrMissingOutput) {
		t.Fatalf("expected missing output error, got %v", execErr)
	}
}

func TestScreeningHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts())
	store := testsupport.MustOpenStore(t, cfg)

	handler, err := screening.NewScreener(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage, got %#v", health)
	}

	missing := testsupport.NewConfig(t)
	handler, err = screening.NewScreener(missing, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewScreener: %v", err)
	}
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage when script missing")
	}
}
