package queue_test

import (
	"context"
	"testing"
	"time"

	"stockdesk/internal/queue"
	"stockdesk/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewAnalysis(ctx, "reliance", cfg.Paths.TargetDir)
	if err != nil {
		t.Fatalf("NewAnalysis failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Symbol != "RELIANCE" {
		t.Fatalf("expected normalized symbol, got %q", item.Symbol)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %q", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Symbol != "RELIANCE" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewAnalysisRejectsInvalidSymbol(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for _, symbol := range []string{"", "  ", "REL IANCE", "TCS;DROP"} {
		if _, err := store.NewAnalysis(ctx, symbol, cfg.Paths.TargetDir); err == nil {
			t.Fatalf("expected error for symbol %q", symbol)
		}
	}
}

func TestFindActiveBySymbol(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewAnalysis(t, store, cfg, "TCS")
	first.Status = queue.StatusCompleted
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	second := testsupport.NewAnalysis(t, store, cfg, "TCS")
	found, err := store.FindActiveBySymbol(ctx, "tcs")
	if err != nil {
		t.Fatalf("FindActiveBySymbol failed: %v", err)
	}
	if found == nil || found.ID != second.ID {
		t.Fatalf("expected active item %d, got %#v", second.ID, found)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, cfg, "INFY")
	item.Status = queue.StatusScreened
	item.WorkDir = "/tmp/work/INFY"
	item.ScreenerLog = "line one\nline two"
	item.ReportFile = "/tmp/work/INFY/INFY_report_20240102.pdf"
	item.SetProgress("Screening", "Report generated", 100)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusScreened {
		t.Fatalf("unexpected status %q", fetched.Status)
	}
	if fetched.ScreenerLog != "line one\nline two" {
		t.Fatalf("unexpected screener log %q", fetched.ScreenerLog)
	}
	if fetched.ReportFile == "" || fetched.WorkDir == "" {
		t.Fatalf("expected artifact paths to persist: %#v", fetched)
	}
	if fetched.ProgressPercent != 100 {
		t.Fatalf("unexpected progress %f", fetched.ProgressPercent)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"screening", queue.StatusScreening, queue.StatusPending},
		{"downloading", queue.StatusDownloading, queue.StatusScreened},
		{"organizing", queue.StatusOrganizing, queue.StatusDownloaded},
	}
	var ids []int64
	for _, tc := range cases {
		item := testsupport.NewAnalysis(t, store, cfg, "SYM"+tc.name)
		item.Status = tc.initialStatus
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if affected != int64(len(cases)) {
		t.Fatalf("expected %d affected rows, got %d", len(cases), affected)
	}

	for i, tc := range cases {
		fetched, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if fetched.Status != tc.expected {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.expected, fetched.Status)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewAnalysis(t, store, cfg, "STALE")
	stale.Status = queue.StatusScreening
	old := time.Now().UTC().Add(-10 * time.Minute)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewAnalysis(t, store, cfg, "FRESH")
	fresh.Status = queue.StatusDownloading
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	affected, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 reclaimed item, got %d", affected)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("expected pending after reclaim, got %q", reclaimed.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusDownloading {
		t.Fatalf("expected fresh item untouched, got %q", untouched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	failed := testsupport.NewAnalysis(t, store, cfg, "FAIL")
	failed.SetFailed("screener exited with status 2")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	affected, err := store.RetryFailed(ctx, failed.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 retried item, got %d", affected)
	}

	fetched, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %q", fetched.Status)
	}
	if fetched.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", fetched.ErrorMessage)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	pending := testsupport.NewAnalysis(t, store, cfg, "AAA")
	_ = pending
	completed := testsupport.NewAnalysis(t, store, cfg, "BBB")
	completed.Status = queue.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	inflight := testsupport.NewAnalysis(t, store, cfg, "CCC")
	inflight.Status = queue.StatusOrganizing
	if err := store.Update(ctx, inflight); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 || stats[queue.StatusOrganizing] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Processing != 1 || health.Completed != 1 {
		t.Fatalf("unexpected health: %#v", health)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	completed := testsupport.NewAnalysis(t, store, cfg, "DONE")
	completed.Status = queue.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	failed := testsupport.NewAnalysis(t, store, cfg, "BAD")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	testsupport.NewAnalysis(t, store, cfg, "KEEP")

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 completed removed, got %d", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 failed removed, got %d", removed)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].Symbol != "KEEP" {
		t.Fatalf("unexpected remaining items: %#v", items)
	}
}

func TestNextForStatusesOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewAnalysis(t, store, cfg, "ONE")
	testsupport.NewAnalysis(t, store, cfg, "TWO")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest item %d, got %#v", first.ID, next)
	}
}
