package api

import (
	"testing"

	"stockdesk/internal/queue"
	"stockdesk/internal/stage"
	"stockdesk/internal/workflow"
)

func TestFromStatusSummaryCarriesLastError(t *testing.T) {
	summary := workflow.StatusSummary{
		Running:   true,
		LastError: "screener script exited with status 2",
		QueueStats: map[queue.Status]int{
			queue.StatusFailed: 1,
		},
	}

	status := FromStatusSummary(summary)
	if !status.Running {
		t.Fatal("expected running workflow")
	}
	if status.LastError != "screener script exited with status 2" {
		t.Fatalf("unexpected last error: %q", status.LastError)
	}
	if status.QueueStats[string(queue.StatusFailed)] != 1 {
		t.Fatalf("unexpected queue stats: %+v", status.QueueStats)
	}
}

func TestFromStatusSummarySortsStageHealth(t *testing.T) {
	summary := workflow.StatusSummary{
		StageHealth: map[string]stage.Health{
			"screening":  stage.Healthy("screening"),
			"download":   stage.Unhealthy("download", "script missing"),
			"organizing": stage.Healthy("organizing"),
		},
	}

	status := FromStatusSummary(summary)
	if len(status.StageHealth) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(status.StageHealth))
	}
	want := []string{"download", "organizing", "screening"}
	for i, name := range want {
		if status.StageHealth[i].Name != name {
			t.Fatalf("expected %q at index %d, got %q", name, i, status.StageHealth[i].Name)
		}
	}
	if status.StageHealth[0].Ready || status.StageHealth[0].Detail != "script missing" {
		t.Fatalf("expected unhealthy download stage, got %+v", status.StageHealth[0])
	}
}
