package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"stockdesk/internal/api"
	"stockdesk/internal/queue"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Stockdesk", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Stockdesk:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Stockdesk", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderDaemonStatus(t *testing.T) {
	status := &api.DaemonStatus{
		Running:     true,
		PID:         1234,
		QueueDBPath: "/var/lib/stockdesk/queue.db",
		Workflow: api.WorkflowStatus{
			Running:    true,
			QueueStats: map[string]int{"pending": 2, "failed": 1},
			StageHealth: []api.StageHealth{
				{Name: "screening", Ready: true, Detail: "screener script ready"},
				{Name: "download", Ready: false, Detail: "script missing"},
			},
		},
	}

	var buf bytes.Buffer
	renderDaemonStatus(&buf, status, false)
	out := buf.String()

	for _, want := range []string{
		"== Daemon ==",
		"[OK] yes",
		"1234",
		"== Stages ==",
		"[OK] screener script ready",
		"[ERROR] script missing",
		"== Queue ==",
		"Pending",
		"Failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestShouldColorizeRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Fatalf("expected NO_COLOR to disable color")
	}
}

func TestStatusKindForQueue(t *testing.T) {
	cases := map[queue.Status]statusKind{
		queue.StatusPending:     statusInfo,
		queue.StatusScreening:   statusWarn,
		queue.StatusDownloading: statusWarn,
		queue.StatusCompleted:   statusOK,
		queue.StatusFailed:      statusError,
	}
	for status, want := range cases {
		if got := statusKindForQueue(status); got != want {
			t.Fatalf("statusKindForQueue(%s) = %v, want %v", status, got, want)
		}
	}
}
