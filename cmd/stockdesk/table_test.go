package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTablePadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []tableColumn{
		{Title: "ID", Align: alignRight},
		{Title: "Symbol"},
		{Title: "Status", QueueState: true},
	}, [][]string{
		{"1", "TCS", "completed"},
		{"2", "INFY"},
	})

	out := buf.String()
	for _, want := range []string{"ID", "SYMBOL", "STATUS", "TCS", "INFY", "completed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected table to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for non-terminal output:\n%s", out)
	}
}

func TestQueueStateCellColorsKnownStatuses(t *testing.T) {
	got := queueStateCell("failed")
	if !strings.HasPrefix(got, ansiRed) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected failed cell in red, got %q", got)
	}
	got = queueStateCell("completed")
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected completed cell in green, got %q", got)
	}
	if got := queueStateCell("not-a-status"); got != "not-a-status" {
		t.Fatalf("expected unknown label untouched, got %q", got)
	}
}
