package main

import (
	"testing"

	"stockdesk/internal/testsupport"
)

func TestStatusFallsBackToLocalQueue(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.NewAnalysis(t, env.store, env.cfg, "TCS")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "daemon not reachable")
	requireContains(t, out, "Pending")
}
