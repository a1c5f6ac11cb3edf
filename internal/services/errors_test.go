package services_test

import (
	"errors"
	"strings"
	"testing"

	"stockdesk/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrScriptExecution, "screening", "run script", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrScriptExecution) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"screening", "run script", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "organizing", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDetailsStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "screening", "validate inputs", "Symbol must not be empty", nil)
	details := services.Details(err)
	if strings.Contains(details.Message, services.ErrValidation.Error()) {
		t.Fatalf("expected marker stripped, got %q", details.Message)
	}
	if !strings.Contains(details.Message, "Symbol must not be empty") {
		t.Fatalf("expected message retained, got %q", details.Message)
	}

	if got := services.Details(nil).Message; got != "" {
		t.Fatalf("expected empty details for nil error, got %q", got)
	}
}
