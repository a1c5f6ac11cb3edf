package main

import (
	"testing"

	"stockdesk/internal/logging"
	"stockdesk/internal/testsupport"
	"stockdesk/internal/workflow"
)

type fakeConfigurer struct {
	stages workflow.StageSet
	called bool
}

func (f *fakeConfigurer) ConfigureStages(stages workflow.StageSet) {
	f.stages = stages
	f.called = true
}

func TestConfigureStages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScripts())

	configurer := &fakeConfigurer{}
	if err := configureStages(configurer, cfg, nil, logging.NewNop()); err != nil {
		t.Fatalf("configureStages: %v", err)
	}
	if !configurer.called {
		t.Fatal("expected stages to be configured")
	}
	if configurer.stages.Screener == nil {
		t.Fatal("screening stage missing")
	}
	if configurer.stages.Downloader == nil {
		t.Fatal("download stage missing")
	}
	if configurer.stages.Organizer == nil {
		t.Fatal("organizing stage missing")
	}
}

func TestConfigureStagesNilConfigurer(t *testing.T) {
	if err := configureStages(nil, nil, nil, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
