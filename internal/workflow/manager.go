package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stockdesk/internal/config"
	"stockdesk/internal/notifications"
	"stockdesk/internal/queue"
	"stockdesk/internal/stage"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor

	stages             []pipelineStage
	startStatuses      []queue.Status
	stageByStart       map[queue.Status]pipelineStage
	processingStatuses []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Screener   stage.Handler
	Downloader stage.Handler
	Organizer  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the pipeline handlers in processing order.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stages = []pipelineStage{
		{
			name:             "screening",
			handler:          set.Screener,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusScreening,
			doneStatus:       queue.StatusScreened,
		},
		{
			name:             "download",
			handler:          set.Downloader,
			startStatus:      queue.StatusScreened,
			processingStatus: queue.StatusDownloading,
			doneStatus:       queue.StatusDownloaded,
		},
		{
			name:             "organizing",
			handler:          set.Organizer,
			startStatus:      queue.StatusDownloaded,
			processingStatus: queue.StatusOrganizing,
			doneStatus:       queue.StatusCompleted,
		},
	}

	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.startStatuses = m.startStatuses[:0]
	m.processingStatuses = m.processingStatuses[:0]
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.startStatuses = append(m.startStatuses, stg.startStatus)
		m.processingStatuses = append(m.processingStatuses, stg.processingStatus)
	}
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
