package api

import (
	"context"
	"fmt"
	"strings"

	"stockdesk/internal/queue"
	"stockdesk/internal/services"
)

// QueueReader abstracts queue persistence interactions needed for API queries.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
}

// QueueStore extends QueueReader with the mutations analysis submission needs.
type QueueStore interface {
	QueueReader
	NewAnalysis(ctx context.Context, symbol, targetDir string) (*queue.Item, error)
	FindActiveBySymbol(ctx context.Context, symbol string) (*queue.Item, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store     QueueStore
	targetDir string
}

// NewQueueService constructs a QueueService around the provided store.
// targetDir is applied to newly submitted analyses.
func NewQueueService(store QueueStore, targetDir string) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store, targetDir: targetDir}
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns queue summary counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]int, len(stats))
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged, nil
}

// Describe fetches a single queue item.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// Submit queues a new analysis for symbol. An empty targetDir falls back to
// the service default. When an analysis for the same symbol is already in
// flight the existing entry is returned with created=false instead of
// enqueueing a duplicate.
func (s *QueueService) Submit(ctx context.Context, symbol, targetDir string) (QueueItem, bool, error) {
	if s == nil || s.store == nil {
		return QueueItem{}, false, fmt.Errorf("queue service not initialized")
	}
	normalized, err := queue.ValidateSymbol(symbol)
	if err != nil {
		return QueueItem{}, false, services.Wrap(services.ErrValidation, "api", "submit", "invalid symbol", err)
	}
	existing, err := s.store.FindActiveBySymbol(ctx, normalized)
	if err != nil {
		return QueueItem{}, false, err
	}
	if existing != nil {
		return FromQueueItem(existing), false, nil
	}
	if strings.TrimSpace(targetDir) == "" {
		targetDir = s.targetDir
	}
	item, err := s.store.NewAnalysis(ctx, normalized, targetDir)
	if err != nil {
		return QueueItem{}, false, err
	}
	return FromQueueItem(item), true, nil
}
