package queue

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusScreening   Status = "screening"
	StatusScreened    Status = "screened"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusOrganizing  Status = "organizing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusScreening,
	StatusScreened,
	StatusDownloading,
	StatusDownloaded,
	StatusOrganizing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusScreening:   {},
	StatusDownloading: {},
	StatusOrganizing:  {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusScreening, to: StatusPending},
	{from: StatusDownloading, to: StatusScreened},
	{from: StatusOrganizing, to: StatusDownloaded},
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents an analysis request persisted in SQLite.
type Item struct {
	ID              int64
	Symbol          string
	TargetDir       string
	WorkDir         string
	Status          Status
	ScreenerLog     string
	DownloaderLog   string
	ReportFile      string
	DataFile        string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

var titleCaser = cases.Title(language.English)

// DisplayLabel returns a human readable label for presentation in the CLI
// and the web interface.
func (s Status) DisplayLabel() string {
	return titleCaser.String(string(s))
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol rejects empty or non-alphanumeric ticker symbols. The
// returned value is the normalized form.
func ValidateSymbol(symbol string) (string, error) {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return "", fmt.Errorf("symbol must not be empty")
	}
	for _, r := range normalized {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("symbol %q contains invalid character %q", normalized, r)
		}
	}
	return normalized, nil
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether the item has finished, successfully or not.
func (i Item) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}

// InitProgress resets progress fields for a new stage. If ProgressStage is
// currently empty, it is set to the provided stage value; otherwise the
// existing stage is preserved to support resume scenarios.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}
