package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID           int64         `json:"id"`
	Symbol       string        `json:"symbol"`
	Status       string        `json:"status"`
	StatusLabel  string        `json:"statusLabel"`
	Progress     QueueProgress `json:"progress"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
	TargetDir    string        `json:"targetDir,omitempty"`
	ReportFile   string        `json:"reportFile,omitempty"`
	DataFile     string        `json:"dataFile,omitempty"`
}

// QueueProgress captures stage progress information for a queue entry.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastItem    *QueueItem     `json:"lastItem,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// AnalyzeRequest is the submission payload for a new analysis. TargetDir is
// optional; when empty the daemon's configured target directory applies.
type AnalyzeRequest struct {
	Symbol    string `json:"symbol"`
	TargetDir string `json:"targetDir,omitempty"`
}

// AnalyzeResponse reports the queue entry created (or reused) for a submission.
type AnalyzeResponse struct {
	Item    QueueItem `json:"item"`
	Created bool      `json:"created"`
}
