package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stockdesk/internal/queue"
	"stockdesk/internal/services/histdata"
	"stockdesk/internal/services/screener"
)

// Artifact describes one script output the organizer files into the target
// directory: how to locate it in the work directory, how to name the filed
// copy, and which queue item field records the final path.
type Artifact struct {
	Label    string
	Pattern  func(symbol string) string
	DestName func(symbol, timestamp string) string
	Record   func(item *queue.Item, path string)
}

// Artifacts returns the outputs every completed analysis is expected to
// produce, in filing order.
func Artifacts() []Artifact {
	return []Artifact{
		{
			Label:   "screener report",
			Pattern: screener.OutputPattern,
			DestName: func(symbol, timestamp string) string {
				return fmt.Sprintf("%s_report_%s.pdf", symbol, timestamp)
			},
			Record: func(item *queue.Item, path string) { item.ReportFile = path },
		},
		{
			Label:   "weekly data",
			Pattern: histdata.OutputPattern,
			DestName: func(symbol, timestamp string) string {
				return fmt.Sprintf("NSE_%s_weekly_3years_%s.csv", symbol, timestamp)
			},
			Record: func(item *queue.Item, path string) { item.DataFile = path },
		},
	}
}

// findArtifact locates the newest file in workDir matching the artifact
// pattern for symbol. os.ErrNotExist is returned when nothing matches.
func findArtifact(workDir, symbol string, artifact Artifact) (string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, artifact.Pattern(symbol)))
	if err != nil {
		return "", fmt.Errorf("match %s: %w", artifact.Label, err)
	}
	var (
		newest     string
		newestTime int64
	)
	for _, match := range matches {
		info, statErr := os.Stat(match)
		if statErr != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestTime {
			newest = match
			newestTime = info.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%s matching %s: %w", artifact.Label, artifact.Pattern(symbol), os.ErrNotExist)
	}
	return newest, nil
}

// nextDestPath returns the first non-existing destination path for an
// artifact, appending a numeric suffix when the timestamped name collides.
func nextDestPath(dir, symbol, timestamp string, artifact Artifact) (string, error) {
	const maxAttempts = 10000
	base := artifact.DestName(symbol, timestamp)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted destination filename slots in %s", dir)
}
