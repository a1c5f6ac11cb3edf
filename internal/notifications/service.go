package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockdesk/internal/config"
)

const userAgent = "Stockdesk/0.1.0"

// Event enumerates the workflow milestones that can be announced.
type Event string

const (
	EventAnalysisQueued        Event = "analysis_queued"
	EventAnalysisCompleted     Event = "analysis_completed"
	EventOrganizationCompleted Event = "organization_completed"
	EventError                 Event = "error"
	EventTest                  Event = "test"
)

// Payload carries event-specific values used to render a message.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		completion:   cfg.Notifications.Completion,
		organization: cfg.Notifications.Organization,
		errors:       cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	completion   bool
	organization bool
	errors       bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, enabled := n.render(event, payload)
	if !enabled {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	symbol := stringValue(payload, "symbol")
	switch event {
	case EventAnalysisQueued:
		return message{
			title: "Stockdesk - Queued",
			body:  fmt.Sprintf("Analysis queued: %s", symbol),
			tags:  []string{"stockdesk", "queue", "started"},
		}, n.completion
	case EventAnalysisCompleted:
		return message{
			title:    "Stockdesk - Complete",
			body:     fmt.Sprintf("Analysis complete: %s", symbol),
			tags:     []string{"stockdesk", "analysis", "completed"},
			priority: "high",
		}, n.completion
	case EventOrganizationCompleted:
		body := fmt.Sprintf("Reports filed: %s", symbol)
		if dir := stringValue(payload, "directory"); dir != "" {
			body = fmt.Sprintf("%s\nFolder: %s", body, dir)
		}
		return message{
			title: "Stockdesk - Reports Filed",
			body:  body,
			tags:  []string{"stockdesk", "organize", "completed"},
		}, n.organization
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if label := stringValue(payload, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if err, ok := payload["error"].(error); ok && err != nil {
			builder.WriteString(strings.TrimSpace(err.Error()))
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Stockdesk - Error",
			body:     builder.String(),
			tags:     []string{"stockdesk", "error", "alert"},
			priority: "high",
		}, n.errors
	case EventTest:
		return message{
			title:    "Stockdesk - Test",
			body:     "Notification system test",
			tags:     []string{"stockdesk", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func stringValue(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if value, ok := payload[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
