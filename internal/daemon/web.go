package daemon

import (
	_ "embed"
	"html/template"
	"net/http"

	"log/slog"

	"stockdesk/internal/queue"
	"stockdesk/internal/services"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexItem struct {
	ID              int64
	Symbol          string
	StatusLabel     string
	StatusClass     string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	ReportFile      string
	DataFile        string
}

type indexPage struct {
	Queued string
	Error  string
	Items  []indexItem
}

// handleIndex renders the submission form and current queue state. The page
// reloads itself while analyses are in flight; no client-side framework needed.
func (s *apiServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	page := indexPage{
		Queued: r.URL.Query().Get("queued"),
		Error:  r.URL.Query().Get("error"),
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		// Form submissions land here so the browser flow stays on one URL.
		req, err := readSubmission(r)
		if err == nil {
			_, _, err = s.queueSvc.Submit(r.Context(), req.Symbol, req.TargetDir)
		}
		if err != nil {
			http.Redirect(w, r, "/?error="+template.URLQueryEscaper(webErrorMessage(err)), http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/?queued="+template.URLQueryEscaper(queue.NormalizeSymbol(req.Symbol)), http.StatusSeeOther)
		return
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.queueSvc.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, item := range items {
		page.Items = append(page.Items, indexItem{
			ID:              item.ID,
			Symbol:          item.Symbol,
			StatusLabel:     item.StatusLabel,
			StatusClass:     statusClass(queue.Status(item.Status)),
			ProgressPercent: item.Progress.Percent,
			ProgressMessage: item.Progress.Message,
			ErrorMessage:    item.ErrorMessage,
			ReportFile:      item.ReportFile,
			DataFile:        item.DataFile,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		s.log().Error("failed to render index page", slog.String("error", err.Error()))
	}
}

func statusClass(status queue.Status) string {
	switch status {
	case queue.StatusCompleted:
		return "completed"
	case queue.StatusFailed:
		return "failed"
	case queue.StatusPending:
		return "pending"
	default:
		return "active"
	}
}

func webErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return services.Details(err).Message
}
