package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"stockdesk/internal/api"
	"stockdesk/internal/config"
	"stockdesk/internal/logging"
	"stockdesk/internal/queue"
	"stockdesk/internal/services"
)

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	queueSvc *api.QueueService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	svc := api.NewQueueService(d.store, cfg.Paths.TargetDir)
	mux := http.NewServeMux()
	srv := &apiServer{
		bind:     bind,
		logger:   logger,
		daemon:   d,
		queueSvc: svc,
	}

	token := cfg.Paths.APIToken
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/queue", authMiddleware(token, srv.handleQueue))
	mux.HandleFunc("/api/queue/", authMiddleware(token, srv.handleQueueItem))
	mux.HandleFunc("/api/analyze", authMiddleware(token, srv.handleAnalyze))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr returns the bound listen address, useful when the bind port is 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          os.Getpid(),
		QueueDBPath:  status.QueueDBPath,
		LockFilePath: status.LockFilePath,
		Workflow:     api.FromStatusSummary(status.Workflow),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.queueSvc == nil {
		s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: nil})
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		statuses = append(statuses, queue.Status(trimmed))
	}

	items, err := s.queueSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: items})
}

func (s *apiServer) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.queueSvc == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid queue item id")
		return
	}
	item, err := s.queueSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueItemResponse{Item: *item})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.queueSvc == nil {
		s.writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}

	req, err := readSubmission(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, created, err := s.queueSvc.Submit(r.Context(), req.Symbol, req.TargetDir)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, services.Details(err).Message)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	statusCode := http.StatusOK
	if created {
		statusCode = http.StatusCreated
		s.log().Info("analysis queued",
			slog.Int64(logging.FieldItemID, item.ID),
			slog.String(logging.FieldSymbol, item.Symbol))
	}
	s.writeJSON(w, statusCode, api.AnalyzeResponse{Item: item, Created: created})
}

// readSubmission accepts both JSON bodies from the CLI and form posts from
// the web page.
func readSubmission(r *http.Request) (api.AnalyzeRequest, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		var req api.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return api.AnalyzeRequest{}, fmt.Errorf("invalid request body")
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return api.AnalyzeRequest{}, fmt.Errorf("invalid form submission")
	}
	return api.AnalyzeRequest{
		Symbol:    r.PostFormValue("symbol"),
		TargetDir: r.PostFormValue("targetDir"),
	}, nil
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(slog.String("component", "api-server"))
	}
	return logging.NewNop()
}
