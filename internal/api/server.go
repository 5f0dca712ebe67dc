// Package api serves the task and analysis HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/task"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 4 << 20

// Server provides the HTTP handlers.
type Server struct {
	repo     task.Repository
	analysis *analysis.Service
}

// NewServer creates a new API server.
func NewServer(repo task.Repository, svc *analysis.Service) *Server {
	return &Server{repo: repo, analysis: svc}
}

// Routes returns the router for the API and the dashboard page.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)

	mux.HandleFunc("GET /api/tasks/{$}", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks/{$}", s.handleCreateTask)
	mux.HandleFunc("POST /api/tasks/bulk/{$}", s.handleBulkCreate)
	mux.HandleFunc("DELETE /api/tasks/all/{$}", s.handleDeleteAll)
	mux.HandleFunc("POST /api/tasks/analyze/{$}", s.handleAnalyze)
	mux.HandleFunc("POST /api/tasks/suggest/{$}", s.handleSuggest)
	mux.HandleFunc("POST /api/tasks/compare/{$}", s.handleCompare)
	mux.HandleFunc("GET /api/tasks/{id}/{$}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}/{$}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}/{$}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/strategies/{$}", s.handleStrategies)
	mux.HandleFunc("GET /api/health/{$}", s.handleHealth)
	return withRequestLog(mux)
}

// endpoints lists the routes reported by the health check.
var endpoints = []string{
	"GET /api/tasks/ - List all tasks",
	"POST /api/tasks/ - Create a task",
	"GET /api/tasks/{id}/ - Get task details",
	"PUT /api/tasks/{id}/ - Update a task",
	"DELETE /api/tasks/{id}/ - Delete a task",
	"POST /api/tasks/bulk/ - Create multiple tasks",
	"DELETE /api/tasks/all/ - Delete all tasks",
	"POST /api/tasks/analyze/ - Analyze tasks",
	"POST /api/tasks/suggest/ - Get task suggestions",
	"POST /api/tasks/compare/ - Compare strategies",
	"GET /api/strategies/ - List strategies",
	"GET /api/health/ - Health check",
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withRequestLog tags every request with an id and writes one access log line.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := log.With().Str("request_id", id).Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		event := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func requestLogger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
