package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type dashboardView struct {
	Strategy   string
	Strategies []priority.StrategyInfo
	Result     *priority.AnalysisResult
	Message    string
}

// handleDashboard renders the ranking of stored tasks. The strategy can be
// picked with ?strategy=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{
		Strategy:   r.URL.Query().Get("strategy"),
		Strategies: priority.Catalog(),
	}
	if view.Strategy == "" {
		view.Strategy = s.analysis.Defaults().Strategy.String()
	}

	res, err := s.analysis.Analyze(r.Context(), analysis.Input{Strategy: view.Strategy})
	switch {
	case err == nil:
		view.Result = res
	case errors.Is(err, priority.ErrNoTasksAvailable), errors.Is(err, priority.ErrInvalidStrategy):
		view.Message = err.Error()
	default:
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, view); err != nil {
		requestLogger(r).Error().Err(err).Msg("render dashboard")
	}
}
