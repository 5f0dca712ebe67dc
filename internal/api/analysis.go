package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/metalagman/triage/internal/analysis"
	"github.com/metalagman/triage/internal/priority"
	"github.com/metalagman/triage/internal/task"
)

type analysisRequest struct {
	Tasks    []task.Task     `json:"tasks"`
	Strategy string          `json:"strategy"`
	Count    json.RawMessage `json:"count"`
}

func (req analysisRequest) input() analysis.Input {
	return analysis.Input{Tasks: req.Tasks, Strategy: req.Strategy, Count: parseCount(req.Count)}
}

// parseCount accepts a JSON number or numeric string. Anything else yields 0
// so the configured default applies.
func parseCount(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
	} else {
		text = string(raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

type analysisResponse struct {
	Status string `json:"status"`
	*priority.AnalysisResult
}

type suggestionResponse struct {
	Status string `json:"status"`
	*priority.SuggestionResult
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.analysis.Analyze(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{Status: statusSuccess, AnalysisResult: res})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.analysis.Suggest(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionResponse{Status: statusSuccess, SuggestionResult: res})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := s.analysis.Compare(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"results": results,
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     statusSuccess,
		"default":    s.analysis.Defaults().Strategy,
		"strategies": priority.Catalog(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.analysis.StoredCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"message":              "triage API is running",
		"database_tasks":       n,
		"available_endpoints":  endpoints,
		"available_strategies": priority.StrategyNames(),
	})
}
