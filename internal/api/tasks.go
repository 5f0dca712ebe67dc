package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metalagman/triage/internal/task"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.repo.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"count":  len(tasks),
		"tasks":  tasks,
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in task.Task
	if err := decodeBody(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.repo.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	requestLogger(r).Info().Str("task_id", created.ID.String()).Msg("task created")
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  statusSuccess,
		"message": "Task created successfully",
		"task":    created,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), task.ID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"task":   t,
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch task.Patch
	if err := decodeBody(w, r, &patch, false); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.repo.Update(r.Context(), task.ID(r.PathValue("id")), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "Task updated successfully",
		"task":    updated,
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := task.ID(r.PathValue("id"))
	if err := s.repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": fmt.Sprintf("Task %s deleted successfully", id),
	})
}

type bulkRequest struct {
	Tasks []task.Task `json:"tasks"`
}

type bulkFailure struct {
	Index  int               `json:"index"`
	Data   task.Task         `json:"data"`
	Errors []task.FieldError `json:"errors"`
}

type bulkResponse struct {
	Status       string        `json:"status"`
	CreatedCount int           `json:"created_count"`
	CreatedTasks []task.Task   `json:"created_tasks"`
	FailedCount  int           `json:"failed_count,omitempty"`
	Errors       []bulkFailure `json:"errors,omitempty"`
}

// handleBulkCreate stores every valid task in one transaction and reports the
// invalid ones by position.
func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var in bulkRequest
	if err := decodeBody(w, r, &in, false); err != nil {
		writeError(w, r, err)
		return
	}
	if len(in.Tasks) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: statusError, Message: "No tasks provided"})
		return
	}

	resp := bulkResponse{Status: statusSuccess, CreatedTasks: []task.Task{}}
	valid := make([]task.Task, 0, len(in.Tasks))
	for idx, t := range in.Tasks {
		err := t.Validate()
		if err == nil {
			valid = append(valid, t)
			continue
		}
		var verr *task.ValidationError
		if !errors.As(err, &verr) {
			writeError(w, r, err)
			return
		}
		resp.Errors = append(resp.Errors, bulkFailure{Index: idx, Data: t, Errors: verr.Fields})
	}

	if len(valid) > 0 {
		created, err := s.repo.CreateMany(r.Context(), valid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.CreatedTasks = created
	}
	resp.CreatedCount = len(resp.CreatedTasks)
	if len(resp.Errors) > 0 {
		resp.Status = statusPartial
		resp.FailedCount = len(resp.Errors)
	}
	requestLogger(r).Info().Int("created", resp.CreatedCount).Int("failed", resp.FailedCount).Msg("bulk create")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.DeleteAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": fmt.Sprintf("Deleted %d tasks", n),
	})
}
