package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/didyouthough/internal/gateway"
	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

// getData returns the caller's snapshot, optionally narrowed by
// ?status=Open|Done and ?owner=<name>.
func (s *Server) getData(w http.ResponseWriter, r *http.Request) {
	filter := model.TaskFilter{
		Status: model.Status(r.URL.Query().Get("status")),
		Owner:  r.URL.Query().Get("owner"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondError(w, http.StatusBadRequest, "status must be Open or Done")
		return
	}

	snap, err := s.deps.Data.Refresh(r.Context(), userID(r))
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}

	filtered := make([]model.Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if filter.Match(t) {
			filtered = append(filtered, t)
		}
	}
	snap.Tasks = filtered
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) clearData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Data.ClearAllData(r.Context(), userID(r))
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var in gateway.ManualTask
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	snap, err := s.deps.Data.AddTask(r.Context(), userID(r), in)
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) addMeeting(w http.ResponseWriter, r *http.Request) {
	var m model.Meeting
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	snap, err := s.deps.Data.AddMeeting(r.Context(), userID(r), m)
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var u model.TaskUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	snap, err := s.deps.Data.UpdateTask(r.Context(), userID(r), chi.URLParam(r, "taskID"), u)
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Data.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type toggleResponse struct {
	model.Snapshot
	Task          model.Task `json:"task"`
	JustCompleted string     `json:"justCompleted,omitempty"`
}

// toggleTask flips a task between Open and Done. Completing a task reports
// its description in justCompleted.
func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	task, snap, err := s.deps.Data.ToggleTaskStatus(r.Context(), userID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}
	resp := toggleResponse{Snapshot: snap, Task: task}
	if task.Status == model.StatusDone {
		resp.JustCompleted = task.Description
	}
	respondJSON(w, http.StatusOK, resp)
}
