package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/insights"
)

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Data.Refresh(r.Context(), userID(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, insights.Compute(snap.Tasks))
}

func (s *Server) people(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Data.Refresh(r.Context(), userID(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, insights.People(snap.Tasks))
}

func ownerParam(r *http.Request) string {
	raw := chi.URLParam(r, "owner")
	if owner, err := url.PathUnescape(raw); err == nil {
		return owner
	}
	return raw
}

func (s *Server) lookupPerson(w http.ResponseWriter, r *http.Request) (insights.PersonSummary, bool) {
	snap, err := s.deps.Data.Refresh(r.Context(), userID(r))
	if err != nil {
		s.handleError(w, r, err)
		return insights.PersonSummary{}, false
	}
	p, ok := insights.Person(snap.Tasks, ownerParam(r))
	if !ok {
		respondError(w, http.StatusNotFound, "no tasks for this person")
		return insights.PersonSummary{}, false
	}
	return p, true
}

func (s *Server) person(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.lookupPerson(w, r); ok {
		respondJSON(w, http.StatusOK, p)
	}
}

type followUpRequest struct {
	Post bool `json:"post"`
}

type followUpResponse struct {
	Owner  string `json:"owner"`
	Text   string `json:"text"`
	Posted bool   `json:"posted"`
	TS     string `json:"ts,omitempty"`
}

// followUp drafts the reminder for one owner's open items and, when asked
// and Slack is configured, posts it.
func (s *Server) followUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, ok := s.lookupPerson(w, r)
	if !ok {
		return
	}
	resp := followUpResponse{Owner: p.Owner, Text: p.FollowUp}
	if !req.Post || resp.Text == "" {
		respondJSON(w, http.StatusOK, resp)
		return
	}
	if s.deps.Slack == nil {
		respondError(w, http.StatusBadRequest, "Slack is not configured")
		return
	}

	ts, err := s.deps.Slack.PostFollowUp(r.Context(), p.Owner, p.FollowUp)
	if err != nil {
		s.logger.Error("failed to post follow-up", zap.String("owner", p.Owner), zap.Error(err))
		respondError(w, http.StatusBadGateway, "Posting to Slack failed")
		return
	}
	resp.Posted, resp.TS = true, ts
	respondJSON(w, http.StatusOK, resp)
}
