package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/extractor"
	"github.com/MikeSquared-Agency/didyouthough/internal/model"
	"github.com/MikeSquared-Agency/didyouthough/internal/review"
)

type createReviewRequest struct {
	Content     string            `json:"content"`
	MeetingName string            `json:"meetingName"`
	Type        model.MeetingType `json:"type"`
}

// createReview extracts from the content and stages the result for the
// caller, replacing any review already in progress.
func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	now := s.now()
	name := extractor.MeetingName(req.MeetingName, now)
	res, err := s.deps.Extractor.Extract(r.Context(), req.Content, name)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	tasks, meeting := extractor.Normalize(res, name, req.Type, now)
	if meeting.Type == model.MeetingAudio {
		meeting.Transcript = req.Content
	}
	buf, err := s.deps.Reviews.Stage(r.Context(), userID(r), meeting, tasks, res.Warning)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, buf)
}

func (s *Server) currentReview(w http.ResponseWriter, r *http.Request) {
	buf, err := s.deps.Reviews.Current(r.Context(), userID(r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

func (s *Server) editReviewTask(w http.ResponseWriter, r *http.Request) {
	var edit review.TaskEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	buf, err := s.deps.Reviews.EditTask(r.Context(), userID(r), chi.URLParam(r, "taskID"), edit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

func (s *Server) deleteReviewTask(w http.ResponseWriter, r *http.Request) {
	buf, err := s.deps.Reviews.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, buf)
}

type confirmRequest struct {
	Announce bool `json:"announce"`
}

// confirmReview persists the staged meeting and tasks together. With
// announce set and Slack configured, a summary is posted afterwards; a failed
// post does not undo the commit.
func (s *Server) confirmReview(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, committed, err := s.deps.Reviews.Confirm(r.Context(), userID(r), s.deps.Data)
	if err != nil {
		s.dataError(w, r, snap, err)
		return
	}

	if req.Announce && s.deps.Slack != nil {
		if _, err := s.deps.Slack.PostMeetingSummary(r.Context(), committed.Meeting, committed.Tasks); err != nil {
			s.logger.Warn("failed to announce meeting", zap.String("meeting", committed.Meeting.Name), zap.Error(err))
		}
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) discardReview(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reviews.Discard(r.Context(), userID(r)); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
