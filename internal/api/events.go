package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/hermes"
)

// events streams the caller's snapshot as server-sent events: once on
// connect, then again after every change notification. Bursts of changes
// collapse into one refresh.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	user := userID(r)
	ctx := r.Context()

	changed := make(chan struct{}, 1)
	if s.deps.Changes != nil {
		unsubscribe, err := s.deps.Changes.Subscribe(user, func(hermes.ChangeEvent) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		defer unsubscribe()
	}

	s.metrics.ChangeSubscribers.Inc()
	defer s.metrics.ChangeSubscribers.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := s.sendSnapshot(w, r, user); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			if err := s.sendSnapshot(w, r, user); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// sendSnapshot re-fetches and writes one refresh event. A failed fetch is
// sent as the snapshot's error field rather than closing the stream.
func (s *Server) sendSnapshot(w http.ResponseWriter, r *http.Request, user string) error {
	snap, err := s.deps.Data.Refresh(r.Context(), user)
	if err != nil {
		s.logger.Warn("refresh for change stream failed", zap.String("user", user), zap.Error(err))
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", payload)
	return err
}
