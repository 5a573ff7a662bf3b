package api

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/extractor"
)

// maxAudioBytes is the largest upload the transcription API accepts.
const maxAudioBytes = 25 << 20

type processRequest struct {
	Content     string `json:"content"`
	MeetingName string `json:"meetingName"`
}

// process runs one extraction and returns it as is. It never stages or
// persists anything.
func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.logger.Warn("unreadable process request", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Processing failed")
		return
	}

	res, err := s.deps.Extractor.Extract(r.Context(), req.Content, req.MeetingName)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, res)
	case errors.Is(err, extractor.ErrUpstream):
		respondError(w, http.StatusInternalServerError, "Processing failed")
	default:
		s.handleError(w, r, err)
	}
}

func (s *Server) transcribe(w http.ResponseWriter, r *http.Request) {
	if s.deps.Transcriber == nil {
		respondError(w, http.StatusInternalServerError, "GROQ_API_KEY not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	start := time.Now()
	text, err := s.deps.Transcriber.Transcribe(r.Context(), header.Filename, file)
	s.metrics.LLMDuration.WithLabelValues("transcription").Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("transcription failed", zap.String("file", header.Filename), zap.Error(err))
		respondError(w, http.StatusBadGateway, "Transcription failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"text": text})
}
