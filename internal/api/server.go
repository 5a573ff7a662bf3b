package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/auth"
	"github.com/MikeSquared-Agency/didyouthough/internal/extractor"
	"github.com/MikeSquared-Agency/didyouthough/internal/gateway"
	"github.com/MikeSquared-Agency/didyouthough/internal/hermes"
	"github.com/MikeSquared-Agency/didyouthough/internal/metrics"
	"github.com/MikeSquared-Agency/didyouthough/internal/model"
	"github.com/MikeSquared-Agency/didyouthough/internal/review"
	"github.com/MikeSquared-Agency/didyouthough/internal/store"
)

type Extractor interface {
	Extract(ctx context.Context, content, meetingName string) (*extractor.Result, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Data is the persistence gateway as seen by the handlers.
type Data interface {
	Refresh(ctx context.Context, userID string) (model.Snapshot, error)
	AddTask(ctx context.Context, userID string, in gateway.ManualTask) (model.Snapshot, error)
	AddMeeting(ctx context.Context, userID string, m model.Meeting) (model.Snapshot, error)
	Commit(ctx context.Context, userID string, m model.Meeting, tasks []model.Task) (model.Snapshot, error)
	UpdateTask(ctx context.Context, userID, id string, u model.TaskUpdate) (model.Snapshot, error)
	DeleteTask(ctx context.Context, userID, id string) (model.Snapshot, error)
	ToggleTaskStatus(ctx context.Context, userID, id string) (model.Task, model.Snapshot, error)
	ClearAllData(ctx context.Context, userID string) (model.Snapshot, error)
}

// ChangeFeed delivers "something changed" notifications for one user.
type ChangeFeed interface {
	Subscribe(userID string, handler func(hermes.ChangeEvent)) (func(), error)
}

var _ Data = (*gateway.Gateway)(nil)

type Poster interface {
	PostFollowUp(ctx context.Context, owner, text string) (string, error)
	PostMeetingSummary(ctx context.Context, meeting model.Meeting, tasks []model.Task) (string, error)
}

// Deps are the collaborators the server routes to. Transcriber, Changes and
// Slack may be nil.
type Deps struct {
	Extractor   Extractor
	Transcriber Transcriber
	Reviews     *review.Service
	Data        Data
	Changes     ChangeFeed
	Slack       Poster
	Auth        *auth.Validator
	Logger      *zap.Logger
}

type Server struct {
	router  *chi.Mux
	http    *http.Server
	deps    Deps
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	heartbeat time.Duration
}

func NewServer(port int, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(deps.Logger))
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		deps:      deps,
		logger:    deps.Logger,
		metrics:   metrics.New(),
		now:       time.Now,
		heartbeat: 25 * time.Second,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/process", s.process)
		r.Post("/transcribe", s.transcribe)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Auth, deps.Logger))

			r.Post("/reviews", s.createReview)
			r.Route("/reviews/current", func(r chi.Router) {
				r.Get("/", s.currentReview)
				r.Delete("/", s.discardReview)
				r.Post("/confirm", s.confirmReview)
				r.Patch("/tasks/{taskID}", s.editReviewTask)
				r.Delete("/tasks/{taskID}", s.deleteReviewTask)
			})

			r.Get("/data", s.getData)
			r.Delete("/data", s.clearData)
			r.Post("/tasks", s.addTask)
			r.Patch("/tasks/{taskID}", s.updateTask)
			r.Delete("/tasks/{taskID}", s.deleteTask)
			r.Post("/tasks/{taskID}/toggle", s.toggleTask)
			r.Post("/meetings", s.addMeeting)
			r.Get("/events", s.events)

			r.Get("/stats", s.stats)
			r.Get("/people", s.people)
			r.Get("/people/{owner}", s.person)
			r.Post("/people/{owner}/follow-up", s.followUp)
		})
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("API server starting", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

const maxJSONBody = 1 << 20

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// handleError maps a domain error onto a status code and a message safe to
// show the caller.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, extractor.ErrNoContent):
		respondError(w, http.StatusBadRequest, "No content provided")
	case errors.Is(err, extractor.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "GROQ_API_KEY not configured")
	case errors.Is(err, extractor.ErrUpstream):
		respondError(w, http.StatusBadGateway, "Processing failed")
	case errors.Is(err, gateway.ErrValidation), errors.Is(err, review.ErrInvalidEdit):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, review.ErrNoReview), errors.Is(err, review.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// dataError answers a failed gateway call. Storage failures are sent as the
// snapshot the gateway returned, whose error field carries the recorded
// error, so the client can show it next to the data it still has.
func (s *Server) dataError(w http.ResponseWriter, r *http.Request, snap model.Snapshot, err error) {
	if snap.Error == "" || errors.Is(err, gateway.ErrValidation) || errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, review.ErrNoReview) {
		s.handleError(w, r, err)
		return
	}
	s.logger.Error("data operation failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if snap.Meetings == nil {
		snap.Meetings = []model.Meeting{}
	}
	respondJSON(w, http.StatusInternalServerError, snap)
}

// userID returns the authenticated caller. Routes behind auth.Middleware
// always have one.
func userID(r *http.Request) string {
	u, _ := auth.UserFrom(r.Context())
	return u.ID
}
