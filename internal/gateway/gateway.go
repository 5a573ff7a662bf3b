package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/hermes"
	"github.com/MikeSquared-Agency/didyouthough/internal/metrics"
	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

// ErrValidation marks a request the gateway refuses before touching storage.
var ErrValidation = errors.New("validation failed")

// Repository is durable storage scoped by user id.
type Repository interface {
	AddTasks(ctx context.Context, userID string, tasks []model.Task) error
	AddMeeting(ctx context.Context, userID string, m model.Meeting) error
	Commit(ctx context.Context, userID string, m model.Meeting, tasks []model.Task) error
	GetTask(ctx context.Context, userID, id string) (model.Task, error)
	UpdateTask(ctx context.Context, userID, id string, u model.TaskUpdate) error
	DeleteTask(ctx context.Context, userID, id string) error
	ClearAll(ctx context.Context, userID string) error
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	ListMeetings(ctx context.Context, userID string) ([]model.Meeting, error)
}

// Notifier announces that a user's data changed.
type Notifier interface {
	Notify(ctx context.Context, ev hermes.ChangeEvent) error
}

// Gateway is the only path to storage. Every successful mutation publishes a
// change and answers with a full snapshot of the caller's data.
type Gateway struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu      sync.Mutex
	lastErr map[string]string
}

// New builds a gateway. notifier may be nil, in which case no changes are
// published.
func New(repo Repository, notifier Notifier, logger *zap.Logger) *Gateway {
	return &Gateway{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics.New(),
		now:      time.Now,
		lastErr:  make(map[string]string),
	}
}

// LastError returns the last storage error recorded for the user, or "".
func (g *Gateway) LastError(userID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr[userID]
}

func (g *Gateway) setError(userID string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.lastErr, userID)
		return
	}
	g.lastErr[userID] = err.Error()
}

// Refresh re-fetches everything the user owns, newest first. It clears the
// error slot first and records the failure if the fetch fails.
func (g *Gateway) Refresh(ctx context.Context, userID string) (model.Snapshot, error) {
	g.setError(userID, nil)

	tasks, err := g.repo.ListTasks(ctx, userID)
	if err != nil {
		err = fmt.Errorf("fetch tasks: %w", err)
		g.setError(userID, err)
		return model.Snapshot{Tasks: []model.Task{}, Meetings: []model.Meeting{}, Error: err.Error()}, err
	}
	meetings, err := g.repo.ListMeetings(ctx, userID)
	if err != nil {
		err = fmt.Errorf("fetch meetings: %w", err)
		g.setError(userID, err)
		return model.Snapshot{Tasks: []model.Task{}, Meetings: []model.Meeting{}, Error: err.Error()}, err
	}
	return model.Snapshot{Tasks: tasks, Meetings: meetings}, nil
}

// mutate runs fn, records its outcome and, on success, publishes the change
// and returns a fresh snapshot. Once fn has succeeded the mutation counts as
// done: a failed re-fetch only shows up in the snapshot's error field.
func (g *Gateway) mutate(ctx context.Context, userID, op string, tables []string, fn func() error) (model.Snapshot, error) {
	err := fn()
	g.metrics.Mutations.WithLabelValues(op, metrics.Result(err)).Inc()
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			g.setError(userID, err)
			g.logger.Error("mutation failed",
				zap.String("op", op),
				zap.String("user", userID),
				zap.Error(err),
			)
		}
		return g.current(ctx, userID), err
	}

	g.publish(ctx, userID, op, tables)
	snap, err := g.Refresh(ctx, userID)
	if err != nil {
		g.logger.Warn("refresh after mutation failed",
			zap.String("op", op),
			zap.String("user", userID),
			zap.Error(err),
		)
	}
	return snap, nil
}

// current reads the user's data without touching the error slot and attaches
// whatever the slot holds. Lists that cannot be read come back empty.
func (g *Gateway) current(ctx context.Context, userID string) model.Snapshot {
	snap := model.Snapshot{Tasks: []model.Task{}, Meetings: []model.Meeting{}, Error: g.LastError(userID)}
	if tasks, err := g.repo.ListTasks(ctx, userID); err == nil {
		snap.Tasks = tasks
	}
	if meetings, err := g.repo.ListMeetings(ctx, userID); err == nil {
		snap.Meetings = meetings
	}
	return snap
}

func (g *Gateway) publish(ctx context.Context, userID, op string, tables []string) {
	if g.notifier == nil {
		return
	}
	at := g.now().UTC()
	for _, table := range tables {
		ev := hermes.ChangeEvent{Table: table, Op: op, UserID: userID, At: at}
		if err := g.notifier.Notify(ctx, ev); err != nil {
			g.logger.Warn("failed to publish change",
				zap.String("table", table),
				zap.String("op", op),
				zap.String("user", userID),
				zap.Error(err),
			)
		}
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// prepareTasks applies field defaults and rejects tasks without a description.
func prepareTasks(tasks []model.Task, sourceMeeting string, now time.Time) ([]model.Task, error) {
	out := make([]model.Task, 0, len(tasks))
	for i, t := range tasks {
		t = t.WithDefaults()
		if t.Description == "" {
			return nil, validationError("task %d has no description", i)
		}
		if t.SourceMeeting == "" {
			t.SourceMeeting = sourceMeeting
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now.UTC()
		}
		out = append(out, t)
	}
	return out, nil
}

// AddTasks inserts a batch. Nothing is written unless every task is.
func (g *Gateway) AddTasks(ctx context.Context, userID string, tasks []model.Task) (model.Snapshot, error) {
	prepared, err := prepareTasks(tasks, "", g.now())
	if err != nil {
		return model.Snapshot{}, err
	}
	return g.mutate(ctx, userID, "add_tasks", []string{"tasks"}, func() error {
		return g.repo.AddTasks(ctx, userID, prepared)
	})
}

// ManualTask is a task typed in by the user rather than extracted.
type ManualTask struct {
	Description string `json:"description"`
	Owner       string `json:"owner"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	Initiative  string `json:"initiative"`
}

// AddTask inserts one manually entered task attributed to "Manual".
func (g *Gateway) AddTask(ctx context.Context, userID string, in ManualTask) (model.Snapshot, error) {
	if strings.TrimSpace(in.Description) == "" {
		return model.Snapshot{}, validationError("description is required")
	}
	t := model.Task{
		Description:   in.Description,
		Owner:         in.Owner,
		DueDate:       in.DueDate,
		Priority:      model.ParsePriority(in.Priority),
		Initiative:    in.Initiative,
		Status:        model.StatusOpen,
		SourceMeeting: model.ManualSource,
	}
	return g.AddTasks(ctx, userID, []model.Task{t})
}

func prepareMeeting(m model.Meeting, now time.Time) (model.Meeting, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return m, validationError("meeting name is required")
	}
	if !m.Type.Valid() {
		m.Type = model.MeetingText
	}
	if m.Date == "" {
		m.Date = model.Today(now)
	}
	if m.Decisions == nil {
		m.Decisions = []string{}
	}
	if m.Risks == nil {
		m.Risks = []string{}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now.UTC()
	}
	return m, nil
}

func (g *Gateway) AddMeeting(ctx context.Context, userID string, m model.Meeting) (model.Snapshot, error) {
	prepared, err := prepareMeeting(m, g.now())
	if err != nil {
		return model.Snapshot{}, err
	}
	return g.mutate(ctx, userID, "add_meeting", []string{"meetings"}, func() error {
		return g.repo.AddMeeting(ctx, userID, prepared)
	})
}

// Commit persists a meeting and its tasks together. Tasks without a source
// meeting are attributed to this one.
func (g *Gateway) Commit(ctx context.Context, userID string, m model.Meeting, tasks []model.Task) (model.Snapshot, error) {
	now := g.now()
	meeting, err := prepareMeeting(m, now)
	if err != nil {
		return model.Snapshot{}, err
	}
	prepared, err := prepareTasks(tasks, meeting.Name, now)
	if err != nil {
		return model.Snapshot{}, err
	}
	return g.mutate(ctx, userID, "commit", []string{"meetings", "tasks"}, func() error {
		return g.repo.Commit(ctx, userID, meeting, prepared)
	})
}

// normalizeUpdate validates the provided fields and applies the same
// defaults a new task would get.
func normalizeUpdate(u model.TaskUpdate) (model.TaskUpdate, error) {
	if u.Empty() {
		return u, validationError("no fields to update")
	}
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		if d == "" {
			return u, validationError("description must not be empty")
		}
		u.Description = &d
	}
	if u.Owner != nil && strings.TrimSpace(*u.Owner) == "" {
		owner := model.Unassigned
		u.Owner = &owner
	}
	if u.DueDate != nil {
		due := model.NormalizeDueDate(*u.DueDate)
		u.DueDate = &due
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return u, validationError("priority must be High, Med or Low")
	}
	if u.Initiative != nil && strings.TrimSpace(*u.Initiative) == "" {
		initiative := model.GeneralInitiative
		u.Initiative = &initiative
	}
	if u.Status != nil && !u.Status.Valid() {
		return u, validationError("status must be Open or Done")
	}
	return u, nil
}

// UpdateTask writes only the provided fields. Concurrent updates are not
// detected; the last one to reach storage wins.
func (g *Gateway) UpdateTask(ctx context.Context, userID, id string, u model.TaskUpdate) (model.Snapshot, error) {
	u, err := normalizeUpdate(u)
	if err != nil {
		return model.Snapshot{}, err
	}
	return g.mutate(ctx, userID, "update_task", []string{"tasks"}, func() error {
		return g.repo.UpdateTask(ctx, userID, id, u)
	})
}

func (g *Gateway) DeleteTask(ctx context.Context, userID, id string) (model.Snapshot, error) {
	return g.mutate(ctx, userID, "delete_task", []string{"tasks"}, func() error {
		return g.repo.DeleteTask(ctx, userID, id)
	})
}

// ToggleTaskStatus flips Open and Done. It returns the task as written.
func (g *Gateway) ToggleTaskStatus(ctx context.Context, userID, id string) (model.Task, model.Snapshot, error) {
	t, err := g.repo.GetTask(ctx, userID, id)
	if err != nil {
		g.setError(userID, err)
		g.metrics.Mutations.WithLabelValues("toggle_task", metrics.Result(err)).Inc()
		return model.Task{}, g.current(ctx, userID), err
	}
	next := t.Status.Toggled()
	snap, err := g.UpdateTask(ctx, userID, id, model.TaskUpdate{Status: &next})
	if err != nil {
		return model.Task{}, snap, err
	}
	t.Status = next
	return t, snap, nil
}

// ClearAllData deletes every task and meeting the user owns.
func (g *Gateway) ClearAllData(ctx context.Context, userID string) (model.Snapshot, error) {
	return g.mutate(ctx, userID, "clear_all", []string{"tasks", "meetings"}, func() error {
		return g.repo.ClearAll(ctx, userID)
	})
}
