package gateway

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
	"github.com/MikeSquared-Agency/didyouthough/internal/store"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*store.Store)(nil)
)

type memTask struct {
	seq  int
	task model.Task
}

type memMeeting struct {
	seq     int
	meeting model.Meeting
}

// MemoryRepository keeps everything in process memory with the same scoping
// rules as the Postgres store. Data is lost on restart.
type MemoryRepository struct {
	mu       sync.Mutex
	seq      int
	tasks    map[string]map[string]memTask
	meetings map[string][]memMeeting
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks:    make(map[string]map[string]memTask),
		meetings: make(map[string][]memMeeting),
	}
}

func (r *MemoryRepository) insertTask(userID string, t model.Task, meetingID string) {
	r.seq++
	t.ID = uuid.NewString()
	t.MeetingID = meetingID
	if r.tasks[userID] == nil {
		r.tasks[userID] = make(map[string]memTask)
	}
	r.tasks[userID][t.ID] = memTask{seq: r.seq, task: t}
}

func (r *MemoryRepository) insertMeeting(userID string, m model.Meeting) string {
	r.seq++
	m.ID = uuid.NewString()
	r.meetings[userID] = append(r.meetings[userID], memMeeting{seq: r.seq, meeting: m})
	return m.ID
}

func (r *MemoryRepository) AddTasks(_ context.Context, userID string, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tasks {
		r.insertTask(userID, t, "")
	}
	return nil
}

func (r *MemoryRepository) AddMeeting(_ context.Context, userID string, m model.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertMeeting(userID, m)
	return nil
}

func (r *MemoryRepository) Commit(_ context.Context, userID string, m model.Meeting, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.insertMeeting(userID, m)
	for _, t := range tasks {
		r.insertTask(userID, t, id)
	}
	return nil
}

func (r *MemoryRepository) GetTask(_ context.Context, userID, id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[userID][id]
	if !ok {
		return model.Task{}, store.ErrNotFound
	}
	return e.task, nil
}

func (r *MemoryRepository) UpdateTask(_ context.Context, userID, id string, u model.TaskUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[userID][id]
	if !ok {
		return store.ErrNotFound
	}
	u.Apply(&e.task)
	r.tasks[userID][id] = e
	return nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[userID][id]; !ok {
		return store.ErrNotFound
	}
	delete(r.tasks[userID], id)
	return nil
}

func (r *MemoryRepository) ClearAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, userID)
	delete(r.meetings, userID)
	return nil
}

// ListTasks returns the user's tasks, newest first.
func (r *MemoryRepository) ListTasks(_ context.Context, userID string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]memTask, 0, len(r.tasks[userID]))
	for _, e := range r.tasks[userID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]model.Task, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.task)
	}
	return out, nil
}

// ListMeetings returns the user's meetings, newest first.
func (r *MemoryRepository) ListMeetings(_ context.Context, userID string) ([]model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append([]memMeeting(nil), r.meetings[userID]...)
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.meeting.CreatedAt.Equal(b.meeting.CreatedAt) {
			return a.meeting.CreatedAt.After(b.meeting.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]model.Meeting, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.meeting)
	}
	return out, nil
}
