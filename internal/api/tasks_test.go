package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

func addTask(t *testing.T, env *testEnv, body map[string]string) model.Snapshot {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/tasks", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Snapshot](t, w)
}

func TestTasks_AddManual(t *testing.T) {
	env := newTestEnv(t)
	snap := addTask(t, env, map[string]string{"description": "Call the vendor", "priority": "asap"})

	require.Len(t, snap.Tasks, 1)
	task := snap.Tasks[0]
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, model.Unassigned, task.Owner)
	assert.Equal(t, model.ManualSource, task.SourceMeeting)
	assert.Equal(t, model.StatusOpen, task.Status)

	w := env.do(t, http.MethodPost, "/api/tasks", map[string]string{"description": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTasks_ToggleReportsCompletion(t *testing.T) {
	env := newTestEnv(t)
	id := addTask(t, env, map[string]string{"description": "Call the vendor"}).Tasks[0].ID

	w := env.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[toggleResponse](t, w)
	assert.Equal(t, model.StatusDone, resp.Task.Status)
	assert.Equal(t, "Call the vendor", resp.JustCompleted)
	assert.Equal(t, model.StatusDone, resp.Tasks[0].Status)

	w = env.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.NotContains(t, body, "justCompleted")
}

func TestTasks_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	id := addTask(t, env, map[string]string{"description": "Call the vendor"}).Tasks[0].ID

	w := env.do(t, http.MethodPatch, "/api/tasks/"+id, map[string]string{"owner": "Carol", "dueDate": "2024-02-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	task := decode[model.Snapshot](t, w).Tasks[0]
	assert.Equal(t, "Carol", task.Owner)
	assert.Equal(t, "2024-02-01", task.DueDate)

	w = env.do(t, http.MethodPatch, "/api/tasks/"+id, map[string]string{"status": "Archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/api/tasks/not-a-task", map[string]string{"owner": "Carol"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[model.Snapshot](t, w).Tasks)

	w = env.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasks_OtherUsersRowsAreInvisible(t *testing.T) {
	env := newTestEnv(t)
	id := addTask(t, env, map[string]string{"description": "Call the vendor"}).Tasks[0].ID

	other := signToken(t, "6f1c1a8e-0000-4000-8000-000000000002")
	w := env.doAs(t, other, http.MethodGet, "/api/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[model.Snapshot](t, w).Tasks)

	w = env.doAs(t, other, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestData_Filters(t *testing.T) {
	env := newTestEnv(t)
	addTask(t, env, map[string]string{"description": "a", "owner": "Alice"})
	addTask(t, env, map[string]string{"description": "b", "owner": "Bob"})
	id := addTask(t, env, map[string]string{"description": "c", "owner": "Alice"}).Tasks[0].ID
	env.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", nil)

	w := env.do(t, http.MethodGet, "/api/data?owner=Alice", nil)
	assert.Len(t, decode[model.Snapshot](t, w).Tasks, 2)

	w = env.do(t, http.MethodGet, "/api/data?owner=Alice&status=Open", nil)
	tasks := decode[model.Snapshot](t, w).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Description)

	w = env.do(t, http.MethodGet, "/api/data?status=Closed", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestData_AddMeetingAndClear(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/meetings", map[string]any{"name": "Retro", "type": "bogus", "decisions": []string{"Keep"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snap := decode[model.Snapshot](t, w)
	require.Len(t, snap.Meetings, 1)
	assert.Equal(t, model.MeetingText, snap.Meetings[0].Type)
	assert.NotEmpty(t, snap.Meetings[0].Date)

	w = env.do(t, http.MethodPost, "/api/meetings", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	addTask(t, env, map[string]string{"description": "a"})
	w = env.do(t, http.MethodDelete, "/api/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[model.Snapshot](t, w)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.Meetings)
}
