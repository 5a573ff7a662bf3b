package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

const taskColumns = `id::text, description, owner, due_date, priority, initiative, status,
	source_meeting, source_quote, source_speaker, COALESCE(meeting_id::text, ''), created_at`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AddTasks inserts tasks in one transaction. Either every row is written or
// none is.
func (s *Store) AddTasks(ctx context.Context, userID string, tasks []model.Task) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tasks {
		if err := insertTask(ctx, tx, owner, nil, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, q execer, owner uuid.UUID, meetingID *uuid.UUID, t model.Task) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO tasks (id, description, owner, due_date, priority, initiative, status,
			source_meeting, source_quote, source_speaker, meeting_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`,
		uuid.New(), t.Description, t.Owner, t.DueDate, string(t.Priority), t.Initiative, string(t.Status),
		t.SourceMeeting, t.SourceQuote, t.SourceSpeaker, meetingID, owner, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID, id string) (model.Task, error) {
	owner, err := userUUID(userID)
	if err != nil {
		return model.Task{}, err
	}
	taskID, err := rowUUID(id)
	if err != nil {
		return model.Task{}, err
	}

	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND created_by = $2`, taskID, owner)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	owner, err := userUUID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE created_by = $1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask writes only the fields set in u. There is no version check:
// the last write to reach the database wins.
func (s *Store) UpdateTask(ctx context.Context, userID, id string, u model.TaskUpdate) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}
	taskID, err := rowUUID(id)
	if err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Owner != nil {
		set("owner", *u.Owner)
	}
	if u.DueDate != nil {
		set("due_date", *u.DueDate)
	}
	if u.Priority != nil {
		set("priority", string(*u.Priority))
	}
	if u.Initiative != nil {
		set("initiative", *u.Initiative)
	}
	if u.Status != nil {
		set("status", string(*u.Status))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, taskID, owner)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND created_by = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}
	taskID, err := rowUUID(id)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND created_by = $2`, taskID, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAll deletes every task and meeting the user created.
func (s *Store) ClearAll(ctx context.Context, userID string) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE created_by = $1`, owner); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM meetings WHERE created_by = $1`, owner); err != nil {
		return fmt.Errorf("delete meetings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.Description, &t.Owner, &t.DueDate, &t.Priority, &t.Initiative, &t.Status,
		&t.SourceMeeting, &t.SourceQuote, &t.SourceSpeaker, &t.MeetingID, &t.CreatedAt,
	)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, err
}
