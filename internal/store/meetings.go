package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

const meetingColumns = `id::text, name, to_char(date, 'YYYY-MM-DD'), type, decisions, risks,
	COALESCE(transcript, ''), created_at`

func (s *Store) AddMeeting(ctx context.Context, userID string, m model.Meeting) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}
	if _, err := insertMeeting(ctx, s.pool, owner, m); err != nil {
		return err
	}
	return nil
}

// Commit writes a meeting and the tasks extracted from it in one
// transaction, linking each task to the meeting row.
func (s *Store) Commit(ctx context.Context, userID string, m model.Meeting, tasks []model.Task) error {
	owner, err := userUUID(userID)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	meetingID, err := insertMeeting(ctx, tx, owner, m)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := insertTask(ctx, tx, owner, &meetingID, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertMeeting(ctx context.Context, q execer, owner uuid.UUID, m model.Meeting) (uuid.UUID, error) {
	id := uuid.New()
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	decisions, risks := m.Decisions, m.Risks
	if decisions == nil {
		decisions = []string{}
	}
	if risks == nil {
		risks = []string{}
	}
	_, err := q.Exec(ctx, `
		INSERT INTO meetings (id, name, date, type, decisions, risks, transcript, created_by, created_at)
		VALUES ($1, $2, COALESCE(NULLIF($3, '')::date, CURRENT_DATE), $4, $5, $6, NULLIF($7, ''), $8, $9)`,
		id, m.Name, m.Date, string(m.Type), decisions, risks, m.Transcript, owner, createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert meeting: %w", err)
	}
	return id, nil
}

// ListMeetings returns the user's meetings, newest first.
func (s *Store) ListMeetings(ctx context.Context, userID string) ([]model.Meeting, error) {
	owner, err := userUUID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE created_by = $1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	meetings := []model.Meeting{}
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(&m.ID, &m.Name, &m.Date, &m.Type, &m.Decisions, &m.Risks, &m.Transcript, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		if m.Decisions == nil {
			m.Decisions = []string{}
		}
		if m.Risks == nil {
			m.Risks = []string{}
		}
		m.CreatedAt = m.CreatedAt.UTC()
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
