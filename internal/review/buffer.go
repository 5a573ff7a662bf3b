package review

import (
	"errors"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

var (
	ErrNoReview     = errors.New("no review in progress")
	ErrTaskNotFound = errors.New("task not in review")
	ErrInvalidEdit  = errors.New("invalid task edit")
)

// Buffer holds one extraction run awaiting confirmation. Nothing in it has
// been persisted.
type Buffer struct {
	Meeting   model.Meeting `json:"meeting"`
	Tasks     []model.Task  `json:"tasks"`
	Warning   string        `json:"warning,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TaskEdit replaces a subset of a staged task's fields. Nil fields are kept.
type TaskEdit struct {
	Description *string         `json:"description,omitempty"`
	Owner       *string         `json:"owner,omitempty"`
	DueDate     *string         `json:"dueDate,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Initiative  *string         `json:"initiative,omitempty"`
}

func (e TaskEdit) validate() error {
	if e.Description != nil && strings.TrimSpace(*e.Description) == "" {
		return errors.Join(ErrInvalidEdit, errors.New("description must not be empty"))
	}
	if e.Priority != nil && !e.Priority.Valid() {
		return errors.Join(ErrInvalidEdit, errors.New("priority must be High, Med or Low"))
	}
	return nil
}

func (b *Buffer) Len() int { return len(b.Tasks) }

func (b *Buffer) index(id string) int {
	for i := range b.Tasks {
		if b.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// DeleteTask drops a staged task. It reports whether the id was present.
func (b *Buffer) DeleteTask(id string) bool {
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.Tasks = append(b.Tasks[:i], b.Tasks[i+1:]...)
	return true
}

// EditTask applies e to the staged task with the given id and re-applies the
// field defaults, so clearing an owner puts "Unassigned" back.
func (b *Buffer) EditTask(id string, e TaskEdit) (model.Task, error) {
	if err := e.validate(); err != nil {
		return model.Task{}, err
	}
	i := b.index(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	t := b.Tasks[i]
	if e.Description != nil {
		t.Description = *e.Description
	}
	if e.Owner != nil {
		t.Owner = *e.Owner
	}
	if e.DueDate != nil {
		t.DueDate = *e.DueDate
	}
	if e.Priority != nil {
		t.Priority = *e.Priority
	}
	if e.Initiative != nil {
		t.Initiative = *e.Initiative
	}
	b.Tasks[i] = t.WithDefaults()
	return b.Tasks[i], nil
}

func (b *Buffer) clone() *Buffer {
	c := *b
	c.Tasks = append(make([]model.Task, 0, len(b.Tasks)), b.Tasks...)
	return &c
}
