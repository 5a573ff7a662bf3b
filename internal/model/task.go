package model

import "time"

// Sentinels substituted when a field cannot be determined.
const (
	Unassigned        = "Unassigned"
	DueTBD            = "TBD"
	GeneralInitiative = "General"
	ManualSource      = "Manual"
)

type Priority string

const (
	PriorityHigh Priority = "High"
	PriorityMed  Priority = "Med"
	PriorityLow  Priority = "Low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMed, PriorityLow:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen Status = "Open"
	StatusDone Status = "Done"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusDone
}

// Toggled returns the other status. Anything that is not Done flips to Done.
func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusOpen
	}
	return StatusDone
}

// Task is a single tracked action item.
type Task struct {
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	Owner         string    `json:"owner"`
	DueDate       string    `json:"dueDate"`
	Priority      Priority  `json:"priority"`
	Initiative    string    `json:"initiative"`
	Status        Status    `json:"status"`
	SourceMeeting string    `json:"sourceMeeting"`
	SourceQuote   string    `json:"sourceQuote,omitempty"`
	SourceSpeaker string    `json:"sourceSpeaker,omitempty"`
	MeetingID     string    `json:"meetingId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TaskUpdate carries the fields of a partial update. Nil means untouched.
type TaskUpdate struct {
	Description *string   `json:"description,omitempty"`
	Owner       *string   `json:"owner,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Initiative  *string   `json:"initiative,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

func (u TaskUpdate) Empty() bool {
	return u.Description == nil && u.Owner == nil && u.DueDate == nil &&
		u.Priority == nil && u.Initiative == nil && u.Status == nil
}

// Apply copies the set fields of u onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Owner != nil {
		t.Owner = *u.Owner
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Initiative != nil {
		t.Initiative = *u.Initiative
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status Status
	Owner  string
}

func (f TaskFilter) Match(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Owner != "" && t.Owner != f.Owner {
		return false
	}
	return true
}
