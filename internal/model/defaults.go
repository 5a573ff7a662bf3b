package model

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParsePriority maps loose urgency wording onto the three priorities.
// Unknown or empty input is Med.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "urgent", "asap", "critical":
		return PriorityHigh
	case "low", "when possible":
		return PriorityLow
	default:
		return PriorityMed
	}
}

// NormalizeDueDate keeps calendar dates and the date part of timestamps;
// anything else becomes TBD.
func NormalizeDueDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DueTBD
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return s
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(dateLayout)
	}
	return DueTBD
}

// WithDefaults fills the fields a task may be missing. Each field is
// defaulted independently of the others.
func (t Task) WithDefaults() Task {
	t.Description = strings.TrimSpace(t.Description)
	if strings.TrimSpace(t.Owner) == "" {
		t.Owner = Unassigned
	}
	t.DueDate = NormalizeDueDate(t.DueDate)
	if !t.Priority.Valid() {
		t.Priority = ParsePriority(string(t.Priority))
	}
	if strings.TrimSpace(t.Initiative) == "" {
		t.Initiative = GeneralInitiative
	}
	if !t.Status.Valid() {
		t.Status = StatusOpen
	}
	return t
}

// Today formats t as a calendar date.
func Today(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
