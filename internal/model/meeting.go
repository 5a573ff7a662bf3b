package model

import "time"

type MeetingType string

const (
	MeetingText  MeetingType = "text"
	MeetingAudio MeetingType = "audio"
)

func (t MeetingType) Valid() bool {
	return t == MeetingText || t == MeetingAudio
}

// Meeting is the record of one processed meeting.
type Meeting struct {
	ID         string      `json:"id"`
	Date       string      `json:"date"`
	Name       string      `json:"name"`
	Type       MeetingType `json:"type"`
	Decisions  []string    `json:"decisions"`
	Risks      []string    `json:"risks"`
	Transcript string      `json:"transcript,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Snapshot is everything one owner can see, newest first.
type Snapshot struct {
	Tasks    []Task    `json:"tasks"`
	Meetings []Meeting `json:"meetings"`
	Error    string    `json:"error,omitempty"`
}
