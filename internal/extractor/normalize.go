package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

// MeetingName returns name, or a dated placeholder when it is blank.
func MeetingName(name string, now time.Time) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Meeting " + model.Today(now)
}

// Normalize turns an extraction into canonical tasks and the meeting record
// that produced them. Staging ids combine the run timestamp with the index
// inside the batch, so they are unique within one run without asking storage.
func Normalize(res *Result, meetingName string, kind model.MeetingType, now time.Time) ([]model.Task, model.Meeting) {
	stamp := now.UnixMilli()
	if !kind.Valid() {
		kind = model.MeetingText
	}

	tasks := make([]model.Task, 0, len(res.Tasks))
	for i, raw := range res.Tasks {
		t := model.Task{
			ID:            fmt.Sprintf("T-%d-%d", stamp, i),
			Description:   raw.Description,
			Owner:         raw.Owner,
			DueDate:       raw.DueDate,
			Priority:      model.ParsePriority(raw.Priority),
			Initiative:    raw.Initiative,
			Status:        model.StatusOpen,
			SourceMeeting: meetingName,
			SourceQuote:   raw.SourceQuote,
			SourceSpeaker: raw.SourceSpeaker,
			CreatedAt:     now.UTC(),
		}
		tasks = append(tasks, t.WithDefaults())
	}

	meeting := model.Meeting{
		ID:        fmt.Sprintf("M-%d", stamp),
		Date:      model.Today(now),
		Name:      meetingName,
		Type:      kind,
		Decisions: nonNil(res.Decisions),
		Risks:     nonNil(res.Risks),
		CreatedAt: now.UTC(),
	}
	return tasks, meeting
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
