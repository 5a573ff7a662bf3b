package insights

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

// PersonSummary is one owner's slice of the task list.
type PersonSummary struct {
	Owner          string       `json:"owner"`
	Total          int          `json:"total"`
	OpenCount      int          `json:"openCount"`
	HighOpen       int          `json:"highOpen"`
	CompletionRate int          `json:"completionRate"`
	Open           []model.Task `json:"open"`
	Done           []model.Task `json:"done"`
	FollowUp       string       `json:"followUp,omitempty"`
}

// People summarises every owner in the order they first appear in tasks.
func People(tasks []model.Task) []PersonSummary {
	var order []string
	byOwner := make(map[string][]model.Task)
	for _, t := range tasks {
		if _, seen := byOwner[t.Owner]; !seen {
			order = append(order, t.Owner)
		}
		byOwner[t.Owner] = append(byOwner[t.Owner], t)
	}

	out := make([]PersonSummary, 0, len(order))
	for _, owner := range order {
		out = append(out, summarize(owner, byOwner[owner]))
	}
	return out
}

// Person summarises a single owner. The match is exact, as owners are free text.
func Person(tasks []model.Task, owner string) (PersonSummary, bool) {
	var mine []model.Task
	for _, t := range tasks {
		if t.Owner == owner {
			mine = append(mine, t)
		}
	}
	if len(mine) == 0 {
		return PersonSummary{}, false
	}
	return summarize(owner, mine), true
}

func summarize(owner string, tasks []model.Task) PersonSummary {
	p := PersonSummary{
		Owner: owner,
		Total: len(tasks),
		Open:  []model.Task{},
		Done:  []model.Task{},
	}
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			p.Done = append(p.Done, t)
			continue
		}
		p.Open = append(p.Open, t)
		if t.Priority == model.PriorityHigh {
			p.HighOpen++
		}
	}
	p.OpenCount = len(p.Open)
	p.CompletionRate = percent(len(p.Done), p.Total)
	p.FollowUp = FollowUp(owner, p.Open)
	return p
}

// FirstName is the owner up to the first space.
func FirstName(owner string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(owner), " ")
	return first
}

// FollowUp drafts a reminder about open items. It is empty when there is
// nothing open.
func FollowUp(owner string, open []model.Task) string {
	if owner == "" || len(open) == 0 {
		return ""
	}
	items := make([]string, 0, len(open))
	for _, t := range open {
		items = append(items, fmt.Sprintf("• %s (Due: %s)", t.Description, t.DueDate))
	}
	return fmt.Sprintf("Hi %s,\n\nFollowing up on these open items:\n\n%s\n\nLet me know if you need any support or if timelines have changed.\n\nThanks!",
		FirstName(owner), strings.Join(items, "\n"))
}
