package insights

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

const topInitiatives = 5

type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type TimelinePoint struct {
	Date       string `json:"date"`
	Cumulative int    `json:"cumulative"`
}

// Stats summarises a task list for the dashboard.
type Stats struct {
	Total            int             `json:"total"`
	Open             int             `json:"open"`
	Done             int             `json:"done"`
	HighPriorityOpen int             `json:"highPriorityOpen"`
	Initiatives      int             `json:"initiatives"`
	CompletionRate   int             `json:"completionRate"`
	ByOwner          []Count         `json:"byOwner"`
	ByInitiative     []Count         `json:"byInitiative"`
	OpenByPriority   []Count         `json:"openByPriority"`
	Timeline         []TimelinePoint `json:"timeline"`
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// counts tallies key(t) over tasks, largest first, ties by name.
func counts(tasks []model.Task, key func(model.Task) string) []Count {
	tally := make(map[string]int)
	for _, t := range tasks {
		tally[key(t)]++
	}
	out := make([]Count, 0, len(tally))
	for name, n := range tally {
		out = append(out, Count{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func Compute(tasks []model.Task) Stats {
	s := Stats{
		Total:          len(tasks),
		OpenByPriority: []Count{},
		Timeline:       []TimelinePoint{},
	}

	openByPriority := make(map[model.Priority]int)
	for _, t := range tasks {
		switch t.Status {
		case model.StatusDone:
			s.Done++
		default:
			s.Open++
			openByPriority[t.Priority]++
		}
	}
	s.HighPriorityOpen = openByPriority[model.PriorityHigh]
	s.CompletionRate = percent(s.Done, s.Total)

	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMed, model.PriorityLow} {
		if n := openByPriority[p]; n > 0 {
			s.OpenByPriority = append(s.OpenByPriority, Count{Name: string(p), Value: n})
		}
	}

	s.ByOwner = counts(tasks, func(t model.Task) string { return t.Owner })
	s.ByInitiative = counts(tasks, func(t model.Task) string { return t.Initiative })
	s.Initiatives = len(s.ByInitiative)
	if len(s.ByInitiative) > topInitiatives {
		s.ByInitiative = s.ByInitiative[:topInitiatives]
	}

	perDay := counts(tasks, func(t model.Task) string { return model.Today(t.CreatedAt) })
	sort.Slice(perDay, func(i, j int) bool { return perDay[i].Name < perDay[j].Name })
	total := 0
	for _, d := range perDay {
		total += d.Value
		s.Timeline = append(s.Timeline, TimelinePoint{Date: d.Name, Cumulative: total})
	}
	return s
}
