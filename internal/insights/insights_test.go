package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

func fixture() []model.Task {
	return []model.Task{
		{ID: "1", Description: "Send the report", Owner: "Alice Smith", DueDate: "2024-01-05", Priority: model.PriorityHigh, Initiative: "Reporting", Status: model.StatusOpen, CreatedAt: day(3)},
		{ID: "2", Description: "Book room", Owner: "Bob", DueDate: "TBD", Priority: model.PriorityMed, Initiative: "Offsite", Status: model.StatusDone, CreatedAt: day(2)},
		{ID: "3", Description: "Fix login", Owner: "Alice Smith", DueDate: "TBD", Priority: model.PriorityLow, Initiative: "Platform", Status: model.StatusOpen, CreatedAt: day(2)},
		{ID: "4", Description: "Draft agenda", Owner: "Alice Smith", DueDate: "2024-01-03", Priority: model.PriorityMed, Initiative: "Offsite", Status: model.StatusDone, CreatedAt: day(1)},
	}
}

func TestCompute(t *testing.T) {
	s := Compute(fixture())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Open)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, 1, s.HighPriorityOpen)
	assert.Equal(t, 3, s.Initiatives)
	assert.Equal(t, 50, s.CompletionRate)
	assert.Equal(t, []Count{{"Alice Smith", 3}, {"Bob", 1}}, s.ByOwner)
	assert.Equal(t, []Count{{"Offsite", 2}, {"Platform", 1}, {"Reporting", 1}}, s.ByInitiative)
	assert.Equal(t, []Count{{"High", 1}, {"Low", 1}}, s.OpenByPriority)
	assert.Equal(t, []TimelinePoint{{"2024-01-01", 1}, {"2024-01-02", 3}, {"2024-01-03", 4}}, s.Timeline)
}

func TestCompute_TopFiveInitiatives(t *testing.T) {
	var tasks []model.Task
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "f"} {
		tasks = append(tasks, model.Task{ID: string(rune('0' + i)), Initiative: name, Status: model.StatusOpen})
	}
	s := Compute(tasks)
	assert.Equal(t, 6, s.Initiatives)
	require.Len(t, s.ByInitiative, 5)
	assert.Equal(t, Count{"f", 2}, s.ByInitiative[0])
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	assert.Zero(t, s.CompletionRate)
	assert.NotNil(t, s.OpenByPriority)
	assert.NotNil(t, s.Timeline)
}

func TestPeople(t *testing.T) {
	people := People(fixture())
	require.Len(t, people, 2)

	alice := people[0]
	assert.Equal(t, "Alice Smith", alice.Owner)
	assert.Equal(t, 3, alice.Total)
	assert.Equal(t, 2, alice.OpenCount)
	assert.Equal(t, 1, alice.HighOpen)
	assert.Equal(t, 33, alice.CompletionRate)
	assert.Len(t, alice.Done, 1)

	bob := people[1]
	assert.Equal(t, 100, bob.CompletionRate)
	assert.Empty(t, bob.Open)
	assert.Empty(t, bob.FollowUp)
}

func TestPerson(t *testing.T) {
	p, ok := Person(fixture(), "Alice Smith")
	require.True(t, ok)
	assert.Equal(t, 3, p.Total)

	_, ok = Person(fixture(), "alice smith")
	assert.False(t, ok)
}

func TestFollowUp(t *testing.T) {
	p, ok := Person(fixture(), "Alice Smith")
	require.True(t, ok)

	want := "Hi Alice,\n\n" +
		"Following up on these open items:\n\n" +
		"• Send the report (Due: 2024-01-05)\n" +
		"• Fix login (Due: TBD)\n\n" +
		"Let me know if you need any support or if timelines have changed.\n\n" +
		"Thanks!"
	assert.Equal(t, want, p.FollowUp)
	assert.Empty(t, FollowUp("Alice", nil))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Alice", FirstName("Alice Smith"))
	assert.Equal(t, "Bob", FirstName("Bob"))
	assert.Equal(t, "Unassigned", FirstName(model.Unassigned))
}
