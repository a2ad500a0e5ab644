package board

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func mk(title string, mods ...func(*task.Task)) *task.Task {
	t := &task.Task{ID: title, Title: title, Priority: task.PriorityMedium, CreatedAt: now}
	for _, m := range mods {
		m(t)
	}
	return t
}

func done(t *task.Task)                  { t.Completed = true }
func tags(tt ...string) func(*task.Task) { return func(t *task.Task) { t.Tags = tt } }
func color(c string) func(*task.Task)    { return func(t *task.Task) { t.Color = c } }
func prio(p string) func(*task.Task)     { return func(t *task.Task) { t.Priority = p } }
func remind(d time.Duration) func(*task.Task) {
	return func(t *task.Task) { t.Reminder = at(d) }
}
func created(d time.Duration) func(*task.Task) {
	return func(t *task.Task) { t.CreatedAt = now.Add(d) }
}

func titles(tasks []*task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestComputeStats(t *testing.T) {
	tasks := []*task.Task{
		mk("overdue", remind(-2*time.Hour)),
		mk("later today", remind(3*time.Hour)),
		mk("tomorrow", remind(24*time.Hour)),
		mk("done overdue", done, remind(-time.Hour)),
		mk("plain"),
		mk("done", done),
	}

	got := ComputeStats(tasks, now)
	want := Stats{Total: 6, Completed: 2, Active: 4, Overdue: 1, DueToday: 2, CompletionRate: 33}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, now))
}

func TestComputeStats_DueTodayUsesNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	local := time.Date(2026, 10, 18, 9, 0, 0, 0, zone) // 2026-10-17 23:00 UTC
	reminder := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)
	tasks := []*task.Task{{Title: "x", Reminder: &reminder}}

	assert.Equal(t, 1, ComputeStats(tasks, local).DueToday)
	assert.Equal(t, 0, ComputeStats(tasks, local.Add(24*time.Hour)).DueToday)
}

func TestSubtaskProgress(t *testing.T) {
	p := SubtaskProgress([]*task.Task{mk("a", done), mk("b"), mk("c", done)})
	assert.Equal(t, Progress{Done: 2, Total: 3}, p)
	assert.Equal(t, "2 of 3 subtasks complete", p.String())
	assert.Equal(t, 66, p.Percent())
	assert.Equal(t, 0, SubtaskProgress(nil).Percent())
}

func TestTagAndColorCounts_OnlyActive(t *testing.T) {
	tasks := []*task.Task{
		mk("a", tags("home", "work"), color("red")),
		mk("b", tags("home"), color("red"), done),
		mk("c", tags("home"), color("blue")),
	}

	assert.Equal(t, []Count{{"home", 2}, {"work", 1}, {"idle", 0}},
		TagCounts(tasks, []string{"home", "work", "idle"}))
	assert.Equal(t, []Count{{"red", 1}, {"blue", 1}},
		ColorCounts(tasks, []string{"red", "blue"}))
}

func TestSummary(t *testing.T) {
	tasks := []*task.Task{mk("a", tags("x"), color("red")), mk("b", done)}
	got := Summary(tasks, []string{"x"}, []string{"red"}, now)
	assert.Equal(t, 2, got.Stats.Total)
	assert.Equal(t, 50, got.Stats.CompletionRate)
	assert.Equal(t, []Count{{"x", 1}}, got.Tags)
	assert.Equal(t, []Count{{"red", 1}}, got.Colors)
}

func TestParseRefs(t *testing.T) {
	refs, err := ParseRefs("ab12, cd34,ab12,,")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab12", "cd34"}, refs)

	_, err = ParseRefs(" , ")
	assert.Equal(t, clierr.InvalidTaskID, clierr.CodeOf(err))
}

func TestSearch(t *testing.T) {
	tasks := []*task.Task{
		mk("Buy MILK"),
		mk("call", func(t *task.Task) { t.Description = "ask about the milkshake" }),
		mk("errand", tags("Milkrun")),
		mk("unrelated"),
	}

	assert.Equal(t, []string{"Buy MILK", "call", "errand"}, titles(Search(tasks, "milk")))
	assert.Empty(t, Search(tasks, "  "))
	assert.Empty(t, Search(tasks, "bread"))
}

func TestFilter(t *testing.T) {
	tasks := []*task.Task{
		mk("a", prio(task.PriorityHigh), remind(time.Hour)),
		mk("b", prio(task.PriorityHigh)),
		mk("c", prio(task.PriorityLow), remind(time.Hour)),
	}

	assert.Equal(t, []string{"a", "b"},
		titles(Filter(tasks, FilterOptions{Priorities: []string{task.PriorityHigh}})))
	assert.Equal(t, []string{"a", "c"}, titles(Filter(tasks, FilterOptions{HasReminder: true})))
	assert.Equal(t, []string{"a"},
		titles(Filter(tasks, FilterOptions{Priorities: []string{task.PriorityHigh}, HasReminder: true})))
	assert.Equal(t, []string{"a", "b", "c"}, titles(Filter(tasks, FilterOptions{})))
}
