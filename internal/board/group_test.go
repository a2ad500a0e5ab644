package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func groupKeys(g Grouped) []string {
	out := make([]string, 0, len(g.Groups))
	for _, gr := range g.Groups {
		out = append(out, gr.Key)
	}
	return out
}

func TestGroupBy(t *testing.T) {
	tasks := []*task.Task{
		mk("a", tags("work", "home"), color("blue"), prio(task.PriorityLow)),
		mk("b", color("red"), prio(task.PriorityUrgent), done),
		mk("c", tags("home")),
	}

	tests := []struct {
		field string
		keys  []string
	}{
		{field: "tag", keys: []string{"home", "work", "(untagged)"}},
		{field: "color", keys: []string{"red", "blue", "(none)"}},
		{field: "priority", keys: []string{task.PriorityUrgent, task.PriorityMedium, task.PriorityLow}},
		{field: "status", keys: []string{"active", "completed"}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.keys, groupKeys(GroupBy(tasks, tt.field)))
		})
	}
}

func TestGroupBy_CountsAndMembers(t *testing.T) {
	tasks := []*task.Task{
		mk("a", tags("home")),
		mk("b", tags("home"), done),
		mk("c", tags("work")),
	}

	g := GroupBy(tasks, "tag")
	require.Len(t, g.Groups, 2)
	home := g.Groups[0]
	assert.Equal(t, "home", home.Key)
	assert.Equal(t, 2, home.Total)
	assert.Equal(t, 1, home.Completed)
	assert.Equal(t, []string{"a", "b"}, titles(home.Tasks))
}

func TestValidateGroupBy(t *testing.T) {
	for _, f := range ValidGroupByFields() {
		assert.NoError(t, ValidateGroupBy(f))
	}
	assert.Equal(t, clierr.InvalidGroupBy, clierr.CodeOf(ValidateGroupBy("assignee")))
}
