package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func TestSort(t *testing.T) {
	fresh := func() []*task.Task {
		return []*task.Task{
			mk("bravo", created(2*time.Minute), prio(task.PriorityLow), remind(3*time.Hour)),
			mk("alpha", created(3*time.Minute), prio(task.PriorityUrgent)),
			mk("Charlie", created(time.Minute), prio(task.PriorityHigh), remind(time.Hour)),
		}
	}

	tests := []struct {
		field   string
		reverse bool
		want    []string
	}{
		{field: "", want: []string{"Charlie", "bravo", "alpha"}},
		{field: SortCreated, reverse: true, want: []string{"alpha", "bravo", "Charlie"}},
		{field: SortTitle, want: []string{"alpha", "bravo", "Charlie"}},
		{field: SortPriority, want: []string{"alpha", "Charlie", "bravo"}},
		{field: SortPriority, reverse: true, want: []string{"bravo", "Charlie", "alpha"}},
		{field: SortReminder, want: []string{"Charlie", "bravo", "alpha"}},
		{field: SortReminder, reverse: true, want: []string{"bravo", "Charlie", "alpha"}},
	}
	for _, tt := range tests {
		name := tt.field
		if tt.reverse {
			name += "-reverse"
		}
		t.Run(name, func(t *testing.T) {
			tasks := fresh()
			Sort(tasks, tt.field, tt.reverse)
			assert.Equal(t, tt.want, titles(tasks))
		})
	}
}

func TestSort_UpdatedIsStable(t *testing.T) {
	tasks := []*task.Task{mk("a"), mk("b"), mk("c")}
	tasks[1].UpdatedAt = now.Add(time.Hour)
	Sort(tasks, SortUpdated, false)
	assert.Equal(t, []string{"a", "c", "b"}, titles(tasks))
}

func TestValidateSortField(t *testing.T) {
	assert.NoError(t, ValidateSortField(""))
	assert.NoError(t, ValidateSortField(SortReminder))
	assert.Equal(t, clierr.InvalidSort, clierr.CodeOf(ValidateSortField("due")))
}
