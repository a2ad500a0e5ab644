package board

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Sort fields.
const (
	SortCreated  = "created"
	SortUpdated  = "updated"
	SortPriority = "priority"
	SortTitle    = "title"
	SortReminder = "reminder"
)

// ValidSortFields returns the list of valid --sort field names.
func ValidSortFields() []string {
	return []string{SortCreated, SortUpdated, SortPriority, SortTitle, SortReminder}
}

// ValidateSortField rejects unknown sort fields. An empty field is allowed
// and means creation order.
func ValidateSortField(field string) error {
	if field == "" || slices.Contains(ValidSortFields(), field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidSort, "invalid sort field %q", field).
		WithDetails(map[string]any{
			"field":   field,
			"allowed": ValidSortFields(),
		})
}

// Sort sorts tasks in place by the given field. Priority sorts most urgent
// first; tasks without a reminder sort last regardless of direction. Ties
// keep their existing order.
func Sort(tasks []*task.Task, field string, reverse bool) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if field == SortReminder {
			if c, ok := compareMissingReminder(a, b); ok {
				return c
			}
		}
		c := compareTasks(a, b, field)
		if reverse {
			return -c
		}
		return c
	})
}

func compareTasks(a, b *task.Task, field string) int {
	switch field {
	case SortUpdated:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortPriority:
		return task.PriorityIndex(b.Priority) - task.PriorityIndex(a.Priority)
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortReminder:
		return a.Reminder.Compare(*b.Reminder)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// compareMissingReminder orders tasks without a reminder after those with
// one. ok is false when both have a reminder.
func compareMissingReminder(a, b *task.Task) (int, bool) {
	switch {
	case a.Reminder != nil && b.Reminder != nil:
		return 0, false
	case a.Reminder == nil && b.Reminder == nil:
		return 0, true
	case a.Reminder == nil:
		return 1, true
	default:
		return -1, true
	}
}
