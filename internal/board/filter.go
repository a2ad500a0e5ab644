// Package board provides read-only views over task collections: filtering,
// searching, sorting, grouping and aggregate statistics.
package board

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// FilterOptions narrows a task list beyond the store's single selection.
type FilterOptions struct {
	Priorities  []string
	Search      string // case-insensitive substring match across title, description, and tags
	HasReminder bool
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if len(opts.Priorities) > 0 && !slices.Contains(opts.Priorities, t.Priority) {
		return false
	}
	if opts.HasReminder && t.Reminder == nil {
		return false
	}
	if opts.Search != "" && !Matches(t, opts.Search) {
		return false
	}
	return true
}

// Search returns the tasks whose title, description or tags contain query.
// An empty query returns nothing.
func Search(tasks []*task.Task, query string) []*task.Task {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	var result []*task.Task
	for _, t := range tasks {
		if Matches(t, query) {
			result = append(result, t)
		}
	}
	return result
}

// Matches performs case-insensitive substring matching across title,
// description, and tags.
func Matches(t *task.Task, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
