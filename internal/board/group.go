package board

import (
	"slices"
	"sort"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

const (
	fieldTag      = "tag"
	fieldColor    = "color"
	fieldPriority = "priority"
	fieldStatus   = "status"

	keyUntagged  = "(untagged)"
	keyNoColor   = "(none)"
	keyActive    = "active"
	keyCompleted = "completed"
)

// Grouped holds tasks grouped by a field.
type Grouped struct {
	Field  string  `json:"field" yaml:"field"`
	Groups []Group `json:"groups" yaml:"groups"`
}

// Group is one group within a grouped view.
type Group struct {
	Key       string       `json:"key" yaml:"key"`
	Total     int          `json:"total" yaml:"total"`
	Completed int          `json:"completed" yaml:"completed"`
	Tasks     []*task.Task `json:"tasks" yaml:"tasks"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldTag, fieldColor, fieldPriority, fieldStatus}
}

// ValidateGroupBy rejects unknown group-by fields.
func ValidateGroupBy(field string) error {
	if slices.Contains(ValidGroupByFields(), field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
		WithDetails(map[string]any{
			"field":   field,
			"allowed": ValidGroupByFields(),
		})
}

// GroupBy groups tasks by the specified field. A task with several tags
// appears in each of its tag groups. Task order within a group is preserved.
func GroupBy(tasks []*task.Task, field string) Grouped {
	groups := make(map[string][]*task.Task)
	for _, t := range tasks {
		for _, key := range extractGroupKeys(t, field) {
			groups[key] = append(groups[key], t)
		}
	}

	result := Grouped{Field: field, Groups: make([]Group, 0, len(groups))}
	for _, key := range sortGroupKeys(groups, field) {
		g := Group{Key: key, Tasks: groups[key], Total: len(groups[key])}
		for _, t := range g.Tasks {
			if t.Completed {
				g.Completed++
			}
		}
		result.Groups = append(result.Groups, g)
	}
	return result
}

func extractGroupKeys(t *task.Task, field string) []string {
	switch field {
	case fieldTag:
		if len(t.Tags) == 0 {
			return []string{keyUntagged}
		}
		return t.Tags
	case fieldColor:
		if t.Color == "" {
			return []string{keyNoColor}
		}
		return []string{t.Color}
	case fieldPriority:
		return []string{t.Priority}
	case fieldStatus:
		if t.Completed {
			return []string{keyCompleted}
		}
		return []string{keyActive}
	default:
		return []string{"(all)"}
	}
}

func sortGroupKeys(groups map[string][]*task.Task, field string) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case fieldPriority:
		sort.SliceStable(keys, func(i, j int) bool {
			return task.PriorityIndex(keys[i]) > task.PriorityIndex(keys[j])
		})
	case fieldColor:
		sort.SliceStable(keys, func(i, j int) bool {
			return paletteIndex(keys[i]) < paletteIndex(keys[j])
		})
	case fieldStatus:
		sort.Strings(keys)
	default:
		sort.Slice(keys, func(i, j int) bool {
			if (keys[i] == keyUntagged) != (keys[j] == keyUntagged) {
				return keys[j] == keyUntagged
			}
			return keys[i] < keys[j]
		})
	}
	return keys
}

// paletteIndex places the no-color group after every palette color.
func paletteIndex(color string) int {
	if i := slices.Index(task.Palette, color); i >= 0 {
		return i
	}
	return len(task.Palette)
}
