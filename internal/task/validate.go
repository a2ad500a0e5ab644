package task

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
)

// Priority levels, lowest first.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ColorDefault is the palette entry meaning "no color".
const ColorDefault = "default"

// Priorities is the ordered priority vocabulary.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Palette is the fixed set of colors a task may carry.
var Palette = []string{
	"red", "orange", "yellow", "green", "blue",
	"purple", "pink", "indigo", "teal", "gray",
}

// PriorityIndex returns the position of p in Priorities, or -1.
func PriorityIndex(p string) int {
	return slices.Index(Priorities, p)
}

// ValidatePriority checks that a priority is in the allowed list.
func ValidatePriority(priority string) error {
	if PriorityIndex(priority) >= 0 {
		return nil
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  Priorities,
		})
}

// NormalizeColor maps the "default" palette entry to the empty color and
// validates everything else against Palette.
func NormalizeColor(color string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(color))
	if c == "" || c == ColorDefault {
		return "", nil
	}
	if !slices.Contains(Palette, c) {
		return "", clierr.Newf(clierr.InvalidColor, "invalid color %q", color).
			WithDetails(map[string]any{
				"color":   color,
				"allowed": Palette,
			})
	}
	return c, nil
}

// NormalizeTitle trims a title and rejects it when nothing is left.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", clierr.New(clierr.InvalidInput, "title is required")
	}
	return t, nil
}

// NormalizeTags trims tags, drops empties and collapses duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ValidateTaskID returns a CLIError for unparseable task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// NotFound returns a CLIError for an id or prefix that matches no task.
func NotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateSelfReference returns a CLIError for a task parented to itself.
func ValidateSelfReference(id string) *clierr.Error {
	return clierr.Newf(clierr.SelfReference, "task %s cannot be its own parent", ShortID(id)).
		WithDetails(map[string]any{"id": id})
}

// ValidateNestedParent returns a CLIError when the requested parent is itself
// a subtask.
func ValidateNestedParent(parentID, grandparentID string) *clierr.Error {
	return clierr.Newf(clierr.HierarchyViolation,
		"task %s is a subtask and cannot have subtasks", ShortID(parentID)).
		WithDetails(map[string]any{
			"parent_id":      parentID,
			"grandparent_id": grandparentID,
		})
}

// ValidateHasSubtasks returns a CLIError when a task with subtasks would be
// moved under another task.
func ValidateHasSubtasks(id string, count int) *clierr.Error {
	return clierr.Newf(clierr.HierarchyViolation,
		"task %s has %d subtask(s) and cannot become a subtask", ShortID(id), count).
		WithDetails(map[string]any{
			"id":       id,
			"subtasks": count,
		})
}
