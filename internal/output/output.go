// Package output handles formatting CLI output as table, JSON, YAML, or compact.
package output

import (
	"strings"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatYAML outputs YAML.
	FormatYAML
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// Detect returns the appropriate format based on flags and the value of the
// TASKNEST_OUTPUT setting. Default is table when no explicit format is set.
func Detect(jsonFlag, yamlFlag, tableFlag, compactFlag bool, env string) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case yamlFlag:
		return FormatYAML
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}

	switch strings.ToLower(strings.TrimSpace(env)) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	// Default: table.
	return FormatTable
}

// IsStructured reports whether f is a machine-readable format.
func (f Format) IsStructured() bool {
	return f == FormatJSON || f == FormatYAML
}

// TaskTree is a task together with the subtasks shown beneath it.
type TaskTree struct {
	task.Task `yaml:",inline"`
	Subtasks  []*task.Task    `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Progress  *board.Progress `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// NewTree builds a tree row. Progress is set only when t has subtasks.
func NewTree(t *task.Task, subtasks []*task.Task) TaskTree {
	tree := TaskTree{Task: *t, Subtasks: subtasks}
	if len(subtasks) > 0 {
		p := board.SubtaskProgress(subtasks)
		tree.Progress = &p
	}
	return tree
}

// Flat wraps tasks as trees without subtasks.
func Flat(tasks []*task.Task) []TaskTree {
	out := make([]TaskTree, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskTree{Task: *t})
	}
	return out
}
