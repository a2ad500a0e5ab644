// Package task defines the task entity and its field vocabularies.
package task

import (
	"slices"
	"time"
)

// Task is a unit of work held by the store. Tasks form a one-level tree
// through ParentID: top-level tasks have an empty ParentID.
type Task struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Completed   bool       `yaml:"completed" json:"completed"`
	Priority    string     `yaml:"priority" json:"priority"`
	Tags        []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Color       string     `yaml:"color,omitempty" json:"color,omitempty"`
	Reminder    *time.Time `yaml:"reminder,omitempty" json:"reminder,omitempty"`
	ParentID    string     `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `yaml:"updated_at" json:"updated_at"`
}

// shortIDLen is the number of id characters shown to humans.
const shortIDLen = 8

// IsTopLevel reports whether the task has no parent.
func (t *Task) IsTopLevel() bool {
	return t.ParentID == ""
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// ShortID returns the abbreviated id used in listings.
func (t *Task) ShortID() string {
	return ShortID(t.ID)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	if t.Reminder != nil {
		r := *t.Reminder
		c.Reminder = &r
	}
	return &c
}

// ShortID abbreviates an id for display.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
