// Package seed loads a YAML fixture of tasks into a store and writes a store
// back out in the same shape.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/date"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// File is the seed document.
type File struct {
	Tags  []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Tasks []Entry  `yaml:"tasks" json:"tasks"`
}

// Entry is one top-level task, or a subtask when nested under Subtasks.
type Entry struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    string   `yaml:"priority,omitempty" json:"priority,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Color       string   `yaml:"color,omitempty" json:"color,omitempty"`
	Reminder    string   `yaml:"reminder,omitempty" json:"reminder,omitempty"`
	Completed   bool     `yaml:"completed,omitempty" json:"completed,omitempty"`
	Subtasks    []Entry  `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
}

// Read parses a seed file from disk.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config or flag
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, clierr.Newf(clierr.InvalidInput, "parsing seed file: %v", err)
	}
	return &f, nil
}

// Options tune how entries become tasks.
type Options struct {
	Now             time.Time
	DefaultPriority string
	DefaultColor    string
}

// Apply creates the tags and tasks of f in s. Reminders are parsed relative
// to opts.Now, so fixtures may use forms like "+2h". It returns the number
// of tasks created; on error, tasks created before the failing entry remain.
func Apply(s *store.Store, f *File, opts Options) (int, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	for _, tag := range f.Tags {
		s.AddTag(tag)
	}

	created := 0
	for i, e := range f.Tasks {
		parent, err := create(s, "", e, opts)
		if err != nil {
			return created, fmt.Errorf("seed task %d (%q): %w", i+1, e.Title, err)
		}
		created++
		for j, sub := range e.Subtasks {
			if len(sub.Subtasks) > 0 {
				return created, clierr.Newf(clierr.HierarchyViolation,
					"seed task %d.%d (%q): subtasks cannot have subtasks", i+1, j+1, sub.Title)
			}
			if _, err := create(s, parent.ID, sub, opts); err != nil {
				return created, fmt.Errorf("seed task %d.%d (%q): %w", i+1, j+1, sub.Title, err)
			}
			created++
		}
	}
	return created, nil
}

func create(s *store.Store, parentID string, e Entry, opts Options) (*task.Task, error) {
	in := store.Input{
		Title:       e.Title,
		Description: e.Description,
		Priority:    e.Priority,
		Tags:        e.Tags,
		Color:       e.Color,
		Completed:   e.Completed,
		ParentID:    parentID,
	}
	if in.Priority == "" {
		in.Priority = opts.DefaultPriority
	}
	if in.Color == "" {
		in.Color = opts.DefaultColor
	}
	if e.Reminder != "" {
		r, err := date.ParseReminder(e.Reminder, opts.Now)
		if err != nil {
			return nil, err
		}
		in.Reminder = &r
	}
	return s.Create(in)
}

// Export captures the current contents of s as a seed document. Reminders
// are written in RFC 3339 so the result loads back unchanged. Tasks nested
// below a subtask are flattened into the top-level task's subtasks.
func Export(s *store.Store) *File {
	f := &File{Tags: s.AvailableTags(), Tasks: []Entry{}}
	for _, t := range s.TopLevel() {
		e := entryOf(t)
		e.Subtasks = subtreeEntries(s, t.ID)
		f.Tasks = append(f.Tasks, e)
	}
	return f
}

func subtreeEntries(s *store.Store, id string) []Entry {
	var out []Entry
	for _, sub := range s.SubtasksOf(id) {
		out = append(out, entryOf(sub))
		out = append(out, subtreeEntries(s, sub.ID)...)
	}
	return out
}

func entryOf(t *task.Task) Entry {
	e := Entry{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Tags:        t.Tags,
		Color:       t.Color,
		Completed:   t.Completed,
	}
	if t.Reminder != nil {
		e.Reminder = t.Reminder.Format(time.RFC3339)
	}
	return e
}
