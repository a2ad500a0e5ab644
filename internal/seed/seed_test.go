package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

var now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

const fixture = `
tags: [home, someday]
tasks:
  - title: Buy milk
    priority: high
    tags: [errand]
    color: blue
    reminder: "+2h"
    subtasks:
      - title: Buy oat milk
        completed: true
      - title: Check expiry dates
  - title: Water plants
    tags: [home]
`

func TestApply(t *testing.T) {
	f, err := Parse([]byte(fixture))
	require.NoError(t, err)

	s := store.New()
	n, err := Apply(s, f, Options{Now: now, DefaultPriority: task.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	top := s.TopLevel()
	require.Len(t, top, 2)
	milk := top[0]
	assert.Equal(t, "Buy milk", milk.Title)
	assert.Equal(t, task.PriorityHigh, milk.Priority)
	assert.Equal(t, "blue", milk.Color)
	require.NotNil(t, milk.Reminder)
	assert.True(t, now.Add(2*time.Hour).Equal(*milk.Reminder))
	assert.Equal(t, task.PriorityLow, top[1].Priority)

	subs := s.SubtasksOf(milk.ID)
	require.Len(t, subs, 2)
	assert.True(t, subs[0].Completed)
	assert.False(t, subs[1].Completed)

	assert.Equal(t, []string{"home", "someday", "errand"}, s.AvailableTags())
}

func TestApply_StopsAtInvalidEntry(t *testing.T) {
	f := &File{Tasks: []Entry{
		{Title: "ok"},
		{Title: "bad", Priority: "critical"},
		{Title: "never"},
	}}
	s := store.New()
	n, err := Apply(s, f, Options{Now: now})
	assert.Equal(t, 1, n)
	assert.Equal(t, clierr.InvalidPriority, clierr.CodeOf(err))
	assert.Contains(t, err.Error(), `seed task 2 ("bad")`)
	assert.Equal(t, 1, s.Len())
}

func TestApply_RejectsNestedSubtasks(t *testing.T) {
	f := &File{Tasks: []Entry{{
		Title:    "parent",
		Subtasks: []Entry{{Title: "child", Subtasks: []Entry{{Title: "grandchild"}}}},
	}}}
	_, err := Apply(store.New(), f, Options{Now: now})
	assert.Equal(t, clierr.HierarchyViolation, clierr.CodeOf(err))
}

func TestParse(t *testing.T) {
	_, err := Parse([]byte("tasks:\n  - title: x\n    due: tomorrow\n"))
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err), "unknown keys are rejected")

	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Tasks)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	f, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, f.Tasks, 2)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestExport_RoundTrips(t *testing.T) {
	f, err := Parse([]byte(fixture))
	require.NoError(t, err)
	src := store.New()
	_, err = Apply(src, f, Options{Now: now})
	require.NoError(t, err)

	data, err := yaml.Marshal(Export(src))
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)

	dst := store.New()
	_, err = Apply(dst, back, Options{Now: now.Add(time.Hour)})
	require.NoError(t, err)

	if diff := cmp.Diff(Export(src), Export(dst)); diff != "" {
		t.Errorf("export mismatch after round trip (-src +dst):\n%s", diff)
	}
}
