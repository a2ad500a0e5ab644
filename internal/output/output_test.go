package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func sample() (*task.Task, []*task.Task) {
	r := now.Add(30 * time.Minute)
	parent := &task.Task{
		ID: "0a1b2c3d-aaaa", Title: "Buy milk", Priority: task.PriorityHigh,
		Tags: []string{"errand"}, Color: "blue", Reminder: &r,
		CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		Description: "Get the **oat** kind",
	}
	subs := []*task.Task{
		{ID: "9f8e7d6c-bbbb", Title: "Buy oat milk", Priority: task.PriorityMedium, Completed: true, ParentID: parent.ID},
		{ID: "11223344-cccc", Title: "Check dates", Priority: task.PriorityLow, ParentID: parent.ID},
	}
	return parent, subs
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatJSON, Detect(true, true, false, false, "table"))
	assert.Equal(t, FormatYAML, Detect(false, true, false, true, ""))
	assert.Equal(t, FormatCompact, Detect(false, false, true, true, ""))
	assert.Equal(t, FormatTable, Detect(false, false, true, false, "json"))
	assert.Equal(t, FormatJSON, Detect(false, false, false, false, " JSON "))
	assert.Equal(t, FormatYAML, Detect(false, false, false, false, "yml"))
	assert.Equal(t, FormatCompact, Detect(false, false, false, false, "oneline"))
	assert.Equal(t, FormatTable, Detect(false, false, false, false, "bogus"))
	assert.True(t, FormatYAML.IsStructured())
	assert.False(t, FormatCompact.IsStructured())
}

func TestNewTree(t *testing.T) {
	parent, subs := sample()
	tree := NewTree(parent, subs)
	require.NotNil(t, tree.Progress)
	assert.Equal(t, board.Progress{Done: 1, Total: 2}, *tree.Progress)
	assert.Nil(t, NewTree(parent, nil).Progress)
	assert.Len(t, Flat(subs), 2)
}

func TestTaskTree_JSONIsFlat(t *testing.T) {
	parent, subs := sample()
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []TaskTree{NewTree(parent, subs)}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Buy milk", decoded[0]["title"])
	assert.Len(t, decoded[0]["subtasks"], 2)
	assert.Equal(t, map[string]any{"done": float64(1), "total": float64(2)}, decoded[0]["progress"])
}

func TestTaskTree_YAMLIsFlat(t *testing.T) {
	parent, subs := sample()
	var buf bytes.Buffer
	require.NoError(t, Structured(&buf, FormatYAML, NewTree(parent, subs)))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Buy milk", decoded["title"])
	assert.Equal(t, "high", decoded["priority"])
	assert.Len(t, decoded["subtasks"], 2)
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	JSONError(&buf, "TASK_NOT_FOUND", "task not found: zz", map[string]any{"id": "zz"})

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrorResponse{Error: "task not found: zz", Code: "TASK_NOT_FOUND", Details: map[string]any{"id": "zz"}}, resp)
}

func TestTaskCompact(t *testing.T) {
	parent, subs := sample()
	var buf bytes.Buffer
	TaskCompact(&buf, []TaskTree{NewTree(parent, subs)})

	want := "0a1b2c3d [ ] [high] Buy milk (errand) color:blue remind:2026-10-17T12:30 1/2\n" +
		"  9f8e7d6c [x] [medium] Buy oat milk\n" +
		"  11223344 [ ] [low] Check dates\n"
	assert.Equal(t, want, buf.String())
}

func TestTaskCompact_Empty(t *testing.T) {
	var buf bytes.Buffer
	TaskCompact(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestTaskTable(t *testing.T) {
	parent, subs := sample()
	var buf bytes.Buffer
	TaskTable(&buf, []TaskTree{NewTree(parent, subs)}, now)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "0a1b2c3d")
	assert.Contains(t, lines[1], "Buy milk")
	assert.Contains(t, lines[1], "2026-10-17 12:30")
	assert.True(t, strings.HasSuffix(lines[1], "1/2"))
	assert.Contains(t, lines[2], "[x]")
	assert.Contains(t, lines[2], subtaskPrefix+"Buy oat milk")
}

func TestTaskDetail(t *testing.T) {
	parent, subs := sample()
	var buf bytes.Buffer
	TaskDetail(&buf, parent, nil, subs, now)

	out := buf.String()
	assert.Contains(t, out, "Task 0a1b2c3d: Buy milk")
	assert.Contains(t, out, "Subtasks (1 of 2 subtasks complete)")
	assert.Contains(t, out, "oat")
	assert.Contains(t, out, "Age:")
}

func TestOverviewCompact(t *testing.T) {
	o := board.Overview{
		Stats:  board.Stats{Total: 4, Active: 3, Completed: 1, CompletionRate: 25, Overdue: 1},
		Tags:   []board.Count{{Name: "home", Count: 2}},
		Colors: []board.Count{{Name: "red", Count: 1}},
	}
	var buf bytes.Buffer
	OverviewCompact(&buf, o)
	assert.Equal(t, "4 tasks: 3 active, 1 completed (25%), 1 overdue, 0 due today\nTags: home=2\nColors: red=1\n", buf.String())
}

func TestRemindersCompact(t *testing.T) {
	parent, _ := sample()
	notices := reminder.Due([]*task.Task{parent}, now, reminder.DefaultWindow)
	var buf bytes.Buffer
	RemindersCompact(&buf, notices)
	assert.Equal(t, "0a1b2c3d [due soon] 2026-10-17 12:30 Buy milk (in 30m)\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "3d 4h", FormatDuration(76*time.Hour))
}
