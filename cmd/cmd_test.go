package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/seed"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// resetFlags puts every flag of the command tree back to its default, since
// rootCmd and its flag variables live for the whole test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("TASKNEST_OUTPUT", "")
	t.Setenv("TASKNEST_DIR", "")
	t.Setenv("TASKNEST_SEED", "")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func initDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), config.DefaultDir)
	r := execute(t, "", "init", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// jsonValues splits a stream of JSON documents.
func jsonValues(t *testing.T, s string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	dec := json.NewDecoder(strings.NewReader(s))
	for {
		var v json.RawMessage
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err, s)
		out = append(out, v)
	}
}

func lastJSON(t *testing.T, s string, v any) {
	t.Helper()
	vals := jsonValues(t, s)
	require.NotEmpty(t, vals)
	require.NoError(t, json.Unmarshal(vals[len(vals)-1], v))
}

const groceriesSeed = `tags: [errands]
tasks:
  - title: Groceries
    priority: high
    tags: [home]
    subtasks:
      - title: Milk
        completed: true
      - title: Bread
  - title: Pay rent
    reminder: "2020-01-01 09:00"
    color: red
`

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), config.DefaultDir)

	r := execute(t, "", "init", "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, "initialized", got["status"])
	assert.FileExists(t, filepath.Join(dir, config.ConfigFileName))

	r = execute(t, "", "init", "--dir", dir, "--json")
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &env))
	assert.Equal(t, clierr.ConfigExists, env.Code)
}

func TestInit_StrictMovesFlag(t *testing.T) {
	dir := filepath.Join(t.TempDir(), config.DefaultDir)
	r := execute(t, "", "init", "--dir", dir, "--strict-moves", "--priority", "low")
	require.Equal(t, 0, r.code, r.stderr)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Hierarchy.StrictMoves)
	assert.Equal(t, "low", cfg.Defaults.Priority)
}

func TestMissingConfig(t *testing.T) {
	r := execute(t, "", "ls", "--dir", filepath.Join(t.TempDir(), "nope"), "--json")
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &env))
	assert.Equal(t, clierr.ConfigNotFound, env.Code)
}

func TestRunScript_MilkScenario(t *testing.T) {
	dir := initDir(t)
	script := writeFile(t, t.TempDir(), "milk.tn", `# the milk scenario
add Buy milk --tag groceries
sub @1 "Check the fridge"
toggle @1
tag add errands
tag rm groceries
export
`)

	r := execute(t, "", "run", script, "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)

	var f seed.File
	lastJSON(t, r.stdout, &f)
	require.Len(t, f.Tasks, 1)
	milk := f.Tasks[0]
	assert.Equal(t, "Buy milk", milk.Title)
	assert.True(t, milk.Completed)
	assert.Empty(t, milk.Tags)
	require.Len(t, milk.Subtasks, 1)
	assert.Equal(t, "Check the fridge", milk.Subtasks[0].Title)
	assert.False(t, milk.Subtasks[0].Completed, "toggle must not cascade")
	assert.Equal(t, []string{"errands"}, f.Tags)
}

func TestRunScript_StopsAtFirstError(t *testing.T) {
	dir := initDir(t)
	script := writeFile(t, t.TempDir(), "broken.tn", "add First\nshow zzzz\nadd Second\n")

	r := execute(t, "", "run", script, "--dir", dir)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "broken.tn:2: task not found: zzzz")
	assert.Contains(t, r.stdout, "First")
	assert.NotContains(t, r.stdout, "Second")

	r = execute(t, "", "run", script, "--dir", dir, "--json")
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	lastJSON(t, r.stdout, &env)
	assert.Equal(t, clierr.TaskNotFound, env.Code)
}

func TestRunScript_FromStdin(t *testing.T) {
	dir := initDir(t)
	r := execute(t, "add One\nadd Two\nmv @2 @1\nls --compact\n", "run", "-", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Moved task")
	assert.Contains(t, r.stdout, "\n  ")
}

func TestShell_SharesOneSession(t *testing.T) {
	dir := initDir(t)
	stdin := strings.Join([]string{
		"add Buy milk",
		"add Call mom",
		"",
		"# comment",
		"rm @1 --yes",
		"bogus",
		"ls --compact",
		"exit",
		"add Never reached",
	}, "\n")

	r := execute(t, stdin, "shell", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, 2, strings.Count(r.stdout, "Buy milk"), r.stdout)
	assert.Contains(t, r.stdout, "Deleted task")
	assert.Contains(t, r.stdout, "Call mom")
	assert.NotContains(t, r.stdout, "Never reached")
	assert.Contains(t, r.stderr, `unknown command "bogus"`)
	assert.NotContains(t, r.stderr, shellPrompt, "no prompt without a terminal")
}

func TestShell_FlagsResetBetweenLines(t *testing.T) {
	dir := initDir(t)
	r := execute(t, "add A -p urgent\nadd B\nexport\n", "shell", "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)

	var f seed.File
	lastJSON(t, r.stdout, &f)
	require.Len(t, f.Tasks, 2)
	assert.Equal(t, "urgent", f.Tasks[0].Priority)
	assert.Equal(t, config.DefaultPriority, f.Tasks[1].Priority)
}

func TestSeedAndList(t *testing.T) {
	dir := initDir(t)
	seedPath := writeFile(t, t.TempDir(), "seed.yml", groceriesSeed)

	r := execute(t, "", "ls", "--dir", dir, "--seed", seedPath, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var trees []output.TaskTree
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &trees))
	require.Len(t, trees, 2)
	assert.Equal(t, "Groceries", trees[0].Title)
	require.NotNil(t, trees[0].Progress)
	assert.Equal(t, board.Progress{Done: 1, Total: 2}, *trees[0].Progress)

	r = execute(t, "", "ls", "--dir", dir, "--seed", seedPath, "--tag", "home", "--flat", "--compact")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Groceries")
	assert.NotContains(t, r.stdout, "Milk")
	assert.NotContains(t, r.stdout, "Pay rent")
}

func TestList_SelectionFlagsAreExclusive(t *testing.T) {
	dir := initDir(t)
	r := execute(t, "", "ls", "--dir", dir, "--tag", "home", "--color", "red")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "none of the others can be")
}

func TestSeedFromConfig(t *testing.T) {
	dir := initDir(t)
	writeFile(t, dir, "seed.yml", groceriesSeed)

	r := execute(t, "", "config", "set", "seed", "seed.yml", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)

	r = execute(t, "", "stats", "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var o board.Overview
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &o))
	assert.Equal(t, 4, o.Stats.Total)
	assert.Equal(t, 1, o.Stats.Completed)
	assert.Equal(t, 1, o.Stats.Overdue)
}

func TestReminders(t *testing.T) {
	dir := initDir(t)
	seedPath := writeFile(t, t.TempDir(), "seed.yml", groceriesSeed)

	r := execute(t, "", "reminders", "--dir", dir, "--seed", seedPath, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var notices []reminder.Notice
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &notices))
	require.Len(t, notices, 1)
	assert.Equal(t, "Pay rent", notices[0].Task.Title)
	assert.Equal(t, "overdue", notices[0].State)

	// @4 is Pay rent: Groceries, Milk, Bread come first.
	r = execute(t, "dismiss @4\nreminders --json\nreminders --all --json\n",
		"run", "-", "--dir", dir, "--seed", seedPath)
	require.Equal(t, 0, r.code, r.stderr)
	vals := jsonValues(t, r.stdout[strings.Index(r.stdout, "["):])
	require.Len(t, vals, 2)
	assert.JSONEq(t, "[]", string(vals[0]))
	require.NoError(t, json.Unmarshal(vals[1], &notices))
	assert.Len(t, notices, 1)
}

func TestDelete_ConfirmationRequired(t *testing.T) {
	dir := initDir(t)
	seedPath := writeFile(t, t.TempDir(), "seed.yml", groceriesSeed)

	r := execute(t, "", "rm", "@1", "--dir", dir, "--seed", seedPath, "--json")
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &env))
	assert.Equal(t, clierr.ConfirmationReq, env.Code)

	r = execute(t, "", "rm", "@1,@4", "--dir", dir, "--seed", seedPath)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "batch delete requires --yes")

	r = execute(t, "", "rm", "@1", "--yes", "--dir", dir, "--seed", seedPath, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var got struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Len(t, got.Removed, 3)
}

func TestMove_StrictPolicyFromConfig(t *testing.T) {
	dir := initDir(t)
	seedPath := writeFile(t, t.TempDir(), "seed.yml", groceriesSeed)

	r := execute(t, "", "mv", "@1", "@4", "--force", "--dir", dir, "--seed", seedPath)
	require.Equal(t, 0, r.code, r.stderr)

	r = execute(t, "", "config", "set", "hierarchy.strict_moves", "true", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)

	r = execute(t, "", "mv", "@1", "@4", "--force", "--dir", dir, "--seed", seedPath, "--json")
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &env))
	assert.Equal(t, clierr.HierarchyViolation, env.Code)
}

func TestMove_TaskWithSubtasksNeedsForce(t *testing.T) {
	r := execute(t, "add A\nsub @1 A1\nadd B\nmv @1 @3\n", "run", "-", "--dir", initDir(t))
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "-:4:")
	assert.Contains(t, r.stderr, "cannot become a subtask")

	r = execute(t, "add A\nsub @1 A1\nadd B\nmv @1 @3 --json\n", "run", "-", "--dir", initDir(t))
	assert.Equal(t, 1, r.code)
	var env output.ErrorResponse
	lastJSON(t, r.stdout, &env)
	assert.Equal(t, clierr.HierarchyViolation, env.Code)

	r = execute(t, "add A\nsub @1 A1\nadd B\nmv @1 @3 --force\n", "run", "-", "--dir", initDir(t))
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Moved task")

	r = execute(t, "add A\nsub @1 A1\nadd B\nmv @2 @3\n", "run", "-", "--dir", initDir(t))
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Moved task")
}

func TestEdit_TrimsTagFlags(t *testing.T) {
	dir := initDir(t)
	r := execute(t, "add A --tags x,y\nedit @1 --add-tag \" z\" --remove-tag \" x\"\nexport\n",
		"run", "-", "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)

	var f seed.File
	lastJSON(t, r.stdout, &f)
	require.Len(t, f.Tasks, 1)
	assert.Equal(t, []string{"y", "z"}, f.Tasks[0].Tags)
}

func TestEdit_NoChanges(t *testing.T) {
	dir := initDir(t)
	r := execute(t, "add A\nedit @1\n", "run", "-", "--dir", dir)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "-:2:")
}

func TestConfigGetSet(t *testing.T) {
	dir := initDir(t)

	r := execute(t, "", "config", "set", "tui.refresh", "10s", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "Set tui.refresh = 10s\n", r.stdout)

	r = execute(t, "", "config", "get", "tui.refresh", "--dir", dir)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "10s\n", r.stdout)

	r = execute(t, "", "config", "--dir", dir, "--json")
	require.Equal(t, 0, r.code, r.stderr)
	var all map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &all))
	assert.Equal(t, "10s", all["tui.refresh"])
	assert.ElementsMatch(t, allConfigKeys(), keysOf(all))
}

func TestConfigSet_Errors(t *testing.T) {
	dir := initDir(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown key", []string{"nope", "x"}, clierr.InvalidInput},
		{"read-only key", []string{"version", "2"}, clierr.InvalidInput},
		{"bad bool", []string{"hierarchy.strict_moves", "maybe"}, clierr.InvalidInput},
		{"bad priority", []string{"defaults.priority", "someday"}, clierr.InvalidPriority},
		{"bad color", []string{"defaults.color", "mauve"}, clierr.InvalidColor},
		{"refresh too short", []string{"tui.refresh", "10ms"}, clierr.InvalidConfig},
		{"bad log level", []string{"log.level", "loud"}, clierr.InvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"config", "set"}, tt.args...)
			r := execute(t, "", append(args, "--dir", dir, "--json")...)
			assert.Equal(t, 1, r.code)
			var env output.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(r.stdout), &env))
			assert.Equal(t, tt.code, env.Code)
		})
	}

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRefresh, cfg.TUI.Refresh)
}

func TestOutputFromEnvironment(t *testing.T) {
	dir := initDir(t)
	resetFlags(rootCmd)
	t.Setenv("TASKNEST_DIR", dir)
	t.Setenv("TASKNEST_OUTPUT", "json")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"tags"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.JSONEq(t, "[]", stdout.String())
}

func TestExport_ToFile(t *testing.T) {
	dir := initDir(t)
	seedPath := writeFile(t, t.TempDir(), "seed.yml", groceriesSeed)
	out := filepath.Join(t.TempDir(), "export.yml")

	r := execute(t, "", "export", "-o", out, "--dir", dir, "--seed", seedPath)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stderr, "Exported 4 task(s)")

	f, err := seed.Read(out)
	require.NoError(t, err)
	require.Len(t, f.Tasks, 2)
	assert.Equal(t, "Groceries", f.Tasks[0].Title)
	assert.Len(t, f.Tasks[0].Subtasks, 2)
}

func TestReportError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := reportError(&stdout, &stderr, output.FormatJSON, errors.New("boom"))
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout.String(), clierr.InternalError)

	stdout.Reset()
	code = reportError(&stdout, &stderr, output.FormatTable, &clierr.SilentError{Code: 3})
	assert.Equal(t, 3, code)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
