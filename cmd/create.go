package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/date"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func newAddCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:     "add TITLE...",
		Aliases: []string{"create"},
		Short:   "Create a task",
		Long: `Creates a top-level task, or a subtask when --parent is given.
The remaining arguments are joined into the title.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetString("parent")
			return runCreate(cmd, s, parent, args)
		},
	}
	addTaskFlags(c)
	c.Flags().String("parent", "", "parent task ID (makes this a subtask)")
	return c
}

func newSubCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "sub PARENT TITLE...",
		Short: "Create a subtask",
		Long:  `Creates a subtask under the top-level task PARENT.`,
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // parent and title
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return runCreate(cmd, s, args[0], args[1:])
		},
	}
	addTaskFlags(c)
	return c
}

// addTaskFlags registers the task field flags shared by add and sub.
func addTaskFlags(c *cobra.Command) {
	c.Flags().StringP("description", "d", "", "task description (markdown)")
	c.Flags().StringP("priority", "p", "", "task priority ("+strings.Join(task.Priorities, ", ")+")")
	c.Flags().StringSliceP("tags", "t", nil, "comma-separated tags")
	c.Flags().StringP("color", "c", "", "task color ("+strings.Join(task.Palette, ", ")+")")
	c.Flags().StringP("reminder", "r", "", `reminder time ("+2h", "tomorrow 9:00", "2026-10-20 14:00")`)
	c.Flags().Bool("done", false, "create the task already completed")
	c.Flags().SetNormalizeFunc(normalizeTaskFlags)
}

func runCreate(cmd *cobra.Command, s *session, parentRef string, words []string) error {
	in, err := createInput(cmd, s, strings.Join(words, " "))
	if err != nil {
		return err
	}

	var t *task.Task
	if parentRef != "" {
		parent, err := s.resolve(parentRef)
		if err != nil {
			return err
		}
		t, err = s.store.CreateSubtask(parent.ID, in)
		if err != nil {
			return err
		}
	} else {
		t, err = s.store.Create(in)
		if err != nil {
			return err
		}
	}

	return printTask(cmd, t, "Created")
}

func createInput(cmd *cobra.Command, s *session, title string) (store.Input, error) {
	in := store.Input{
		Title:    title,
		Priority: s.cfg.Defaults.Priority,
		Color:    s.cfg.Defaults.Color,
	}
	in.Description, _ = cmd.Flags().GetString("description")
	in.Tags, _ = cmd.Flags().GetStringSlice("tags")
	in.Completed, _ = cmd.Flags().GetBool("done")

	if cmd.Flags().Changed("priority") {
		in.Priority, _ = cmd.Flags().GetString("priority")
	}
	if cmd.Flags().Changed("color") {
		in.Color, _ = cmd.Flags().GetString("color")
	}
	if v, _ := cmd.Flags().GetString("reminder"); v != "" {
		r, err := date.ParseReminder(v, s.now())
		if err != nil {
			return in, err
		}
		in.Reminder = &r
	}
	return in, nil
}

// printTask reports a single created or changed task.
func printTask(cmd *cobra.Command, t *task.Task, verb string) error {
	w := cmd.OutOrStdout()
	switch format := outputFormat(cmd); format {
	case output.FormatJSON, output.FormatYAML:
		return output.Structured(w, format, t)
	case output.FormatCompact:
		output.TaskCompact(w, output.Flat([]*task.Task{t}))
	default:
		output.Messagef(w, "%s task %s: %s", verb, t.ShortID(), t.Title)
	}
	return nil
}
