package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/date"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func newEditCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "edit ID[,ID,...]",
		Short: "Edit a task",
		Long: `Modifies fields of existing tasks. Only specified fields are changed.
Multiple IDs can be provided as a comma-separated list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return runEdit(cmd, s, args[0])
		},
	}
	c.Flags().String("title", "", "new title")
	c.Flags().StringP("description", "d", "", "new description (replaces the old one)")
	c.Flags().StringP("priority", "p", "", "new priority")
	c.Flags().StringSlice("tags", nil, "replace all tags")
	c.Flags().StringSlice("add-tag", nil, "add tags")
	c.Flags().StringSlice("remove-tag", nil, "remove tags")
	c.Flags().StringP("color", "c", "", `new color ("default" clears it)`)
	c.Flags().StringP("reminder", "r", "", "new reminder time")
	c.Flags().Bool("clear-reminder", false, "clear the reminder")
	c.Flags().Bool("done", false, "mark completed")
	c.Flags().Bool("undone", false, "mark not completed")
	c.MarkFlagsMutuallyExclusive("done", "undone")
	c.MarkFlagsMutuallyExclusive("reminder", "clear-reminder")
	c.MarkFlagsMutuallyExclusive("tags", "add-tag")
	c.MarkFlagsMutuallyExclusive("tags", "remove-tag")
	c.Flags().SetNormalizeFunc(normalizeTaskFlags)
	return c
}

func runEdit(cmd *cobra.Command, s *session, arg string) error {
	refs, err := parseRefs(arg)
	if err != nil {
		return err
	}

	// Single ID: report the edited task.
	if len(refs) == 1 {
		t, err := executeEdit(cmd, s, refs[0])
		if err != nil {
			return err
		}
		return printTask(cmd, t, "Updated")
	}

	return runBatch(cmd, refs, func(ref string) error {
		_, err := executeEdit(cmd, s, ref)
		return err
	})
}

// executeEdit resolves ref, builds the changes from the flags and applies them.
func executeEdit(cmd *cobra.Command, s *session, ref string) (*task.Task, error) {
	t, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	ch, err := editChanges(cmd, s, t)
	if err != nil {
		return nil, err
	}
	if ch.IsEmpty() {
		return nil, clierr.New(clierr.NoChanges, "no changes specified")
	}

	if _, err := s.store.Update(t.ID, ch); err != nil {
		return nil, err
	}
	updated, _ := s.store.Get(t.ID)
	return updated, nil
}

func editChanges(cmd *cobra.Command, s *session, t *task.Task) (store.Changes, error) {
	var ch store.Changes
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		ch.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		ch.Description = &v
	}
	if flags.Changed("priority") {
		v, _ := flags.GetString("priority")
		ch.Priority = &v
	}
	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		ch.Color = &v
	}

	if tags, ok := editTags(cmd, t); ok {
		ch.Tags = &tags
	}

	if flags.Changed("reminder") {
		v, _ := flags.GetString("reminder")
		r, err := date.ParseReminder(v, s.now())
		if err != nil {
			return ch, err
		}
		ch.Reminder = &r
	}
	if v, _ := flags.GetBool("clear-reminder"); v {
		ch.ClearReminder = true
	}

	if v, _ := flags.GetBool("done"); v {
		done := true
		ch.Completed = &done
	}
	if v, _ := flags.GetBool("undone"); v {
		done := false
		ch.Completed = &done
	}
	return ch, nil
}

// editTags computes the new tag list, reporting false when no tag flag was given.
func editTags(cmd *cobra.Command, t *task.Task) ([]string, bool) {
	flags := cmd.Flags()
	if flags.Changed("tags") {
		tags, _ := flags.GetStringSlice("tags")
		return tags, true
	}

	add, _ := flags.GetStringSlice("add-tag")
	remove, _ := flags.GetStringSlice("remove-tag")
	if len(add) == 0 && len(remove) == 0 {
		return nil, false
	}

	add, remove = trimTags(add), trimTags(remove)
	tags := slices.Clone(t.Tags)
	for _, tag := range add {
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	tags = slices.DeleteFunc(tags, func(tag string) bool {
		return slices.Contains(remove, tag)
	})
	return tags, true
}

// trimTags trims each tag and drops the empty ones.
func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
