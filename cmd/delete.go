package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
)

func newDeleteCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:     "rm ID[,ID,...]",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its subtasks",
		Long: `Removes a task together with all of its subtasks. Prompts for confirmation
on a terminal. Multiple IDs can be provided as a comma-separated list
(requires --yes).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			return runDelete(cmd, s, args[0], yes)
		},
	}
	c.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	return c
}

func runDelete(cmd *cobra.Command, s *session, arg string, yes bool) error {
	refs, err := parseRefs(arg)
	if err != nil {
		return err
	}

	// Batch mode requires --yes.
	if len(refs) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}
	if len(refs) > 1 {
		return runBatch(cmd, refs, func(ref string) error {
			_, err := executeDelete(s, ref)
			return err
		})
	}

	t, err := s.resolve(refs[0])
	if err != nil {
		return err
	}
	if !yes {
		prompt := fmt.Sprintf("Delete task %s %q?", t.ShortID(), t.Title)
		if n := len(s.store.SubtasksOf(t.ID)); n > 0 {
			prompt = fmt.Sprintf("Delete task %s %q and its %d subtask(s)?", t.ShortID(), t.Title, n)
		}
		ok, err := s.confirm(cmd, prompt)
		if err != nil || !ok {
			return err
		}
	}

	removed := s.store.Delete(t.ID)

	if format := outputFormat(cmd); format.IsStructured() {
		return output.Structured(cmd.OutOrStdout(), format, map[string]any{
			"status":  "deleted",
			"id":      t.ID,
			"title":   t.Title,
			"removed": removed,
		})
	}
	msg := fmt.Sprintf("Deleted task %s: %s", t.ShortID(), t.Title)
	if len(removed) > 1 {
		msg += fmt.Sprintf(" (and %d subtask(s))", len(removed)-1)
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func executeDelete(s *session, ref string) ([]string, error) {
	t, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.store.Delete(t.ID), nil
}
