package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func newMoveCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "mv ID[,ID,...] [PARENT]",
		Short: "Move tasks under another task",
		Long: `Makes each task a subtask of PARENT. Without PARENT the tasks become
top-level. Multiple IDs can be provided as a comma-separated list.
A task that has subtasks is only moved under PARENT with --force; its
subtasks are then nested two levels deep and no longer listed by ls.`,
		Args: cobra.RangeArgs(1, 2), //nolint:mnd // 1 or 2 positional args
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return runMove(cmd, s, args)
		},
	}
	c.Flags().Bool("force", false, "allow moving a task that has subtasks under another task")
	return c
}

func runMove(cmd *cobra.Command, s *session, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	parentID := ""
	if len(args) > 1 {
		parent, err := s.resolve(args[1])
		if err != nil {
			return err
		}
		parentID = parent.ID
	}

	if len(refs) == 1 {
		t, err := executeMove(s, refs[0], parentID, force)
		if err != nil {
			return err
		}
		return printMove(cmd, t)
	}

	return runBatch(cmd, refs, func(ref string) error {
		_, err := executeMove(s, ref, parentID, force)
		return err
	})
}

func executeMove(s *session, ref, parentID string, force bool) (*task.Task, error) {
	t, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if parentID != "" && !force {
		if n := len(s.store.SubtasksOf(t.ID)); n > 0 {
			return nil, task.ValidateHasSubtasks(t.ID, n)
		}
	}
	if _, err := s.store.Move(t.ID, parentID); err != nil {
		return nil, err
	}
	moved, _ := s.store.Get(t.ID)
	return moved, nil
}

func printMove(cmd *cobra.Command, t *task.Task) error {
	w := cmd.OutOrStdout()
	if format := outputFormat(cmd); format.IsStructured() {
		return output.Structured(w, format, t)
	}
	if t.ParentID == "" {
		output.Messagef(w, "Moved task %s to top level", t.ShortID())
		return nil
	}
	output.Messagef(w, "Moved task %s under %s", t.ShortID(), task.ShortID(t.ParentID))
	return nil
}

func newToggleCmd(get sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle ID[,ID,...]",
		Aliases: []string{"done"},
		Short:   "Flip the completed state of tasks",
		Long:    `Flips completion of each task. Subtasks are not affected.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			refs, err := parseRefs(args[0])
			if err != nil {
				return err
			}
			if len(refs) == 1 {
				t, err := s.resolve(refs[0])
				if err != nil {
					return err
				}
				s.store.Toggle(t.ID)
				t, _ = s.store.Get(t.ID)
				verb := "Reopened"
				if t.Completed {
					verb = "Completed"
				}
				return printTask(cmd, t, verb)
			}
			return runBatch(cmd, refs, func(ref string) error {
				t, err := s.resolve(ref)
				if err != nil {
					return err
				}
				s.store.Toggle(t.ID)
				return nil
			})
		},
	}
}
