package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func newShowCmd(get sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Long:  `Displays full details of a single task including its subtasks and rendered description.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			t, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			subtasks := s.store.SubtasksOf(t.ID)

			w := cmd.OutOrStdout()
			switch format := outputFormat(cmd); format {
			case output.FormatJSON, output.FormatYAML:
				return output.Structured(w, format, output.NewTree(t, subtasks))
			case output.FormatCompact:
				output.TaskDetailCompact(w, t, subtasks)
			default:
				var parent *task.Task
				if t.ParentID != "" {
					parent, _ = s.store.Get(t.ParentID)
				}
				output.TaskDetail(w, t, parent, subtasks, s.now())
			}
			return nil
		},
	}
}
