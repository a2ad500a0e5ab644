package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

func newListCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `Lists top-level tasks with their subtasks. --status, --tag and --color
select the same single filter slot, so only one of them may be given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return runList(cmd, s)
		},
	}
	c.Flags().String("status", "", "filter by status (all, active, completed)")
	c.Flags().String("tag", "", "filter by tag")
	c.Flags().String("color", "", "filter by color")
	c.MarkFlagsMutuallyExclusive("status", "tag", "color")
	c.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	c.Flags().StringP("search", "s", "", "search title, description and tags (case-insensitive)")
	c.Flags().Bool("has-reminder", false, "show only tasks with a reminder")
	c.Flags().String("sort", board.SortCreated, "sort field ("+strings.Join(board.ValidSortFields(), ", ")+")")
	c.Flags().BoolP("reverse", "r", false, "reverse sort order")
	c.Flags().IntP("limit", "n", 0, "limit number of results")
	c.Flags().Bool("flat", false, "omit subtasks")
	c.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	return c
}

func runList(cmd *cobra.Command, s *session) error {
	flags := cmd.Flags()
	statusArg, _ := flags.GetString("status")
	tag, _ := flags.GetString("tag")
	color, _ := flags.GetString("color")
	priorities, _ := flags.GetStringSlice("priority")
	search, _ := flags.GetString("search")
	hasReminder, _ := flags.GetBool("has-reminder")
	sortBy, _ := flags.GetString("sort")
	reverse, _ := flags.GetBool("reverse")
	limit, _ := flags.GetInt("limit")
	flat, _ := flags.GetBool("flat")
	groupBy, _ := flags.GetString("group-by")

	if err := board.ValidateSortField(sortBy); err != nil {
		return err
	}
	if groupBy != "" {
		if err := board.ValidateGroupBy(groupBy); err != nil {
			return err
		}
	}
	for _, p := range priorities {
		if err := task.ValidatePriority(p); err != nil {
			return err
		}
	}

	sel, err := listSelection(statusArg, tag, color)
	if err != nil {
		return err
	}

	tasks := board.Filter(s.store.Filter(sel), board.FilterOptions{
		Priorities:  priorities,
		Search:      search,
		HasReminder: hasReminder,
	})
	board.Sort(tasks, sortBy, reverse)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}

	w := cmd.OutOrStdout()
	format := outputFormat(cmd)

	if groupBy != "" {
		grouped := board.GroupBy(tasks, groupBy)
		switch format {
		case output.FormatJSON, output.FormatYAML:
			return output.Structured(w, format, grouped)
		case output.FormatCompact:
			output.GroupedCompact(w, grouped)
		default:
			output.GroupedTable(w, grouped, s.now())
		}
		return nil
	}

	trees := make([]output.TaskTree, 0, len(tasks))
	for _, t := range tasks {
		if flat {
			trees = append(trees, output.TaskTree{Task: *t})
			continue
		}
		trees = append(trees, output.NewTree(t, s.store.SubtasksOf(t.ID)))
	}

	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.Structured(w, format, trees)
	case output.FormatCompact:
		output.TaskCompact(w, trees)
	default:
		output.TaskTable(w, trees, s.now())
	}
	return nil
}

// listSelection maps the filter flags onto the single selection slot.
func listSelection(statusArg, tag, color string) (store.Selection, error) {
	switch {
	case tag != "":
		return store.SelectTag(tag), nil
	case color != "":
		c, err := task.NormalizeColor(color)
		if err != nil {
			return store.Selection{}, err
		}
		return store.SelectColor(c), nil
	}
	st, err := store.ParseStatus(statusArg)
	if err != nil {
		return store.Selection{}, err
	}
	return store.SelectStatus(st), nil
}
