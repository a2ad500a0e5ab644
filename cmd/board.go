package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
)

func newStatsCmd(get sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"summary"},
		Short:   "Show task statistics",
		Long: `Displays totals, completion rate, overdue and due-today counts, and the
number of active tasks per tag and per color.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			o := board.Summary(s.store.List(), s.store.AvailableTags(), s.store.AvailableColors(), s.now())

			w := cmd.OutOrStdout()
			switch format := outputFormat(cmd); format {
			case output.FormatJSON, output.FormatYAML:
				return output.Structured(w, format, o)
			case output.FormatCompact:
				output.OverviewCompact(w, o)
			default:
				output.OverviewTable(w, o)
			}
			return nil
		},
	}
}

func newTagsCmd(get sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List known tags with active task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return printCounts(cmd, "TAG", board.TagCounts(s.store.List(), s.store.AvailableTags()))
		},
	}
}

func newColorsCmd(get sessionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List colors in use with active task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			return printCounts(cmd, "COLOR", board.ColorCounts(s.store.List(), s.store.AvailableColors()))
		},
	}
}

func printCounts(cmd *cobra.Command, label string, counts []board.Count) error {
	w := cmd.OutOrStdout()
	switch format := outputFormat(cmd); format {
	case output.FormatJSON, output.FormatYAML:
		if counts == nil {
			counts = []board.Count{}
		}
		return output.Structured(w, format, counts)
	case output.FormatCompact:
		output.CountsCompact(w, counts)
	default:
		output.CountsTable(w, label, counts)
	}
	return nil
}

func newTagCmd(get sessionFunc) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag vocabulary",
	}

	tagCmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Register tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			added := []string{}
			for _, name := range args {
				if s.store.AddTag(name) {
					added = append(added, name)
				}
			}
			if format := outputFormat(cmd); format.IsStructured() {
				return output.Structured(cmd.OutOrStdout(), format, map[string]any{"added": added})
			}
			output.Messagef(cmd.OutOrStdout(), "Added %d tag(s)", len(added))
			return nil
		},
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"remove"},
		Short:   "Remove tags from the vocabulary and from every task",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			affected := make(map[string]int, len(args))
			for _, name := range args {
				affected[name] = s.store.RemoveTag(name)
			}
			if format := outputFormat(cmd); format.IsStructured() {
				return output.Structured(cmd.OutOrStdout(), format, map[string]any{"removed": affected})
			}
			for _, name := range args {
				output.Messagef(cmd.OutOrStdout(), "Removed tag %s from %d task(s)", name, affected[name])
			}
			return nil
		},
	})

	return tagCmd
}
