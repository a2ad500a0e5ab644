package cmd

import (
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
)

func newRemindersCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "reminders",
		Short: "List reminders that are overdue or due soon",
		Long: `Lists active tasks whose reminder has passed or falls within the
reminders.window config setting. Dismissed reminders are hidden unless --all
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")

			notices := reminder.Due(s.store.List(), s.now(), s.cfg.ReminderWindow())
			if !all {
				notices = s.dismissed.Visible(notices)
			}

			w := cmd.OutOrStdout()
			switch format := outputFormat(cmd); format {
			case output.FormatJSON, output.FormatYAML:
				if notices == nil {
					notices = []reminder.Notice{}
				}
				return output.Structured(w, format, notices)
			case output.FormatCompact:
				output.RemindersCompact(w, notices)
			default:
				output.RemindersTable(w, notices)
			}
			return nil
		},
	}
	c.Flags().BoolP("all", "a", false, "include dismissed reminders")
	return c
}

func newDismissCmd(get sessionFunc) *cobra.Command {
	c := &cobra.Command{
		Use:   "dismiss [ID[,ID,...]]",
		Short: "Hide reminders for the rest of the session",
		Long:  `Hides the reminders of the given tasks until the session ends. --reset shows them all again.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := get(cmd)
			if err != nil {
				return err
			}
			if reset, _ := cmd.Flags().GetBool("reset"); reset {
				s.dismissed.Reset()
				output.Messagef(cmd.OutOrStdout(), "All reminders visible again")
				return nil
			}
			if len(args) == 0 {
				return cmd.Usage()
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
				s.dismissed.Dismiss(t.ID)
				output.Messagef(cmd.OutOrStdout(), "Dismissed reminder for %s: %s", t.ShortID(), t.Title)
				return nil
			}
			return runBatch(cmd, refs, func(ref string) error {
				t, err := s.resolve(ref)
				if err != nil {
					return err
				}
				s.dismissed.Dismiss(t.ID)
				return nil
			})
		},
	}
	c.Flags().Bool("reset", false, "forget all dismissals")
	return c
}
