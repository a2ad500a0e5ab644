package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/date"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// TaskCompact renders task trees in one-line-per-record compact format.
// Subtasks are indented under their parent.
func TaskCompact(w io.Writer, trees []TaskTree) {
	if len(trees) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, tr := range trees {
		line := formatTaskLine(&tr.Task)
		if tr.Progress != nil {
			line += " " + strconv.Itoa(tr.Progress.Done) + "/" + strconv.Itoa(tr.Progress.Total)
		}
		fmt.Fprintln(w, line)
		for _, s := range tr.Subtasks {
			fmt.Fprintln(w, "  "+formatTaskLine(s))
		}
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, subtasks []*task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	ts := "  created:" + t.CreatedAt.Format(date.Layout) +
		" updated:" + t.UpdatedAt.Format(date.Layout)
	if t.ParentID != "" {
		ts += " parent:" + task.ShortID(t.ParentID)
	}
	fmt.Fprintln(w, ts)

	for _, s := range subtasks {
		fmt.Fprintln(w, "  "+formatTaskLine(s))
	}

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// OverviewCompact renders statistics in compact format.
func OverviewCompact(w io.Writer, o board.Overview) {
	s := o.Stats
	fmt.Fprintf(w, "%d tasks: %d active, %d completed (%d%%), %d overdue, %d due today\n",
		s.Total, s.Active, s.Completed, s.CompletionRate, s.Overdue, s.DueToday)
	if len(o.Tags) > 0 {
		fmt.Fprintln(w, "Tags: "+countsLine(o.Tags))
	}
	if len(o.Colors) > 0 {
		fmt.Fprintln(w, "Colors: "+countsLine(o.Colors))
	}
}

// GroupedCompact renders a grouped view in compact format.
func GroupedCompact(w io.Writer, g board.Grouped) {
	for _, gr := range g.Groups {
		fmt.Fprintf(w, "%s (%d/%d)\n", gr.Key, gr.Completed, gr.Total)
		for _, t := range gr.Tasks {
			fmt.Fprintln(w, "  "+formatTaskLine(t))
		}
	}
}

// RemindersCompact renders reminders one per line.
func RemindersCompact(w io.Writer, notices []reminder.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "%s [%s] %s %s (%s)\n", n.Task.ShortID(), n.State,
			date.Format(*n.Task.Reminder), n.Task.Title, n.In)
	}
}

// CountsCompact renders name=count pairs on one line.
func CountsCompact(w io.Writer, counts []board.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(w, countsLine(counts))
}

func countsLine(counts []board.Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, c.Name+"="+strconv.Itoa(c.Count))
	}
	return strings.Join(parts, " ")
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := t.ShortID() + " " + checkbox(t) + " [" + t.Priority + "] " + t.Title

	if len(t.Tags) > 0 {
		line += " (" + strings.Join(t.Tags, ", ") + ")"
	}
	if t.Color != "" {
		line += " color:" + t.Color
	}
	if t.Reminder != nil {
		line += " remind:" + t.Reminder.Format("2006-01-02T15:04")
	}

	return line
}
