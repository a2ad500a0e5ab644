package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/date"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)

	// Priority colors matching TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		task.PriorityUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	// ColorCodes maps palette names to ANSI 256 colors. The TUI uses the
	// same table.
	ColorCodes = map[string]string{
		"red":    "196",
		"orange": "208",
		"yellow": "226",
		"green":  "34",
		"blue":   "33",
		"purple": "129",
		"pink":   "205",
		"indigo": "62",
		"teal":   "37",
		"gray":   "245",
	}
	colorStyles = paletteStyles()

	reminderStyles = map[string]lipgloss.Style{
		reminder.StateOverdue.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		reminder.StateDueSoon.String(): lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}

	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	markdownStyle = "dark"

	// ReminderWindow decides when a reminder cell is drawn as due soon.
	ReminderWindow = reminder.DefaultWindow
)

func paletteStyles() map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style, len(ColorCodes))
	for name, code := range ColorCodes {
		styles[name] = lipgloss.NewStyle().Foreground(lipgloss.Color(code))
	}
	return styles
}

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	priorityStyles = map[string]lipgloss.Style{}
	colorStyles = map[string]lipgloss.Style{}
	reminderStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
	markdownStyle = "notty"
}

// TaskTable renders top-level tasks, each followed by its subtasks.
func TaskTable(w io.Writer, trees []TaskTree, now time.Time) {
	if len(trees) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, prioW, titleW, tagsW, colorW := 10, 10, 7, 6, 7
	measure := func(t *task.Task, indent int) {
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+indent+pad, 50))          //nolint:mnd // max title column width
		tagsW = max(tagsW, min(len(strings.Join(t.Tags, ","))+pad, 30)) //nolint:mnd // max tags column width
		colorW = max(colorW, len(t.Color)+pad)
	}
	for _, tr := range trees {
		measure(&tr.Task, 0)
		for _, s := range tr.Subtasks {
			measure(s, len(subtaskPrefix))
		}
	}

	header := fmt.Sprintf("%-*s %-3s %-*s %-*s %-*s %-*s %-16s %s",
		idW, "ID", "", prioW, "PRIORITY", titleW, "TITLE",
		tagsW, "TAGS", colorW, "COLOR", "REMINDER", "PROGRESS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	row := func(t *task.Task, prefix string, progress *board.Progress) {
		title := prefix + t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		if t.Completed {
			title = doneStyle.Render(title)
		}
		prog := ""
		if progress != nil {
			prog = strconv.Itoa(progress.Done) + "/" + strconv.Itoa(progress.Total)
		}
		line := fmt.Sprintf("%-*s %s %s %s %s %s %s %s",
			idW, t.ShortID(),
			checkbox(t),
			padRight(styledValue(t.Priority, priorityStyles), prioW),
			padRight(title, titleW),
			padRight(tagsCell(t.Tags), tagsW),
			padRight(colorCell(t.Color), colorW),
			padRight(reminderCell(t, now), 16), //nolint:mnd // reminder column width
			prog)
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	for _, tr := range trees {
		row(&tr.Task, "", tr.Progress)
		for _, s := range tr.Subtasks {
			row(s, subtaskPrefix, nil)
		}
	}
}

const subtaskPrefix = "└ "

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, parent *task.Task, subtasks []*task.Task, now time.Time) {
	titleLine := fmt.Sprintf("Task %s: %s", t.ShortID(), t.Title)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	status := "active"
	if t.Completed {
		status = "completed"
	}
	printField(w, "Status", status)
	printField(w, "Priority", styledValue(t.Priority, priorityStyles))
	printField(w, "Tags", tagsCell(t.Tags))
	printField(w, "Color", colorCell(t.Color))
	printField(w, "Reminder", reminderCell(t, now))
	if parent != nil {
		printField(w, "Parent", parent.ShortID()+" "+parent.Title)
	}
	printField(w, "Created", t.CreatedAt.Format(date.Layout))
	printField(w, "Updated", t.UpdatedAt.Format(date.Layout))
	if t.Completed {
		printField(w, "Age", FormatDuration(t.UpdatedAt.Sub(t.CreatedAt)))
	} else {
		printField(w, "Age", FormatDuration(now.Sub(t.CreatedAt)))
	}

	if len(subtasks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Subtasks ("+board.SubtaskProgress(subtasks).String()+")"))
		for _, s := range subtasks {
			title := s.Title
			if s.Completed {
				title = doneStyle.Render(title)
			}
			fmt.Fprintf(w, "  %s %s %s\n", checkbox(s), dimStyle.Render(s.ShortID()), title)
		}
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, RenderMarkdown(t.Description))
	}
}

// RenderMarkdown renders a task description for the terminal. It falls back
// to the raw text when rendering fails.
func RenderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle),
		glamour.WithWordWrap(80), //nolint:mnd // wrap width
	)
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

// OverviewTable renders statistics with tag and color breakdowns.
func OverviewTable(w io.Writer, o board.Overview) {
	s := o.Stats
	fmt.Fprintln(w, titleStyle.Render("Tasks"))
	fmt.Fprintf(w, "Total: %d  Active: %d  Completed: %d (%d%%)\n", s.Total, s.Active, s.Completed, s.CompletionRate)
	overdue := strconv.Itoa(s.Overdue)
	if st, ok := reminderStyles[reminder.StateOverdue.String()]; ok && s.Overdue > 0 {
		overdue = st.Render(overdue)
	}
	fmt.Fprintf(w, "Overdue: %s  Due today: %d\n", overdue, s.DueToday)

	if len(o.Tags) > 0 {
		fmt.Fprintln(w)
		CountsTable(w, "TAG", o.Tags)
	}
	if len(o.Colors) > 0 {
		fmt.Fprintln(w)
		CountsTable(w, "COLOR", o.Colors)
	}
}

// CountsTable renders name/count pairs under a header. Tags share one
// style; colors are drawn in their own color.
func CountsTable(w io.Writer, label string, counts []board.Count) {
	const nameW = 16
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", nameW, label, "ACTIVE")))
	for _, c := range counts {
		name := c.Name
		switch label {
		case "TAG":
			name = tagStyle.Render(c.Name)
		case "COLOR":
			name = styledValue(c.Name, colorStyles)
		}
		fmt.Fprintf(w, "%s %6d\n", padRight(name, nameW), c.Count)
	}
}

// GroupedTable renders a grouped view with each group's tasks.
func GroupedTable(w io.Writer, g board.Grouped, now time.Time) {
	if len(g.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, gr := range g.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		key := gr.Key
		switch g.Field {
		case "priority":
			key = styledValue(key, priorityStyles)
		case "color":
			key = styledValue(key, colorStyles)
		}
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(key),
			dimStyle.Render(fmt.Sprintf("(%d tasks, %d completed)", gr.Total, gr.Completed)))
		for _, t := range gr.Tasks {
			title := t.Title
			if t.Completed {
				title = doneStyle.Render(title)
			}
			line := fmt.Sprintf("  %s %s %s", checkbox(t), dimStyle.Render(t.ShortID()), title)
			if t.Reminder != nil {
				line += " " + reminderCell(t, now)
			}
			fmt.Fprintln(w, line)
		}
	}
}

// RemindersTable renders reminders needing attention.
func RemindersTable(w io.Writer, notices []reminder.Notice) {
	if len(notices) == 0 {
		fmt.Fprintln(os.Stderr, "No reminders due.")
		return
	}
	const stateW, whenW = 10, 18
	header := fmt.Sprintf("%-10s %-*s %-*s %s", "ID", stateW, "STATE", whenW, "REMINDER", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, n := range notices {
		fmt.Fprintf(w, "%-10s %s %s %s\n",
			n.Task.ShortID(),
			padRight(styledValue(n.State, reminderStyles), stateW),
			padRight(date.Format(*n.Task.Reminder), whenW),
			n.Task.Title+" "+dimStyle.Render("("+n.In+")"))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func checkbox(t *task.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}

func tagsCell(tags []string) string {
	if len(tags) == 0 {
		return dimStyle.Render("--")
	}
	return tagStyle.Render(strings.Join(tags, ","))
}

func colorCell(color string) string {
	if color == "" {
		return dimStyle.Render("--")
	}
	return styledValue(color, colorStyles)
}

func reminderCell(t *task.Task, now time.Time) string {
	if t.Reminder == nil {
		return dimStyle.Render("--")
	}
	text := date.Format(*t.Reminder)
	st := reminder.Classify(t, now, ReminderWindow)
	if style, ok := reminderStyles[st.String()]; ok {
		return style.Render(text)
	}
	return text
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
