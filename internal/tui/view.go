package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/output"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	activeRowStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Padding(0, 1)

	activeChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorChipStyle = lipgloss.NewStyle().
			Underline(true).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)

	overdueBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color("124")).
				Padding(0, 1)

	dueSoonBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("214")).
				Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	priorityMarks = map[string]string{
		task.PriorityUrgent: "!!!",
		task.PriorityHigh:   "!! ",
		task.PriorityMedium: "!  ",
		task.PriorityLow:    "   ",
	}
)

func (b *Board) viewList() string {
	var sb strings.Builder

	header := headerStyle.Render("tasknest") + dimStyle.Render("  ·  "+b.sel.String())
	if b.search != "" {
		header += dimStyle.Render(fmt.Sprintf("  ·  search %q", b.search))
	}
	sb.WriteString(header + "\n")
	sb.WriteString(b.renderChips() + "\n")

	for _, n := range b.banners() {
		sb.WriteString(renderBanner(n, b.width) + "\n")
	}
	sb.WriteString("\n")

	if len(b.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No tasks. Press a to add one.") + "\n")
	}
	end := b.scrollOff + b.listHeight()
	if end > len(b.rows) {
		end = len(b.rows)
	}
	for i := b.scrollOff; i < end; i++ {
		line := b.renderRow(b.rows[i])
		if i == b.activeRow && b.view == viewList {
			line = activeRowStyle.Render(padRight(line, b.width))
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString(b.renderStats() + "\n")
	sb.WriteString(b.renderStatusBar())
	return sb.String()
}

func (b *Board) renderChips() string {
	parts := make([]string, 0, len(b.chips)+1)
	all := chipStyle
	if b.sel.IsAll() {
		all = activeChipStyle
	}
	parts = append(parts, all.Render("all"))
	for i, c := range b.chips {
		style := chipStyle
		switch {
		case c.sel == b.sel:
			style = activeChipStyle
		case i == b.chipIdx:
			style = cursorChipStyle
		}
		parts = append(parts, style.Render(c.label))
	}
	return clip(strings.Join(parts, ""), b.width)
}

func renderBanner(n reminder.Notice, width int) string {
	style := dueSoonBannerStyle
	if n.State == reminder.StateOverdue.String() {
		style = overdueBannerStyle
	}
	text := fmt.Sprintf("%s: %s (%s)", n.State, n.Task.Title, n.In)
	return style.Render(truncate(text, width-2)) //nolint:mnd // banner padding
}

func (b *Board) renderRow(r row) string {
	t := r.task
	var indent string
	switch {
	case r.sub:
		indent = "   └ "
	case r.progress != nil && b.expanded[t.ID]:
		indent = "▾ "
	case r.progress != nil:
		indent = "▸ "
	default:
		indent = "  "
	}

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}

	line := indent + check + " " + priorityMarks[t.Priority] + " " + title
	if code, ok := output.ColorCodes[t.Color]; ok {
		line += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(code)).Render("●")
	}
	if len(t.Tags) > 0 {
		line += dimStyle.Render(" #" + strings.Join(t.Tags, " #"))
	}
	if r.progress != nil {
		line += dimStyle.Render(fmt.Sprintf("  %d/%d", r.progress.Done, r.progress.Total))
	}
	if state := reminder.Classify(t, b.now(), b.cfg.ReminderWindow()); state == reminder.StateOverdue || state == reminder.StateDueSoon {
		line += "  " + errorStyle.Render(state.String())
	}
	return clip(line, b.width)
}

func (b *Board) renderStats() string {
	s := board.ComputeStats(b.store.List(), b.now())
	return dimStyle.Render(fmt.Sprintf("%d tasks · %d active · %d done (%d%%) · %d overdue · %d due today",
		s.Total, s.Active, s.Completed, s.CompletionRate, s.Overdue, s.DueToday))
}

func (b *Board) renderStatusBar() string {
	if b.view == viewInput {
		return b.input.View()
	}

	help := make([]string, 0, len(keys.shortHelp()))
	for _, k := range keys.shortHelp() {
		h := k.Help()
		help = append(help, h.Key+":"+h.Desc)
	}
	status := truncate(strings.Join(help, "  "), b.width)

	if b.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+b.err.Error(), b.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", task.ShortID(b.deleteID), b.deleteTitle) + "\n"
	if b.deleteCount > 0 {
		content += fmt.Sprintf("  Its %d subtask(s) will be removed too.\n", b.deleteCount)
	}
	content += "\n" + dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func (b *Board) viewMove() string {
	var sb strings.Builder
	title := ""
	if t, ok := b.store.Get(b.moveID); ok {
		title = t.Title
	}
	sb.WriteString(headerStyle.Render("Move "+truncate(title, b.width/2)) + "\n\n") //nolint:mnd // half width

	for i, dest := range b.moveTargets {
		label := "(top level)"
		if dest != nil {
			label = dest.ShortID() + "  " + dest.Title
		}
		cursor := "  "
		if i == b.moveRow {
			cursor = "> "
		}
		sb.WriteString(cursor + label + "\n")
	}
	sb.WriteString("\n" + dimStyle.Render("enter:move  esc:cancel"))

	return dialogStyle.Render(sb.String())
}

// clip cuts styled text to width without breaking escape sequences.
func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
