// Package tui implements the interactive task list.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasknest/internal/board"
	"github.com/twiced-technology-gmbh/tasknest/internal/config"
	"github.com/twiced-technology-gmbh/tasknest/internal/reminder"
	"github.com/twiced-technology-gmbh/tasknest/internal/store"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewInput
	viewConfirmDelete
	viewMove
)

// inputMode says what the text input is collecting.
type inputMode int

const (
	inputTitle inputMode = iota
	inputSubtask
	inputTag
	inputSearch
)

// Key and layout constants.
const (
	keyEsc = "esc"

	listChrome  = 5 // title, chips, blank line, stats footer, status bar
	maxBanners  = 3
	titleLimit  = 200
	minRefresh  = time.Second
	defaultTick = 30 * time.Second
)

// row is one visible line of the task list.
type row struct {
	task     *task.Task
	sub      bool
	progress *board.Progress
}

// chip is a filter choice shown above the list.
type chip struct {
	label string
	sel   store.Selection
}

// Board is the top-level bubbletea model.
type Board struct {
	store *store.Store
	cfg   *config.Config

	rows      []row
	activeRow int
	scrollOff int
	expanded  map[string]bool

	sel     store.Selection
	search  string
	chips   []chip
	chipIdx int

	view     view
	input    textinput.Model
	mode     inputMode
	parentID string // parent of the subtask being entered

	deleteID    string
	deleteTitle string
	deleteCount int

	moveID      string
	moveTargets []*task.Task // nil entry detaches the task
	moveRow     int

	dismissed reminder.Dismissals

	width  int
	height int
	err    error
	now    func() time.Time // clock for reminder state; defaults to time.Now
}

// NewBoard creates a Board over s. cfg may be nil, in which case defaults
// are used.
func NewBoard(s *store.Store, cfg *config.Config) *Board {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	ti := textinput.New()
	ti.CharLimit = titleLimit

	b := &Board{
		store:    s,
		cfg:      cfg,
		expanded: make(map[string]bool),
		input:    ti,
		now:      time.Now,
	}
	b.loadTasks()
	return b
}

// SetNow overrides the clock function used for reminder state (for testing).
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tickCmd(b.refreshInterval())
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ensureVisible()
		return b, nil
	case ConfigMsg:
		if msg.Err != nil {
			b.err = msg.Err
			return b, nil
		}
		b.applyConfig(msg.Cfg)
		return b, nil
	case ReloadMsg:
		b.loadTasks()
		return b, nil
	case TickMsg:
		b.loadTasks()
		return b, tickCmd(b.refreshInterval())
	}

	if b.view == viewInput {
		var cmd tea.Cmd
		b.input, cmd = b.input.Update(msg)
		return b, cmd
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	switch b.view {
	case viewConfirmDelete:
		return b.viewDeleteConfirm()
	case viewMove:
		return b.viewMove()
	default:
		return b.viewList()
	}
}

func (b *Board) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	b.cfg = cfg
	policy := store.MoveLenient
	if cfg.Hierarchy.StrictMoves {
		policy = store.MoveStrict
	}
	b.store.SetMovePolicy(policy)
	b.err = nil
	b.loadTasks()
}

func (b *Board) refreshInterval() time.Duration {
	d := b.cfg.RefreshInterval()
	if d < minRefresh {
		return defaultTick
	}
	return d
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return b, tea.Quit
	}

	switch b.view {
	case viewList:
		return b.handleListKey(msg)
	case viewInput:
		return b.handleInputKey(msg)
	case viewConfirmDelete:
		return b.handleDeleteKey(msg)
	case viewMove:
		return b.handleMoveKey(msg)
	}

	return b, nil
}

func (b *Board) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.err = nil

	switch {
	case key.Matches(msg, keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, keys.Back):
		switch {
		case b.search != "":
			b.search = ""
		case !b.sel.IsAll():
			b.sel = store.SelectAll()
		default:
			return b, tea.Quit
		}
		b.loadTasks()
	case key.Matches(msg, keys.Down):
		if b.activeRow < len(b.rows)-1 {
			b.activeRow++
			b.ensureVisible()
		}
	case key.Matches(msg, keys.Up):
		if b.activeRow > 0 {
			b.activeRow--
			b.ensureVisible()
		}
	case key.Matches(msg, keys.NextChip):
		if len(b.chips) > 0 {
			b.chipIdx = (b.chipIdx + 1) % len(b.chips)
		}
	case key.Matches(msg, keys.PrevChip):
		if len(b.chips) > 0 {
			b.chipIdx = (b.chipIdx - 1 + len(b.chips)) % len(b.chips)
		}
	case key.Matches(msg, keys.Filter):
		if b.chipIdx < len(b.chips) {
			b.sel = b.sel.Toggle(b.chips[b.chipIdx].sel)
			b.activeRow = 0
			b.loadTasks()
		}
	case key.Matches(msg, keys.Toggle):
		if t := b.selectedTask(); t != nil {
			b.store.Toggle(t.ID)
			b.loadTasks()
		}
	case key.Matches(msg, keys.Expand):
		b.toggleExpanded()
	case key.Matches(msg, keys.Add):
		return b, b.startInput(inputTitle, "New task: ", "")
	case key.Matches(msg, keys.Subtask):
		if t := b.selectedTask(); t != nil {
			parent := t.ID
			if t.ParentID != "" {
				parent = t.ParentID
			}
			b.parentID = parent
			return b, b.startInput(inputSubtask, "New subtask: ", "")
		}
	case key.Matches(msg, keys.Tag):
		return b, b.startInput(inputTag, "Tag: ", "")
	case key.Matches(msg, keys.Search):
		return b, b.startInput(inputSearch, "Search: ", b.search)
	case key.Matches(msg, keys.Delete):
		b.handleDeleteStart()
	case key.Matches(msg, keys.Move):
		b.handleMoveStart()
	case key.Matches(msg, keys.Dismiss):
		if notices := b.notices(); len(notices) > 0 {
			b.dismissed.Dismiss(notices[0].Task.ID)
		}
	}
	return b, nil
}

func (b *Board) startInput(mode inputMode, prompt, value string) tea.Cmd {
	b.mode = mode
	b.view = viewInput
	b.input.Prompt = prompt
	b.input.SetValue(value)
	b.input.CursorEnd()
	return b.input.Focus()
}

func (b *Board) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		b.closeInput()
		return b, nil
	case "enter":
		value := b.input.Value()
		b.closeInput()
		b.submitInput(value)
		return b, nil
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

func (b *Board) closeInput() {
	b.input.Blur()
	b.view = viewList
}

func (b *Board) submitInput(value string) {
	switch b.mode {
	case inputTitle:
		if strings.TrimSpace(value) == "" {
			return
		}
		t, err := b.store.Create(b.newInput(value))
		if err != nil {
			b.err = err
			return
		}
		b.loadTasks()
		b.selectTask(t.ID)
	case inputSubtask:
		if strings.TrimSpace(value) == "" {
			return
		}
		t, err := b.store.CreateSubtask(b.parentID, b.newInput(value))
		if err != nil {
			b.err = err
			return
		}
		b.expanded[b.parentID] = true
		b.loadTasks()
		b.selectTask(t.ID)
	case inputTag:
		b.submitTag(value)
	case inputSearch:
		b.search = strings.TrimSpace(value)
		b.activeRow = 0
		b.loadTasks()
	}
}

// submitTag registers the tag and, when a task is selected, attaches it.
func (b *Board) submitTag(value string) {
	tag := strings.TrimSpace(value)
	if tag == "" {
		return
	}
	b.store.AddTag(tag)
	if t := b.selectedTask(); t != nil && !t.HasTag(tag) {
		tags := append(t.Tags, tag)
		if _, err := b.store.Update(t.ID, store.Changes{Tags: &tags}); err != nil {
			b.err = err
		}
	}
	b.loadTasks()
}

func (b *Board) newInput(title string) store.Input {
	return store.Input{
		Title:    title,
		Priority: b.cfg.Defaults.Priority,
		Color:    b.cfg.Defaults.Color,
	}
}

func (b *Board) toggleExpanded() {
	t := b.selectedTask()
	if t == nil {
		return
	}
	id := t.ID
	if t.ParentID != "" {
		id = t.ParentID
	}
	b.expanded[id] = !b.expanded[id]
	b.loadTasks()
	b.selectTask(id)
}

func (b *Board) handleDeleteStart() {
	if t := b.selectedTask(); t != nil {
		b.deleteID = t.ID
		b.deleteTitle = t.Title
		b.deleteCount = len(b.store.SubtasksOf(t.ID))
		b.view = viewConfirmDelete
	}
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		b.store.Delete(b.deleteID)
		b.view = viewList
		b.loadTasks()
	case "n", "N", keyEsc, "q":
		b.view = viewList
	}
	return b, nil
}

// handleMoveStart offers every other top-level task as the new parent, plus
// detaching when the task is currently a subtask. A task with subtasks of its
// own cannot become a subtask.
func (b *Board) handleMoveStart() {
	t := b.selectedTask()
	if t == nil {
		return
	}
	if n := len(b.store.SubtasksOf(t.ID)); n > 0 {
		b.err = task.ValidateHasSubtasks(t.ID, n)
		return
	}
	var targets []*task.Task
	if t.ParentID != "" {
		targets = append(targets, nil)
	}
	for _, candidate := range b.store.TopLevel() {
		if candidate.ID != t.ID && candidate.ID != t.ParentID {
			targets = append(targets, candidate)
		}
	}
	if len(targets) == 0 {
		return
	}
	b.moveID = t.ID
	b.moveTargets = targets
	b.moveRow = 0
	b.view = viewMove
}

func (b *Board) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Down):
		if b.moveRow < len(b.moveTargets)-1 {
			b.moveRow++
		}
	case key.Matches(msg, keys.Up):
		if b.moveRow > 0 {
			b.moveRow--
		}
	case msg.String() == "enter":
		target := ""
		if dest := b.moveTargets[b.moveRow]; dest != nil {
			target = dest.ID
			b.expanded[dest.ID] = true
		}
		if _, err := b.store.Move(b.moveID, target); err != nil {
			b.err = err
		}
		b.view = viewList
		b.loadTasks()
		b.selectTask(b.moveID)
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		b.view = viewList
	}
	return b, nil
}

// loadTasks rebuilds the visible rows and filter chips from the store.
func (b *Board) loadTasks() {
	top := b.store.Filter(b.sel)
	if b.search != "" {
		top = board.Search(top, b.search)
	}

	b.rows = b.rows[:0]
	for _, t := range top {
		subs := b.store.SubtasksOf(t.ID)
		r := row{task: t}
		if len(subs) > 0 {
			p := board.SubtaskProgress(subs)
			r.progress = &p
		}
		b.rows = append(b.rows, r)
		if !b.expanded[t.ID] {
			continue
		}
		for _, s := range subs {
			if s.Completed && !b.cfg.TUI.ShowCompletedSubtasks {
				continue
			}
			b.rows = append(b.rows, row{task: s, sub: true})
		}
	}

	b.chips = b.buildChips()
	if b.chipIdx >= len(b.chips) {
		b.chipIdx = 0
	}
	b.clampRow()
}

func (b *Board) buildChips() []chip {
	chips := []chip{
		{label: string(store.StatusActive), sel: store.SelectStatus(store.StatusActive)},
		{label: string(store.StatusCompleted), sel: store.SelectStatus(store.StatusCompleted)},
	}
	for _, tag := range b.store.AvailableTags() {
		chips = append(chips, chip{label: "#" + tag, sel: store.SelectTag(tag)})
	}
	for _, color := range b.store.AvailableColors() {
		chips = append(chips, chip{label: "●" + color, sel: store.SelectColor(color)})
	}
	return chips
}

func (b *Board) notices() []reminder.Notice {
	due := reminder.Due(b.store.List(), b.now(), b.cfg.ReminderWindow())
	return b.dismissed.Visible(due)
}

func (b *Board) selectedTask() *task.Task {
	if b.activeRow < 0 || b.activeRow >= len(b.rows) {
		return nil
	}
	return b.rows[b.activeRow].task
}

func (b *Board) selectTask(id string) {
	for i, r := range b.rows {
		if r.task.ID == id {
			b.activeRow = i
			b.ensureVisible()
			return
		}
	}
}

func (b *Board) clampRow() {
	if b.activeRow >= len(b.rows) {
		b.activeRow = len(b.rows) - 1
	}
	if b.activeRow < 0 {
		b.activeRow = 0
	}
	b.ensureVisible()
}

// banners returns the reminder notices shown above the list.
func (b *Board) banners() []reminder.Notice {
	n := b.notices()
	if len(n) > maxBanners {
		n = n[:maxBanners]
	}
	return n
}

// listHeight returns how many task rows fit on screen.
func (b *Board) listHeight() int {
	h := b.height - listChrome - len(b.banners())
	if b.err != nil {
		h--
	}
	if h < 1 {
		return 1
	}
	return h
}

// ensureVisible adjusts the scroll offset so the active row is on screen.
func (b *Board) ensureVisible() {
	if b.height == 0 {
		return
	}
	visible := b.listHeight()
	if b.activeRow < b.scrollOff {
		b.scrollOff = b.activeRow
	}
	if b.activeRow >= b.scrollOff+visible {
		b.scrollOff = b.activeRow - visible + 1
	}
	if b.scrollOff < 0 {
		b.scrollOff = 0
	}
}

// ConfigMsg carries a reloaded configuration, or the error from loading it.
type ConfigMsg struct {
	Cfg *config.Config
	Err error
}

// ReloadMsg asks the board to re-read the store.
type ReloadMsg struct{}

// TickMsg triggers a periodic re-render so reminder state follows the clock.
type TickMsg struct{}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
