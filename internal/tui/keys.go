package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Expand   key.Binding
	Add      key.Binding
	Subtask  key.Binding
	Tag      key.Binding
	Search   key.Binding
	Delete   key.Binding
	Move     key.Binding
	NextChip key.Binding
	PrevChip key.Binding
	Filter   key.Binding
	Dismiss  key.Binding
	Back     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Toggle:   key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done")),
	Expand:   key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "expand")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Subtask:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "subtask")),
	Tag:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tag")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Delete:   key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
	Move:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
	NextChip: key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next filter")),
	PrevChip: key.NewBinding(key.WithKeys("shift+tab", "h", "left")),
	Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Dismiss:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "dismiss reminder")),
	Back:     key.NewBinding(key.WithKeys(keyEsc)),
}

// shortHelp lists the bindings shown in the status bar.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Subtask, k.Toggle, k.Expand, k.Tag, k.Move, k.Delete, k.Filter, k.Search, k.Dismiss, k.Quit}
}
