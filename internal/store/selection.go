package store

import (
	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Status is a completion filter.
type Status string

// Completion filters.
const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status filter name.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAll, StatusActive, StatusCompleted:
		return Status(s), nil
	case "":
		return StatusAll, nil
	}
	return "", clierr.Newf(clierr.InvalidInput, "invalid status filter %q", s).
		WithDetails(map[string]any{
			"status":  s,
			"allowed": []Status{StatusAll, StatusActive, StatusCompleted},
		})
}

// SelectionKind says which single criterion a Selection holds.
type SelectionKind int

// Selection kinds.
const (
	SelectNone SelectionKind = iota
	SelectByStatus
	SelectByTag
	SelectByColor
)

// Selection is the active list filter. It holds at most one criterion, so a
// status, a tag and a color filter can never be active at the same time:
// choosing one replaces whatever was chosen before.
type Selection struct {
	kind  SelectionKind
	value string
}

// SelectAll returns the empty selection.
func SelectAll() Selection { return Selection{} }

// SelectStatus selects by completion state. StatusAll clears the selection.
func SelectStatus(st Status) Selection {
	if st == StatusAll || st == "" {
		return Selection{}
	}
	return Selection{kind: SelectByStatus, value: string(st)}
}

// SelectTag selects tasks carrying tag.
func SelectTag(tag string) Selection {
	if tag == "" {
		return Selection{}
	}
	return Selection{kind: SelectByTag, value: tag}
}

// SelectColor selects tasks with the given color.
func SelectColor(color string) Selection {
	if color == "" {
		return Selection{}
	}
	return Selection{kind: SelectByColor, value: color}
}

// Toggle returns next, or the empty selection when next is already active.
func (s Selection) Toggle(next Selection) Selection {
	if s == next {
		return Selection{}
	}
	return next
}

// Kind returns the kind of criterion held.
func (s Selection) Kind() SelectionKind { return s.kind }

// IsAll reports whether no criterion is active.
func (s Selection) IsAll() bool { return s.kind == SelectNone }

// Status returns the status criterion, or StatusAll.
func (s Selection) Status() Status {
	if s.kind != SelectByStatus {
		return StatusAll
	}
	return Status(s.value)
}

// Tag returns the tag criterion, or "".
func (s Selection) Tag() string {
	if s.kind != SelectByTag {
		return ""
	}
	return s.value
}

// Color returns the color criterion, or "".
func (s Selection) Color() string {
	if s.kind != SelectByColor {
		return ""
	}
	return s.value
}

// Matches reports whether t passes the selection.
func (s Selection) Matches(t *task.Task) bool {
	switch s.kind {
	case SelectByStatus:
		if Status(s.value) == StatusActive {
			return !t.Completed
		}
		return t.Completed
	case SelectByTag:
		return t.HasTag(s.value)
	case SelectByColor:
		return t.Color == s.value
	default:
		return true
	}
}

// String describes the selection for status lines and empty-list messages.
func (s Selection) String() string {
	switch s.kind {
	case SelectByStatus:
		return s.value
	case SelectByTag:
		return "tag " + s.value
	case SelectByColor:
		return "color " + s.value
	default:
		return "all"
	}
}
