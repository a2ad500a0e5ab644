// Package reminder decides which task reminders need attention.
package reminder

import (
	"slices"
	"strconv"
	"time"

	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// DefaultWindow is how far ahead a reminder counts as due soon.
const DefaultWindow = time.Hour

// State classifies a reminder relative to now.
type State int

// Reminder states.
const (
	StateNone State = iota
	StateUpcoming
	StateDueSoon
	StateOverdue
)

func (s State) String() string {
	switch s {
	case StateUpcoming:
		return "upcoming"
	case StateDueSoon:
		return "due soon"
	case StateOverdue:
		return "overdue"
	default:
		return "none"
	}
}

// Classify reports the reminder state of t. Completed tasks and tasks
// without a reminder are StateNone.
func Classify(t *task.Task, now time.Time, window time.Duration) State {
	if t.Completed || t.Reminder == nil {
		return StateNone
	}
	switch {
	case t.Reminder.Before(now):
		return StateOverdue
	case t.Reminder.Sub(now) <= window:
		return StateDueSoon
	default:
		return StateUpcoming
	}
}

// Notice is a reminder that needs attention.
type Notice struct {
	Task  *task.Task `json:"task" yaml:"task"`
	State string     `json:"state" yaml:"state"`
	In    string     `json:"in" yaml:"in"` // humanized distance to the reminder
}

// Due returns the tasks whose reminders are overdue or fall within window of
// now, earliest reminder first.
func Due(tasks []*task.Task, now time.Time, window time.Duration) []Notice {
	if window <= 0 {
		window = DefaultWindow
	}
	var out []Notice
	for _, t := range tasks {
		st := Classify(t, now, window)
		if st != StateOverdue && st != StateDueSoon {
			continue
		}
		out = append(out, Notice{Task: t, State: st.String(), In: Humanize(t.Reminder.Sub(now))})
	}
	slices.SortStableFunc(out, func(a, b Notice) int {
		return a.Task.Reminder.Compare(*b.Task.Reminder)
	})
	return out
}

// Humanize renders a signed distance such as "in 25m" or "2h ago".
func Humanize(d time.Duration) string {
	past := d < 0
	if past {
		d = -d
	}
	var s string
	switch {
	case d < time.Minute:
		if past {
			return "just now"
		}
		return "now"
	case d < time.Hour:
		s = strconv.Itoa(int(d/time.Minute)) + "m"
	case d < 48*time.Hour:
		s = strconv.Itoa(int(d/time.Hour)) + "h"
	default:
		s = strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
	if past {
		return s + " ago"
	}
	return "in " + s
}

// Dismissals remembers which reminders the user dismissed during the
// current session. The zero value is ready to use.
type Dismissals struct {
	ids map[string]bool
}

// Dismiss hides the reminder of the given task for the rest of the session.
func (d *Dismissals) Dismiss(id string) {
	if d.ids == nil {
		d.ids = make(map[string]bool)
	}
	d.ids[id] = true
}

// IsDismissed reports whether the reminder of id was dismissed.
func (d *Dismissals) IsDismissed(id string) bool {
	return d.ids[id]
}

// Visible drops dismissed notices.
func (d *Dismissals) Visible(due []Notice) []Notice {
	var out []Notice
	for _, n := range due {
		if !d.ids[n.Task.ID] {
			out = append(out, n)
		}
	}
	return out
}

// Reset forgets every dismissal.
func (d *Dismissals) Reset() {
	d.ids = nil
}
