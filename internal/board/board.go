package board

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Stats holds the aggregate counters shown in the stats footer.
type Stats struct {
	Total          int `json:"total" yaml:"total"`
	Completed      int `json:"completed" yaml:"completed"`
	Active         int `json:"active" yaml:"active"`
	Overdue        int `json:"overdue" yaml:"overdue"`
	DueToday       int `json:"due_today" yaml:"due_today"`
	CompletionRate int `json:"completion_rate" yaml:"completion_rate"` // percent, rounded
}

// ComputeStats counts tasks by state relative to now. A task is overdue when
// its reminder lies before now, and due today when its reminder falls on
// now's calendar date; completed tasks are neither.
func ComputeStats(tasks []*task.Task, now time.Time) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
			continue
		}
		s.Active++
		if t.Reminder == nil {
			continue
		}
		if t.Reminder.Before(now) {
			s.Overdue++
		}
		if sameDay(*t.Reminder, now) {
			s.DueToday++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) * 100 / float64(s.Total)))
	}
	return s
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Progress counts completed subtasks of one parent.
type Progress struct {
	Done  int `json:"done" yaml:"done"`
	Total int `json:"total" yaml:"total"`
}

// SubtaskProgress summarizes a parent's subtasks.
func SubtaskProgress(subtasks []*task.Task) Progress {
	p := Progress{Total: len(subtasks)}
	for _, t := range subtasks {
		if t.Completed {
			p.Done++
		}
	}
	return p
}

// Percent returns the completed share, 0 when there are no subtasks.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("%d of %d subtasks complete", p.Done, p.Total)
}

// Count pairs a tag or color with the number of active tasks using it.
type Count struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// TagCounts returns, for each tag in vocab, how many active tasks carry it.
func TagCounts(tasks []*task.Task, vocab []string) []Count {
	return countActive(tasks, vocab, func(t *task.Task, name string) bool {
		return t.HasTag(name)
	})
}

// ColorCounts returns, for each color in colors, how many active tasks use it.
func ColorCounts(tasks []*task.Task, colors []string) []Count {
	return countActive(tasks, colors, func(t *task.Task, name string) bool {
		return t.Color == name
	})
}

func countActive(tasks []*task.Task, names []string, uses func(*task.Task, string) bool) []Count {
	out := make([]Count, 0, len(names))
	for _, name := range names {
		c := Count{Name: name}
		for _, t := range tasks {
			if !t.Completed && uses(t, name) {
				c.Count++
			}
		}
		out = append(out, c)
	}
	return out
}

// Overview is the aggregate view printed by the stats command.
type Overview struct {
	Stats  Stats   `json:"stats" yaml:"stats"`
	Tags   []Count `json:"tags" yaml:"tags"`
	Colors []Count `json:"colors" yaml:"colors"`
}

// Summary computes the overview for a task collection.
func Summary(tasks []*task.Task, vocab, colors []string, now time.Time) Overview {
	return Overview{
		Stats:  ComputeStats(tasks, now),
		Tags:   TagCounts(tasks, vocab),
		Colors: ColorCounts(tasks, colors),
	}
}

// ParseRefs splits a comma-separated list of task references, dropping
// blanks and duplicates.
func ParseRefs(arg string) ([]string, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[string]bool, len(parts))
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		refs = append(refs, p)
	}
	if len(refs) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return refs, nil
}
