// Package store owns the task collection. It keeps tasks in an arena keyed by
// id, an index from parent id to child ids, and the tag vocabulary, and it is
// the only place tasks are created or changed. Every task it returns is a
// copy; callers observe changes through the query methods or Subscribe.
package store

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// MovePolicy controls how much hierarchy checking Move performs.
type MovePolicy int

const (
	// MoveLenient sets the parent field as given. Offering only top-level
	// tasks as targets is left to the caller.
	MoveLenient MovePolicy = iota
	// MoveStrict rejects moves that would nest deeper than one level.
	MoveStrict
)

// Store is the in-memory task store. The zero value is not usable; use New.
type Store struct {
	mu       sync.RWMutex
	tasks    map[string]*task.Task
	seq      map[string]uint64   // creation sequence, for stable ordering
	order    []string            // ids in insertion order
	children map[string][]string // parent id -> child ids
	tags     []string            // vocabulary in registration order
	nextSeq  uint64

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int

	now    func() time.Time
	newID  func() string
	policy MovePolicy
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for rejected and ignored operations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source. Generated ids that collide with
// an existing task are discarded and regenerated.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithMovePolicy sets the hierarchy policy for Move.
func WithMovePolicy(p MovePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks:    make(map[string]*task.Task),
		seq:      make(map[string]uint64),
		children: make(map[string][]string),
		now:      time.Now,
		newID:    uuid.NewString,
		policy:   MoveLenient,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMovePolicy changes the Move policy, e.g. after a config reload.
func (s *Store) SetMovePolicy(p MovePolicy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

// Len returns the number of tasks in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Resolve maps a full id or a unique id prefix to a full id. An exact id
// matches as given; prefixes match case-insensitively.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", task.ValidateTaskID(ref)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tasks[ref]; ok {
		return ref, nil
	}
	ref = strings.ToLower(ref)
	var matches []string
	for _, id := range s.order {
		if strings.HasPrefix(strings.ToLower(id), ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", task.NotFound(ref)
	case 1:
		return matches[0], nil
	default:
		short := make([]string, len(matches))
		for i, m := range matches {
			short[i] = task.ShortID(m)
		}
		return "", clierr.Newf(clierr.AmbiguousID, "task id %q is ambiguous (%d matches)", ref, len(matches)).
			WithDetails(map[string]any{"input": ref, "matches": short})
	}
}

// List returns every task in insertion order.
func (s *Store) List() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(*task.Task) bool { return true })
}

// TopLevel returns tasks without a parent, in insertion order.
func (s *Store) TopLevel() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked((*task.Task).IsTopLevel)
}

// SubtasksOf returns the direct children of id, in insertion order.
func (s *Store) SubtasksOf(id string) []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Clone(s.children[id])
	slices.SortFunc(ids, func(a, b string) int {
		return compareSeq(s.seq[a], s.seq[b])
	})
	out := make([]*task.Task, 0, len(ids))
	for _, cid := range ids {
		if t, ok := s.tasks[cid]; ok {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Filter returns the top-level tasks matching sel. Subtasks never appear
// directly; they are reached through SubtasksOf.
func (s *Store) Filter(sel Selection) []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(t *task.Task) bool {
		return t.IsTopLevel() && sel.Matches(t)
	})
}

// AvailableTags returns the tag vocabulary in registration order.
func (s *Store) AvailableTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

// AvailableColors returns the distinct colors currently used by at least one
// task, in order of first use. It is computed on every call.
func (s *Store) AvailableColors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var colors []string
	for _, id := range s.order {
		c := s.tasks[id].Color
		if c != "" && !slices.Contains(colors, c) {
			colors = append(colors, c)
		}
	}
	return colors
}

func (s *Store) collectLocked(keep func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
