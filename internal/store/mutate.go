package store

import (
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Input holds the fields of a task being created.
type Input struct {
	Title       string
	Description string
	Priority    string // defaults to medium
	Tags        []string
	Color       string
	Reminder    *time.Time
	ParentID    string
	Completed   bool
}

// Changes holds a partial update. Nil fields are left untouched.
type Changes struct {
	Title         *string
	Description   *string
	Priority      *string
	Tags          *[]string
	Color         *string
	Reminder      *time.Time
	ClearReminder bool
	Completed     *bool
}

// IsEmpty reports whether the changes would modify nothing.
func (c Changes) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Priority == nil &&
		c.Tags == nil && c.Color == nil && c.Reminder == nil &&
		!c.ClearReminder && c.Completed == nil
}

// Create adds a task. A non-empty in.ParentID makes it a subtask under the
// same rules as CreateSubtask.
func (s *Store) Create(in Input) (*task.Task, error) {
	return s.create(in.ParentID, in)
}

// CreateSubtask adds a task under parentID, which must be an existing
// top-level task.
func (s *Store) CreateSubtask(parentID string, in Input) (*task.Task, error) {
	if parentID == "" {
		return nil, clierr.New(clierr.InvalidInput, "parent id is required for a subtask")
	}
	return s.create(parentID, in)
}

func (s *Store) create(parentID string, in Input) (*task.Task, error) {
	s.mu.Lock()
	t, err := s.createLocked(parentID, in)
	s.mu.Unlock()
	if err != nil {
		s.log.Debug("create rejected", zap.String("title", in.Title), zap.String("parent_id", parentID), zap.Error(err))
		return nil, err
	}

	s.emit(Event{Kind: EventCreated, TaskIDs: []string{t.ID}, Detail: t.Title, At: t.CreatedAt})
	return t, nil
}

func (s *Store) createLocked(parentID string, in Input) (*task.Task, error) {
	title, err := task.NormalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	if err := task.ValidatePriority(priority); err != nil {
		return nil, err
	}
	color, err := task.NormalizeColor(in.Color)
	if err != nil {
		return nil, err
	}
	if parentID != "" {
		if err := s.checkParentLocked(parentID); err != nil {
			return nil, err
		}
	}

	id := s.newID()
	for s.tasks[id] != nil || id == "" {
		id = s.newID()
	}

	now := s.now()
	t := &task.Task{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Completed:   in.Completed,
		Priority:    priority,
		Tags:        task.NormalizeTags(in.Tags),
		Color:       color,
		Reminder:    copyTime(in.Reminder),
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.nextSeq++
	s.tasks[id] = t
	s.seq[id] = s.nextSeq
	s.order = append(s.order, id)
	if parentID != "" {
		s.children[parentID] = append(s.children[parentID], id)
	}
	s.unionTagsLocked(t.Tags)

	return t.Clone(), nil
}

// checkParentLocked verifies that parentID names an existing top-level task.
func (s *Store) checkParentLocked(parentID string) error {
	p, ok := s.tasks[parentID]
	if !ok {
		return task.NotFound(parentID)
	}
	if !p.IsTopLevel() {
		return task.ValidateNestedParent(parentID, p.ParentID)
	}
	return nil
}

// Update merges ch into the task with the given id. It reports false without
// error when the id is unknown. Invalid changes leave the task untouched.
func (s *Store) Update(id string, ch Changes) (bool, error) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("update of unknown task ignored", zap.String("id", id))
		return false, nil
	}

	next := t.Clone()
	if err := applyChanges(next, ch); err != nil {
		s.mu.Unlock()
		s.log.Debug("update rejected", zap.String("id", id), zap.Error(err))
		return true, err
	}
	next.UpdatedAt = s.now()
	s.tasks[id] = next
	s.unionTagsLocked(next.Tags)
	s.mu.Unlock()

	s.emit(Event{Kind: EventUpdated, TaskIDs: []string{id}, Detail: next.Title, At: next.UpdatedAt})
	return true, nil
}

func applyChanges(t *task.Task, ch Changes) error {
	if ch.Title != nil {
		title, err := task.NormalizeTitle(*ch.Title)
		if err != nil {
			return err
		}
		t.Title = title
	}
	if ch.Description != nil {
		t.Description = strings.TrimSpace(*ch.Description)
	}
	if ch.Priority != nil {
		if err := task.ValidatePriority(*ch.Priority); err != nil {
			return err
		}
		t.Priority = *ch.Priority
	}
	if ch.Tags != nil {
		t.Tags = task.NormalizeTags(*ch.Tags)
	}
	if ch.Color != nil {
		color, err := task.NormalizeColor(*ch.Color)
		if err != nil {
			return err
		}
		t.Color = color
	}
	if ch.ClearReminder {
		t.Reminder = nil
	} else if ch.Reminder != nil {
		t.Reminder = copyTime(ch.Reminder)
	}
	if ch.Completed != nil {
		t.Completed = *ch.Completed
	}
	return nil
}

// Delete removes the task with the given id and returns the removed ids.
// Removing a task removes its subtasks in the same step. An unknown id
// removes nothing.
func (s *Store) Delete(id string) []string {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("delete of unknown task ignored", zap.String("id", id))
		return nil
	}

	if !t.IsTopLevel() {
		s.detachLocked(id, t.ParentID)
	}
	removed := s.descendantsLocked(id)
	for _, rid := range removed {
		delete(s.tasks, rid)
		delete(s.seq, rid)
		delete(s.children, rid)
	}
	s.order = slices.DeleteFunc(s.order, func(x string) bool {
		return slices.Contains(removed, x)
	})
	at := s.now()
	s.mu.Unlock()

	s.emit(Event{Kind: EventDeleted, TaskIDs: removed, Detail: t.Title, At: at})
	return removed
}

// descendantsLocked returns id followed by every task below it, breadth first.
func (s *Store) descendantsLocked(id string) []string {
	out := []string{id}
	for i := 0; i < len(out); i++ {
		out = append(out, s.children[out[i]]...)
	}
	return out
}

// Toggle flips the completed flag of one task. Subtasks are not affected.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("toggle of unknown task ignored", zap.String("id", id))
		return false
	}
	next := t.Clone()
	next.Completed = !next.Completed
	next.UpdatedAt = s.now()
	s.tasks[id] = next
	s.mu.Unlock()

	detail := "active"
	if next.Completed {
		detail = "completed"
	}
	s.emit(Event{Kind: EventToggled, TaskIDs: []string{id}, Detail: detail, At: next.UpdatedAt})
	return true
}

// Move sets the parent of a task; an empty newParentID makes it top-level.
// The target must exist and must not be the task itself or one of its
// descendants. Under MoveStrict the target must also be top-level and the
// moved task must have no subtasks of its own.
func (s *Store) Move(id, newParentID string) (bool, error) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		s.log.Debug("move of unknown task ignored", zap.String("id", id))
		return false, nil
	}
	if err := s.checkMoveLocked(id, newParentID); err != nil {
		s.mu.Unlock()
		s.log.Debug("move rejected", zap.String("id", id), zap.String("parent_id", newParentID), zap.Error(err))
		return true, err
	}
	if t.ParentID == newParentID {
		s.mu.Unlock()
		return true, nil
	}

	old := t.ParentID
	if old != "" {
		s.detachLocked(id, old)
	}
	if newParentID != "" {
		s.children[newParentID] = append(s.children[newParentID], id)
	}
	next := t.Clone()
	next.ParentID = newParentID
	next.UpdatedAt = s.now()
	s.tasks[id] = next
	s.mu.Unlock()

	s.emit(Event{Kind: EventMoved, TaskIDs: []string{id}, Detail: moveDetail(old, newParentID), At: next.UpdatedAt})
	return true, nil
}

func (s *Store) checkMoveLocked(id, newParentID string) error {
	if newParentID == "" {
		return nil
	}
	if newParentID == id {
		return task.ValidateSelfReference(id)
	}
	parent, ok := s.tasks[newParentID]
	if !ok {
		return task.NotFound(newParentID)
	}
	for p := parent; p.ParentID != ""; p = s.tasks[p.ParentID] {
		if p.ParentID == id {
			return task.ValidateSelfReference(id)
		}
	}
	if s.policy != MoveStrict {
		return nil
	}
	if !parent.IsTopLevel() {
		return task.ValidateNestedParent(newParentID, parent.ParentID)
	}
	if n := len(s.children[id]); n > 0 {
		return task.ValidateHasSubtasks(id, n)
	}
	return nil
}

func (s *Store) detachLocked(id, parentID string) {
	kids := slices.DeleteFunc(s.children[parentID], func(x string) bool { return x == id })
	if len(kids) == 0 {
		delete(s.children, parentID)
		return
	}
	s.children[parentID] = kids
}

// AddTag registers a tag in the vocabulary. It reports whether the tag was new.
func (s *Store) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}

	s.mu.Lock()
	if slices.Contains(s.tags, tag) {
		s.mu.Unlock()
		return false
	}
	s.tags = append(s.tags, tag)
	at := s.now()
	s.mu.Unlock()

	s.emit(Event{Kind: EventTagAdded, Tag: tag, At: at})
	return true
}

// RemoveTag drops a tag from the vocabulary and from every task carrying it.
// Only those tasks get a new updatedAt. It returns the number of tasks changed.
func (s *Store) RemoveTag(tag string) int {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0
	}

	s.mu.Lock()
	known := slices.Contains(s.tags, tag)
	s.tags = slices.DeleteFunc(s.tags, func(x string) bool { return x == tag })

	now := s.now()
	var changed []string
	for _, id := range s.order {
		t := s.tasks[id]
		if !t.HasTag(tag) {
			continue
		}
		next := t.Clone()
		next.Tags = slices.DeleteFunc(next.Tags, func(x string) bool { return x == tag })
		if len(next.Tags) == 0 {
			next.Tags = nil
		}
		next.UpdatedAt = now
		s.tasks[id] = next
		changed = append(changed, id)
	}
	s.mu.Unlock()

	if known || len(changed) > 0 {
		s.emit(Event{Kind: EventTagRemoved, TaskIDs: changed, Tag: tag, At: now})
	}
	return len(changed)
}

func (s *Store) unionTagsLocked(tags []string) {
	for _, tag := range tags {
		if !slices.Contains(s.tags, tag) {
			s.tags = append(s.tags, tag)
		}
	}
}

func moveDetail(from, to string) string {
	name := func(id string) string {
		if id == "" {
			return "top-level"
		}
		return task.ShortID(id)
	}
	return name(from) + " -> " + name(to)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
