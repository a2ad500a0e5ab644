package store

import "time"

// EventKind names a kind of mutation.
type EventKind string

// Mutation kinds emitted to subscribers.
const (
	EventCreated    EventKind = "create"
	EventUpdated    EventKind = "update"
	EventDeleted    EventKind = "delete"
	EventToggled    EventKind = "toggle"
	EventMoved      EventKind = "move"
	EventTagAdded   EventKind = "tag-add"
	EventTagRemoved EventKind = "tag-remove"
)

// Event describes one completed mutation.
type Event struct {
	Kind    EventKind
	TaskIDs []string // affected tasks; for deletes, every removed id
	Tag     string   // tag events only
	Detail  string
	At      time.Time
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn to be called after every successful mutation, in
// mutation order. Callbacks run on the mutating goroutine after the store
// lock is released, so they may call back into the store. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subsMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(ev Event) {
	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
