// Package store holds the authoritative in-memory collection of the current
// user's expenses. The store is mutated only with records confirmed by the
// gateway, never by filtering or sorting, and it is the single source every
// derived view (filtered, sorted, aggregated, exported) is recomputed from.
package store

import (
	"slices"
	"sync"

	"finman/internal/core"
)

// Op describes the kind of mutation a change notification reports.
type Op string

const (
	OpReplaceAll Op = "replace_all"
	OpInsert     Op = "insert"
	OpReplace    Op = "replace"
	OpRemove     Op = "remove"
)

// Event is emitted after each applied mutation. Subscribers are expected to
// pull fresh derived views rather than patch their own copies.
type Event struct {
	Op Op
	ID int64
}

// Store is the in-memory expense collection for one authenticated user.
// Replaced wholesale on re-authentication; records from different users are
// never merged.
//
// Every record carries a server-assigned version. Mutations apply in
// confirmation order, and a response carrying an older version than the
// record already present is dropped, so a slow, stale response can never
// clobber a newer confirmed state (last write wins per id).
type Store struct {
	mu      sync.RWMutex
	order   []int64
	records map[int64]core.Expense
	subs    []func(Event)
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[int64]core.Expense)}
}

// Subscribe registers fn to run after every applied mutation. Callbacks run
// synchronously on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// ReplaceAll discards the current collection and installs the given records,
// preserving their order. Used after login and full refreshes.
func (s *Store) ReplaceAll(records []core.Expense) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.records = make(map[int64]core.Expense, len(records))
	for _, e := range records {
		if _, dup := s.records[e.ID]; !dup {
			s.order = append(s.order, e.ID)
		}
		s.records[e.ID] = e
	}
	s.mu.Unlock()
	s.notify(Event{Op: OpReplaceAll})
}

// Insert adds a gateway-confirmed record. If a record with the same id is
// already present (a later mutation's response arrived first), this behaves
// like ReplaceByID and the version guard decides which state survives.
func (s *Store) Insert(e core.Expense) {
	s.mu.Lock()
	current, exists := s.records[e.ID]
	if exists && current.Version > e.Version {
		s.mu.Unlock()
		return
	}
	if !exists {
		s.order = append(s.order, e.ID)
	}
	s.records[e.ID] = e
	s.mu.Unlock()
	s.notify(Event{Op: OpInsert, ID: e.ID})
}

// ReplaceByID applies a confirmed update. Absent ids are a silent no-op: the
// gateway is ground truth, and a record it no longer returns must not be
// resurrected by a stale response. Stale versions are dropped the same way.
func (s *Store) ReplaceByID(id int64, e core.Expense) {
	s.mu.Lock()
	current, exists := s.records[id]
	if !exists || current.Version > e.Version {
		s.mu.Unlock()
		return
	}
	e.ID = id
	s.records[id] = e
	s.mu.Unlock()
	s.notify(Event{Op: OpReplace, ID: id})
}

// RemoveByID applies a confirmed delete. Absent ids are a silent no-op.
func (s *Store) RemoveByID(id int64) {
	s.mu.Lock()
	if _, exists := s.records[id]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.records, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.mu.Unlock()
	s.notify(Event{Op: OpRemove, ID: id})
}

// All returns a copy of the collection in insertion order. Callers derive
// filtered, sorted and aggregated views from it; mutating the returned slice
// never touches the store.
func (s *Store) All() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
