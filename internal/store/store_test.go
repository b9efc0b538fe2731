package store

import (
	"testing"

	"finman/internal/core"
)

func expense(id, version int64, desc string) core.Expense {
	return core.Expense{
		ID:          id,
		UserID:      1,
		Amount:      core.Money{Cents: 1000},
		Category:    "Food",
		Description: desc,
		Date:        core.NewDate(2024, 1, 5),
		Version:     version,
	}
}

func TestReplaceAllPreservesOrder(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(3, 1, "c"), expense(1, 1, "a"), expense(2, 1, "b")})

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	for i, id := range []int64{3, 1, 2} {
		if all[i].ID != id {
			t.Fatalf("position %d: got id %d, want %d", i, all[i].ID, id)
		}
	}
}

func TestReplaceAllDiscardsPreviousUser(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "old user")})
	s.ReplaceAll([]core.Expense{expense(9, 1, "new user")})

	all := s.All()
	if len(all) != 1 || all[0].ID != 9 {
		t.Fatalf("previous user's records leaked: %v", all)
	}
}

func TestInsertAppends(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "a")})
	s.Insert(expense(2, 1, "b"))

	all := s.All()
	if len(all) != 2 || all[1].ID != 2 {
		t.Fatalf("insert did not append: %v", all)
	}
}

func TestReplaceByID(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "before")})
	s.ReplaceByID(1, expense(1, 2, "after"))

	if got := s.All()[0].Description; got != "after" {
		t.Fatalf("got %q, want %q", got, "after")
	}
}

func TestReplaceByIDAbsentIsNoOp(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "a")})
	s.ReplaceByID(42, expense(42, 1, "ghost"))

	if s.Len() != 1 {
		t.Fatalf("absent-id replace changed the store: %d records", s.Len())
	}
}

func TestRemoveByID(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "a"), expense(2, 1, "b")})
	s.RemoveByID(1)

	all := s.All()
	if len(all) != 1 || all[0].ID != 2 {
		t.Fatalf("got %v after remove", all)
	}
	// Absent id: silent no-op, store untouched.
	s.RemoveByID(1)
	if s.Len() != 1 {
		t.Fatalf("absent-id remove changed the store")
	}
}

func TestStaleVersionDoesNotClobber(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 3, "v3")})

	// A late response from an older mutation arrives after a newer one.
	s.ReplaceByID(1, expense(1, 2, "stale"))
	if got := s.All()[0].Description; got != "v3" {
		t.Fatalf("stale response clobbered newer state: %q", got)
	}

	// Equal or newer versions do apply.
	s.ReplaceByID(1, expense(1, 4, "v4"))
	if got := s.All()[0].Description; got != "v4" {
		t.Fatalf("newer version rejected: %q", got)
	}
}

func TestUpdateResponseBeforeCreateResponse(t *testing.T) {
	// create confirms with v1; an immediate update confirms with v2 but its
	// response overtakes the create's insert. The store must end with one
	// record in the updated state.
	s := New()
	s.Insert(expense(1, 2, "updated"))
	s.Insert(expense(1, 1, "created"))

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0].Description != "updated" || all[0].Version != 2 {
		t.Fatalf("lost update: %+v", all[0])
	}
}

func TestStaleUpdateAfterDeleteStaysDeleted(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "a")})
	s.RemoveByID(1)
	s.ReplaceByID(1, expense(1, 2, "zombie"))

	if s.Len() != 0 {
		t.Fatal("deleted record was resurrected by a stale update")
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	s := New()
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	s.ReplaceAll([]core.Expense{expense(1, 1, "a")})
	s.Insert(expense(2, 1, "b"))
	s.ReplaceByID(2, expense(2, 2, "b2"))
	s.RemoveByID(1)
	s.RemoveByID(99) // no-op, no event

	want := []Op{OpReplaceAll, OpInsert, OpReplace, OpRemove}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, op := range want {
		if events[i].Op != op {
			t.Fatalf("event %d is %s, want %s", i, events[i].Op, op)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := New()
	s.ReplaceAll([]core.Expense{expense(1, 1, "a")})

	all := s.All()
	all[0].Description = "mutated"
	if s.All()[0].Description != "a" {
		t.Fatal("caller mutation reached the store")
	}
}
