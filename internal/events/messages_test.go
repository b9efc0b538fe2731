package events

import (
	"testing"
	"time"
)

func TestExpenseEventRoundTrip(t *testing.T) {
	ev := NewExpenseEvent(ExpenseUpdated, 42, 7, 3)
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ExpenseEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != ExpenseUpdated || back.ExpenseID != 42 || back.UserID != 7 || back.Version != 3 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.Timestamp.IsZero() || time.Since(back.Timestamp) > time.Minute {
		t.Fatalf("timestamp not stamped: %v", back.Timestamp)
	}
}

func TestExpenseEventValidate(t *testing.T) {
	cases := []struct {
		name string
		ev   ExpenseEvent
	}{
		{"unknown kind", ExpenseEvent{Kind: "expense.renamed", ExpenseID: 1, UserID: 1}},
		{"missing expense id", ExpenseEvent{Kind: ExpenseCreated, UserID: 1}},
		{"missing user id", ExpenseEvent{Kind: ExpenseDeleted, ExpenseID: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.ev.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpenseEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ExpenseEventFromJSON([]byte(`{"kind":"expense.created"}`)); err == nil {
		t.Fatal("expected validation error")
	}
}
