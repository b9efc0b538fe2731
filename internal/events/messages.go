package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the type of change an event reports.
type Kind string

const (
	ExpenseCreated Kind = "expense.created"
	ExpenseUpdated Kind = "expense.updated"
	ExpenseDeleted Kind = "expense.deleted"
)

// ExpenseEvent is the message published after a confirmed expense mutation.
// It carries identifiers and the version token, not the record itself; a
// consumer that needs the full record fetches it by id.
type ExpenseEvent struct {
	Kind      Kind      `json:"kind"`
	ExpenseID int64     `json:"expenseId"`
	UserID    int64     `json:"userId"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent builds an event stamped with the current time.
func NewExpenseEvent(kind Kind, expenseID, userID, version int64) ExpenseEvent {
	return ExpenseEvent{
		Kind:      kind,
		ExpenseID: expenseID,
		UserID:    userID,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects events with a missing kind or identifiers.
func (e ExpenseEvent) Validate() error {
	switch e.Kind {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.ExpenseID <= 0 {
		return fmt.Errorf("event missing expense id")
	}
	if e.UserID <= 0 {
		return fmt.Errorf("event missing user id")
	}
	return nil
}

// ToJSON serializes the event for the wire.
func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and validates a wire message.
func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ExpenseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return ExpenseEvent{}, err
	}
	return e, nil
}
