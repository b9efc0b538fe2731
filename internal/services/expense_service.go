package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finman/internal/cache"
	"finman/internal/core"
	"finman/internal/events"
	"finman/internal/storage"
)

// ErrForbidden is returned when a caller touches an expense owned by
// someone else.
var ErrForbidden = errors.New("expense belongs to another user")

// ExpenseService orchestrates expense operations across SQLite, the summary
// cache and AMQP.
type ExpenseService struct {
	storage      *storage.SQLiteRepository
	eventsClient *events.Client
	summaries    *cache.LRU[core.Summary]
}

func NewExpenseService(storage *storage.SQLiteRepository, eventsClient *events.Client, summaries *cache.LRU[core.Summary]) *ExpenseService {
	return &ExpenseService{
		storage:      storage,
		eventsClient: eventsClient,
		summaries:    summaries,
	}
}

// ListExpenses returns all expenses of one user, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID)
}

// CreateExpense validates and persists an expense for the calling user, then
// publishes a change notification.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	e.UserID = userID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.invalidateSummaries(userID)
	s.publish(ctx, events.ExpenseCreated, created)
	return created, nil
}

// UpdateExpense replaces the mutable fields of an expense the caller owns.
// The server bumps the record's version; the returned state carries it.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, id int64, e core.Expense) (core.Expense, error) {
	current, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if current.UserID != userID {
		return core.Expense{}, ErrForbidden
	}

	e.ID = id
	e.UserID = userID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.storage.UpdateExpense(ctx, id, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.invalidateSummaries(userID)
	s.publish(ctx, events.ExpenseUpdated, updated)
	return updated, nil
}

// DeleteExpense removes an expense the caller owns.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	current, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if current.UserID != userID {
		return ErrForbidden
	}

	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.invalidateSummaries(userID)
	s.publish(ctx, events.ExpenseDeleted, current)
	return nil
}

// Summarize aggregates a user's expenses within the optional inclusive date
// range. Results are cached per user and range until the next mutation.
func (s *ExpenseService) Summarize(ctx context.Context, userID int64, from, to core.Date) (core.Summary, error) {
	key := summaryKey(userID, from, to)
	if s.summaries != nil {
		if cached, ok := s.summaries.Get(key); ok {
			return cached, nil
		}
	}

	expenses, err := s.storage.ListExpenses(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list for summary: %w", err)
	}
	filtered := core.Filter(expenses, core.Criteria{DateFrom: from, DateTo: to})
	summary := core.Summarize(filtered)

	if s.summaries != nil {
		s.summaries.Set(key, summary)
	}
	return summary, nil
}

func summaryKey(userID int64, from, to core.Date) string {
	return fmt.Sprintf("user:%d:%s:%s", userID, from, to)
}

func (s *ExpenseService) invalidateSummaries(userID int64) {
	if s.summaries != nil {
		s.summaries.DeletePrefix(fmt.Sprintf("user:%d:", userID))
	}
}

// publish sends a change notification. Failures are logged and never fail
// the request, the expense is already persisted.
func (s *ExpenseService) publish(ctx context.Context, kind events.Kind, e core.Expense) {
	if s.eventsClient == nil {
		slog.DebugContext(ctx, "Events client not configured, skipping publish", "kind", kind)
		return
	}
	ev := events.NewExpenseEvent(kind, e.ID, e.UserID, e.Version)
	if err := s.eventsClient.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"kind", kind, "expense_id", e.ID, "error", err)
	}
}

// Close releases storage and broker connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.eventsClient != nil {
		if err := s.eventsClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
