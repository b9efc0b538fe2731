package core

import "strings"

// Criteria is the set of constraints a view applies before display. Zero
// values mean "not active": an empty Criteria matches everything.
type Criteria struct {
	// Text matches case-insensitively as a substring of the description.
	Text string
	// Category must equal the expense category exactly. No normalization:
	// the category set is fixed configuration, so casing is already canonical.
	Category string
	// DateFrom and DateTo are inclusive bounds. Either may be unset.
	DateFrom Date
	DateTo   Date
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return c.Text == "" && c.Category == "" && c.DateFrom.IsZero() && c.DateTo.IsZero()
}

// Matches reports whether the expense satisfies every active predicate.
func (c Criteria) Matches(e Expense) bool {
	if c.Text != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(c.Text)) {
		return false
	}
	if c.Category != "" && e.Category != c.Category {
		return false
	}
	if !c.DateFrom.IsZero() && e.Date.Compare(c.DateFrom) < 0 {
		return false
	}
	if !c.DateTo.IsZero() && e.Date.Compare(c.DateTo) > 0 {
		return false
	}
	return true
}

// Filter returns the subsequence of expenses matching all active predicates,
// preserving input order. The input is never mutated; an all-filtered-out
// result is an empty slice, not an error.
func Filter(expenses []Expense, c Criteria) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
