package core

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the field a filtered view is ordered by.
type SortKey string

// SortOrder selects the direction.
type SortOrder string

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByCategory SortKey = "category"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// IsValid reports whether the key names a sortable field.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByDate, SortByAmount, SortByCategory:
		return true
	}
	return false
}

func (o SortOrder) IsValid() bool {
	return o == Ascending || o == Descending
}

// Category names are compared with a locale-aware collator so that ordering
// matches what a user sees in a sorted dropdown, not raw byte order.
var categoryCollator = collate.New(language.Und)

// Sort returns a new slice ordered by the given key and direction. The sort
// is stable, so equal keys keep their relative input order and repeated
// calls are deterministic. The input slice is not modified. An unknown key
// returns an unsorted copy.
func Sort(expenses []Expense, key SortKey, order SortOrder) []Expense {
	out := slices.Clone(expenses)
	if !key.IsValid() {
		return out
	}

	var cmp func(a, b Expense) int
	switch key {
	case SortByDate:
		cmp = func(a, b Expense) int { return a.Date.Compare(b.Date) }
	case SortByAmount:
		cmp = func(a, b Expense) int { return a.Amount.Decimal().Cmp(b.Amount.Decimal()) }
	case SortByCategory:
		cmp = func(a, b Expense) int { return categoryCollator.CompareString(a.Category, b.Category) }
	}

	if order == Descending {
		inner := cmp
		cmp = func(a, b Expense) int { return -inner(a, b) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}
