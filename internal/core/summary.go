package core

// CategoryBreakdown is the share of one category within a filtered view.
type CategoryBreakdown struct {
	Name       string  `json:"name"`
	Subtotal   Money   `json:"subtotal"`
	Percentage float64 `json:"percentage"`
}

// Summary is the running aggregation over a filtered view: the grand total
// plus a per-category breakdown in first-seen order. Consumers re-sort for
// display if they need a different order.
type Summary struct {
	Total      Money               `json:"total"`
	ByCategory []CategoryBreakdown `json:"byCategory"`
}

// Summarize computes the total and per-category subtotals and percentages
// for the given expenses. Input order is irrelevant except that categories
// appear in the breakdown in the order they are first seen. An empty input
// yields a zero total and percentages of 0, never NaN.
func Summarize(expenses []Expense) Summary {
	var s Summary
	index := make(map[string]int)

	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount)
		i, seen := index[e.Category]
		if !seen {
			i = len(s.ByCategory)
			index[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryBreakdown{Name: e.Category})
		}
		s.ByCategory[i].Subtotal = s.ByCategory[i].Subtotal.Add(e.Amount)
	}

	// Guard the zero-total case explicitly: an empty (or all-zero) view has
	// percentages of 0, not a division artifact.
	if s.Total.Cents > 0 {
		for i := range s.ByCategory {
			s.ByCategory[i].Percentage = float64(s.ByCategory[i].Subtotal.Cents) / float64(s.Total.Cents) * 100
		}
	}
	return s
}
