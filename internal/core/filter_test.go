package core

import "testing"

func sampleExpenses() []Expense {
	return []Expense{
		{ID: 1, UserID: 1, Amount: Money{Cents: 10000}, Category: "Food", Description: "groceries", Date: NewDate(2024, 1, 5)},
		{ID: 2, UserID: 1, Amount: Money{Cents: 5000}, Category: "Food", Description: "Dinner out", Date: NewDate(2024, 1, 10)},
		{ID: 3, UserID: 1, Amount: Money{Cents: 2500}, Category: "Transit", Description: "bus ticket", Date: NewDate(2024, 1, 1)},
	}
}

func TestFilterNoCriteriaReturnsAll(t *testing.T) {
	in := sampleExpenses()
	out := Filter(in, Criteria{})
	if len(out) != len(in) {
		t.Fatalf("got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatalf("order changed at %d", i)
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	out := Filter(sampleExpenses(), Criteria{Category: "Food"})
	if len(out) != 2 {
		t.Fatalf("got %d Food expenses, want 2", len(out))
	}
	for _, e := range out {
		if e.Category != "Food" {
			t.Fatalf("non-matching category %q in result", e.Category)
		}
	}
	// Exact match only: no case normalization.
	if got := Filter(sampleExpenses(), Criteria{Category: "food"}); len(got) != 0 {
		t.Fatalf("lowercased category matched %d records, want 0", len(got))
	}
}

func TestFilterByTextIsCaseInsensitive(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"dinner", 1},
		{"DINNER", 1},
		{"r", 3}, // substring, not prefix
		{"nomatch", 0},
	}
	for _, tc := range cases {
		if got := Filter(sampleExpenses(), Criteria{Text: tc.text}); len(got) != tc.want {
			t.Fatalf("text %q: got %d, want %d", tc.text, len(got), tc.want)
		}
	}
}

func TestFilterByDateRange(t *testing.T) {
	from, _ := ParseDate("2024-01-05")
	to, _ := ParseDate("2024-01-10")

	cases := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"both bounds inclusive", Criteria{DateFrom: from, DateTo: to}, []int64{1, 2}},
		{"from only", Criteria{DateFrom: from}, []int64{1, 2}},
		{"to only", Criteria{DateTo: to}, []int64{1, 2, 3}},
		{"single day", Criteria{DateFrom: from, DateTo: from}, []int64{1}},
		{"empty window", Criteria{DateFrom: to, DateTo: from}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Filter(sampleExpenses(), tc.c)
			if len(out) != len(tc.want) {
				t.Fatalf("got %d records, want %d", len(out), len(tc.want))
			}
			for i, e := range out {
				if e.ID != tc.want[i] {
					t.Fatalf("position %d: got id %d, want %d", i, e.ID, tc.want[i])
				}
			}
		})
	}
}

func TestFilterCombinesPredicatesWithAND(t *testing.T) {
	from, _ := ParseDate("2024-01-01")
	to, _ := ParseDate("2024-01-31")
	out := Filter(sampleExpenses(), Criteria{Text: "dinner", Category: "Food", DateFrom: from, DateTo: to})
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("got %v, want only id 2", out)
	}
	// Same criteria but a category that excludes the text match.
	if got := Filter(sampleExpenses(), Criteria{Text: "dinner", Category: "Transit"}); len(got) != 0 {
		t.Fatalf("AND semantics violated: got %d records", len(got))
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if out := Filter(nil, Criteria{Category: "Food"}); len(out) != 0 {
		t.Fatalf("got %d, want empty", len(out))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := sampleExpenses()
	_ = Filter(in, Criteria{Category: "Transit"})
	if in[0].ID != 1 || in[1].ID != 2 || in[2].ID != 3 {
		t.Fatal("input slice was reordered")
	}
}
