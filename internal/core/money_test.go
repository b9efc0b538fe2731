package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"100", 10000, true},
		{" 7.5 ", 750, true},
		{"12.345", 1235, true}, // half-up on the third decimal
		{"12.344", 1234, true},
		{"0", 0, true},
		{"", 0, false},
		{"-3.50", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
	}
	for _, tc := range cases {
		m, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q: expected ok, got %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if m.Cents != tc.cents {
			t.Fatalf("%q: got %d cents, want %d", tc.in, m.Cents, tc.cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{10000, "100"},
		{1234, "12.34"},
		{50, "0.5"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyStringRoundTrip(t *testing.T) {
	// Formatting then re-parsing must restore the exact value; this is what
	// the CSV export relies on.
	for _, cents := range []int64{1, 99, 100, 1234, 10000, 999999} {
		m := Money{Cents: cents}
		back, err := ParseAmount(m.String())
		if err != nil {
			t.Fatalf("%d cents: %v", cents, err)
		}
		if back != m {
			t.Fatalf("%d cents: round tripped to %d", cents, back.Cents)
		}
	}
}

func TestMoneyUnmarshalRejectsGarbage(t *testing.T) {
	var m Money
	if err := m.UnmarshalJSON([]byte(`"twelve"`)); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
	if err := m.UnmarshalJSON([]byte(`"-1"`)); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
