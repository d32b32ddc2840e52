package core

import "testing"

func TestTypeOf(t *testing.T) {
	cases := []struct {
		source IncomeSource
		want   IncomeType
	}{
		{SourceSkill, ActiveIncome},
		{SourceSalary, ActiveIncome},
		{SourceBusiness, ActiveIncome},
		{SourceDividend, PassiveIncome},
		{SourceRental, PassiveIncome},
	}
	for _, tc := range cases {
		got, err := TypeOf(tc.source)
		if err != nil {
			t.Fatalf("TypeOf(%s): %v", tc.source, err)
		}
		if got != tc.want {
			t.Fatalf("TypeOf(%s) = %s, want %s", tc.source, got, tc.want)
		}
	}
	if _, err := TypeOf("Lottery"); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestNewIncomeEntryDerivesType(t *testing.T) {
	e, err := NewIncomeEntry("Mar 2025", SourceRental, Money{Kobo: 100}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Type != PassiveIncome {
		t.Fatalf("expected Passive type for Rental, got %s", e.Type)
	}
}

func TestIncomeEntryValidate(t *testing.T) {
	bads := []IncomeEntry{
		{Period: "March 2025", Source: SourceSalary, Type: ActiveIncome, Amount: Money{Kobo: 1}}, // full month name
		{Period: "Mar 2025", Source: "Bogus", Type: ActiveIncome, Amount: Money{Kobo: 1}},
		{Period: "Mar 2025", Source: SourceSalary, Type: PassiveIncome, Amount: Money{Kobo: 1}}, // type set independently
		{Period: "Mar 2025", Source: SourceSalary, Type: ActiveIncome, Amount: Money{Kobo: -5}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{Period: "Mar 2025", Category: CategoryFood, Amount: Money{Kobo: 0}}
	if err := good.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}
	bads := []ExpenseEntry{
		{Period: "", Category: CategoryFood, Amount: Money{Kobo: 1}},
		{Period: "Mar 2025", Category: "Gambling", Amount: Money{Kobo: 1}},
		{Period: "Mar 2025", Category: CategoryFood, Amount: Money{Kobo: -1}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseExpenseCategory(t *testing.T) {
	if got, err := ParseExpenseCategory(" family support "); err != nil || got != CategoryFamily {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ParseExpenseCategory("Travel"); err == nil {
		t.Fatalf("expected error for category outside the fixed list")
	}
}
