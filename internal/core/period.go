package core

import (
	"strings"
	"time"
)

// periodLayout is the fixed "MonthAbbrev Year" representation every row
// is tagged with, e.g. "Mar 2025".
const periodLayout = "Jan 2006"

// Period is a reporting-period label. Entries are grouped by exact label
// match; there is no normalization beyond the fixed layout.
type Period string

// PeriodOf returns the period label for the month containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.Format(periodLayout))
}

// ParsePeriod validates a raw label against the fixed layout.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidPeriod
	}
	return PeriodOf(t), nil
}

func (p Period) Validate() error {
	_, err := ParsePeriod(string(p))
	return err
}

func (p Period) String() string {
	return string(p)
}

// FilterIncomes returns the entries whose period label matches p exactly.
// Legacy rows with an empty period never match. An empty result is valid;
// the caller renders it as an explicit "no entries yet" state.
func FilterIncomes(entries []IncomeEntry, p Period) []IncomeEntry {
	out := make([]IncomeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Period == p {
			out = append(out, e)
		}
	}
	return out
}

// FilterExpenses is the expense-side counterpart of FilterIncomes.
func FilterExpenses(entries []ExpenseEntry, p Period) []ExpenseEntry {
	out := make([]ExpenseEntry, 0, len(entries))
	for _, e := range entries {
		if e.Period == p {
			out = append(out, e)
		}
	}
	return out
}
