package core

import "strconv"

// CategoryShare is one expense category's slice of the period total.
// Percent is rounded half-up to the nearest integer and is 0 when the
// period has no expenses at all.
type CategoryShare struct {
	Category ExpenseCategory
	Amount   Money
	Percent  int
}

// PercentLabel renders the share as a percentage string, "0%" included.
func (cs CategoryShare) PercentLabel() string {
	return strconv.Itoa(cs.Percent) + "%"
}

// Summary is the full set of metrics for one reporting period. All
// fields are recomputed from scratch on every interaction; at tens of
// entries per period there is nothing worth caching incrementally.
type Summary struct {
	Period        Period
	TotalIncome   Money
	TotalExpense  Money
	NetSurplus    Money // TotalIncome - TotalExpense, exact, may be negative
	SavingsRate   float64
	ActiveIncome  Money
	PassiveIncome Money
	ActivePct     float64
	PassivePct    float64
	// ByCategory preserves first-seen entry order, one row per category
	// that actually occurs in the period.
	ByCategory []CategoryShare
}

// Summarize aggregates a period's filtered entries into a Summary.
//
// SavingsRate and the active/passive split are defined as 0 when total
// income is 0. That is a policy choice to avoid division by zero, not a
// mathematical identity: zero income with positive expenses still yields
// a savings rate of 0, while NetSurplus carries the deficit.
func Summarize(p Period, incomes []IncomeEntry, expenses []ExpenseEntry) Summary {
	s := Summary{Period: p}

	for _, e := range incomes {
		s.TotalIncome = s.TotalIncome.Add(e.Amount)
		switch e.Type {
		case PassiveIncome:
			s.PassiveIncome = s.PassiveIncome.Add(e.Amount)
		default:
			s.ActiveIncome = s.ActiveIncome.Add(e.Amount)
		}
	}

	byCat := map[ExpenseCategory]int64{}
	order := make([]ExpenseCategory, 0, len(expenses))
	for _, e := range expenses {
		s.TotalExpense = s.TotalExpense.Add(e.Amount)
		if _, seen := byCat[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCat[e.Category] += e.Amount.Kobo
	}

	s.NetSurplus = s.TotalIncome.Sub(s.TotalExpense)

	if s.TotalIncome.Kobo > 0 {
		s.SavingsRate = float64(s.NetSurplus.Kobo) / float64(s.TotalIncome.Kobo) * 100
		s.ActivePct = float64(s.ActiveIncome.Kobo) / float64(s.TotalIncome.Kobo) * 100
		s.PassivePct = float64(s.PassiveIncome.Kobo) / float64(s.TotalIncome.Kobo) * 100
	}

	s.ByCategory = make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		s.ByCategory = append(s.ByCategory, CategoryShare{
			Category: cat,
			Amount:   Money{Kobo: byCat[cat]},
			Percent:  percentOf(byCat[cat], s.TotalExpense.Kobo),
		})
	}
	return s
}

// percentOf computes part/total*100 rounded half-up in integer kobo
// arithmetic. Returns 0 when total is 0.
func percentOf(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((part*100 + total/2) / total)
}
