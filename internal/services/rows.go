package services

import (
	"strconv"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

// Row codecs between domain entries and store records. Values are laid
// out in the table's header order; amounts travel as decimal strings and
// coerce back through ParseAmount, so a hand-edited bad cell reads as
// zero instead of breaking the view.

func rowFromIncome(e core.IncomeEntry) []string {
	return []string{e.ID, e.Period.String(), string(e.Source), string(e.Type), e.Amount.Decimal(), e.Notes}
}

func incomeFromRecord(r store.Record) core.IncomeEntry {
	e := core.IncomeEntry{
		ID:     r["id"],
		Period: core.Period(r["month_year"]),
		Source: core.IncomeSource(r["source"]),
		Type:   core.IncomeType(r["type"]),
		Amount: core.ParseAmount(r["amount"]),
		Notes:  r["notes"],
	}
	// Type is a function of source; rows written before the type column
	// existed come back blank and are re-derived here.
	if t, err := core.TypeOf(e.Source); err == nil {
		e.Type = t
	}
	return e
}

func rowFromExpense(e core.ExpenseEntry) []string {
	return []string{e.ID, e.Period.String(), string(e.Category), e.Amount.Decimal(), e.Description}
}

func expenseFromRecord(r store.Record) core.ExpenseEntry {
	return core.ExpenseEntry{
		ID:          r["id"],
		Period:      core.Period(r["month_year"]),
		Category:    core.ExpenseCategory(r["category"]),
		Amount:      core.ParseAmount(r["amount"]),
		Description: r["description"],
	}
}

func rowFromPlanLine(id string, p core.Plan, l core.PlanLine) []string {
	return []string{id, p.Period.String(), p.Profile, string(l.Category), strconv.Itoa(l.Percent), l.Amount.Decimal()}
}
