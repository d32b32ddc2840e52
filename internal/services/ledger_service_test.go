package services

import (
	"context"
	"errors"
	"testing"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/amqp"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store/memory"
)

type capturedEvents struct {
	events []*amqp.RowEvent
}

func (c *capturedEvents) PublishRowEvent(_ context.Context, e *amqp.RowEvent) error {
	c.events = append(c.events, e)
	return nil
}

func mustIncome(t *testing.T, period core.Period, source core.IncomeSource, amount string) core.IncomeEntry {
	t.Helper()
	e, err := core.NewIncomeEntry(period, source, core.ParseAmount(amount), "")
	if err != nil {
		t.Fatalf("build income: %v", err)
	}
	return e
}

func mustExpense(t *testing.T, period core.Period, cat core.ExpenseCategory, amount string) core.ExpenseEntry {
	t.Helper()
	e, err := core.NewExpenseEntry(period, cat, core.ParseAmount(amount), "")
	if err != nil {
		t.Fatalf("build expense: %v", err)
	}
	return e
}

func TestAddAndListIncome(t *testing.T) {
	ctx := context.Background()
	pub := &capturedEvents{}
	svc := NewLedgerService(memory.New(), pub)

	added, err := svc.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "5000"))
	if err != nil {
		t.Fatalf("add income: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("expected assigned ID")
	}
	if _, err := svc.AddIncome(ctx, mustIncome(t, "Apr 2025", core.SourceRental, "1200")); err != nil {
		t.Fatalf("add income: %v", err)
	}

	march, err := svc.IncomesFor(ctx, "Mar 2025")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(march) != 1 || march[0].Source != core.SourceSalary {
		t.Fatalf("unexpected march incomes: %+v", march)
	}
	if march[0].Amount.Kobo != 500000 {
		t.Fatalf("amount = %d", march[0].Amount.Kobo)
	}

	if len(pub.events) != 2 || pub.events[0].Op != amqp.OpAppend {
		t.Fatalf("expected append events, got %+v", pub.events)
	}
}

func TestDeleteIncomeByID(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)

	first, _ := svc.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "100"))
	second, _ := svc.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceRental, "200"))

	// Delete the first entry, then the second by its own ID. The second
	// delete must still resolve even though positions shifted.
	if err := svc.DeleteIncome(ctx, first.ID); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if err := svc.DeleteIncome(ctx, second.ID); err != nil {
		t.Fatalf("delete second after shift: %v", err)
	}

	left, _ := svc.IncomesFor(ctx, "Mar 2025")
	if len(left) != 0 {
		t.Fatalf("expected empty ledger, got %+v", left)
	}

	if err := svc.DeleteIncome(ctx, first.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestClearExpense(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)
	if _, err := svc.AddExpense(ctx, mustExpense(t, "Mar 2025", core.CategoryRent, "2000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.ClearExpense(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	left, _ := svc.ExpensesFor(ctx, "Mar 2025")
	if len(left) != 0 {
		t.Fatalf("expected no expenses after clear")
	}
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)

	if _, err := svc.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "5000")); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := svc.AddExpense(ctx, mustExpense(t, "Mar 2025", core.CategoryRent, "2000")); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if _, err := svc.AddExpense(ctx, mustExpense(t, "Mar 2025", core.CategoryFood, "1000")); err != nil {
		t.Fatalf("add expense: %v", err)
	}
	// Another period must not leak into the review.
	if _, err := svc.AddExpense(ctx, mustExpense(t, "Apr 2025", core.CategoryOther, "9999")); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	summary, insights, err := svc.Review(ctx, "Mar 2025")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if summary.NetSurplus.Kobo != 200000 {
		t.Fatalf("surplus = %d", summary.NetSurplus.Kobo)
	}
	if summary.SavingsRate != 40.0 {
		t.Fatalf("savings rate = %v", summary.SavingsRate)
	}
	if insights.Savings != core.SavingsStrong {
		t.Fatalf("band = %q", insights.Savings)
	}
}

func TestAddIncomeRejectsInvalid(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	bad := core.IncomeEntry{Period: "Mar 2025", Source: "Bogus", Amount: core.Money{Kobo: 1}}
	if _, err := svc.AddIncome(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestClearPublishesClearEvent(t *testing.T) {
	ctx := context.Background()
	pub := &capturedEvents{}
	svc := NewLedgerService(memory.New(), pub)

	if _, err := svc.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "5000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	pub.events = nil

	if err := svc.ClearIncome(ctx); err != nil {
		t.Fatalf("clear income: %v", err)
	}
	if err := svc.ClearExpense(ctx); err != nil {
		t.Fatalf("clear expense: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 clear events, got %d", len(pub.events))
	}
	if pub.events[0].Op != amqp.OpClear || pub.events[0].Table != store.TableIncome {
		t.Fatalf("unexpected first event: %+v", pub.events[0])
	}
	if pub.events[1].Op != amqp.OpClear || pub.events[1].Table != store.TableExpense {
		t.Fatalf("unexpected second event: %+v", pub.events[1])
	}
}
