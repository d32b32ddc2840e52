// Package services orchestrates the ledger domain over the record store
// and, when configured, the row mirror pipeline.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/amqp"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

// ErrEntryNotFound: the entry ID no longer resolves to a stored row,
// usually because another interaction deleted it first.
var ErrEntryNotFound = errors.New("entry not found")

// RowPublisher emits mirror events after local writes. A nil publisher
// disables mirroring.
type RowPublisher interface {
	PublishRowEvent(ctx context.Context, event *amqp.RowEvent) error
}

// LedgerService owns income and expense records: create, list by period,
// delete by ID, bulk clear, and the per-period review.
type LedgerService struct {
	store     store.RecordStore
	publisher RowPublisher
}

func NewLedgerService(st store.RecordStore, publisher RowPublisher) *LedgerService {
	return &LedgerService{store: st, publisher: publisher}
}

// AddIncome validates the entry, assigns its stable ID and appends it.
func (s *LedgerService) AddIncome(ctx context.Context, e core.IncomeEntry) (core.IncomeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	e.ID = uuid.NewString()
	if err := s.store.Append(ctx, store.TableIncome, rowFromIncome(e)); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("append income: %w", err)
	}
	s.publish(ctx, amqp.OpAppend, store.TableIncome, e.ID)
	return e, nil
}

// AddExpense validates the entry, assigns its stable ID and appends it.
func (s *LedgerService) AddExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	e.ID = uuid.NewString()
	if err := s.store.Append(ctx, store.TableExpense, rowFromExpense(e)); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("append expense: %w", err)
	}
	s.publish(ctx, amqp.OpAppend, store.TableExpense, e.ID)
	return e, nil
}

// IncomesFor loads all income rows and narrows them to the period.
func (s *LedgerService) IncomesFor(ctx context.Context, p core.Period) ([]core.IncomeEntry, error) {
	recs, err := s.store.LoadAll(ctx, store.TableIncome, store.HeadersFor(store.TableIncome))
	if err != nil {
		return nil, fmt.Errorf("load incomes: %w", err)
	}
	all := make([]core.IncomeEntry, 0, len(recs))
	for _, r := range recs {
		all = append(all, incomeFromRecord(r))
	}
	return core.FilterIncomes(all, p), nil
}

// ExpensesFor loads all expense rows and narrows them to the period.
func (s *LedgerService) ExpensesFor(ctx context.Context, p core.Period) ([]core.ExpenseEntry, error) {
	recs, err := s.store.LoadAll(ctx, store.TableExpense, store.HeadersFor(store.TableExpense))
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	all := make([]core.ExpenseEntry, 0, len(recs))
	for _, r := range recs {
		all = append(all, expenseFromRecord(r))
	}
	return core.FilterExpenses(all, p), nil
}

// DeleteIncome removes one income entry by its stable ID. The current
// row position is resolved at delete time, so positions cached by a
// stale view cannot delete the wrong row.
func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.store, store.TableIncome, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDelete, store.TableIncome, id)
	return nil
}

// DeleteExpense removes one expense entry by its stable ID.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.store, store.TableExpense, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDelete, store.TableExpense, id)
	return nil
}

// ClearIncome removes every income row, keeping the table header.
func (s *LedgerService) ClearIncome(ctx context.Context) error {
	if err := s.store.Clear(ctx, store.TableIncome); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpClear, store.TableIncome, "")
	return nil
}

// ClearExpense removes every expense row, keeping the table header.
func (s *LedgerService) ClearExpense(ctx context.Context) error {
	if err := s.store.Clear(ctx, store.TableExpense); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpClear, store.TableExpense, "")
	return nil
}

// Review recomputes the period's metrics and insights from freshly
// loaded data. Every interaction pays for a full pass; the data volume
// is tens of rows, not thousands.
func (s *LedgerService) Review(ctx context.Context, p core.Period) (core.Summary, core.Insights, error) {
	incomes, err := s.IncomesFor(ctx, p)
	if err != nil {
		return core.Summary{}, core.Insights{}, err
	}
	expenses, err := s.ExpensesFor(ctx, p)
	if err != nil {
		return core.Summary{}, core.Insights{}, err
	}
	summary := core.Summarize(p, incomes, expenses)
	return summary, core.BuildInsights(summary), nil
}

func (s *LedgerService) publish(ctx context.Context, op, table, id string) {
	if s.publisher == nil {
		return
	}
	// Mirror publishing never fails the interaction: the local write
	// already succeeded.
	if err := s.publisher.PublishRowEvent(ctx, amqp.NewRowEvent(op, table, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish row event",
			"error", err, "op", op, "table", table, "entry_id", id)
	}
}

// deleteByID resolves the entry's current 1-based position and issues a
// positional delete against the store contract.
func deleteByID(ctx context.Context, st store.RecordStore, table, id string) error {
	recs, err := st.LoadAll(ctx, table, store.HeadersFor(table))
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	for i, r := range recs {
		if r["id"] == id {
			if err := st.DeleteAt(ctx, table, i+2); err != nil {
				return fmt.Errorf("delete %s entry %s: %w", table, id, err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrEntryNotFound, table, id)
}
