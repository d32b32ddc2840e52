package services

import (
	"context"
	"testing"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/amqp"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store/memory"
)

func TestMirrorAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	source := memory.New()
	target := memory.New()

	ledger := NewLedgerService(source, nil)
	added, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "5000"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	m := NewMirrorProcessor(source, target)
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpAppend, store.TableIncome, added.ID)); err != nil {
		t.Fatalf("mirror append: %v", err)
	}

	recs, _ := target.LoadAll(ctx, store.TableIncome, store.HeadersFor(store.TableIncome))
	if len(recs) != 1 || recs[0]["id"] != added.ID {
		t.Fatalf("target not mirrored: %v", recs)
	}

	// Redelivery is idempotent.
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpAppend, store.TableIncome, added.ID)); err != nil {
		t.Fatalf("replay: %v", err)
	}
	recs, _ = target.LoadAll(ctx, store.TableIncome, nil)
	if len(recs) != 1 {
		t.Fatalf("replay duplicated the row: %d", len(recs))
	}

	// Delete propagates, and a second delete is a no-op.
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpDelete, store.TableIncome, added.ID)); err != nil {
		t.Fatalf("mirror delete: %v", err)
	}
	recs, _ = target.LoadAll(ctx, store.TableIncome, nil)
	if len(recs) != 0 {
		t.Fatalf("target row not deleted")
	}
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpDelete, store.TableIncome, added.ID)); err != nil {
		t.Fatalf("repeated delete must be a no-op: %v", err)
	}
}

func TestMirrorAppendSourceRowGone(t *testing.T) {
	ctx := context.Background()
	m := NewMirrorProcessor(memory.New(), memory.New())
	// The source row vanished before the event was consumed; the event
	// is consumed without error so it is not requeued forever.
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpAppend, store.TableIncome, "ghost")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestMirrorUnknownTable(t *testing.T) {
	m := NewMirrorProcessor(memory.New(), memory.New())
	if err := m.HandleEvent(context.Background(), amqp.NewRowEvent(amqp.OpAppend, "Bogus", "id1")); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestMirrorClear(t *testing.T) {
	ctx := context.Background()
	source := memory.New()
	target := memory.New()

	ledger := NewLedgerService(source, nil)
	added, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "5000"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	m := NewMirrorProcessor(source, target)
	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpAppend, store.TableIncome, added.ID)); err != nil {
		t.Fatalf("mirror append: %v", err)
	}

	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpClear, store.TableIncome, "")); err != nil {
		t.Fatalf("mirror clear: %v", err)
	}
	left, err := target.LoadAll(ctx, store.TableIncome, store.HeadersFor(store.TableIncome))
	if err != nil {
		t.Fatalf("load target: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected empty mirror after clear, got %d rows", len(left))
	}

	if err := m.HandleEvent(ctx, amqp.NewRowEvent(amqp.OpClear, "Bogus", "")); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}
