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

func newAllocFixture(t *testing.T) (*LedgerService, *AllocationService) {
	t.Helper()
	st := memory.New()
	ledger := NewLedgerService(st, nil)
	return ledger, NewAllocationService(ledger, st, nil)
}

func TestPlanStates(t *testing.T) {
	ctx := context.Background()
	ledger, alloc := newAllocFixture(t)

	// No income at all.
	_, state, err := alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if state != core.StateNoIncome {
		t.Fatalf("state = %s, want NO_INCOME", state)
	}

	// Income but fully spent.
	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ledger.AddExpense(ctx, mustExpense(t, "Mar 2025", core.CategoryRent, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, state, err = alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if state != core.StateNoSurplus {
		t.Fatalf("state = %s, want NO_SURPLUS", state)
	}

	// Surplus appears.
	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceBusiness, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	plan, state, err := alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if state != core.StatePlanReady {
		t.Fatalf("state = %s, want PLAN_READY", state)
	}
	if plan.Total().Kobo != 100000 {
		t.Fatalf("plan total = %d", plan.Total().Kobo)
	}
}

func TestPlanUnknownProfile(t *testing.T) {
	_, alloc := newAllocFixture(t)
	if _, _, err := alloc.Plan(context.Background(), "Mar 2025", "Nonsense"); !errors.Is(err, core.ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestSaveIsIdempotentPerPeriodAndProfile(t *testing.T) {
	ctx := context.Background()
	ledger, alloc := newAllocFixture(t)

	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	plan, _, err := alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	// Save twice: the second save replaces, never duplicates.
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("second save: %v", err)
	}
	saved, err := alloc.SavedPlans(ctx, "Mar 2025")
	if err != nil {
		t.Fatalf("saved plans: %v", err)
	}
	if len(saved) != 7 {
		t.Fatalf("expected 7 rows after repeated save, got %d", len(saved))
	}

	// A different profile for the same period coexists.
	growth, _, err := alloc.Plan(ctx, "Mar 2025", "Aggressive Growth")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if err := alloc.Save(ctx, growth); err != nil {
		t.Fatalf("save growth: %v", err)
	}
	saved, _ = alloc.SavedPlans(ctx, "Mar 2025")
	if len(saved) != 14 {
		t.Fatalf("expected 14 rows across two profiles, got %d", len(saved))
	}
}

func TestSaveRefusesEmptyPlan(t *testing.T) {
	_, alloc := newAllocFixture(t)
	if err := alloc.Save(context.Background(), core.Plan{Period: "Mar 2025", Profile: "Default"}); !errors.Is(err, core.ErrNoSurplus) {
		t.Fatalf("expected ErrNoSurplus, got %v", err)
	}
}

func TestSavedPlanRowContents(t *testing.T) {
	ctx := context.Background()
	ledger, alloc := newAllocFixture(t)

	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	plan, _, _ := alloc.Plan(ctx, "Mar 2025", "Default")
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved, _ := alloc.SavedPlans(ctx, "Mar 2025")
	first := saved[0]
	if first["category"] != "Asset Building" || first["percent"] != "35" || first["amount"] != "350.00" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first["id"] == "" {
		t.Fatalf("saved row missing stable id")
	}
}

// relayPublisher applies events synchronously through the mirror
// processor, standing in for the AMQP round trip.
type relayPublisher struct {
	proc *MirrorProcessor
}

func (r *relayPublisher) PublishRowEvent(ctx context.Context, e *amqp.RowEvent) error {
	return r.proc.HandleEvent(ctx, e)
}

type failingPublisher struct{}

func (failingPublisher) PublishRowEvent(context.Context, *amqp.RowEvent) error {
	return errors.New("broker down")
}

func TestResaveKeepsMirrorConverged(t *testing.T) {
	ctx := context.Background()
	source := memory.New()
	target := memory.New()

	ledger := NewLedgerService(source, nil)
	relay := &relayPublisher{proc: NewMirrorProcessor(source, target)}
	alloc := NewAllocationService(ledger, source, relay)

	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	plan, _, err := alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	// Replacing the saved rows must delete the first generation from the
	// mirror too, not just locally.
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("second save: %v", err)
	}

	mirrored, err := target.LoadAll(ctx, store.TableAllocation, store.HeadersFor(store.TableAllocation))
	if err != nil {
		t.Fatalf("load target: %v", err)
	}
	if len(mirrored) != 7 {
		t.Fatalf("mirror diverged: expected 7 rows after repeated save, got %d", len(mirrored))
	}

	local, _ := alloc.SavedPlans(ctx, "Mar 2025")
	if len(local) != len(mirrored) {
		t.Fatalf("source has %d rows, mirror has %d", len(local), len(mirrored))
	}
}

func TestSaveSurvivesPublisherFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ledger := NewLedgerService(st, nil)
	alloc := NewAllocationService(ledger, st, failingPublisher{})

	if _, err := ledger.AddIncome(ctx, mustIncome(t, "Mar 2025", core.SourceSalary, "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	plan, _, err := alloc.Plan(ctx, "Mar 2025", "Default")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	// The local write carries the interaction; publish failures are
	// logged, never surfaced.
	if err := alloc.Save(ctx, plan); err != nil {
		t.Fatalf("save must not fail on publish error: %v", err)
	}
	saved, _ := alloc.SavedPlans(ctx, "Mar 2025")
	if len(saved) != 7 {
		t.Fatalf("expected 7 saved rows, got %d", len(saved))
	}
}
