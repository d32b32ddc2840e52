package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/amqp"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/core"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"
)

// AllocationService computes surplus allocation plans and persists them
// on explicit save only; nothing is written as a side effect of viewing
// a plan.
type AllocationService struct {
	ledger    *LedgerService
	store     store.RecordStore
	publisher RowPublisher
}

func NewAllocationService(ledger *LedgerService, st store.RecordStore, publisher RowPublisher) *AllocationService {
	return &AllocationService{ledger: ledger, store: st, publisher: publisher}
}

// Plan computes the allocation for a period under the named profile.
// The returned state reports where the period sits in the allocation
// lifecycle; the plan is only meaningful in StatePlanReady.
func (s *AllocationService) Plan(ctx context.Context, p core.Period, profileName string) (core.Plan, core.PlanState, error) {
	profile, err := core.ProfileByName(profileName)
	if err != nil {
		return core.Plan{}, "", err
	}
	summary, _, err := s.ledger.Review(ctx, p)
	if err != nil {
		return core.Plan{}, "", err
	}

	state := core.PlanStateFor(summary)
	if state != core.StatePlanReady {
		return core.Plan{}, state, nil
	}

	plan, err := core.BuildPlan(summary, profile)
	if err != nil {
		return core.Plan{}, state, err
	}
	return plan, state, nil
}

// Save persists the plan rows tagged with the reporting period. Saving
// the same period and profile again replaces the earlier rows instead of
// appending duplicates, so a second click after a refresh is harmless.
// Plans saved under a different profile for the same period are kept.
func (s *AllocationService) Save(ctx context.Context, plan core.Plan) error {
	if len(plan.Lines) == 0 {
		return core.ErrNoSurplus
	}

	if err := s.deleteExisting(ctx, plan.Period, plan.Profile); err != nil {
		return err
	}

	for _, line := range plan.Lines {
		id := uuid.NewString()
		if err := s.store.Append(ctx, store.TableAllocation, rowFromPlanLine(id, plan, line)); err != nil {
			return fmt.Errorf("append allocation row: %w", err)
		}
		s.publish(ctx, amqp.OpAppend, id)
	}
	return nil
}

func (s *AllocationService) publish(ctx context.Context, op, id string) {
	if s.publisher == nil {
		return
	}
	// Mirror publishing never fails the interaction: the local write
	// already succeeded.
	if err := s.publisher.PublishRowEvent(ctx, amqp.NewRowEvent(op, store.TableAllocation, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish row event",
			"error", err, "op", op, "table", store.TableAllocation, "entry_id", id)
	}
}

// SavedPlans returns the persisted allocation rows for a period, in
// stored order.
func (s *AllocationService) SavedPlans(ctx context.Context, p core.Period) ([]store.Record, error) {
	recs, err := s.store.LoadAll(ctx, store.TableAllocation, store.HeadersFor(store.TableAllocation))
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	out := []store.Record{}
	for _, r := range recs {
		if r["month_year"] == p.String() {
			out = append(out, r)
		}
	}
	return out, nil
}

// deleteExisting removes earlier rows for the (period, profile) pair,
// walking positions from the bottom so earlier deletes cannot shift the
// later ones.
func (s *AllocationService) deleteExisting(ctx context.Context, p core.Period, profile string) error {
	recs, err := s.store.LoadAll(ctx, store.TableAllocation, store.HeadersFor(store.TableAllocation))
	if err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i]["month_year"] != p.String() || recs[i]["profile"] != profile {
			continue
		}
		if err := s.store.DeleteAt(ctx, store.TableAllocation, i+2); err != nil {
			return fmt.Errorf("replace allocation rows: %w", err)
		}
		// The mirror must drop the replaced generation too, or re-saves
		// accumulate both.
		s.publish(ctx, amqp.OpDelete, recs[i]["id"])
	}
	return nil
}
