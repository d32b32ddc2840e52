package core

import (
	"errors"
	"math"
	"strings"
)

const (
	AllocAssetBuilding AllocationCategory = "Asset Building"
	AllocInvesting     AllocationCategory = "Investing"
	AllocInsurance     AllocationCategory = "Insurance"
	AllocSavings       AllocationCategory = "Savings"
	AllocEmergency     AllocationCategory = "Emergency"
	AllocLifestyle     AllocationCategory = "Lifestyle"
	AllocCharity       AllocationCategory = "Charity"
)

const (
	// StateNoIncome: nothing earned, nothing to allocate.
	StateNoIncome PlanState = "NO_INCOME"
	// StateNoSurplus: income exists but the period closed at or below zero.
	StateNoSurplus PlanState = "NO_SURPLUS"
	// StatePlanReady: a plan has been computed and awaits an explicit save.
	StatePlanReady PlanState = "PLAN_READY"
	// StatePersisted: the plan rows have been written to the record store.
	StatePersisted PlanState = "PERSISTED"
)

type (
	AllocationCategory string

	// PlanState tracks the allocation lifecycle:
	// NO_INCOME -> NO_SURPLUS -> PLAN_READY -> PERSISTED.
	PlanState string

	// Weight is one category's integer percentage within a profile.
	Weight struct {
		Category AllocationCategory
		Percent  int
	}

	// Profile is a named percentage-weighting scheme. Weights are ordered
	// and always sum to 100.
	Profile struct {
		Name    string
		Weights []Weight
	}

	// PlanLine is one computed allocation row.
	PlanLine struct {
		Category AllocationCategory
		Percent  int
		Amount   Money // rounded to a whole currency unit
	}

	// Plan is an ordered surplus allocation for one period and profile.
	Plan struct {
		Period  Period
		Profile string
		Surplus Money
		Lines   []PlanLine
	}
)

var (
	ErrNoIncome       = errors.New("no income recorded, allocation not applicable")
	ErrNoSurplus      = errors.New("no positive surplus, allocation not applicable")
	ErrUnknownProfile = errors.New("unknown allocation profile")
)

// Profiles returns the built-in weighting profiles. The first entry is
// the default.
func Profiles() []Profile {
	return []Profile{
		{
			Name: "Default",
			Weights: []Weight{
				{AllocAssetBuilding, 35}, {AllocInvesting, 30}, {AllocInsurance, 10},
				{AllocSavings, 5}, {AllocEmergency, 5}, {AllocLifestyle, 10}, {AllocCharity, 5},
			},
		},
		{
			Name: "Aggressive Growth",
			Weights: []Weight{
				{AllocAssetBuilding, 25}, {AllocInvesting, 45}, {AllocInsurance, 5},
				{AllocSavings, 5}, {AllocEmergency, 5}, {AllocLifestyle, 10}, {AllocCharity, 5},
			},
		},
		{
			Name: "Capital Preservation",
			Weights: []Weight{
				{AllocAssetBuilding, 20}, {AllocInvesting, 15}, {AllocInsurance, 15},
				{AllocSavings, 20}, {AllocEmergency, 20}, {AllocLifestyle, 5}, {AllocCharity, 5},
			},
		},
	}
}

// DefaultProfile returns the profile used when none is selected.
func DefaultProfile() Profile {
	return Profiles()[0]
}

// ProfileByName resolves a profile, ignoring case.
func ProfileByName(name string) (Profile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(strings.TrimSpace(name), p.Name) {
			return p, nil
		}
	}
	return Profile{}, ErrUnknownProfile
}

// Validate checks that the profile's percentages sum to exactly 100.
func (p Profile) Validate() error {
	sum := 0
	for _, w := range p.Weights {
		if w.Percent < 0 || w.Percent > 100 {
			return errors.New("profile percentage out of range")
		}
		sum += w.Percent
	}
	if sum != 100 {
		return errors.New("profile percentages must sum to 100")
	}
	return nil
}

// PlanStateFor reports where a period sits in the allocation lifecycle
// before any save has happened.
func PlanStateFor(s Summary) PlanState {
	switch {
	case s.TotalIncome.Kobo == 0:
		return StateNoIncome
	case s.NetSurplus.Kobo <= 0:
		return StateNoSurplus
	default:
		return StatePlanReady
	}
}

// BuildPlan distributes a positive net surplus across the profile's
// categories in profile order. Each amount is surplus×percent/100 rounded
// half-away-from-zero to a whole currency unit.
//
// The planner refuses to compute when there is no income (ErrNoIncome)
// or no positive surplus (ErrNoSurplus) rather than producing a zeroed
// or negative plan.
func BuildPlan(s Summary, profile Profile) (Plan, error) {
	if s.TotalIncome.Kobo == 0 {
		return Plan{}, ErrNoIncome
	}
	if s.NetSurplus.Kobo <= 0 {
		return Plan{}, ErrNoSurplus
	}
	if err := profile.Validate(); err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Period:  s.Period,
		Profile: profile.Name,
		Surplus: s.NetSurplus,
		Lines:   make([]PlanLine, 0, len(profile.Weights)),
	}
	for _, w := range profile.Weights {
		units := math.Round(float64(s.NetSurplus.Kobo) * float64(w.Percent) / 100.0 / 100.0)
		plan.Lines = append(plan.Lines, PlanLine{
			Category: w.Category,
			Percent:  w.Percent,
			Amount:   Money{Kobo: int64(units) * 100},
		})
	}
	return plan, nil
}

// Total sums the allocated amounts across all lines.
func (p Plan) Total() Money {
	var total Money
	for _, l := range p.Lines {
		total = total.Add(l.Amount)
	}
	return total
}
