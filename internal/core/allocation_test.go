package core

import (
	"errors"
	"testing"
)

func TestProfilesSumTo100(t *testing.T) {
	for _, p := range Profiles() {
		if err := p.Validate(); err != nil {
			t.Fatalf("profile %q: %v", p.Name, err)
		}
		if len(p.Weights) != 7 {
			t.Fatalf("profile %q has %d categories, want 7", p.Name, len(p.Weights))
		}
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("default")
	if err != nil || p.Name != "Default" {
		t.Fatalf("got %q, %v", p.Name, err)
	}
	if _, err := ProfileByName("YOLO"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestBuildPlanDefaultProfile(t *testing.T) {
	// net_surplus=1000 with the Default profile.
	s := Summary{
		Period:      "Mar 2025",
		TotalIncome: Money{Kobo: 200000},
		NetSurplus:  Money{Kobo: 100000},
	}
	plan, err := BuildPlan(s, DefaultProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[AllocationCategory]int64{
		AllocAssetBuilding: 350, AllocInvesting: 300, AllocInsurance: 100,
		AllocSavings: 50, AllocEmergency: 50, AllocLifestyle: 100, AllocCharity: 50,
	}
	if len(plan.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(plan.Lines), len(want))
	}
	for _, l := range plan.Lines {
		if naira := l.Amount.Kobo / 100; naira != want[l.Category] {
			t.Fatalf("%s = %d, want %d", l.Category, naira, want[l.Category])
		}
	}
	if plan.Total().Kobo != 100000 {
		t.Fatalf("plan total = %d, want 100000", plan.Total().Kobo)
	}
	// Profile ordering is preserved.
	if plan.Lines[0].Category != AllocAssetBuilding || plan.Lines[6].Category != AllocCharity {
		t.Fatalf("plan order not preserved: %+v", plan.Lines)
	}
}

func TestBuildPlanRoundingTolerance(t *testing.T) {
	// An awkward surplus: per-line rounding drift stays within one whole
	// unit per category.
	s := Summary{Period: "Mar 2025", TotalIncome: Money{Kobo: 200000}, NetSurplus: Money{Kobo: 99937}}
	for _, profile := range Profiles() {
		plan, err := BuildPlan(s, profile)
		if err != nil {
			t.Fatalf("%s: %v", profile.Name, err)
		}
		diff := plan.Total().Kobo - s.NetSurplus.Kobo
		if diff < 0 {
			diff = -diff
		}
		if diff > int64(len(profile.Weights))*100 {
			t.Fatalf("%s: total %d drifts %d kobo from surplus", profile.Name, plan.Total().Kobo, diff)
		}
	}
}

func TestBuildPlanRefusals(t *testing.T) {
	noIncome := Summary{Period: "Mar 2025"}
	if _, err := BuildPlan(noIncome, DefaultProfile()); !errors.Is(err, ErrNoIncome) {
		t.Fatalf("expected ErrNoIncome, got %v", err)
	}

	deficit := Summary{Period: "Mar 2025", TotalIncome: Money{Kobo: 100}, NetSurplus: Money{Kobo: -50}}
	if _, err := BuildPlan(deficit, DefaultProfile()); !errors.Is(err, ErrNoSurplus) {
		t.Fatalf("expected ErrNoSurplus for deficit, got %v", err)
	}

	breakEven := Summary{Period: "Mar 2025", TotalIncome: Money{Kobo: 100}, NetSurplus: Money{}}
	if _, err := BuildPlan(breakEven, DefaultProfile()); !errors.Is(err, ErrNoSurplus) {
		t.Fatalf("expected ErrNoSurplus at break-even, got %v", err)
	}
}

func TestPlanStateFor(t *testing.T) {
	cases := []struct {
		s    Summary
		want PlanState
	}{
		{Summary{}, StateNoIncome},
		{Summary{TotalIncome: Money{Kobo: 100}, NetSurplus: Money{Kobo: -10}}, StateNoSurplus},
		{Summary{TotalIncome: Money{Kobo: 100}, NetSurplus: Money{}}, StateNoSurplus},
		{Summary{TotalIncome: Money{Kobo: 100}, NetSurplus: Money{Kobo: 10}}, StatePlanReady},
	}
	for i, tc := range cases {
		if got := PlanStateFor(tc.s); got != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}
