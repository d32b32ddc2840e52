package core

import "sort"

const (
	SavingsNoIncome SavingsBand = "no income — cannot evaluate"
	SavingsStrong   SavingsBand = "strong"
	SavingsStable   SavingsBand = "stable"
	SavingsWeak     SavingsBand = "weak"
	SavingsDeficit  SavingsBand = "deficit"
)

const (
	StructureEffortDependent IncomeStructure = "effort-dependent"
	StructureResilient       IncomeStructure = "resilient"
	StructureModerate        IncomeStructure = "moderate"
)

type (
	// SavingsBand is the qualitative label for a period's savings rate.
	SavingsBand string

	// IncomeStructure labels how the income mix leans between active
	// effort and passive sources.
	IncomeStructure string

	// Insights is the full qualitative read of a period summary.
	Insights struct {
		Savings          SavingsBand
		SavingsMessage   string
		Structure        IncomeStructure
		StructureMessage string
		// Drivers holds the top one or two expense categories by amount.
		Drivers []CategoryShare
	}
)

var savingsMessages = map[SavingsBand]string{
	SavingsNoIncome: "No income recorded for this period, so performance cannot be evaluated.",
	SavingsStrong:   "You are keeping 30% or more of what you earn. Keep it up.",
	SavingsStable:   "A stable savings rate. Pushing past 30% would build wealth faster.",
	SavingsWeak:     "You are saving, but thinly. Look at the largest cost drivers below.",
	SavingsDeficit:  "You spent as much as or more than you earned this period.",
}

var structureMessages = map[IncomeStructure]string{
	StructureEffortDependent: "70% or more of your income depends on active effort.",
	StructureResilient:       "Half or more of your income is passive. Your earnings are resilient.",
	StructureModerate:        "A moderate mix of active and passive income.",
}

// ClassifySavings maps a savings rate to its band. Bands are fixed and
// non-overlapping; the income=0 case wins before any rate comparison.
func ClassifySavings(s Summary) SavingsBand {
	switch {
	case s.TotalIncome.Kobo == 0:
		return SavingsNoIncome
	case s.SavingsRate >= 30:
		return SavingsStrong
	case s.SavingsRate >= 15:
		return SavingsStable
	case s.SavingsRate >= 1:
		return SavingsWeak
	default:
		return SavingsDeficit
	}
}

// ClassifyStructure labels the active/passive mix. Conditions are
// evaluated in order, first match wins; with active+passive bounded by
// 100 the two thresholds cannot both hold, but the order is still part
// of the contract.
func ClassifyStructure(s Summary) IncomeStructure {
	switch {
	case s.ActivePct >= 70:
		return StructureEffortDependent
	case s.PassivePct >= 50:
		return StructureResilient
	default:
		return StructureModerate
	}
}

// TopDrivers returns the largest max expense categories by amount,
// descending, ties broken by original (first-seen) order.
func TopDrivers(shares []CategoryShare, max int) []CategoryShare {
	sorted := make([]CategoryShare, len(shares))
	copy(sorted, shares)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.Kobo > sorted[j].Amount.Kobo
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

// BuildInsights derives the full qualitative read from a summary.
func BuildInsights(s Summary) Insights {
	band := ClassifySavings(s)
	structure := ClassifyStructure(s)
	return Insights{
		Savings:          band,
		SavingsMessage:   savingsMessages[band],
		Structure:        structure,
		StructureMessage: structureMessages[structure],
		Drivers:          TopDrivers(s.ByCategory, 2),
	}
}
