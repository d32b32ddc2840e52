package core

import (
	"errors"
	"strings"
)

const (
	SourceSkill    IncomeSource = "Skill"
	SourceSalary   IncomeSource = "Salary"
	SourceBusiness IncomeSource = "Business"
	SourceDividend IncomeSource = "Dividend/Interest"
	SourceRental   IncomeSource = "Rental"
)

const (
	ActiveIncome  IncomeType = "Active"
	PassiveIncome IncomeType = "Passive"
)

const (
	CategoryRent      ExpenseCategory = "Rent"
	CategoryFood      ExpenseCategory = "Food"
	CategoryTransport ExpenseCategory = "Transport"
	CategoryUtilities ExpenseCategory = "Utilities"
	CategoryHealth    ExpenseCategory = "Health"
	CategoryEducation ExpenseCategory = "Education"
	CategoryFamily    ExpenseCategory = "Family Support"
	CategoryOther     ExpenseCategory = "Other"
)

type (
	IncomeSource    string
	IncomeType      string
	ExpenseCategory string

	// IncomeEntry is one income record for a reporting period. Type is
	// always derived from Source, never set independently.
	IncomeEntry struct {
		ID     string
		Period Period
		Source IncomeSource
		Type   IncomeType
		Amount Money
		Notes  string
	}

	// ExpenseEntry is one expense record for a reporting period.
	ExpenseEntry struct {
		ID          string
		Period      Period
		Category    ExpenseCategory
		Amount      Money
		Description string
	}
)

var (
	ErrInvalidPeriod   = errors.New("invalid reporting period")
	ErrUnknownSource   = errors.New("unknown income source")
	ErrUnknownCategory = errors.New("unknown expense category")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrTypeMismatch    = errors.New("income type does not match source")
)

// sourceTypes is the fixed source -> type lookup table.
var sourceTypes = map[IncomeSource]IncomeType{
	SourceSkill:    ActiveIncome,
	SourceSalary:   ActiveIncome,
	SourceBusiness: ActiveIncome,
	SourceDividend: PassiveIncome,
	SourceRental:   PassiveIncome,
}

// IncomeSources lists the valid sources in form order.
func IncomeSources() []IncomeSource {
	return []IncomeSource{SourceSkill, SourceSalary, SourceBusiness, SourceDividend, SourceRental}
}

// ExpenseCategories lists the fixed expense categories in form order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryRent, CategoryFood, CategoryTransport, CategoryUtilities,
		CategoryHealth, CategoryEducation, CategoryFamily, CategoryOther,
	}
}

// TypeOf returns the income type for a source.
func TypeOf(source IncomeSource) (IncomeType, error) {
	t, ok := sourceTypes[source]
	if !ok {
		return "", ErrUnknownSource
	}
	return t, nil
}

// ParseIncomeSource matches a form value against the known sources,
// ignoring case and surrounding whitespace.
func ParseIncomeSource(s string) (IncomeSource, error) {
	for _, src := range IncomeSources() {
		if strings.EqualFold(strings.TrimSpace(s), string(src)) {
			return src, nil
		}
	}
	return "", ErrUnknownSource
}

// ParseExpenseCategory matches a form value against the fixed category list.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	for _, cat := range ExpenseCategories() {
		if strings.EqualFold(strings.TrimSpace(s), string(cat)) {
			return cat, nil
		}
	}
	return "", ErrUnknownCategory
}

// NewIncomeEntry builds an entry with the type derived from the source.
func NewIncomeEntry(period Period, source IncomeSource, amount Money, notes string) (IncomeEntry, error) {
	t, err := TypeOf(source)
	if err != nil {
		return IncomeEntry{}, err
	}
	e := IncomeEntry{
		Period: period,
		Source: source,
		Type:   t,
		Amount: amount,
		Notes:  strings.TrimSpace(notes),
	}
	if err := e.Validate(); err != nil {
		return IncomeEntry{}, err
	}
	return e, nil
}

// NewExpenseEntry builds a validated expense entry.
func NewExpenseEntry(period Period, category ExpenseCategory, amount Money, description string) (ExpenseEntry, error) {
	e := ExpenseEntry{
		Period:      period,
		Category:    category,
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
	if err := e.Validate(); err != nil {
		return ExpenseEntry{}, err
	}
	return e, nil
}

func (e IncomeEntry) Validate() error {
	if err := e.Period.Validate(); err != nil {
		return err
	}
	t, ok := sourceTypes[e.Source]
	if !ok {
		return ErrUnknownSource
	}
	if e.Type != t {
		return ErrTypeMismatch
	}
	if e.Amount.Kobo < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if err := e.Period.Validate(); err != nil {
		return err
	}
	if _, err := ParseExpenseCategory(string(e.Category)); err != nil {
		return err
	}
	if e.Amount.Kobo < 0 {
		return ErrNegativeAmount
	}
	return nil
}
