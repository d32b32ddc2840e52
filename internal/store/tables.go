package store

// Table names double as worksheet titles in the sheets backend.
const (
	TableIncome     = "Income"
	TableExpense    = "Expense"
	TableAllocation = "Allocation"
)

// Default headers per table. The id column carries the stable synthetic
// identifier every row is created with; deletes resolve through it
// instead of trusting a cached row position.
var tableHeaders = map[string][]string{
	TableIncome:     {"id", "month_year", "source", "type", "amount", "notes"},
	TableExpense:    {"id", "month_year", "category", "amount", "description"},
	TableAllocation: {"id", "month_year", "profile", "category", "percent", "amount"},
}

// HeadersFor returns the default header for a known table, or nil.
func HeadersFor(table string) []string {
	h, ok := tableHeaders[table]
	if !ok {
		return nil
	}
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Tables lists the known table names.
func Tables() []string {
	return []string{TableIncome, TableExpense, TableAllocation}
}
