package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// Query is the set of filter flags a front end collected. Each non-empty
// flag becomes one filter.
type Query struct {
	IDs          []int
	Dates        []expense.Date
	Categories   []string
	Descriptions []string

	MinDate   *expense.Date
	MaxDate   *expense.Date
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal

	// LastDays keeps the expenses dated in the last n days when positive.
	LastDays int
}

// Empty reports whether no flag is set.
func (q Query) Empty() bool {
	return len(q.IDs) == 0 &&
		len(q.Dates) == 0 &&
		len(q.Categories) == 0 &&
		len(q.Descriptions) == 0 &&
		q.MinDate == nil && q.MaxDate == nil &&
		q.MinAmount == nil && q.MaxAmount == nil &&
		q.LastDays == 0
}

// Filters builds one filter per set flag, in a fixed order.
func (q Query) Filters(today expense.Date) ([]expense.Filter, error) {
	var filters []expense.Filter
	if len(q.IDs) > 0 {
		filters = append(filters, expense.MatchIDs(q.IDs...))
	}
	if len(q.Dates) > 0 {
		filters = append(filters, expense.MatchDates(q.Dates...))
	}
	if len(q.Categories) > 0 {
		filters = append(filters, expense.MatchCategories(q.Categories...))
	}
	if len(q.Descriptions) > 0 {
		filters = append(filters, expense.MatchDescriptions(q.Descriptions...))
	}
	if q.MinDate != nil || q.MaxDate != nil {
		f, err := expense.DateRange(q.MinDate, q.MaxDate)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if q.MinAmount != nil || q.MaxAmount != nil {
		f, err := expense.AmountRange(q.MinAmount, q.MaxAmount)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if q.LastDays != 0 {
		f, err := expense.Within(q.LastDays, today)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
