package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/parse"
	"github.com/NgigiN/walletwatcher/internal/wallet"
)

// filterFlags are the selection flags shared by list, delete and summary.
type filterFlags struct {
	ids          []string
	dates        []string
	categories   []string
	descriptions []string

	minDate   string
	maxDate   string
	minAmount string
	maxAmount string
	last      int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.ids, "id", "i", nil, "expense id (repeatable, comma separated)")
	fs.StringSliceVarP(&f.dates, "date", "d", nil, "date as YYYY-MM-DD (repeatable, comma separated)")
	fs.StringArrayVarP(&f.categories, "category", "c", nil, "category (repeatable)")
	fs.StringArrayVarP(&f.descriptions, "description", "s", nil, "description (repeatable)")
	fs.StringVar(&f.minDate, "min-date", "", "earliest date, inclusive")
	fs.StringVar(&f.maxDate, "max-date", "", "latest date, inclusive")
	fs.StringVar(&f.minAmount, "min-amount", "", "smallest amount, inclusive")
	fs.StringVar(&f.maxAmount, "max-amount", "", "largest amount, inclusive")
	fs.IntVar(&f.last, "last", 0, "only the last N days, today included")
}

// query parses the flags into a wallet query.
func (f *filterFlags) query() (wallet.Query, error) {
	var (
		q   wallet.Query
		err error
	)
	if q.IDs, err = parse.Each(f.ids, parse.ID); err != nil {
		return q, err
	}
	if q.Dates, err = parse.Each(f.dates, parse.Date); err != nil {
		return q, err
	}
	if q.Categories, err = parse.Each(f.categories, parse.Category); err != nil {
		return q, err
	}
	if q.Descriptions, err = parse.Each(f.descriptions, parse.Description); err != nil {
		return q, err
	}
	if q.MinDate, err = optional(f.minDate, parse.Date); err != nil {
		return q, err
	}
	if q.MaxDate, err = optional(f.maxDate, parse.Date); err != nil {
		return q, err
	}
	if q.MinAmount, err = optional(f.minAmount, parse.Amount); err != nil {
		return q, err
	}
	if q.MaxAmount, err = optional(f.maxAmount, parse.Amount); err != nil {
		return q, err
	}
	q.LastDays = f.last
	return q, nil
}

// optional parses s unless it is empty.
func optional[T any](s string, fn func(string) (T, error)) (*T, error) {
	if s == "" {
		return nil, nil
	}
	v, err := fn(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// draftFlags are the fields add and edit accept.
type draftFlags struct {
	date        string
	category    string
	description string
}

func (d *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&d.date, "date", "d", "", "date as YYYY-MM-DD")
	fs.StringVarP(&d.category, "category", "c", "", "category")
	fs.StringVarP(&d.description, "description", "s", "", "description")
}

func (d *draftFlags) draft(amount decimal.Decimal) (expense.Draft, error) {
	out := expense.Draft{Amount: amount}
	date, err := optional(d.date, parse.Date)
	if err != nil {
		return out, err
	}
	if date != nil {
		out.Date = *date
	}
	if out.Category, err = parse.Category(d.category); err != nil {
		return out, err
	}
	if out.Description, err = parse.Description(d.description); err != nil {
		return out, err
	}
	return out, nil
}
