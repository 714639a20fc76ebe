package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// Columns is the column order of every persisted row.
var Columns = []string{"id", "date", "category", "description", "amount"}

// Row is one persisted expense keyed by column name.
type Row map[string]string

func ToRow(e expense.Expense) Row {
	return Row{
		"id":          strconv.Itoa(e.ID),
		"date":        e.Date.String(),
		"category":    e.Category,
		"description": e.Description,
		"amount":      e.Amount.StringFixed(2),
	}
}

// Values returns the row's cells in Columns order.
func (r Row) Values() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = r[c]
	}
	return out
}

func FromRow(r Row) (expense.Expense, error) {
	for _, c := range Columns {
		if _, ok := r[c]; !ok {
			return expense.Expense{}, fmt.Errorf("missing column %q", c)
		}
	}
	id, err := strconv.Atoi(strings.TrimSpace(r["id"]))
	if err != nil {
		return expense.Expense{}, fmt.Errorf("column id: %w", err)
	}
	date, err := expense.ParseDate(r["date"])
	if err != nil {
		return expense.Expense{}, fmt.Errorf("column date: %w", err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r["amount"]))
	if err != nil {
		return expense.Expense{}, fmt.Errorf("column amount: %w", err)
	}
	return expense.Expense{
		ID:          id,
		Date:        date,
		Category:    r["category"],
		Description: r["description"],
		Amount:      amount.RoundBank(2),
	}, nil
}

// fromRecords maps raw cells named by header to expenses. line is the 1-based
// position of the first record, used in error messages.
func fromRecords(records [][]string, header []string, line int) ([]expense.Expense, error) {
	out := make([]expense.Expense, 0, len(records))
	for i, rec := range records {
		row := make(Row, len(header))
		for j, name := range header {
			if j < len(rec) {
				row[name] = rec[j]
			}
		}
		e, err := FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+i, err)
		}
		out = append(out, e)
	}
	return out, nil
}
