package storage

import (
	"strconv"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// expenseRecord is the sqlite row for one expense. Amount and date are kept
// in their CSV text form so both backends share one conversion.
type expenseRecord struct {
	ID          int `gorm:"primaryKey;autoIncrement:false"`
	Position    int `gorm:"index"`
	Date        string
	Category    string
	Description string
	Amount      string
}

func (expenseRecord) TableName() string {
	return "expenses"
}

func newRecord(position int, e expense.Expense) expenseRecord {
	row := ToRow(e)
	return expenseRecord{
		ID:          e.ID,
		Position:    position,
		Date:        row["date"],
		Category:    row["category"],
		Description: row["description"],
		Amount:      row["amount"],
	}
}

func (r expenseRecord) row() Row {
	return Row{
		"id":          strconv.Itoa(r.ID),
		"date":        r.Date,
		"category":    r.Category,
		"description": r.Description,
		"amount":      r.Amount,
	}
}
