// Package expense holds the expense record model, the filter engine that builds
// predicates over expense fields, and the list operations (add, edit, delete,
// totals) that never mutate the caller's slice.
package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and command-line date format.
const DateLayout = "2006-01-02"

const (
	DefaultCategory    = "Misc"
	DefaultDescription = "-"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNotFound        = errors.New("expense not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Date is a calendar day. The wrapped time is always midnight UTC.
type Date struct {
	time.Time
}

// Expense represents one recorded transaction.
type Expense struct {
	ID          int
	Date        Date
	Category    string
	Description string
	Amount      decimal.Decimal
}

// Today returns the current local calendar day. Tests replace it.
var Today = func() Date {
	return DateOf(time.Now())
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping t's own calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a valid date (use YYYY-MM-DD)", ErrInvalidArgument, s)
	}
	return DateOf(t), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (e Expense) String() string {
	return fmt.Sprintf("#%d %s %s %q %s", e.ID, e.Date, e.Category, e.Description, e.Amount.StringFixed(2))
}
