package expense

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// MinAmount is the smallest amount an expense can record.
var MinAmount = decimal.New(1, -2)

// Draft is the input to Add. Zero fields take their defaults.
type Draft struct {
	Amount      decimal.Decimal
	Date        Date
	Category    string
	Description string
}

// Edit lists the fields Modify should replace. Nil fields are left alone.
type Edit struct {
	Date        *Date
	Category    *string
	Description *string
	Amount      *decimal.Decimal
}

// Change is the before and after value of one edited field.
type Change struct {
	Old Value
	New Value
}

// Changes maps each edited field to its change.
type Changes map[Field]Change

// Fields returns the changed fields in column order.
func (c Changes) Fields() []Field {
	fields := make([]Field, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Totals aggregates a list of expenses.
type Totals struct {
	Overall    decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Count      int
}

// Categories returns per-category sums sorted by category label.
func (t Totals) Categories() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(t.ByCategory))
	for c, amount := range t.ByCategory {
		out = append(out, CategoryTotal{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// SortKey orders a list by one field.
type SortKey struct {
	Field Field
	Desc  bool
}

// NormalizeAmount rejects amounts below MinAmount and rounds the rest half to
// even at two fraction digits.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThan(MinAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s is less than %s", ErrInvalidAmount, amount, MinAmount.StringFixed(2))
	}
	return amount.RoundBank(2), nil
}

// NextID returns one more than the largest id in list, or 1 for an empty list.
func NextID(list []Expense) int {
	highest := 0
	for _, e := range list {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest + 1
}

// Add builds the expense that would be appended to list. The list itself is
// not modified.
func Add(list []Expense, d Draft) (Expense, error) {
	amount, err := NormalizeAmount(d.Amount)
	if err != nil {
		return Expense{}, err
	}
	e := Expense{
		ID:          NextID(list),
		Date:        d.Date,
		Category:    d.Category,
		Description: d.Description,
		Amount:      amount,
	}
	if e.Date.IsZero() {
		e.Date = Today()
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.Description == "" {
		e.Description = DefaultDescription
	}
	return e, nil
}

// Delete splits list into the expenses f keeps and the ones it removes. Both
// partitions keep the input order.
func Delete(list []Expense, f Filter) (kept, removed []Expense) {
	kept = make([]Expense, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// Select returns the expenses matching f in input order.
func Select(list []Expense, f Filter) []Expense {
	out := make([]Expense, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Modify returns a copy of list where the expense with the given id carries
// the edit, plus the changes applied. On any error nothing is returned and
// list is untouched.
func Modify(list []Expense, id int, edit Edit) ([]Expense, Changes, error) {
	idx := slices.IndexFunc(list, func(e Expense) bool { return e.ID == id })
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: no expense with id %d", ErrNotFound, id)
	}

	updates := make(map[Field]Value, 4)
	if edit.Date != nil {
		updates[FieldDate] = DateValue(*edit.Date)
	}
	if edit.Category != nil {
		updates[FieldCategory] = TextValue(*edit.Category)
	}
	if edit.Description != nil {
		updates[FieldDescription] = TextValue(*edit.Description)
	}
	if edit.Amount != nil {
		amount, err := NormalizeAmount(*edit.Amount)
		if err != nil {
			return nil, nil, err
		}
		updates[FieldAmount] = AmountValue(amount)
	}

	out := slices.Clone(list)
	target := out[idx]
	changes := make(Changes, len(updates))
	for field, v := range updates {
		acc := accessors[field]
		changes[field] = Change{Old: acc.get(target), New: v}
		acc.set(&target, v)
	}
	out[idx] = target
	return out, changes, nil
}

// Total sums amounts overall and per category.
func Total(list []Expense) Totals {
	t := Totals{
		Overall:    decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
		Count:      len(list),
	}
	for _, e := range list {
		t.Overall = t.Overall.Add(e.Amount)
		t.ByCategory[e.Category] = t.ByCategory[e.Category].Add(e.Amount)
	}
	return t
}

// Sort returns a stably sorted copy of list. Only ordered fields can be used
// as a key.
func Sort(list []Expense, key SortKey) ([]Expense, error) {
	acc, err := lookup(key.Field)
	if err != nil {
		return nil, err
	}
	if !acc.ordered {
		return nil, fmt.Errorf("%w: cannot sort by %s", ErrInvalidArgument, key.Field)
	}
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Expense) int {
		c := acc.get(a).Compare(acc.get(b))
		if key.Desc {
			return -c
		}
		return c
	})
	return out, nil
}
