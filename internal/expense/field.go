package expense

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field identifies one column of an expense.
type Field int

const (
	FieldID Field = iota
	FieldDate
	FieldCategory
	FieldDescription
	FieldAmount
)

var fieldNames = [...]string{
	FieldID:          "id",
	FieldDate:        "date",
	FieldCategory:    "category",
	FieldDescription: "description",
	FieldAmount:      "amount",
}

// Fields returns every field in column order.
func Fields() []Field {
	return []Field{FieldID, FieldDate, FieldCategory, FieldDescription, FieldAmount}
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

func ParseField(s string) (Field, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, s)
}

// Comparator is the relation used by comparison and range filters.
type Comparator int

const (
	LT Comparator = iota
	LTE
	GT
	GTE
	EQ
)

func (c Comparator) String() string {
	switch c {
	case LT:
		return "<"
	case LTE:
		return "<="
	case GT:
		return ">"
	case GTE:
		return ">="
	case EQ:
		return "=="
	}
	return "comparator(" + strconv.Itoa(int(c)) + ")"
}

// holds reports whether a three-way comparison result satisfies c.
func (c Comparator) holds(result int) bool {
	switch c {
	case LT:
		return result < 0
	case LTE:
		return result <= 0
	case GT:
		return result > 0
	case GTE:
		return result >= 0
	case EQ:
		return result == 0
	}
	return false
}

// Kind is the type of value a field carries.
type Kind int

const (
	KindInt Kind = iota
	KindDate
	KindText
	KindAmount
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	case KindAmount:
		return "amount"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a typed field value. Build it with IntValue, DateValue, TextValue
// or AmountValue.
type Value struct {
	kind   Kind
	num    int
	date   Date
	text   string
	amount decimal.Decimal
}

func IntValue(n int) Value {
	return Value{kind: KindInt, num: n}
}

func DateValue(d Date) Value {
	return Value{kind: KindDate, date: d}
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

func AmountValue(d decimal.Decimal) Value {
	return Value{kind: KindAmount, amount: d}
}

func (v Value) Kind() Kind              { return v.kind }
func (v Value) Int() int                { return v.num }
func (v Value) Date() Date              { return v.date }
func (v Value) Text() string            { return v.text }
func (v Value) Amount() decimal.Decimal { return v.amount }

// Key is a canonical string used for set membership. Amounts are keyed by
// their value rounded half to even at two digits, so 10.5, 10.50 and 10.504
// share a key.
func (v Value) Key() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.num)
	case KindDate:
		return v.date.String()
	case KindAmount:
		return v.amount.RoundBank(2).String()
	}
	return v.text
}

func (v Value) String() string {
	if v.kind == KindAmount {
		return v.amount.StringFixed(2)
	}
	return v.Key()
}

// Compare orders two values of the same kind. Values of different kinds are
// ordered by kind.
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		return cmp.Compare(v.kind, other.kind)
	}
	switch v.kind {
	case KindInt:
		return cmp.Compare(v.num, other.num)
	case KindDate:
		return v.date.Compare(other.date)
	case KindAmount:
		return v.amount.Cmp(other.amount)
	}
	return strings.Compare(v.text, other.text)
}

func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.Compare(other) == 0
}

// accessor reads and writes one field without reflection.
type accessor struct {
	kind    Kind
	ordered bool
	get     func(Expense) Value
	set     func(*Expense, Value)
}

var accessors = [...]accessor{
	FieldID: {
		kind:    KindInt,
		ordered: true,
		get:     func(e Expense) Value { return IntValue(e.ID) },
		set:     func(e *Expense, v Value) { e.ID = v.num },
	},
	FieldDate: {
		kind:    KindDate,
		ordered: true,
		get:     func(e Expense) Value { return DateValue(e.Date) },
		set:     func(e *Expense, v Value) { e.Date = v.date },
	},
	FieldCategory: {
		kind: KindText,
		get:  func(e Expense) Value { return TextValue(e.Category) },
		set:  func(e *Expense, v Value) { e.Category = v.text },
	},
	FieldDescription: {
		kind: KindText,
		get:  func(e Expense) Value { return TextValue(e.Description) },
		set:  func(e *Expense, v Value) { e.Description = v.text },
	},
	FieldAmount: {
		kind:    KindAmount,
		ordered: true,
		get:     func(e Expense) Value { return AmountValue(e.Amount) },
		set:     func(e *Expense, v Value) { e.Amount = v.amount },
	},
}

func lookup(f Field) (accessor, error) {
	if f < 0 || int(f) >= len(accessors) {
		return accessor{}, fmt.Errorf("%w: unknown field %s", ErrInvalidArgument, f)
	}
	return accessors[f], nil
}

// Get returns the value of field f of e.
func (e Expense) Get(f Field) (Value, error) {
	acc, err := lookup(f)
	if err != nil {
		return Value{}, err
	}
	return acc.get(e), nil
}

func checkKind(f Field, acc accessor, v Value) error {
	if v.kind != acc.kind {
		return fmt.Errorf("%w: field %s takes %s values, got %s", ErrInvalidArgument, f, acc.kind, v.kind)
	}
	return nil
}
