package expense

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is a predicate over a single expense. Filters are immutable once
// built and can be nested with AllOf and AnyOf.
type Filter interface {
	Match(e Expense) bool
	String() string
}

// Matching is true when the field value is one of Values.
type Matching struct {
	Field  Field
	Values []Value

	get func(Expense) Value
	set map[string]struct{}
}

// Comparison is true when `field Op Operand` holds.
type Comparison struct {
	Field   Field
	Op      Comparator
	Operand Value

	get func(Expense) Value
}

// All is the conjunction of its filters. An empty All matches everything.
type All []Filter

// Any is the disjunction of its filters. An empty Any matches nothing.
type Any []Filter

// ByMatching builds a set-membership filter on field. Every value must have the
// kind the field carries. With no values the filter never matches.
func ByMatching(field Field, values ...Value) (Filter, error) {
	acc, err := lookup(field)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := checkKind(field, acc, v); err != nil {
			return nil, err
		}
	}
	return newMatching(field, acc, values), nil
}

func newMatching(field Field, acc accessor, values []Value) *Matching {
	m := &Matching{
		Field:  field,
		Values: append([]Value(nil), values...),
		get:    acc.get,
		set:    make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		m.set[v.Key()] = struct{}{}
	}
	return m
}

func MatchIDs(ids ...int) Filter {
	values := make([]Value, len(ids))
	for i, id := range ids {
		values[i] = IntValue(id)
	}
	return newMatching(FieldID, accessors[FieldID], values)
}

func MatchDates(dates ...Date) Filter {
	values := make([]Value, len(dates))
	for i, d := range dates {
		values[i] = DateValue(d)
	}
	return newMatching(FieldDate, accessors[FieldDate], values)
}

func MatchCategories(categories ...string) Filter {
	return newMatching(FieldCategory, accessors[FieldCategory], textValues(categories))
}

func MatchDescriptions(descriptions ...string) Filter {
	return newMatching(FieldDescription, accessors[FieldDescription], textValues(descriptions))
}

func MatchAmounts(amounts ...decimal.Decimal) Filter {
	values := make([]Value, len(amounts))
	for i, a := range amounts {
		values[i] = AmountValue(a)
	}
	return newMatching(FieldAmount, accessors[FieldAmount], values)
}

func textValues(ss []string) []Value {
	values := make([]Value, len(ss))
	for i, s := range ss {
		values[i] = TextValue(s)
	}
	return values
}

func (m *Matching) Match(e Expense) bool {
	_, ok := m.set[m.get(e).Key()]
	return ok
}

func (m *Matching) String() string {
	parts := make([]string, len(m.Values))
	for i, v := range m.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s in [%s]", m.Field, strings.Join(parts, ", "))
}

// ByComparison builds `field op value`. Only ordered fields (id, date,
// amount) can be compared.
func ByComparison(field Field, op Comparator, value Value) (Filter, error) {
	acc, err := lookup(field)
	if err != nil {
		return nil, err
	}
	if !acc.ordered {
		return nil, fmt.Errorf("%w: field %s is not ordered", ErrInvalidArgument, field)
	}
	if op < LT || op > EQ {
		return nil, fmt.Errorf("%w: unknown comparator %s", ErrInvalidArgument, op)
	}
	if err := checkKind(field, acc, value); err != nil {
		return nil, err
	}
	return &Comparison{Field: field, Op: op, Operand: value, get: acc.get}, nil
}

func (c *Comparison) Match(e Expense) bool {
	return c.Op.holds(c.get(e).Compare(c.Operand))
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Operand)
}

// ByRange builds `field >= lower AND field <= upper`. A nil bound stands for the
// field's theoretical extreme and adds no constraint; at least one bound is
// required.
func ByRange(field Field, lower, upper *Value) (Filter, error) {
	if lower == nil && upper == nil {
		return nil, fmt.Errorf("%w: range on %s needs a minimum or a maximum", ErrInvalidArgument, field)
	}
	var bounds All
	if lower != nil {
		f, err := ByComparison(field, GTE, *lower)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, f)
	}
	if upper != nil {
		f, err := ByComparison(field, LTE, *upper)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, f)
	}
	return bounds, nil
}

// DateRange is ByRange over the date field.
func DateRange(lower, upper *Date) (Filter, error) {
	var lo, hi *Value
	if lower != nil {
		v := DateValue(*lower)
		lo = &v
	}
	if upper != nil {
		v := DateValue(*upper)
		hi = &v
	}
	return ByRange(FieldDate, lo, hi)
}

// AmountRange is ByRange over the amount field.
func AmountRange(lower, upper *decimal.Decimal) (Filter, error) {
	var lo, hi *Value
	if lower != nil {
		v := AmountValue(*lower)
		lo = &v
	}
	if upper != nil {
		v := AmountValue(*upper)
		hi = &v
	}
	return ByRange(FieldAmount, lo, hi)
}

func AllOf(filters ...Filter) Filter {
	return All(append([]Filter(nil), filters...))
}

func AnyOf(filters ...Filter) Filter {
	return Any(append([]Filter(nil), filters...))
}

func (a All) Match(e Expense) bool {
	for _, f := range a {
		if !f.Match(e) {
			return false
		}
	}
	return true
}

func (a All) String() string {
	if len(a) == 0 {
		return "true"
	}
	return join(a, " and ")
}

func (a Any) Match(e Expense) bool {
	for _, f := range a {
		if f.Match(e) {
			return true
		}
	}
	return false
}

func (a Any) String() string {
	if len(a) == 0 {
		return "false"
	}
	return join(a, " or ")
}

func join(filters []Filter, sep string) string {
	if len(filters) == 1 {
		return filters[0].String()
	}
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Within matches expenses dated in the last n days, today included.
func Within(days int, today Date) (Filter, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: window of %d days", ErrInvalidArgument, days)
	}
	start := DateOf(today.AddDate(0, 0, -(days - 1)))
	return DateRange(&start, &today)
}
