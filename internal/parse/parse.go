package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

const (
	MaxCategoryLen    = 20
	MaxDescriptionLen = 50
)

// amountPattern accepts an optional currency marker and thousands separators,
// e.g. "25.99", "$1,200", "Ksh1,050.50".
var amountPattern = regexp.MustCompile(`(?i)^(?:\$|ksh|usd|eur|€|£)?\s*(\d[\d,]*(?:\.\d+)?|\.\d+)$`)

func Amount(s string) (decimal.Decimal, error) {
	matches := amountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount", expense.ErrInvalidArgument, s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(matches[1], ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount: %v", expense.ErrInvalidArgument, s, err)
	}
	return d, nil
}

func Date(s string) (expense.Date, error) {
	return expense.ParseDate(s)
}

func ID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q is not a valid id", expense.ErrInvalidArgument, s)
	}
	return id, nil
}

func Category(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxCategoryLen {
		return "", fmt.Errorf("%w: category must be at most %d characters: %s", expense.ErrInvalidArgument, MaxCategoryLen, s)
	}
	return s, nil
}

func Description(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxDescriptionLen {
		return "", fmt.Errorf("%w: description must be at most %d characters: %s", expense.ErrInvalidArgument, MaxDescriptionLen, s)
	}
	return s, nil
}

// SortField accepts the columns a listing can be sorted by.
func SortField(s string) (expense.Field, error) {
	f, err := expense.ParseField(s)
	if err != nil {
		return 0, err
	}
	switch f {
	case expense.FieldID, expense.FieldDate, expense.FieldAmount:
		return f, nil
	}
	return 0, fmt.Errorf("%w: cannot sort by %s (use date, id or amount)", expense.ErrInvalidArgument, f)
}

// Each applies fn to every input and stops at the first error.
func Each[T any](inputs []string, fn func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(inputs))
	for _, in := range inputs {
		v, err := fn(in)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
