package wallet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/storage"
)

func setupService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewCSVStore(filepath.Join(dir, "finances.csv"))
	require.NoError(t, err)
	history := storage.NewHistory(filepath.Join(dir, "history"), 10)
	return NewService(store, history, nil, Defaults{Category: "General", Description: "-"}), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	drafts := []expense.Draft{
		{Amount: dec("12.5"), Date: expense.MustParseDate("2024-01-05"), Category: "Food", Description: "Lunch"},
		{Amount: dec("3"), Date: expense.MustParseDate("2024-01-06"), Category: "Transport", Description: "Bus"},
		{Amount: dec("20"), Date: expense.MustParseDate("2024-02-01"), Category: "Food", Description: "Dinner"},
	}
	for _, d := range drafts {
		_, err := svc.Add(ctx, d)
		require.NoError(t, err)
	}
}

func ids(list []expense.Expense) []int {
	out := make([]int, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestAddAssignsIDsAndDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)
	seed(t, svc)

	e, err := svc.Add(ctx, expense.Draft{Amount: dec("1.005"), Date: expense.MustParseDate("2024-03-01")})
	require.NoError(t, err)
	require.Equal(t, 4, e.ID)
	require.Equal(t, "General", e.Category)
	require.Equal(t, "-", e.Description)
	require.Equal(t, "1.00", e.Amount.StringFixed(2))

	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, ids(list))
}

func TestAddRejectsTinyAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)

	_, err := svc.Add(ctx, expense.Draft{Amount: dec("0.009")})
	require.ErrorIs(t, err, expense.ErrInvalidAmount)

	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
	_, err = svc.Undo(ctx)
	require.ErrorIs(t, err, storage.ErrNoHistory)
}

func TestListCombinesWithAnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc)

	minAmount := dec("10")
	res, err := svc.List(ctx, Query{Categories: []string{"Food"}, MinAmount: &minAmount}, expense.SortKey{Field: expense.FieldAmount, Desc: true})
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, ids(res.Matched))
	require.Equal(t, "32.50", res.Total.StringFixed(2))
	require.Equal(t, 3, res.Count)

	res, err = svc.List(ctx, Query{}, expense.SortKey{Field: expense.FieldDate})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids(res.Matched))

	_, err = svc.List(ctx, Query{}, expense.SortKey{Field: expense.FieldCategory})
	require.ErrorIs(t, err, expense.ErrInvalidArgument)
}

func TestDeleteCombinesWithOr(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)
	seed(t, svc)

	res, err := svc.Delete(ctx, Query{IDs: []int{1}, Categories: []string{"Transport"}})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, ids(res.Removed))
	require.Equal(t, "15.50", res.Total.StringFixed(2))
	require.Equal(t, 1, res.Remaining)

	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{3}, ids(list))
}

func TestDeleteRefusesEmptyQuery(t *testing.T) {
	t.Parallel()
	svc, _ := setupService(t)

	_, err := svc.Delete(context.Background(), Query{})
	require.ErrorIs(t, err, ErrNoFilters)
	require.ErrorIs(t, err, expense.ErrInvalidArgument)
}

func TestDeleteNothingMatchesWritesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc)

	res, err := svc.Delete(ctx, Query{IDs: []int{42}})
	require.NoError(t, err)
	require.Empty(t, res.Removed)
	require.Equal(t, 3, res.Remaining)

	// the newest snapshot is still the one taken before the third add
	n, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestEdit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)
	seed(t, svc)

	amount := dec("8.125")
	category := "Groceries"
	changes, err := svc.Edit(ctx, 2, expense.Edit{Amount: &amount, Category: &category})
	require.NoError(t, err)
	require.Equal(t, []expense.Field{expense.FieldCategory, expense.FieldAmount}, changes.Fields())
	require.Equal(t, "3.00", changes[expense.FieldAmount].Old.String())
	require.Equal(t, "8.12", changes[expense.FieldAmount].New.String())

	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Groceries", list[1].Category)

	_, err = svc.Edit(ctx, 99, expense.Edit{Amount: &amount})
	require.ErrorIs(t, err, expense.ErrNotFound)

	changes, err = svc.Edit(ctx, 1, expense.Edit{})
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc)

	totals, err := svc.Summary(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, 3, totals.Count)
	require.Equal(t, "35.50", totals.Overall.StringFixed(2))
	cats := totals.Categories()
	require.Len(t, cats, 2)
	require.Equal(t, "Food", cats[0].Category)
	require.Equal(t, "32.50", cats[0].Amount.StringFixed(2))

	from := expense.MustParseDate("2024-01-06")
	totals, err = svc.Summary(ctx, Query{MinDate: &from})
	require.NoError(t, err)
	require.Equal(t, 2, totals.Count)
}

func TestUndoRestoresPreviousList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)
	seed(t, svc)

	_, err := svc.Delete(ctx, Query{Categories: []string{"Food"}})
	require.NoError(t, err)

	n, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids(list))

	n, err = svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestUndoWithoutHistory(t *testing.T) {
	t.Parallel()
	store, err := storage.NewCSVStore(filepath.Join(t.TempDir(), "finances.csv"))
	require.NoError(t, err)
	svc := NewService(store, nil, nil, Defaults{})

	_, err = svc.Add(context.Background(), expense.Draft{Amount: dec("1")})
	require.NoError(t, err)
	_, err = svc.Undo(context.Background())
	require.ErrorIs(t, err, storage.ErrNoHistory)
}

func TestSuggestCategories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc)

	got, err := svc.SuggestCategories(ctx, []string{"fod"})
	require.NoError(t, err)
	require.Equal(t, []string{"Food"}, got)

	got, err = svc.SuggestCategories(ctx, []string{"Food"})
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = svc.SuggestCategories(ctx, []string{"Entertainment"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestQueryFilters(t *testing.T) {
	t.Parallel()
	today := expense.MustParseDate("2024-02-01")

	require.True(t, Query{}.Empty())
	filters, err := Query{}.Filters(today)
	require.NoError(t, err)
	require.Empty(t, filters)

	lo := expense.MustParseDate("2024-01-01")
	q := Query{IDs: []int{1}, Categories: []string{"Food"}, MinDate: &lo, LastDays: 7}
	require.False(t, q.Empty())
	filters, err = q.Filters(today)
	require.NoError(t, err)
	require.Len(t, filters, 4)

	_, err = Query{LastDays: -1}.Filters(today)
	require.ErrorIs(t, err, expense.ErrInvalidArgument)
}

// failingSaveStore fails every Save while Load and Append still work.
type failingSaveStore struct {
	storage.Store
	fail bool
}

func (s *failingSaveStore) Save(ctx context.Context, list []expense.Expense) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, list)
}

func TestUndoKeepsSnapshotWhenSaveFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	csv, err := storage.NewCSVStore(filepath.Join(dir, "finances.csv"))
	require.NoError(t, err)
	store := &failingSaveStore{Store: csv}
	history := storage.NewHistory(filepath.Join(dir, "history"), 10)
	svc := NewService(store, history, nil, Defaults{})

	_, err = svc.Add(ctx, expense.Draft{Amount: dec("5")})
	require.NoError(t, err)

	store.fail = true
	_, err = svc.Undo(ctx)
	require.ErrorContains(t, err, "disk full")
	n, err := history.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	store.fail = false
	restored, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, restored)
	n, err = history.Len()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestAddBatchIsOneChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := setupService(t)
	seed(t, svc)

	added, errs, err := svc.AddBatch(ctx, []expense.Draft{
		{Amount: dec("1"), Date: expense.MustParseDate("2024-03-01")},
		{Amount: dec("0.001")},
		{Amount: dec("2"), Date: expense.MustParseDate("2024-03-02"), Category: "Food"},
	})
	require.NoError(t, err)
	require.Equal(t, []int{4, 5}, ids(added))
	require.Equal(t, "General", added[0].Category)
	require.Len(t, errs, 3)
	require.NoError(t, errs[0])
	require.ErrorIs(t, errs[1], expense.ErrInvalidAmount)
	require.NoError(t, errs[2])

	list, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, ids(list))

	n, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	list, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids(list))
}

func TestAddBatchAllInvalidWritesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc)

	added, errs, err := svc.AddBatch(ctx, []expense.Draft{{Amount: dec("0")}})
	require.NoError(t, err)
	require.Empty(t, added)
	require.ErrorIs(t, errs[0], expense.ErrInvalidAmount)

	// the newest snapshot still predates the third seeded add
	n, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
