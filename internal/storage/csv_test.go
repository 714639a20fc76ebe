package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

func sampleList() []expense.Expense {
	return []expense.Expense{
		{ID: 1, Date: expense.MustParseDate("2024-01-05"), Category: "Food", Description: "Lunch", Amount: decimal.RequireFromString("12.50")},
		{ID: 2, Date: expense.MustParseDate("2024-01-06"), Category: "Transport", Description: "Bus, return", Amount: decimal.RequireFromString("3.00")},
		{ID: 3, Date: expense.MustParseDate("2024-02-01"), Category: "Food", Description: "Dinner", Amount: decimal.RequireFromString("20.00")},
	}
}

func requireSameList(t *testing.T, want, got []expense.Expense) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.Equal(t, want[i].Date, got[i].Date)
		require.Equal(t, want[i].Category, got[i].Category)
		require.Equal(t, want[i].Description, got[i].Description)
		require.True(t, want[i].Amount.Equal(got[i].Amount), "amount of #%d: %s != %s", want[i].ID, want[i].Amount, got[i].Amount)
	}
}

func TestCSVStoreInitCreatesHeader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "finances.csv")

	s, err := NewCSVStore(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "id,date,category,description,amount\n", string(data))

	list, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCSVStoreKeepsExistingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "finances.csv")
	content := "id,date,category,description,amount\n7,2024-01-01,Rent,May,900.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := NewCSVStore(path)
	require.NoError(t, err)
	list, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 7, list[0].ID)
}

func TestCSVStoreSaveLoadAppend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewCSVStore(filepath.Join(t.TempDir(), "finances.csv"))
	require.NoError(t, err)

	list := sampleList()
	require.NoError(t, s.Save(ctx, list[:2]))
	require.NoError(t, s.Append(ctx, list[2]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	requireSameList(t, list, got)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), `"Bus, return"`)
	require.Contains(t, string(data), ",3.00\n")
}

func TestCSVStoreColumnOrderIsNotFixed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "finances.csv")
	content := "amount,id,description,category,date\n4.2,1,Tea,Food,2024-01-01\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := NewCSVStore(path)
	require.NoError(t, err)
	list, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "4.20", list[0].Amount.StringFixed(2))
	require.Equal(t, "Tea", list[0].Description)
}

func TestCSVStoreRejectsBadFiles(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"missing column": "id,date,category,amount\n1,2024-01-01,Food,1.00\n",
		"bad amount":     "id,date,category,description,amount\n1,2024-01-01,Food,x,lots\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), strings.ReplaceAll(name, " ", "-")+".csv")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		s, err := NewCSVStore(path)
		require.NoError(t, err)
		_, err = s.Load(context.Background())
		require.Error(t, err, name)
	}
}

func TestCSVStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()
	s, err := NewCSVStore(filepath.Join(t.TempDir(), "finances.csv"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Save(ctx, nil), context.Canceled)
}

func TestOpenUnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := Open("mongo", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
}
