package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NgigiN/walletwatcher/internal/config"
	"github.com/NgigiN/walletwatcher/internal/storage"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	return config.Config{
		Data: config.DataConfig{
			Dir:        t.TempDir(),
			File:       "finances.csv",
			Backend:    backend,
			SQLiteFile: "finances.db",
		},
		Defaults: config.DefaultsConfig{Category: "Misc", Description: "-"},
		History:  config.HistoryConfig{Limit: 10},
		UI:       config.UIConfig{Currency: "$", Color: false},
		Log:      config.LogConfig{Level: "error"},
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

func run(cfg config.Config, args ...string) result {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), cfg, nil, args, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func seed(t *testing.T, cfg config.Config) {
	t.Helper()
	for _, args := range [][]string{
		{"add", "12.50", "-d", "2024-01-05", "-c", "Food", "-s", "Lunch"},
		{"add", "3", "-d", "2024-01-06", "-c", "Transport", "-s", "Bus"},
		{"add", "20", "-d", "2024-02-01", "-c", "Food", "-s", "Dinner"},
	} {
		res := run(cfg, args...)
		require.Equal(t, 0, res.code, res.stderr)
	}
}

func TestAddAndList(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)

	res := run(cfg, "add", "12.50", "-d", "2024-01-05", "-c", "Food", "-s", "Lunch")
	require.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, "Added expense #1: $12.50 on 2024-01-05, Food (Lunch)\n", res.stdout)

	res = run(cfg, "add", "3", "-d", "2024-01-06")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "#2: $3.00 on 2024-01-06, Misc (-)")

	res = run(cfg, "list")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Lunch")
	require.Contains(t, res.stdout, "Total: $15.50")
	require.Contains(t, res.stdout, "Entries: 2/2")
}

func TestListFiltersAndSort(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)
	seed(t, cfg)

	res := run(cfg, "list", "-c", "Food", "--min-amount", "15")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Dinner")
	require.NotContains(t, res.stdout, "Lunch")
	require.Contains(t, res.stdout, "Entries: 1/3")

	res = run(cfg, "list", "--sort-by", "amount", "--desc")
	require.Equal(t, 0, res.code, res.stderr)
	require.Less(t, bytes.Index([]byte(res.stdout), []byte("Dinner")), bytes.Index([]byte(res.stdout), []byte("Bus")))

	res = run(cfg, "list", "--sort-by", "category")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "cannot sort by category")
}

func TestListSuggestsCategories(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)
	seed(t, cfg)

	res := run(cfg, "list", "-c", "Fod")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Warning: no expenses matched")
	require.Contains(t, res.stdout, "Did you mean: Food?")
}

func TestDelete(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)
	seed(t, cfg)

	res := run(cfg, "delete")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "refusing to delete without a filter")

	res = run(cfg, "delete", "-i", "1", "-c", "Transport")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Deleted")
	require.Contains(t, res.stdout, "Total removed: $15.50")

	res = run(cfg, "delete", "-i", "1")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "nothing was deleted")

	res = run(cfg, "list")
	require.Contains(t, res.stdout, "Entries: 1/1")
}

func TestEdit(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)
	seed(t, cfg)

	res := run(cfg, "edit", "-i", "1", "-a", "8", "-c", "Groceries")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Expense #1 updated")
	require.Contains(t, res.stdout, "category: Food ➜ Groceries")
	require.Contains(t, res.stdout, "amount: $12.50 ➜ $8.00")

	res = run(cfg, "edit", "-i", "1")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "no modifications given")

	res = run(cfg, "edit", "-i", "9", "-a", "1")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "expense not found")

	res = run(cfg, "edit", "-a", "1")
	require.Equal(t, 1, res.code)
}

func TestEditIgnoresBlankValues(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)
	seed(t, cfg)

	res := run(cfg, "edit", "-i", "1", "-c", "", "-s", "  ")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "no modifications given")

	res = run(cfg, "edit", "-i", "1", "-c", "", "-a", "9")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "amount: $12.50 ➜ $9.00")
	require.NotContains(t, res.stdout, "category:")

	res = run(cfg, "list", "-c", "Food", "-i", "1")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Entries: 1/3")
}

func TestInvalidInput(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)

	res := run(cfg, "add", "0.009")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "invalid amount")

	res = run(cfg, "add", "ten")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "not a valid amount")

	res = run(cfg, "add", "10", "-d", "05/01/2024")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "not a valid date")

	res = run(cfg, "add", "10", "-c", "a category name that is too long")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "category must be at most")
}

func TestSummaryAndUndo(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, storage.BackendCSV)

	res := run(cfg, "undo")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "nothing to undo")

	seed(t, cfg)
	res = run(cfg, "summary")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Food")
	require.Contains(t, res.stdout, "Total: $35.50")

	res = run(cfg, "delete", "-c", "Food")
	require.Equal(t, 0, res.code, res.stderr)

	res = run(cfg, "undo")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Restored 3 expenses")

	res = run(cfg, "summary", "--max-date", "2024-01-31")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Total: $15.50")
}

func TestSQLiteBackend(t *testing.T) {
	cfg := testConfig(t, storage.BackendSQLite)
	seed(t, cfg)

	res := run(cfg, "list", "-c", "Food")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Total: $32.50")
	require.Contains(t, res.stdout, "Entries: 2/3")
}

func TestBotNeedsDiscordSettings(t *testing.T) {
	t.Parallel()
	res := run(testConfig(t, storage.BackendCSV), "bot")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "discord token is not set")
}
