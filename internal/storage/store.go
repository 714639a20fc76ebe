package storage

import (
	"context"
	"fmt"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// Store persists the whole expense list.
type Store interface {
	Load(ctx context.Context) ([]expense.Expense, error)
	Save(ctx context.Context, list []expense.Expense) error
	Append(ctx context.Context, e expense.Expense) error
	Close() error
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend backed by the file at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendCSV, "":
		return NewCSVStore(path)
	case BackendSQLite:
		return NewDatabase(path)
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
