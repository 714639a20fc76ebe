package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

// CSVStore keeps expenses in a single CSV file with a header row.
type CSVStore struct {
	path string
}

// NewCSVStore opens the file at path, creating its directory and a
// header-only file when they do not exist yet.
func NewCSVStore(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeFileAtomic(path, nil); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) Load(ctx context.Context) ([]expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	list, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return list, nil
}

func (s *CSVStore) Save(ctx context.Context, list []expense.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, list); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	return nil
}

func (s *CSVStore) Append(ctx context.Context, e expense.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(ToRow(e).Values()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append expense: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to append expense: %w", err)
	}
	return f.Close()
}

func (s *CSVStore) Close() error {
	return nil
}

func readCSV(r io.Reader) ([]expense.Expense, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []expense.Expense{}, nil
	}
	header := records[0]
	for _, c := range Columns {
		if !slices.Contains(header, c) {
			return nil, fmt.Errorf("header is missing column %q", c)
		}
	}
	return fromRecords(records[1:], header, 2)
}

func writeCSV(w io.Writer, list []expense.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, e := range list {
		if err := cw.Write(ToRow(e).Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFileAtomic writes list to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, list []expense.Expense) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, list); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
