package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NgigiN/walletwatcher/internal/expense"
)

var ErrNoHistory = errors.New("nothing to undo")

// History keeps snapshots of the expense list taken before each change so the
// change can be undone. Snapshots are CSV files named so that lexical order is
// creation order.
type History struct {
	dir   string
	limit int
	now   func() time.Time
	last  int64
}

// NewHistory keeps at most limit snapshots in dir. A limit of 0 disables
// snapshots.
func NewHistory(dir string, limit int) *History {
	return &History{dir: dir, limit: limit, now: time.Now}
}

// Snapshot records list and returns the snapshot id.
func (h *History) Snapshot(list []expense.Expense) (string, error) {
	if h.limit == 0 {
		return "", nil
	}
	if err := os.MkdirAll(h.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	stamp := h.now().UnixNano()
	if stamp <= h.last {
		stamp = h.last + 1
	}
	h.last = stamp
	id := uuid.NewString()
	name := fmt.Sprintf("%019d-%s.csv", stamp, id)

	var buf bytes.Buffer
	if err := writeCSV(&buf, list); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(h.dir, name), buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := h.prune(); err != nil {
		return "", err
	}
	return id, nil
}

// Peek returns the newest snapshot's list and id without removing it. Call
// Discard with the id once the list has been restored.
func (h *History) Peek() ([]expense.Expense, string, error) {
	names, err := h.entries()
	if err != nil {
		return nil, "", err
	}
	if len(names) == 0 {
		return nil, "", ErrNoHistory
	}
	name := names[len(names)-1]
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	list, err := readCSV(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	return list, snapshotID(name), nil
}

// Pop removes the newest snapshot and returns its list.
func (h *History) Pop() ([]expense.Expense, error) {
	list, id, err := h.Peek()
	if err != nil {
		return nil, err
	}
	if err := h.Discard(id); err != nil {
		return nil, fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return list, nil
}

// snapshotID extracts the uuid from a `<nanos>-<uuid>.csv` file name.
func snapshotID(name string) string {
	_, id, _ := strings.Cut(strings.TrimSuffix(name, ".csv"), "-")
	return id
}

// Discard removes the snapshot with the given id. An empty id is a no-op.
func (h *History) Discard(id string) error {
	if id == "" {
		return nil
	}
	names, err := h.entries()
	if err != nil {
		return err
	}
	for _, name := range names {
		if strings.HasSuffix(name, "-"+id+".csv") {
			return os.Remove(filepath.Join(h.dir, name))
		}
	}
	return nil
}

// Len returns the number of stored snapshots.
func (h *History) Len() (int, error) {
	names, err := h.entries()
	return len(names), err
}

func (h *History) entries() ([]string, error) {
	dirEntries, err := os.ReadDir(h.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var names []string
	for _, de := range dirEntries {
		if de.Type().IsRegular() && strings.HasSuffix(de.Name(), ".csv") {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (h *History) prune() error {
	names, err := h.entries()
	if err != nil {
		return err
	}
	for len(names) > h.limit {
		if err := os.Remove(filepath.Join(h.dir, names[0])); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		names = names[1:]
	}
	return nil
}
