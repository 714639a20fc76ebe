// Package wallet runs expense operations against a store and keeps undo
// snapshots of every change.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/NgigiN/walletwatcher/internal/expense"
	"github.com/NgigiN/walletwatcher/internal/log"
	"github.com/NgigiN/walletwatcher/internal/storage"
)

// MaxSuggestionDistance is the largest edit distance at which an existing
// category is offered as a suggestion.
const MaxSuggestionDistance = 3

var ErrNoFilters = errors.New("no filters given")

// Defaults fill the fields an add leaves empty.
type Defaults struct {
	Category    string
	Description string
}

type Service struct {
	mu       sync.Mutex
	store    storage.Store
	history  *storage.History
	logger   *log.Logger
	defaults Defaults
}

// ListResult is the outcome of a listing.
type ListResult struct {
	Matched []expense.Expense
	Total   decimal.Decimal
	// Count is the size of the whole list, before filtering.
	Count int
}

// DeleteResult is the outcome of a delete.
type DeleteResult struct {
	Removed   []expense.Expense
	Total     decimal.Decimal
	Remaining int
}

func NewService(store storage.Store, history *storage.History, logger *log.Logger, defaults Defaults) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		history:  history,
		logger:   logger.WithComponent(log.ComponentWallet),
		defaults: defaults,
	}
}

// Add records a new expense and returns it as stored.
func (s *Service) Add(ctx context.Context, d expense.Draft) (expense.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return expense.Expense{}, err
	}
	e, err := expense.Add(list, s.withDefaults(d))
	if err != nil {
		return expense.Expense{}, err
	}
	snap, err := s.snapshot(list)
	if err != nil {
		return expense.Expense{}, err
	}
	if err := s.store.Append(ctx, e); err != nil {
		s.discard(snap)
		s.logger.Error("failed to append expense", log.FieldOperation, log.OpAppend, log.FieldError, err)
		return expense.Expense{}, err
	}
	s.logger.Debug("expense added",
		log.FieldOperation, log.OpAdd,
		log.FieldExpenseID, e.ID,
		log.FieldAmount, e.Amount.StringFixed(2),
		log.FieldCategory, e.Category,
	)
	return e, nil
}

// AddBatch records every valid draft as one change, so a single undo reverts
// the whole batch. errs holds one entry per draft, nil for the ones saved.
func (s *Service) AddBatch(ctx context.Context, drafts []expense.Draft) (added []expense.Expense, errs []error, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	updated := slices.Clone(list)
	errs = make([]error, len(drafts))
	for i, d := range drafts {
		e, addErr := expense.Add(updated, s.withDefaults(d))
		if addErr != nil {
			errs[i] = addErr
			continue
		}
		updated = append(updated, e)
		added = append(added, e)
	}
	if len(added) == 0 {
		return nil, errs, nil
	}
	if err := s.replace(ctx, list, updated); err != nil {
		return nil, nil, err
	}
	s.logger.Debug("expense batch added",
		log.FieldOperation, log.OpAdd,
		log.FieldMatched, len(added),
	)
	return added, errs, nil
}

// List returns the expenses matching every flag of q, sorted by key.
func (s *Service) List(ctx context.Context, q Query, key expense.SortKey) (ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return ListResult{}, err
	}
	filters, err := q.Filters(expense.Today())
	if err != nil {
		return ListResult{}, err
	}
	f := expense.AllOf(filters...)
	sorted, err := expense.Sort(expense.Select(list, f), key)
	if err != nil {
		return ListResult{}, err
	}
	res := ListResult{
		Matched: sorted,
		Total:   expense.Total(sorted).Overall,
		Count:   len(list),
	}
	s.logger.Debug("expenses listed",
		log.FieldOperation, log.OpList,
		log.FieldFilter, f.String(),
		log.FieldMatched, len(res.Matched),
	)
	return res, nil
}

// Delete removes the expenses matching any flag of q. An empty query is
// refused since it would match nothing.
func (s *Service) Delete(ctx context.Context, q Query) (DeleteResult, error) {
	if q.Empty() {
		return DeleteResult{}, fmt.Errorf("%w: %w", expense.ErrInvalidArgument, ErrNoFilters)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	filters, err := q.Filters(expense.Today())
	if err != nil {
		return DeleteResult{}, err
	}
	f := expense.AnyOf(filters...)
	kept, removed := expense.Delete(list, f)
	res := DeleteResult{
		Removed:   removed,
		Total:     expense.Total(removed).Overall,
		Remaining: len(kept),
	}
	if len(removed) == 0 {
		return res, nil
	}
	if err := s.replace(ctx, list, kept); err != nil {
		return DeleteResult{}, err
	}
	s.logger.Debug("expenses deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldFilter, f.String(),
		log.FieldMatched, len(removed),
		log.FieldTotal, res.Total.StringFixed(2),
	)
	return res, nil
}

// Edit applies edit to the expense with the given id. Nothing is written when
// the edit changes no field.
func (s *Service) Edit(ctx context.Context, id int, edit expense.Edit) (expense.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	updated, changes, err := expense.Modify(list, id, edit)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return changes, nil
	}
	if err := s.replace(ctx, list, updated); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(changes))
	for _, f := range changes.Fields() {
		keys = append(keys, f.String())
	}
	s.logger.Debug("expense edited",
		log.FieldOperation, log.OpEdit,
		log.FieldExpenseID, id,
		log.FieldChangedKeys, strings.Join(keys, ","),
	)
	return changes, nil
}

// Summary totals the expenses matching every flag of q.
func (s *Service) Summary(ctx context.Context, q Query) (expense.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return expense.Totals{}, err
	}
	filters, err := q.Filters(expense.Today())
	if err != nil {
		return expense.Totals{}, err
	}
	totals := expense.Total(expense.Select(list, expense.AllOf(filters...)))
	s.logger.Debug("summary computed",
		log.FieldOperation, log.OpSummary,
		log.FieldMatched, totals.Count,
		log.FieldTotal, totals.Overall.StringFixed(2),
	)
	return totals, nil
}

// Undo restores the list saved before the last change and returns its size.
func (s *Service) Undo(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return 0, storage.ErrNoHistory
	}
	list, id, err := s.history.Peek()
	if err != nil {
		return 0, err
	}
	if err := s.store.Save(ctx, list); err != nil {
		s.logger.Error("failed to restore snapshot", log.FieldOperation, log.OpUndo, log.FieldSnapshot, id, log.FieldError, err)
		return 0, err
	}
	if err := s.history.Discard(id); err != nil {
		s.logger.Error("failed to remove restored snapshot", log.FieldOperation, log.OpUndo, log.FieldSnapshot, id, log.FieldError, err)
		return 0, err
	}
	s.logger.Debug("change undone", log.FieldOperation, log.OpUndo, log.FieldMatched, len(list))
	return len(list), nil
}

// SuggestCategories returns the stored categories close to any of wanted,
// excluding exact matches, sorted by name.
func (s *Service) SuggestCategories(ctx context.Context, wanted []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return suggest(list, wanted), nil
}

func suggest(list []expense.Expense, wanted []string) []string {
	seen := make(map[string]struct{})
	for _, e := range list {
		seen[e.Category] = struct{}{}
	}
	var out []string
	for category := range seen {
		for _, w := range wanted {
			if category == w {
				continue
			}
			d := levenshtein.ComputeDistance(strings.ToLower(category), strings.ToLower(w))
			if d <= MaxSuggestionDistance {
				out = append(out, category)
				break
			}
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func (s *Service) withDefaults(d expense.Draft) expense.Draft {
	if d.Category == "" {
		d.Category = s.defaults.Category
	}
	if d.Description == "" {
		d.Description = s.defaults.Description
	}
	return d
}

func (s *Service) load(ctx context.Context) ([]expense.Expense, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load expenses", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return nil, err
	}
	return list, nil
}

// replace snapshots old and persists updated in its place.
func (s *Service) replace(ctx context.Context, old, updated []expense.Expense) error {
	snap, err := s.snapshot(old)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, updated); err != nil {
		s.discard(snap)
		s.logger.Error("failed to save expenses", log.FieldOperation, log.OpSave, log.FieldError, err)
		return err
	}
	return nil
}

func (s *Service) snapshot(list []expense.Expense) (string, error) {
	if s.history == nil {
		return "", nil
	}
	id, err := s.history.Snapshot(list)
	if err != nil {
		s.logger.Error("failed to snapshot expenses", log.FieldError, err)
		return "", err
	}
	s.logger.Debug("snapshot taken", log.FieldSnapshot, id)
	return id, nil
}

// discard drops the snapshot of a change that was never persisted.
func (s *Service) discard(id string) {
	if s.history == nil {
		return
	}
	if err := s.history.Discard(id); err != nil {
		s.logger.Warn("failed to discard snapshot", log.FieldSnapshot, id, log.FieldError, err)
	}
}
